package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ekaya-inc/ekaya-modeler/pkg/apperrors"
)

func TestLoadSnapshotFile_YAML(t *testing.T) {
	snapshot, err := LoadSnapshotFile(filepath.Join("testdata", "orders.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "oracle", snapshot.Dialect)
	require.Len(t, snapshot.Tables, 2)
	assert.Equal(t, "CUSTOMERS", snapshot.Tables[0].Name)
	require.Len(t, snapshot.Columns, 5)

	status := snapshot.Columns[4]
	require.NotNil(t, status.RawDefault)
	assert.Equal(t, "'NEW'", *status.RawDefault)
	require.NotNil(t, status.Length)
	assert.Equal(t, 20, *status.Length)
	assert.Nil(t, status.Precision)

	require.Len(t, snapshot.ForeignKeys, 1)
	assert.Equal(t, "FK_ORDERS_CUSTOMER", snapshot.ForeignKeys[0].ConstraintName)
	assert.Equal(t, "CASCADE", snapshot.ForeignKeys[0].DeleteRule)
}

func TestLoadSnapshotFile_JSONDefaultsDialect(t *testing.T) {
	snapshot, err := LoadSnapshotFile(filepath.Join("testdata", "minimal.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultFixtureDialect, snapshot.Dialect)
	require.Len(t, snapshot.Columns, 1)
	assert.Equal(t, "YES", snapshot.Columns[0].IsIdentity)
}

func TestLoadSnapshotFile_Errors(t *testing.T) {
	_, err := LoadSnapshotFile(filepath.Join("testdata", "missing.yaml"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadSnapshotFile(bad)
	assert.ErrorContains(t, err, "parse snapshot file")
}

func TestReadSnapshot_FromFixtureReader(t *testing.T) {
	ctx := context.Background()
	reader, err := NewReader(ctx, FixtureType, map[string]any{
		"path": filepath.Join("testdata", "orders.yaml"),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer reader.Close()

	snapshot, err := ReadSnapshot(ctx, reader)
	require.NoError(t, err)
	assert.Equal(t, "oracle", snapshot.Dialect)
	assert.Len(t, snapshot.Tables, 2)
	assert.Len(t, snapshot.Columns, 5)
	assert.Len(t, snapshot.Indexes, 2)
	assert.Len(t, snapshot.ForeignKeys, 1)
}
