package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
)

const shopFixture = "pkg/services/testdata/shop.yaml"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"MODELER_SOURCE", "MODELER_FIXTURE_PATH", "MODELER_OUTPUT_FORMAT", "MODELER_OUTPUT_PATH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("LOG_LEVEL", "error")

	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml"), "--env-file", ""))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestCLI_Dialects(t *testing.T) {
	out, err := runCLI(t, "dialects")
	require.NoError(t, err)

	for _, name := range []string{"fixture", "oracle", "postgres", "sqlserver"} {
		assert.Contains(t, out, name)
	}
}

func TestCLI_IntrospectFixture(t *testing.T) {
	out, err := runCLI(t, "introspect", "--fixture", shopFixture)
	require.NoError(t, err)

	var model struct {
		Dialect  string `yaml:"dialect"`
		Entities []struct {
			Name string `yaml:"name"`
		} `yaml:"entities"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &model))
	assert.Equal(t, "oracle", model.Dialect)
	assert.Len(t, model.Entities, 5)
	assert.NotContains(t, out, "diagnostics:")
}

func TestCLI_IntrospectIsRepeatable(t *testing.T) {
	for _, format := range []string{"yaml", "json"} {
		t.Run(format, func(t *testing.T) {
			args := []string{"introspect", "--fixture", shopFixture, "--format", format, "--diagnostics"}
			first, err := runCLI(t, args...)
			require.NoError(t, err)
			second, err := runCLI(t, args...)
			require.NoError(t, err)

			assert.NotEmpty(t, first)
			assert.Equal(t, first, second)
		})
	}
}

func TestCLI_IntrospectWithDiagnosticsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	out, err := runCLI(t, "introspect", "--fixture", shopFixture, "--format", "json", "--out", path, "--diagnostics")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var result struct {
		Model struct {
			Dialect string `json:"dialect"`
		} `json:"model"`
		Diagnostics []struct {
			Kind string `json:"kind"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "oracle", result.Model.Dialect)
	assert.Len(t, result.Diagnostics, 2)
}

func TestCLI_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")

	_, err := runCLI(t, "snapshot", "--fixture", shopFixture, "--out", path)
	require.NoError(t, err)

	original, err := catalog.LoadSnapshotFile(shopFixture)
	require.NoError(t, err)
	copied, err := catalog.LoadSnapshotFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, copied)
}

func TestCLI_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing fixture path", args: []string{"introspect"}, wantErr: "fixture_path is required"},
		{name: "unknown source", args: []string{"introspect", "--source", "db2"}, wantErr: "unknown"},
		{name: "unsupported format", args: []string{"introspect", "--fixture", shopFixture, "--format", "xml"}, wantErr: "unsupported"},
		{name: "missing file", args: []string{"introspect", "--fixture", "does/not/exist.yaml"}, wantErr: "read snapshot file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
