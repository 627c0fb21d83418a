package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-modeler/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
)

// FixtureType is the registry type of the snapshot file reader.
const FixtureType = "fixture"

// DefaultFixtureDialect is used when a snapshot file does not name its dialect.
const DefaultFixtureDialect = "oracle"

func init() {
	Register(ReaderRegistration{
		Info: ReaderInfo{
			Type:        FixtureType,
			DisplayName: "Catalog snapshot file",
			Description: "Read pre-extracted catalog rows from a YAML or JSON file",
		},
		Factory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (Reader, error) {
			path, ok := config["path"].(string)
			if !ok || path == "" {
				return nil, fmt.Errorf("path is required")
			}
			snapshot, err := LoadSnapshotFile(path)
			if err != nil {
				return nil, err
			}
			logger.Debug("Loaded catalog snapshot",
				zap.String("path", path),
				zap.Int("tables", len(snapshot.Tables)),
				zap.Int("columns", len(snapshot.Columns)))
			return NewFixtureReader(snapshot), nil
		},
	})
}

// LoadSnapshotFile reads a snapshot from a .json file, or YAML otherwise.
func LoadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read snapshot file %s: %w", path, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var snapshot Snapshot
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &snapshot)
	} else {
		err = yaml.Unmarshal(data, &snapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("parse snapshot file %s: %w", path, err)
	}

	if snapshot.Dialect == "" {
		snapshot.Dialect = DefaultFixtureDialect
	}
	return &snapshot, nil
}

// FixtureReader serves rows from an in-memory snapshot.
type FixtureReader struct {
	snapshot *Snapshot
}

var _ Reader = (*FixtureReader)(nil)

// NewFixtureReader wraps a snapshot as a Reader.
func NewFixtureReader(snapshot *Snapshot) *FixtureReader {
	return &FixtureReader{snapshot: snapshot}
}

func (r *FixtureReader) ReadTables(ctx context.Context) ([]models.TableRow, error) {
	return r.snapshot.Tables, nil
}

func (r *FixtureReader) ReadColumns(ctx context.Context) ([]models.ColumnRow, error) {
	return r.snapshot.Columns, nil
}

func (r *FixtureReader) ReadIndexes(ctx context.Context) ([]models.IndexRow, error) {
	return r.snapshot.Indexes, nil
}

func (r *FixtureReader) ReadForeignKeys(ctx context.Context) ([]models.ForeignKeyRow, error) {
	return r.snapshot.ForeignKeys, nil
}

func (r *FixtureReader) Dialect() string {
	return r.snapshot.Dialect
}

func (r *FixtureReader) Close() error {
	return nil
}
