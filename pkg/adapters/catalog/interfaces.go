package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
)

// Reader produces raw catalog rows for one database.
// Each implementation owns its connection and must be closed when done.
type Reader interface {
	// ReadTables returns all user tables.
	ReadTables(ctx context.Context) ([]models.TableRow, error)

	// ReadColumns returns the columns of all user tables, in catalog order.
	ReadColumns(ctx context.Context) ([]models.ColumnRow, error)

	// ReadIndexes returns index columns sorted by index name, then column position.
	ReadIndexes(ctx context.Context) ([]models.IndexRow, error)

	// ReadForeignKeys returns foreign key column pairs sorted by owner table,
	// constraint name, then owner column position.
	ReadForeignKeys(ctx context.Context) ([]models.ForeignKeyRow, error)

	// Dialect names the type mapping the rows need (see typemap.ForDialect).
	Dialect() string

	// Close releases the database connection.
	Close() error
}

// Snapshot holds the four row sets of one catalog read.
type Snapshot struct {
	Dialect     string                 `json:"dialect" yaml:"dialect"`
	Tables      []models.TableRow      `json:"tables" yaml:"tables"`
	Columns     []models.ColumnRow     `json:"columns" yaml:"columns"`
	Indexes     []models.IndexRow      `json:"indexes" yaml:"indexes"`
	ForeignKeys []models.ForeignKeyRow `json:"foreign_keys" yaml:"foreign_keys"`
}

// ConcurrentReader is implemented by readers whose four reads may run at the same
// time, e.g. because each read takes its own pooled connection.
type ConcurrentReader interface {
	ConcurrentReads() bool
}

// ReadSnapshot reads tables, columns, indexes and foreign keys. Readers reporting
// ConcurrentReads run the four reads in parallel; others run them in that order.
// The first failure cancels the remaining reads.
func ReadSnapshot(ctx context.Context, r Reader) (*Snapshot, error) {
	if cr, ok := r.(ConcurrentReader); ok && cr.ConcurrentReads() {
		return readSnapshotConcurrently(ctx, r)
	}

	tables, err := r.ReadTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}

	columns, err := r.ReadColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	indexes, err := r.ReadIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("read indexes: %w", err)
	}

	fks, err := r.ReadForeignKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("read foreign keys: %w", err)
	}

	return &Snapshot{
		Dialect:     r.Dialect(),
		Tables:      tables,
		Columns:     columns,
		Indexes:     indexes,
		ForeignKeys: fks,
	}, nil
}

func readSnapshotConcurrently(ctx context.Context, r Reader) (*Snapshot, error) {
	snapshot := &Snapshot{Dialect: r.Dialect()}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		if snapshot.Tables, err = r.ReadTables(ctx); err != nil {
			return fmt.Errorf("read tables: %w", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		if snapshot.Columns, err = r.ReadColumns(ctx); err != nil {
			return fmt.Errorf("read columns: %w", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		if snapshot.Indexes, err = r.ReadIndexes(ctx); err != nil {
			return fmt.Errorf("read indexes: %w", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		if snapshot.ForeignKeys, err = r.ReadForeignKeys(ctx); err != nil {
			return fmt.Errorf("read foreign keys: %w", err)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}
