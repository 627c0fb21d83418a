package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" driver
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
	"github.com/ekaya-inc/ekaya-modeler/pkg/logging"
	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
	"github.com/ekaya-inc/ekaya-modeler/pkg/retry"
	"github.com/ekaya-inc/ekaya-modeler/pkg/typemap"
)

// Catalog queries over sys.* views, scoped by the @schema parameter. NOCOUNT keeps
// row-count messages out of the result stream.
const (
	tablesQuery = `
	SET NOCOUNT ON;
	SELECT t.name
	FROM sys.tables t
	WHERE SCHEMA_NAME(t.schema_id) = @schema
	  AND t.is_ms_shipped = 0
	ORDER BY t.name`

	// nchar and nvarchar report max_length in bytes; halve it to get characters.
	columnsQuery = `
	SET NOCOUNT ON;
	SELECT
	    t.name,
	    c.name,
	    dc.definition,
	    CASE WHEN c.is_nullable = 1 THEN 'Y' ELSE 'N' END,
	    ty.name,
	    CAST(CASE WHEN ty.name IN ('nchar', 'nvarchar') AND c.max_length > 0
	         THEN c.max_length / 2 ELSE c.max_length END AS int),
	    CAST(c.precision AS int),
	    CAST(c.scale AS int),
	    CASE WHEN c.is_identity = 1 OR c.is_computed = 1 THEN 'YES' ELSE 'NO' END,
	    (SELECT COUNT(*)
	     FROM sys.index_columns ic
	     JOIN sys.indexes i ON i.object_id = ic.object_id AND i.index_id = ic.index_id
	     WHERE i.is_unique_constraint = 1
	       AND ic.object_id = c.object_id
	       AND ic.column_id = c.column_id)
	FROM sys.columns c
	JOIN sys.tables t ON t.object_id = c.object_id
	JOIN sys.types ty ON ty.user_type_id = c.user_type_id
	LEFT JOIN sys.default_constraints dc ON dc.object_id = c.default_object_id
	WHERE SCHEMA_NAME(t.schema_id) = @schema
	  AND t.is_ms_shipped = 0
	ORDER BY t.name, c.column_id`

	indexesQuery = `
	SET NOCOUNT ON;
	SELECT
	    t.name,
	    i.name,
	    c.name,
	    CASE WHEN i.is_unique = 1 THEN 'UNIQUE' ELSE 'NONUNIQUE' END,
	    CASE WHEN i.is_primary_key = 1 THEN 1 ELSE 0 END
	FROM sys.indexes i
	JOIN sys.tables t ON t.object_id = i.object_id
	JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
	JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
	WHERE SCHEMA_NAME(t.schema_id) = @schema
	  AND t.is_ms_shipped = 0
	  AND i.name IS NOT NULL
	  AND ic.is_included_column = 0
	ORDER BY i.name, ic.key_ordinal`

	foreignKeysQuery = `
	SET NOCOUNT ON;
	SELECT
	    owner.name,
	    fkc.constraint_column_id,
	    ownerCol.name,
	    ref.name,
	    refCol.name,
	    REPLACE(fk.delete_referential_action_desc, '_', ' '),
	    fk.name
	FROM sys.foreign_keys fk
	JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
	JOIN sys.tables owner ON owner.object_id = fk.parent_object_id
	JOIN sys.tables ref ON ref.object_id = fk.referenced_object_id
	JOIN sys.columns ownerCol ON ownerCol.object_id = fkc.parent_object_id AND ownerCol.column_id = fkc.parent_column_id
	JOIN sys.columns refCol ON refCol.object_id = fkc.referenced_object_id AND refCol.column_id = fkc.referenced_column_id
	WHERE SCHEMA_NAME(owner.schema_id) = @schema
	ORDER BY owner.name, fk.name, fkc.constraint_column_id`
)

// Reader reads one SQL Server schema from the sys.* catalog views.
type Reader struct {
	db     *sql.DB
	schema string
	logger *zap.Logger
}

var _ catalog.Reader = (*Reader)(nil)

// buildConnectionString builds a sqlserver URL with SQL authentication.
func buildConnectionString(cfg *Config) string {
	query := url.Values{}
	query.Add("database", cfg.Database)

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "disable")
	}
	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))
	}

	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		query.Encode(),
	)
}

// NewReader opens and pings a SQL Server connection, retrying transient failures.
// If logger is nil, a no-op logger is used.
func NewReader(ctx context.Context, cfg *Config, logger *zap.Logger) (*Reader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mssql-reader")

	connStr := buildConnectionString(cfg)
	logger.Debug("Connecting to SQL Server",
		zap.String("conn", logging.SanitizeConnectionString(connStr)),
		zap.String("schema", cfg.Schema))

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}

	if err := retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		logger.Error("SQL Server ping failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("ping sqlserver: %w", err)
	}

	return newReader(db, cfg.Schema, logger), nil
}

func newReader(db *sql.DB, schema string, logger *zap.Logger) *Reader {
	if schema == "" {
		schema = DefaultSchema()
	}
	return &Reader{db: db, schema: schema, logger: logger}
}

func (r *Reader) Dialect() string {
	return typemap.DialectSQLServer
}

func (r *Reader) Close() error {
	return r.db.Close()
}

func (r *Reader) query(ctx context.Context, query string) (*sql.Rows, error) {
	rows, err := r.db.QueryContext(ctx, query, sql.Named("schema", r.schema))
	if err != nil {
		r.logger.Error("Catalog query failed",
			zap.String("schema", r.schema),
			zap.String("query", logging.SanitizeQuery(query)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, err
	}
	return rows, nil
}

func (r *Reader) ReadTables(ctx context.Context) ([]models.TableRow, error) {
	rows, err := r.query(ctx, tablesQuery)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []models.TableRow
	for rows.Next() {
		var t models.TableRow
		if err := rows.Scan(&t.Name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table rows: %w", err)
	}

	r.logger.Debug("Read tables", zap.String("schema", r.schema), zap.Int("count", len(tables)))
	return tables, nil
}

func (r *Reader) ReadColumns(ctx context.Context) ([]models.ColumnRow, error) {
	rows, err := r.query(ctx, columnsQuery)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []models.ColumnRow
	for rows.Next() {
		var (
			c                        models.ColumnRow
			definition               sql.NullString
			length, precision, scale sql.NullInt64
		)
		if err := rows.Scan(&c.Table, &c.Name, &definition, &c.Nullable, &c.RawType,
			&length, &precision, &scale, &c.IsIdentity, &c.UniqueConstraintCount); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		c.RawDefault = catalog.NullStringPtr(definition)
		c.Length = catalog.NullIntPtr(length)
		c.Precision = catalog.NullIntPtr(precision)
		c.Scale = catalog.NullIntPtr(scale)
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}

	r.logger.Debug("Read columns", zap.Int("count", len(columns)))
	return columns, nil
}

func (r *Reader) ReadIndexes(ctx context.Context) ([]models.IndexRow, error) {
	rows, err := r.query(ctx, indexesQuery)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	var indexes []models.IndexRow
	for rows.Next() {
		var idx models.IndexRow
		if err := rows.Scan(&idx.Table, &idx.IndexName, &idx.ColumnName, &idx.Uniqueness, &idx.IsPrimaryKey); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index rows: %w", err)
	}

	r.logger.Debug("Read index columns", zap.Int("count", len(indexes)))
	return indexes, nil
}

func (r *Reader) ReadForeignKeys(ctx context.Context) ([]models.ForeignKeyRow, error) {
	rows, err := r.query(ctx, foreignKeysQuery)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []models.ForeignKeyRow
	for rows.Next() {
		var fk models.ForeignKeyRow
		if err := rows.Scan(&fk.OwnerTable, &fk.OwnerColumnPosition, &fk.OwnerColumn,
			&fk.ReferencedTable, &fk.ReferencedColumn, &fk.DeleteRule, &fk.ConstraintName); err != nil {
			return nil, fmt.Errorf("scan foreign key row: %w", err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign key rows: %w", err)
	}

	r.logger.Debug("Read foreign key columns", zap.Int("count", len(fks)))
	return fks, nil
}
