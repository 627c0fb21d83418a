package postgres

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
	"github.com/ekaya-inc/ekaya-modeler/pkg/logging"
	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
	"github.com/ekaya-inc/ekaya-modeler/pkg/retry"
	"github.com/ekaya-inc/ekaya-modeler/pkg/typemap"
)

// Catalog queries. Each takes the schema name as $1 and returns rows shaped like the
// Oracle dictionary: nullable as Y/N, identity as YES/NO, uniqueness as UNIQUE.
// information_schema domains are cast so pgx scans them as plain text and int.
const (
	tablesQuery = `
		SELECT table_name::text
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	columnsQuery = `
		SELECT
			c.table_name::text,
			c.column_name::text,
			c.column_default::text,
			CASE WHEN c.is_nullable = 'YES' THEN 'Y' ELSE 'N' END,
			c.data_type::text,
			c.character_maximum_length::int,
			COALESCE(c.numeric_precision, c.datetime_precision)::int,
			c.numeric_scale::int,
			CASE WHEN c.is_identity = 'YES' OR c.is_generated = 'ALWAYS' THEN 'YES' ELSE 'NO' END,
			(SELECT COUNT(*)::int
			 FROM information_schema.table_constraints tc
			 JOIN information_schema.key_column_usage kcu
			   ON kcu.constraint_name = tc.constraint_name
			  AND kcu.constraint_schema = tc.constraint_schema
			  AND kcu.table_name = tc.table_name
			 WHERE tc.constraint_type = 'UNIQUE'
			   AND tc.table_schema = c.table_schema
			   AND tc.table_name = c.table_name
			   AND kcu.column_name = c.column_name)
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name AND t.table_type = 'BASE TABLE'
		WHERE c.table_schema = $1
		ORDER BY c.table_name, c.ordinal_position`

	indexesQuery = `
		SELECT
			t.relname::text,
			i.relname::text,
			a.attname::text,
			CASE WHEN ix.indisunique THEN 'UNIQUE' ELSE 'NONUNIQUE' END,
			CASE WHEN ix.indisprimary THEN 1 ELSE 0 END
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN LATERAL unnest(ix.indkey::int2[]) WITH ORDINALITY AS k(attnum, position) ON true
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = $1 AND t.relkind IN ('r', 'p')
		ORDER BY i.relname, k.position`

	foreignKeysQuery = `
		SELECT
			src.relname::text,
			k.position::int,
			sa.attname::text,
			tgt.relname::text,
			ta.attname::text,
			con.confdeltype::text,
			con.conname::text
		FROM pg_constraint con
		JOIN pg_class src ON src.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = src.relnamespace
		JOIN pg_class tgt ON tgt.oid = con.confrelid
		JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(src_attnum, tgt_attnum, position) ON true
		JOIN pg_attribute sa ON sa.attrelid = con.conrelid AND sa.attnum = k.src_attnum
		JOIN pg_attribute ta ON ta.attrelid = con.confrelid AND ta.attnum = k.tgt_attnum
		WHERE con.contype = 'f' AND n.nspname = $1
		ORDER BY src.relname, con.conname, k.position`
)

const maxConns = 4

// deleteRule maps a pg_constraint.confdeltype code to its referential action.
func deleteRule(code string) string {
	switch code {
	case "r":
		return models.ActionRestrict
	case "c":
		return models.ActionCascade
	case "n":
		return models.ActionSetNull
	case "d":
		return models.ActionSetDefault
	default:
		return models.ActionNoAction
	}
}

// Reader reads one PostgreSQL schema from information_schema and pg_catalog.
type Reader struct {
	pool   *pgxpool.Pool
	schema string
	logger *zap.Logger
}

var (
	_ catalog.Reader           = (*Reader)(nil)
	_ catalog.ConcurrentReader = (*Reader)(nil)
)

// buildConnectionString builds a PostgreSQL URL with proper escaping.
// All user-provided fields are URL-escaped so passwords may contain @, /, # or ?.
func buildConnectionString(cfg *Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	if cfg.ConnectionTimeout > 0 {
		query.Set("connect_timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))
	}

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		url.QueryEscape(cfg.Database),
		query.Encode(),
	)
}

// NewReader creates a pool and pings it, retrying transient failures.
// If logger is nil, a no-op logger is used.
func NewReader(ctx context.Context, cfg *Config, logger *zap.Logger) (*Reader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("postgres-reader")

	connStr := buildConnectionString(cfg)
	logger.Debug("Connecting to PostgreSQL",
		zap.String("conn", logging.SanitizeConnectionString(connStr)),
		zap.String("schema", cfg.Schema))

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres connection string: %w", err)
	}
	// One connection per concurrent catalog read.
	poolConfig.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		return pool.Ping(ctx)
	}); err != nil {
		pool.Close()
		logger.Error("PostgreSQL ping failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	schema := cfg.Schema
	if schema == "" {
		schema = DefaultSchema()
	}
	return &Reader{pool: pool, schema: schema, logger: logger}, nil
}

func (r *Reader) Dialect() string {
	return typemap.DialectPostgres
}

// ConcurrentReads reports true: each read acquires its own pooled connection.
func (r *Reader) ConcurrentReads() bool {
	return true
}

func (r *Reader) Close() error {
	r.pool.Close()
	return nil
}

func (r *Reader) query(ctx context.Context, query string) (pgx.Rows, error) {
	rows, err := r.pool.Query(ctx, query, r.schema)
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
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	r.logger.Debug("Read tables", zap.Int("count", len(tables)))
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
		var c models.ColumnRow
		if err := rows.Scan(&c.Table, &c.Name, &c.RawDefault, &c.Nullable, &c.RawType,
			&c.Length, &c.Precision, &c.Scale, &c.IsIdentity, &c.UniqueConstraintCount); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
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
			return nil, fmt.Errorf("scan index: %w", err)
		}
		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexes: %w", err)
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
		var actionCode string
		if err := rows.Scan(&fk.OwnerTable, &fk.OwnerColumnPosition, &fk.OwnerColumn,
			&fk.ReferencedTable, &fk.ReferencedColumn, &actionCode, &fk.ConstraintName); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		fk.DeleteRule = deleteRule(actionCode)
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}

	r.logger.Debug("Read foreign key columns", zap.Int("count", len(fks)))
	return fks, nil
}
