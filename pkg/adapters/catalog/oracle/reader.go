package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	go_ora "github.com/sijms/go-ora/v2"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
	"github.com/ekaya-inc/ekaya-modeler/pkg/logging"
	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
	"github.com/ekaya-inc/ekaya-modeler/pkg/retry"
	"github.com/ekaya-inc/ekaya-modeler/pkg/typemap"
)

// Catalog queries over the connected user's dictionary views.
const (
	tablesQuery = `
	SELECT TABLE_NAME FROM ALL_TABLES
	WHERE OWNER = (SELECT USER FROM DUAL)
	ORDER BY TABLE_NAME`

	columnsQuery = `
	SELECT utc.TABLE_NAME, utc.COLUMN_NAME, utc.DATA_DEFAULT, utc.NULLABLE, utc.DATA_TYPE,
	    utc.DATA_LENGTH, utc.DATA_PRECISION, utc.DATA_SCALE, utc.IDENTITY_COLUMN,
	    (SELECT COUNT(*) FROM USER_CONS_COLUMNS ucc
	     JOIN USER_CONSTRAINTS uc ON uc.CONSTRAINT_NAME = ucc.CONSTRAINT_NAME AND uc.CONSTRAINT_TYPE = 'U'
	     WHERE ucc.COLUMN_NAME = utc.COLUMN_NAME AND ucc.TABLE_NAME = utc.TABLE_NAME) IS_UNIQUE
	FROM USER_TAB_COLUMNS utc
	ORDER BY utc.TABLE_NAME, utc.COLUMN_ID`

	indexesQuery = `
	SELECT ind.TABLE_NAME, ind.INDEX_NAME, col.COLUMN_NAME, ind.UNIQUENESS,
	    CASE WHEN uc.CONSTRAINT_NAME IS NULL THEN 0 ELSE 1 END ISPRIMARYKEY
	FROM USER_INDEXES ind
	JOIN USER_IND_COLUMNS col ON ind.INDEX_NAME = col.INDEX_NAME
	LEFT JOIN USER_CONSTRAINTS uc ON uc.INDEX_NAME = ind.INDEX_NAME AND uc.CONSTRAINT_TYPE = 'P'
	ORDER BY col.INDEX_NAME ASC, col.COLUMN_POSITION ASC`

	foreignKeysQuery = `
	SELECT owner.TABLE_NAME OWNER_TABLE_NAME, ownCol.POSITION OWNER_POSITION, ownCol.COLUMN_NAME OWNER_COLUMN_NAME,
	    child.TABLE_NAME CHILD_TABLE_NAME, childCol.COLUMN_NAME CHILD_COLUMN_NAME,
	    owner.DELETE_RULE, owner.CONSTRAINT_NAME
	FROM USER_CONSTRAINTS owner
	JOIN USER_CONSTRAINTS child ON owner.R_CONSTRAINT_NAME = child.CONSTRAINT_NAME AND child.CONSTRAINT_TYPE IN ('P', 'U')
	JOIN USER_CONS_COLUMNS ownCol ON owner.CONSTRAINT_NAME = ownCol.CONSTRAINT_NAME
	JOIN USER_CONS_COLUMNS childCol ON child.CONSTRAINT_NAME = childCol.CONSTRAINT_NAME AND ownCol.POSITION = childCol.POSITION
	WHERE owner.CONSTRAINT_TYPE = 'R'
	ORDER BY OWNER_TABLE_NAME ASC, owner.CONSTRAINT_NAME ASC, OWNER_POSITION ASC`
)

// Reader reads the Oracle data dictionary of the connected user.
type Reader struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ catalog.Reader = (*Reader)(nil)

// buildConnectionString builds a go-ora URL. go-ora escapes the credentials.
func buildConnectionString(cfg *Config) string {
	options := map[string]string{
		"CONNECTION TIMEOUT": strconv.Itoa(cfg.ConnectionTimeout),
	}
	return go_ora.BuildUrl(cfg.Host, cfg.Port, cfg.Service, cfg.User, cfg.Password, options)
}

// NewReader opens and pings an Oracle connection. Transient failures (listener down,
// instance starting) are retried.
// If logger is nil, a no-op logger is used.
func NewReader(ctx context.Context, cfg *Config, logger *zap.Logger) (*Reader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("oracle-reader")

	connStr := buildConnectionString(cfg)
	logger.Debug("Connecting to Oracle", zap.String("conn", logging.SanitizeConnectionString(connStr)))

	db, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("open oracle connection: %w", err)
	}

	if err := retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		logger.Error("Oracle ping failed", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("ping oracle: %w", err)
	}

	return newReader(db, logger), nil
}

func newReader(db *sql.DB, logger *zap.Logger) *Reader {
	return &Reader{db: db, logger: logger}
}

func (r *Reader) Dialect() string {
	return typemap.DialectOracle
}

func (r *Reader) Close() error {
	return r.db.Close()
}

func (r *Reader) query(ctx context.Context, query string) (*sql.Rows, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Catalog query failed",
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
		var (
			c                        models.ColumnRow
			dataDefault              sql.NullString
			length, precision, scale sql.NullInt64
			identity                 sql.NullString
		)
		if err := rows.Scan(&c.Table, &c.Name, &dataDefault, &c.Nullable, &c.RawType,
			&length, &precision, &scale, &identity, &c.UniqueConstraintCount); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		c.RawDefault = catalog.NullStringPtr(dataDefault)
		c.Length = catalog.NullIntPtr(length)
		c.Precision = catalog.NullIntPtr(precision)
		c.Scale = catalog.NullIntPtr(scale)
		c.IsIdentity = identity.String
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
