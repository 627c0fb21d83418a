package mssql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
)

func newMockReader(t *testing.T, schema string) (*Reader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newReader(db, schema, zaptest.NewLogger(t)), mock
}

func TestReader_ReadTables_DefaultSchema(t *testing.T) {
	r, mock := newMockReader(t, "")

	mock.ExpectQuery(`FROM sys\.tables t\s+WHERE`).
		WithArgs(sql.Named("schema", "dbo")).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Customers").AddRow("Orders"))

	tables, err := r.ReadTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.TableRow{{Name: "Customers"}, {Name: "Orders"}}, tables)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_ReadColumns(t *testing.T) {
	r, mock := newMockReader(t, "sales")

	cols := []string{"table", "column", "definition", "nullable", "type", "length", "precision", "scale", "identity", "unique"}
	mock.ExpectQuery(`FROM sys\.columns c`).
		WithArgs(sql.Named("schema", "sales")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("Orders", "Id", nil, "N", "int", int64(4), int64(10), int64(0), "YES", int64(0)).
			AddRow("Orders", "Status", "('NEW')", "Y", "nvarchar", int64(20), int64(0), int64(0), "NO", int64(1)).
			AddRow("Orders", "Notes", nil, "Y", "nvarchar", int64(-1), int64(0), int64(0), "NO", int64(0)))

	columns, err := r.ReadColumns(context.Background())
	require.NoError(t, err)
	require.Len(t, columns, 3)

	assert.Equal(t, "Id", columns[0].Name)
	assert.Nil(t, columns[0].RawDefault)
	assert.Equal(t, "YES", columns[0].IsIdentity)

	status := columns[1]
	require.NotNil(t, status.RawDefault)
	assert.Equal(t, "('NEW')", *status.RawDefault)
	assert.Equal(t, "Y", status.Nullable)
	assert.Equal(t, 20, *status.Length)
	assert.Equal(t, 1, status.UniqueConstraintCount)

	assert.Equal(t, -1, *columns[2].Length)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_ReadIndexes(t *testing.T) {
	r, mock := newMockReader(t, "dbo")

	mock.ExpectQuery(`FROM sys\.indexes i`).
		WithArgs(sql.Named("schema", "dbo")).
		WillReturnRows(sqlmock.NewRows([]string{"table", "index", "column", "uniqueness", "pk"}).
			AddRow("Orders", "PK_Orders", "Id", "UNIQUE", int64(1)).
			AddRow("Orders", "IX_Orders_Customer", "CustomerId", "NONUNIQUE", int64(0)))

	indexes, err := r.ReadIndexes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.IndexRow{
		{Table: "Orders", IndexName: "PK_Orders", ColumnName: "Id", Uniqueness: "UNIQUE", IsPrimaryKey: 1},
		{Table: "Orders", IndexName: "IX_Orders_Customer", ColumnName: "CustomerId", Uniqueness: "NONUNIQUE"},
	}, indexes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_ReadForeignKeys(t *testing.T) {
	r, mock := newMockReader(t, "dbo")

	mock.ExpectQuery(`FROM sys\.foreign_keys fk`).
		WithArgs(sql.Named("schema", "dbo")).
		WillReturnRows(sqlmock.NewRows([]string{"owner", "pos", "owner_col", "ref", "ref_col", "action", "name"}).
			AddRow("Orders", int64(1), "CustomerId", "Customers", "Id", "CASCADE", "FK_Orders_Customers").
			AddRow("Payments", int64(1), "OrderId", "Orders", "Id", "NO ACTION", "FK_Payments_Orders"))

	fks, err := r.ReadForeignKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, fks, 2)
	assert.Equal(t, models.ForeignKeyRow{
		OwnerTable:          "Orders",
		OwnerColumnPosition: 1,
		OwnerColumn:         "CustomerId",
		ReferencedTable:     "Customers",
		ReferencedColumn:    "Id",
		DeleteRule:          "CASCADE",
		ConstraintName:      "FK_Orders_Customers",
	}, fks[0])
	assert.Equal(t, models.ActionNoAction, fks[1].DeleteRule)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	core, logs := observer.New(zap.ErrorLevel)
	r := newReader(db, "sales", zap.New(core))

	mock.ExpectQuery(`FROM sys\.tables t\s+WHERE`).
		WillReturnError(errors.New("Login failed for user 'modeler'"))

	_, err = catalog.ReadSnapshot(context.Background(), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query tables")
	require.NoError(t, mock.ExpectationsWereMet())

	entries := logs.FilterMessage("Catalog query failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sales", entries[0].ContextMap()["schema"])
	assert.Contains(t, entries[0].ContextMap()["query"], "sys.tables")
}

func TestReader_Dialect(t *testing.T) {
	r, _ := newMockReader(t, "dbo")
	assert.Equal(t, "sqlserver", r.Dialect())
}
