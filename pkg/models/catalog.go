package models

// Catalog rows as produced by a catalog reader. Field semantics mirror the
// system views they come from; the assembler interprets the flag strings.

// TableRow is one user table.
type TableRow struct {
	Name string `json:"name" yaml:"name"`
}

// ColumnRow is one table column.
type ColumnRow struct {
	Table                 string  `json:"table" yaml:"table"`
	Name                  string  `json:"name" yaml:"name"`
	RawDefault            *string `json:"raw_default,omitempty" yaml:"raw_default,omitempty"`
	Nullable              string  `json:"nullable" yaml:"nullable"` // "Y" or "N"
	RawType               string  `json:"raw_type" yaml:"raw_type"`
	Length                *int    `json:"length,omitempty" yaml:"length,omitempty"`
	Precision             *int    `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale                 *int    `json:"scale,omitempty" yaml:"scale,omitempty"`
	IsIdentity            string  `json:"is_identity" yaml:"is_identity"` // "YES" or "NO"
	UniqueConstraintCount int     `json:"unique_constraint_count" yaml:"unique_constraint_count"`
}

// IndexRow is one column of one index. Rows arrive sorted by index name, then column position.
type IndexRow struct {
	Table        string `json:"table" yaml:"table"`
	IndexName    string `json:"index_name" yaml:"index_name"`
	ColumnName   string `json:"column_name" yaml:"column_name"`
	Uniqueness   string `json:"uniqueness" yaml:"uniqueness"`         // "UNIQUE" or anything else
	IsPrimaryKey int    `json:"is_primary_key" yaml:"is_primary_key"` // 1 for the primary key index
}

// ForeignKeyRow is one column pair of one foreign-key constraint.
// Rows arrive sorted by owner table, constraint name, then owner column position.
type ForeignKeyRow struct {
	OwnerTable          string `json:"owner_table" yaml:"owner_table"`
	OwnerColumnPosition int    `json:"owner_column_position" yaml:"owner_column_position"`
	OwnerColumn         string `json:"owner_column" yaml:"owner_column"`
	ReferencedTable     string `json:"referenced_table" yaml:"referenced_table"`
	ReferencedColumn    string `json:"referenced_column" yaml:"referenced_column"`
	DeleteRule          string `json:"delete_rule" yaml:"delete_rule"`
	ConstraintName      string `json:"constraint_name" yaml:"constraint_name"`
}

// Catalog flag values.
const (
	NullableYes    = "Y"
	IdentityYes    = "YES"
	UniquenessFlag = "UNIQUE"
)
