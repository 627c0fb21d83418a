package models

// SemanticType is the portable, engine-independent classification of a column type.
type SemanticType string

const (
	SemanticString  SemanticType = "string"
	SemanticNumber  SemanticType = "number"
	SemanticBoolean SemanticType = "boolean"
	SemanticDate    SemanticType = "date"
	SemanticBinary  SemanticType = "binary"
	SemanticUnknown SemanticType = "unknown"

	// SemanticRelation marks synthesized navigation columns, which hold entity
	// references rather than scalar values.
	SemanticRelation SemanticType = "relation"
)

// RelationType is the cardinality of one side of a relation.
type RelationType string

const (
	RelationOneToOne  RelationType = "OneToOne"
	RelationManyToOne RelationType = "ManyToOne"
	RelationOneToMany RelationType = "OneToMany"
)

// Inverse returns the relation type seen from the other side.
// ManyToOne becomes OneToMany and vice versa; OneToOne stays OneToOne.
func (r RelationType) Inverse() RelationType {
	switch r {
	case RelationManyToOne:
		return RelationOneToMany
	case RelationOneToMany:
		return RelationManyToOne
	default:
		return r
	}
}

// IsCollection reports whether the side holding this relation navigates to many rows.
func (r RelationType) IsCollection() bool {
	return r == RelationOneToMany
}

// Referential actions as reported by the catalog.
const (
	ActionNoAction   = "NO ACTION"
	ActionCascade    = "CASCADE"
	ActionSetNull    = "SET NULL"
	ActionSetDefault = "SET DEFAULT"
	ActionRestrict   = "RESTRICT"
)

// Entity represents one catalog table in the model.
type Entity struct {
	Name    string    `json:"name" yaml:"name"`
	Columns []*Column `json:"columns" yaml:"columns"`
	Indexes []*Index  `json:"indexes" yaml:"indexes"`
}

// NewEntity creates an entity with empty column and index lists.
func NewEntity(name string) *Entity {
	return &Entity{
		Name:    name,
		Columns: []*Column{},
		Indexes: []*Index{},
	}
}

// FindColumn returns the column with the given name, or nil.
func (e *Entity) FindColumn(name string) *Column {
	for _, c := range e.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindIndex returns the index with the given name, or nil.
func (e *Entity) FindIndex(name string) *Index {
	for _, idx := range e.Indexes {
		if idx.Name == name {
			return idx
		}
	}
	return nil
}

// ColumnNames returns the names of all columns in order.
func (e *Entity) ColumnNames() []string {
	names := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		names[i] = c.Name
	}
	return names
}

// HasUniqueIndexOn reports whether columnName participates in any unique index.
func (e *Entity) HasUniqueIndexOn(columnName string) bool {
	for _, idx := range e.Indexes {
		if idx.IsUnique && idx.HasColumn(columnName) {
			return true
		}
	}
	return false
}

// Column represents a table column, or a synthesized navigation property.
type Column struct {
	Name             string       `json:"name" yaml:"name"`
	SQLType          string       `json:"sql_type,omitempty" yaml:"sql_type,omitempty"`
	SemanticType     SemanticType `json:"semantic_type,omitempty" yaml:"semantic_type,omitempty"`
	Nullable         bool         `json:"nullable" yaml:"nullable"`
	IsGenerated      bool         `json:"is_generated" yaml:"is_generated"`
	IsUnique         bool         `json:"is_unique" yaml:"is_unique"`
	DefaultValue     *string      `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	NumericPrecision *int         `json:"numeric_precision,omitempty" yaml:"numeric_precision,omitempty"`
	NumericScale     *int         `json:"numeric_scale,omitempty" yaml:"numeric_scale,omitempty"`
	Length           *int         `json:"length,omitempty" yaml:"length,omitempty"`
	IsSynthesized    bool         `json:"is_synthesized,omitempty" yaml:"is_synthesized,omitempty"` // navigation column created by relation inference
	Relations        []*Relation  `json:"relations" yaml:"relations"`
}

// Index represents a table index and its ordered columns.
type Index struct {
	Name         string        `json:"name" yaml:"name"`
	IsUnique     bool          `json:"is_unique" yaml:"is_unique"`
	IsPrimaryKey bool          `json:"is_primary_key" yaml:"is_primary_key"`
	Columns      []IndexColumn `json:"columns" yaml:"columns"`
}

// HasColumn reports whether the index covers columnName.
func (i *Index) HasColumn(columnName string) bool {
	for _, c := range i.Columns {
		if c.Name == columnName {
			return true
		}
	}
	return false
}

// IndexColumn is one column of an index, in index position order.
type IndexColumn struct {
	Name string `json:"name" yaml:"name"`
}

// Relation is one directional side of an association between two columns.
// Inferred relations always come in pairs that mirror each other's table and column.
type Relation struct {
	OwnerTable      string       `json:"owner_table" yaml:"owner_table"`
	OwnerColumn     string       `json:"owner_column" yaml:"owner_column"`
	RelatedTable    string       `json:"related_table" yaml:"related_table"`
	RelatedColumn   string       `json:"related_column" yaml:"related_column"`
	RelationType    RelationType `json:"relation_type" yaml:"relation_type"`
	IsOwner         bool         `json:"is_owner" yaml:"is_owner"`
	ActionOnDelete  string       `json:"action_on_delete" yaml:"action_on_delete"`
	ActionOnUpdate  string       `json:"action_on_update" yaml:"action_on_update"`
	ConstraintName  string       `json:"constraint_name,omitempty" yaml:"constraint_name,omitempty"`
	InverseProperty string       `json:"inverse_property" yaml:"inverse_property"` // column on the other side holding the mirror record
}

// RelationTemp accumulates every column pair of one foreign-key constraint.
// Only the first pair drives cardinality and naming; the rest are kept for composite keys.
type RelationTemp struct {
	ConstraintName        string
	OwnerTable            string
	ReferencedTable       string
	OwnerColumnNames      []string
	ReferencedColumnNames []string
	ActionOnDelete        string
	ActionOnUpdate        string
}

// IsComposite reports whether the constraint spans more than one column pair.
func (r *RelationTemp) IsComposite() bool {
	return len(r.OwnerColumnNames) > 1
}
