package typemap

import "github.com/ekaya-inc/ekaya-modeler/pkg/models"

func postgresTypeInfo(sqlType string) (TypeInfo, bool) {
	switch sqlType {
	// Character types
	case "character varying", "varchar", "character", "char", "bpchar":
		return TypeInfo{Semantic: models.SemanticString, HasLength: true}, true
	case "text", "citext", "name", "uuid", "json", "jsonb", "xml", "inet", "cidr", "macaddr", "tsvector":
		return TypeInfo{Semantic: models.SemanticString}, true

	// Binary types
	case "bytea":
		return TypeInfo{Semantic: models.SemanticBinary}, true

	// Numeric types
	case "numeric", "decimal":
		return TypeInfo{Semantic: models.SemanticNumber, HasPrecision: true}, true
	case "smallint", "integer", "bigint", "int2", "int4", "int8", "real", "double precision",
		"float4", "float8", "smallserial", "serial", "bigserial", "money", "oid":
		return TypeInfo{Semantic: models.SemanticNumber}, true

	// Boolean
	case "boolean", "bool":
		return TypeInfo{Semantic: models.SemanticBoolean}, true

	// Date/Time types
	case "date":
		return TypeInfo{Semantic: models.SemanticDate}, true
	case "timestamp", "timestamp without time zone", "timestamp with time zone", "timestamptz":
		return TypeInfo{Semantic: models.SemanticDate, HasPrecision: true}, true
	case "time", "time without time zone", "time with time zone", "timetz", "interval":
		return TypeInfo{Semantic: models.SemanticString}, true

	default:
		return TypeInfo{}, false
	}
}
