package typemap

import "github.com/ekaya-inc/ekaya-modeler/pkg/models"

func oracleTypeInfo(sqlType string) (TypeInfo, bool) {
	switch sqlType {
	// Character types
	case "char", "nchar", "nvarchar2", "varchar2":
		return TypeInfo{Semantic: models.SemanticString, HasLength: true}, true
	case "long", "clob", "nclob":
		return TypeInfo{Semantic: models.SemanticString}, true

	// Binary types
	case "raw":
		return TypeInfo{Semantic: models.SemanticBinary, HasLength: true}, true
	case "long raw", "bfile", "blob":
		return TypeInfo{Semantic: models.SemanticBinary}, true

	// Numeric types
	case "number", "numeric", "float", "dec", "decimal", "real", "double precision":
		return TypeInfo{Semantic: models.SemanticNumber, HasPrecision: true}, true
	case "integer", "int", "smallint":
		return TypeInfo{Semantic: models.SemanticNumber}, true

	// Date/Time types
	case "date":
		return TypeInfo{Semantic: models.SemanticDate}, true
	case "timestamp", "timestamp with time zone", "timestamp with local time zone":
		return TypeInfo{Semantic: models.SemanticDate, HasPrecision: true}, true

	// Intervals have no portable semantic type
	case "interval year to month", "interval day to second":
		return TypeInfo{Semantic: models.SemanticString}, true

	// Row identifiers
	case "rowid", "urowid":
		return TypeInfo{Semantic: models.SemanticNumber}, true

	default:
		return TypeInfo{}, false
	}
}
