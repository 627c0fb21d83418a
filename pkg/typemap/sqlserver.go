package typemap

import "github.com/ekaya-inc/ekaya-modeler/pkg/models"

func sqlServerTypeInfo(sqlType string) (TypeInfo, bool) {
	switch sqlType {
	// Character types
	case "char", "varchar", "nchar", "nvarchar":
		return TypeInfo{Semantic: models.SemanticString, HasLength: true}, true
	case "text", "ntext", "uniqueidentifier", "xml", "sysname", "json":
		return TypeInfo{Semantic: models.SemanticString}, true

	// Binary types
	case "binary", "varbinary":
		return TypeInfo{Semantic: models.SemanticBinary, HasLength: true}, true
	case "image", "timestamp", "rowversion":
		return TypeInfo{Semantic: models.SemanticBinary}, true

	// Numeric types
	case "decimal", "numeric", "float":
		return TypeInfo{Semantic: models.SemanticNumber, HasPrecision: true}, true
	case "tinyint", "smallint", "int", "bigint", "real", "money", "smallmoney":
		return TypeInfo{Semantic: models.SemanticNumber}, true

	// Boolean
	case "bit":
		return TypeInfo{Semantic: models.SemanticBoolean}, true

	// Date/Time types
	case "date", "datetime", "smalldatetime":
		return TypeInfo{Semantic: models.SemanticDate}, true
	case "datetime2", "datetimeoffset":
		return TypeInfo{Semantic: models.SemanticDate, HasPrecision: true}, true
	case "time":
		return TypeInfo{Semantic: models.SemanticString}, true

	default:
		return TypeInfo{}, false
	}
}
