// Package typemap maps engine-native column types to portable semantic types.
package typemap

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ekaya-inc/ekaya-modeler/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
)

// TypeInfo is the mapping of one engine type.
type TypeInfo struct {
	Semantic     models.SemanticType
	HasPrecision bool // numeric precision/scale are meaningful
	HasLength    bool // a maximum length is meaningful
}

// Mapper maps a normalized engine type (see NormalizeType) to its TypeInfo.
type Mapper interface {
	Dialect() string
	Map(sqlType string) (TypeInfo, error)
}

// Dialect names.
const (
	DialectOracle    = "oracle"
	DialectPostgres  = "postgres"
	DialectSQLServer = "sqlserver"
)

var dialectAliases = map[string]string{
	"postgresql": DialectPostgres,
	"pg":         DialectPostgres,
	"mssql":      DialectSQLServer,
}

type funcMapper struct {
	dialect string
	lookup  func(sqlType string) (TypeInfo, bool)
}

func (m funcMapper) Dialect() string {
	return m.dialect
}

func (m funcMapper) Map(sqlType string) (TypeInfo, error) {
	info, ok := m.lookup(sqlType)
	if !ok {
		return TypeInfo{Semantic: models.SemanticUnknown}, fmt.Errorf("%s type %q: %w", m.dialect, sqlType, apperrors.ErrUnrecognizedType)
	}
	return info, nil
}

var mappers = map[string]Mapper{
	DialectOracle:    funcMapper{dialect: DialectOracle, lookup: oracleTypeInfo},
	DialectPostgres:  funcMapper{dialect: DialectPostgres, lookup: postgresTypeInfo},
	DialectSQLServer: funcMapper{dialect: DialectSQLServer, lookup: sqlServerTypeInfo},
}

// Canonical lowercases a dialect name and resolves aliases such as "pg" and "mssql".
// Unknown names are returned lowercased.
func Canonical(dialect string) string {
	name := strings.ToLower(strings.TrimSpace(dialect))
	if alias, ok := dialectAliases[name]; ok {
		return alias
	}
	return name
}

// ForDialect returns the mapper for a dialect name (case-insensitive, aliases allowed).
func ForDialect(dialect string) (Mapper, error) {
	m, ok := mappers[Canonical(dialect)]
	if !ok {
		return nil, fmt.Errorf("type mapper for %q: %w", dialect, apperrors.ErrUnknownDialect)
	}
	return m, nil
}

// Dialects returns the supported dialect names, sorted.
func Dialects() []string {
	names := make([]string, 0, len(mappers))
	for name := range mappers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	typeArgsPattern = regexp.MustCompile(`\(([^)]*)\)`)
	spacePattern    = regexp.MustCompile(`\s+`)
	leadingDigits   = regexp.MustCompile(`^\d+`)
)

// NormalizeType lowercases a raw catalog type and strips every parenthesized argument list.
// The numeric arguments of the first list are returned as params, so
// "NUMBER(10,2)" gives ("number", [10 2]) and "TIMESTAMP(6) WITH TIME ZONE" gives
// ("timestamp with time zone", [6]). Non-numeric arguments such as MAX are skipped.
func NormalizeType(raw string) (string, []int) {
	var params []int
	if m := typeArgsPattern.FindStringSubmatch(raw); m != nil {
		for _, arg := range strings.Split(m[1], ",") {
			digits := leadingDigits.FindString(strings.TrimSpace(arg))
			if digits == "" {
				continue
			}
			if n, err := strconv.Atoi(digits); err == nil {
				params = append(params, n)
			}
		}
	}

	stripped := typeArgsPattern.ReplaceAllString(raw, " ")
	stripped = spacePattern.ReplaceAllString(strings.TrimSpace(stripped), " ")
	return strings.ToLower(stripped), params
}
