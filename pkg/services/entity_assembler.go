package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
	"github.com/ekaya-inc/ekaya-modeler/pkg/typemap"
)

// EntityAssembler builds entities from table rows and attaches columns and indexes.
// All operations only add to the entities passed in; nothing is removed.
type EntityAssembler struct {
	mapper             typemap.Mapper
	dropQuotedDefaults bool
	logger             *zap.Logger
}

// NewEntityAssembler creates an EntityAssembler for one dialect.
// If logger is nil, a no-op logger is used.
func NewEntityAssembler(mapper typemap.Mapper, dropQuotedDefaults bool, logger *zap.Logger) *EntityAssembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityAssembler{
		mapper:             mapper,
		dropQuotedDefaults: dropQuotedDefaults,
		logger:             logger.Named("entity-assembler"),
	}
}

// BuildEntities creates one entity per distinct table name, in first-seen order.
func (a *EntityAssembler) BuildEntities(tables []models.TableRow) []*models.Entity {
	seen := make(map[string]struct{}, len(tables))
	entities := make([]*models.Entity, 0, len(tables))
	for _, t := range tables {
		if _, ok := seen[t.Name]; ok {
			continue
		}
		seen[t.Name] = struct{}{}
		entities = append(entities, models.NewEntity(t.Name))
	}
	return entities
}

// AttachColumns maps each column row onto its entity in catalog order.
// Columns whose type cannot be mapped are left out and reported as diagnostics.
// Rows for tables without an entity are ignored.
func (a *EntityAssembler) AttachColumns(entities []*models.Entity, rows []models.ColumnRow) ([]*models.Entity, []models.Diagnostic) {
	byTable := groupByTable(rows, func(r models.ColumnRow) string { return r.Table })

	var diags []models.Diagnostic
	for _, ent := range entities {
		for _, row := range byTable[ent.Name] {
			col, err := a.buildColumn(row)
			if err != nil {
				a.logger.Warn("Skipping column with unknown type",
					zap.String("table", row.Table),
					zap.String("column", row.Name),
					zap.String("raw_type", row.RawType),
					zap.Error(err))
				diags = append(diags, models.Diagnostic{
					Kind:     models.DiagnosticUnrecognizedType,
					Severity: models.SeverityWarning,
					Table:    row.Table,
					Column:   row.Name,
					Message:  fmt.Sprintf("unknown column type %q on %s.%s", row.RawType, row.Table, row.Name),
					Err:      err,
				})
				continue
			}
			ent.Columns = append(ent.Columns, col)
		}
	}
	return entities, diags
}

func (a *EntityAssembler) buildColumn(row models.ColumnRow) (*models.Column, error) {
	sqlType, params := typemap.NormalizeType(row.RawType)
	info, err := a.mapper.Map(sqlType)
	if err != nil {
		return nil, err
	}

	col := &models.Column{
		Name:         row.Name,
		SQLType:      sqlType,
		SemanticType: info.Semantic,
		Nullable:     row.Nullable == models.NullableYes,
		IsGenerated:  row.IsIdentity == models.IdentityYes,
		IsUnique:     row.UniqueConstraintCount > 0,
		DefaultValue: a.defaultValue(row.RawDefault),
		Relations:    []*models.Relation{},
	}

	if info.HasPrecision {
		col.NumericPrecision, col.NumericScale = precisionAndScale(row, params)
		if info.Semantic == models.SemanticDate {
			col.NumericScale = nil
		}
	}
	if info.HasLength {
		if length := firstInt(row.Length, params, 0); length != nil && *length > 0 {
			col.Length = length
		}
	}
	return col, nil
}

func (a *EntityAssembler) defaultValue(raw *string) *string {
	if a.dropQuotedDefaults {
		return quotedDefaultRule(raw)
	}
	if raw == nil || *raw == "" {
		return nil
	}
	v := *raw
	return &v
}

// quotedDefaultRule drops absent, empty and double-quote containing defaults.
func quotedDefaultRule(raw *string) *string {
	if raw == nil || *raw == "" || strings.Contains(*raw, `"`) {
		return nil
	}
	v := *raw
	return &v
}

// precisionAndScale takes both values from the catalog row when it reports a precision,
// otherwise both from the type string parameters, so the pair never mixes sources.
// A row with only a scale (Oracle NUMBER(*,0)) keeps that scale.
func precisionAndScale(row models.ColumnRow, params []int) (*int, *int) {
	if row.Precision != nil || len(params) == 0 {
		return copyInt(row.Precision), copyInt(row.Scale)
	}
	return param(params, 0), param(params, 1)
}

// firstInt returns a copy of v, or params[i] when v is nil and params has it.
func firstInt(v *int, params []int, i int) *int {
	if v != nil {
		return copyInt(v)
	}
	return param(params, i)
}

func param(params []int, i int) *int {
	if i < len(params) {
		n := params[i]
		return &n
	}
	return nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// AttachIndexes groups index rows by index name onto their entities.
// Rows must arrive sorted by index name then column position; they are not re-sorted.
// The first row of an index decides its unique and primary-key flags.
func (a *EntityAssembler) AttachIndexes(entities []*models.Entity, rows []models.IndexRow) []*models.Entity {
	byTable := groupByTable(rows, func(r models.IndexRow) string { return r.Table })

	for _, ent := range entities {
		for _, row := range byTable[ent.Name] {
			idx := ent.FindIndex(row.IndexName)
			if idx == nil {
				idx = &models.Index{
					Name:         row.IndexName,
					IsUnique:     row.Uniqueness == models.UniquenessFlag,
					IsPrimaryKey: row.IsPrimaryKey == 1,
					Columns:      []models.IndexColumn{},
				}
				ent.Indexes = append(ent.Indexes, idx)
			}
			idx.Columns = append(idx.Columns, models.IndexColumn{Name: row.ColumnName})
		}
	}
	return entities
}

// groupByTable buckets rows by table name, keeping their relative order.
func groupByTable[T any](rows []T, table func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, r := range rows {
		name := table(r)
		out[name] = append(out[name], r)
	}
	return out
}
