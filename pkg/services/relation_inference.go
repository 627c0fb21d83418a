package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-modeler/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
)

// RelationInferrer turns foreign-key rows into paired relations on assembled entities.
type RelationInferrer struct {
	naming NamingResolver
	logger *zap.Logger
}

// NewRelationInferrer creates a RelationInferrer.
// If logger is nil, a no-op logger is used.
func NewRelationInferrer(naming NamingResolver, logger *zap.Logger) *RelationInferrer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelationInferrer{
		naming: naming,
		logger: logger.Named("relation-inference"),
	}
}

// GroupConstraints folds foreign-key rows into one RelationTemp per constraint, keyed by
// owner table and constraint name, in first-seen order. Column pairs keep row order.
// The update action is not in the catalog and is always NO ACTION.
func (r *RelationInferrer) GroupConstraints(rows []models.ForeignKeyRow) []*models.RelationTemp {
	type key struct{ table, constraint string }

	index := make(map[key]*models.RelationTemp)
	var temps []*models.RelationTemp
	for _, row := range rows {
		k := key{row.OwnerTable, row.ConstraintName}
		temp, ok := index[k]
		if !ok {
			temp = &models.RelationTemp{
				ConstraintName:  row.ConstraintName,
				OwnerTable:      row.OwnerTable,
				ReferencedTable: row.ReferencedTable,
				ActionOnDelete:  row.DeleteRule,
				ActionOnUpdate:  models.ActionNoAction,
			}
			index[k] = temp
			temps = append(temps, temp)
		}
		temp.OwnerColumnNames = append(temp.OwnerColumnNames, row.OwnerColumn)
		temp.ReferencedColumnNames = append(temp.ReferencedColumnNames, row.ReferencedColumn)
	}
	return temps
}

// InferRelations attaches an owner-side relation to each foreign-key column and a
// synthesized navigation column holding the reciprocal relation to the referenced entity.
//
// A relation is OneToOne when the owner column is covered by a unique index of the owner
// entity and ManyToOne otherwise. Only the first column pair of a composite constraint is
// used. Constraints whose tables or columns cannot be resolved are skipped and reported;
// the returned error is reserved for naming exhaustion.
func (r *RelationInferrer) InferRelations(entities []*models.Entity, rows []models.ForeignKeyRow) ([]*models.Entity, []models.Diagnostic, error) {
	byName := make(map[string]*models.Entity, len(entities))
	for _, e := range entities {
		byName[e.Name] = e
	}

	var diags []models.Diagnostic
	for _, temp := range r.GroupConstraints(rows) {
		diag, err := r.inferOne(byName, temp)
		if err != nil {
			return entities, diags, err
		}
		if diag != nil {
			diags = append(diags, *diag)
		}
	}
	return entities, diags, nil
}

// inferOne processes one constraint. It returns a diagnostic when the constraint was
// skipped or reduced, and an error only on naming exhaustion.
func (r *RelationInferrer) inferOne(byName map[string]*models.Entity, temp *models.RelationTemp) (*models.Diagnostic, error) {
	ownerEntity := byName[temp.OwnerTable]
	if ownerEntity == nil {
		return r.dangling(temp, temp.OwnerTable, firstOrEmpty(temp.OwnerColumnNames),
			fmt.Sprintf("entity %s not found", temp.OwnerTable)), nil
	}
	referencedEntity := byName[temp.ReferencedTable]
	if referencedEntity == nil {
		return r.dangling(temp, temp.ReferencedTable, firstOrEmpty(temp.ReferencedColumnNames),
			fmt.Sprintf("entity %s not found", temp.ReferencedTable)), nil
	}

	ownerColumnName := firstOrEmpty(temp.OwnerColumnNames)
	ownerColumn := findCatalogColumn(ownerEntity, ownerColumnName)
	if ownerColumn == nil {
		return r.dangling(temp, temp.OwnerTable, ownerColumnName,
			fmt.Sprintf("column %s.%s not found", temp.OwnerTable, ownerColumnName)), nil
	}
	referencedColumnName := firstOrEmpty(temp.ReferencedColumnNames)
	referencedColumn := findCatalogColumn(referencedEntity, referencedColumnName)
	if referencedColumn == nil {
		return r.dangling(temp, temp.ReferencedTable, referencedColumnName,
			fmt.Sprintf("column %s.%s not found", temp.ReferencedTable, referencedColumnName)), nil
	}

	relationType := models.RelationManyToOne
	if ownerEntity.HasUniqueIndexOn(ownerColumn.Name) {
		relationType = models.RelationOneToOne
	}

	propertyName, err := r.naming.Resolve(strings.ToLower(ownerEntity.Name),
		relationType.Inverse().IsCollection(), referencedEntity.ColumnNames())
	if err != nil {
		return nil, fmt.Errorf("name navigation column on %s for constraint %s: %w",
			referencedEntity.Name, temp.ConstraintName, err)
	}

	ownerColumn.Relations = append(ownerColumn.Relations, &models.Relation{
		OwnerTable:      ownerEntity.Name,
		OwnerColumn:     ownerColumn.Name,
		RelatedTable:    referencedEntity.Name,
		RelatedColumn:   referencedColumn.Name,
		RelationType:    relationType,
		IsOwner:         true,
		ActionOnDelete:  temp.ActionOnDelete,
		ActionOnUpdate:  temp.ActionOnUpdate,
		ConstraintName:  temp.ConstraintName,
		InverseProperty: propertyName,
	})

	referencedEntity.Columns = append(referencedEntity.Columns, &models.Column{
		Name:          propertyName,
		SemanticType:  models.SemanticRelation,
		IsSynthesized: true,
		Relations: []*models.Relation{{
			OwnerTable:      referencedEntity.Name,
			OwnerColumn:     referencedColumn.Name,
			RelatedTable:    ownerEntity.Name,
			RelatedColumn:   ownerColumn.Name,
			RelationType:    relationType.Inverse(),
			IsOwner:         false,
			ActionOnDelete:  temp.ActionOnDelete,
			ActionOnUpdate:  temp.ActionOnUpdate,
			ConstraintName:  temp.ConstraintName,
			InverseProperty: ownerColumn.Name,
		}},
	})

	r.logger.Debug("Inferred relation",
		zap.String("constraint", temp.ConstraintName),
		zap.String("owner", ownerEntity.Name+"."+ownerColumn.Name),
		zap.String("referenced", referencedEntity.Name+"."+referencedColumn.Name),
		zap.String("relation_type", string(relationType)),
		zap.String("property", propertyName))

	if temp.IsComposite() {
		r.logger.Info("Composite foreign key reduced to its first column pair",
			zap.String("constraint", temp.ConstraintName),
			zap.Strings("owner_columns", temp.OwnerColumnNames))
		return &models.Diagnostic{
			Kind:         models.DiagnosticCompositeKeyReduced,
			Severity:     models.SeverityInfo,
			Table:        temp.OwnerTable,
			Column:       ownerColumn.Name,
			RelatedTable: temp.ReferencedTable,
			Constraint:   temp.ConstraintName,
			Message: fmt.Sprintf("constraint %s spans columns (%s); relation uses %s only",
				temp.ConstraintName, strings.Join(temp.OwnerColumnNames, ", "), ownerColumn.Name),
		}, nil
	}
	return nil, nil
}

func (r *RelationInferrer) dangling(temp *models.RelationTemp, table, column, detail string) *models.Diagnostic {
	msg := fmt.Sprintf("relation between tables %s and %s: %s", temp.OwnerTable, temp.ReferencedTable, detail)
	r.logger.Warn("Skipping dangling relation",
		zap.String("constraint", temp.ConstraintName),
		zap.String("owner_table", temp.OwnerTable),
		zap.String("referenced_table", temp.ReferencedTable),
		zap.String("missing_table", table),
		zap.String("missing_column", column))
	return &models.Diagnostic{
		Kind:         models.DiagnosticDanglingRelation,
		Severity:     models.SeverityWarning,
		Table:        temp.OwnerTable,
		Column:       column,
		RelatedTable: temp.ReferencedTable,
		Constraint:   temp.ConstraintName,
		Message:      msg,
		Err:          fmt.Errorf("%s: %w", msg, apperrors.ErrDanglingRelation),
	}
}

// findCatalogColumn finds a column that came from the catalog, ignoring synthesized ones.
func findCatalogColumn(e *models.Entity, name string) *models.Column {
	for _, c := range e.Columns {
		if c.Name == name && !c.IsSynthesized {
			return c
		}
	}
	return nil
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
