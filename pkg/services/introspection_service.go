package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
	"github.com/ekaya-inc/ekaya-modeler/pkg/typemap"
)

// ModelingOptions tunes how catalog rows become a model.
type ModelingOptions struct {
	// DropQuotedDefaults discards column defaults containing a double quote.
	DropQuotedDefaults bool
	// InflectCollections names collection navigation columns with English plurals
	// instead of appending a literal "s".
	InflectCollections bool
}

// DefaultModelingOptions returns the options used when nothing is configured.
func DefaultModelingOptions() ModelingOptions {
	return ModelingOptions{
		DropQuotedDefaults: true,
		InflectCollections: true,
	}
}

// IntrospectionService builds an entity model from catalog data.
type IntrospectionService interface {
	// Build runs the full pipeline over an already-read snapshot.
	Build(dialect string, snapshot *catalog.Snapshot) (*models.Result, error)

	// Introspect reads a snapshot from reader and builds it.
	Introspect(ctx context.Context, reader catalog.Reader) (*models.Result, error)
}

type introspectionService struct {
	opts   ModelingOptions
	logger *zap.Logger
}

// NewIntrospectionService creates an IntrospectionService.
func NewIntrospectionService(opts ModelingOptions, logger *zap.Logger) IntrospectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &introspectionService{
		opts:   opts,
		logger: logger.Named("introspection"),
	}
}

var _ IntrospectionService = (*introspectionService)(nil)

func (s *introspectionService) Introspect(ctx context.Context, reader catalog.Reader) (*models.Result, error) {
	snapshot, err := catalog.ReadSnapshot(ctx, reader)
	if err != nil {
		return nil, err
	}
	return s.Build(reader.Dialect(), snapshot)
}

// Build runs the stages in order: entities, columns, indexes, relations.
// Indexes must be attached before relations since they decide cardinality.
func (s *introspectionService) Build(dialect string, snapshot *catalog.Snapshot) (*models.Result, error) {
	if snapshot == nil {
		snapshot = &catalog.Snapshot{}
	}
	if dialect == "" {
		dialect = snapshot.Dialect
	}

	mapper, err := typemap.ForDialect(dialect)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	logger := s.logger.With(zap.String("run_id", runID.String()), zap.String("dialect", mapper.Dialect()))

	assembler := NewEntityAssembler(mapper, s.opts.DropQuotedDefaults, logger)
	inferrer := NewRelationInferrer(NewNamingResolver(s.opts.InflectCollections), logger)

	entities := assembler.BuildEntities(snapshot.Tables)
	entities, diags := assembler.AttachColumns(entities, snapshot.Columns)
	entities = assembler.AttachIndexes(entities, snapshot.Indexes)
	entities, relDiags, err := inferrer.InferRelations(entities, snapshot.ForeignKeys)
	diags = append(diags, relDiags...)
	if err != nil {
		logger.Error("Model build failed", zap.Error(err))
		return nil, fmt.Errorf("build model: %w", err)
	}

	result := &models.Result{
		Model: &models.Model{
			RunID:    runID,
			Dialect:  mapper.Dialect(),
			Entities: entities,
		},
		Diagnostics: diags,
	}
	if result.Diagnostics == nil {
		result.Diagnostics = []models.Diagnostic{}
	}

	logger.Info("Model built",
		zap.Int("entities", len(entities)),
		zap.Int("relations", countOwnerRelations(entities)),
		zap.Int("unrecognized_types", len(result.DiagnosticsOfKind(models.DiagnosticUnrecognizedType))),
		zap.Int("dangling_relations", len(result.DiagnosticsOfKind(models.DiagnosticDanglingRelation))))

	return result, nil
}

func countOwnerRelations(entities []*models.Entity) int {
	n := 0
	for _, e := range entities {
		for _, c := range e.Columns {
			for _, r := range c.Relations {
				if r.IsOwner {
					n++
				}
			}
		}
	}
	return n
}
