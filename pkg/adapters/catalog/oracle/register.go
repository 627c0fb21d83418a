package oracle

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
	"github.com/ekaya-inc/ekaya-modeler/pkg/typemap"
)

func init() {
	catalog.Register(catalog.ReaderRegistration{
		Info: catalog.ReaderInfo{
			Type:        typemap.DialectOracle,
			DisplayName: "Oracle Database",
			Description: "Read the connected user's schema from the Oracle data dictionary",
		},
		Factory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (catalog.Reader, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			return NewReader(ctx, cfg, logger)
		},
	})
}
