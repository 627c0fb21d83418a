package mssql

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
	"github.com/ekaya-inc/ekaya-modeler/pkg/typemap"
)

func init() {
	catalog.Register(catalog.ReaderRegistration{
		Info: catalog.ReaderInfo{
			Type:        typemap.DialectSQLServer,
			DisplayName: "Microsoft SQL Server",
			Description: "Read one schema of SQL Server 2016+ or Azure SQL Database",
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
