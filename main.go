package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
	_ "github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog/mssql"
	_ "github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog/oracle"
	_ "github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog/postgres"
	"github.com/ekaya-inc/ekaya-modeler/pkg/config"
	"github.com/ekaya-inc/ekaya-modeler/pkg/logging"
	"github.com/ekaya-inc/ekaya-modeler/pkg/models"
	"github.com/ekaya-inc/ekaya-modeler/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

// cliOptions holds flag values shared by the subcommands.
type cliOptions struct {
	configFile  string
	envFile     string
	source      string
	fixture     string
	format      string
	out         string
	diagnostics bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Usage is shown for flag parse errors only; commands set SilenceUsage once running.
	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "ekaya-modeler",
		Short: "Build an entity model from a relational database catalog",
		Long: `ekaya-modeler reads the catalog of an Oracle, PostgreSQL or SQL Server database
(or a snapshot file of one), maps column types to portable semantic types and infers
one-to-one, many-to-one and one-to-many relations from foreign keys and unique indexes.`,
		Version: Version,
	}
	root.SetOut(stdout)

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "config.yaml", "Path to configuration file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file loaded before configuration")
	root.PersistentFlags().StringVarP(&opts.source, "source", "s", "", "Catalog source: fixture, oracle, postgres or sqlserver (overrides config)")
	root.PersistentFlags().StringVar(&opts.fixture, "fixture", "", "Snapshot file to read; implies --source fixture")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "", "Output format: yaml or json (overrides config)")
	root.PersistentFlags().StringVarP(&opts.out, "out", "o", "", "Output file; stdout when empty (overrides config)")

	introspect := &cobra.Command{
		Use:   "introspect",
		Short: "Read the catalog and write the entity model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runIntrospect(cmd, opts)
		},
	}
	introspect.Flags().BoolVar(&opts.diagnostics, "diagnostics", false, "Write diagnostics next to the model")

	snapshot := &cobra.Command{
		Use:   "snapshot",
		Short: "Read the catalog and write the raw rows as a snapshot file",
		Long: `snapshot captures the four catalog row sets of a live database so they can be
modeled later, or checked in as a test fixture, with --source fixture.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runSnapshot(cmd, opts)
		},
	}

	dialects := &cobra.Command{
		Use:   "dialects",
		Short: "List the available catalog readers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, info := range catalog.RegisteredReaders() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", info.Type, info.Description)
			}
			return nil
		},
	}

	root.AddCommand(introspect, snapshot, dialects)
	return root
}

// setup loads .env and configuration, applies flag overrides and builds the logger.
func setup(opts *cliOptions) (*config.Config, *zap.Logger, error) {
	if opts.envFile != "" {
		// A missing .env file is normal outside local development.
		if err := godotenv.Load(opts.envFile); err != nil && !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("failed to load %s: %w", opts.envFile, err)
		}
	}

	cfg, err := config.Load(opts.configFile, Version, func(c *config.Config) {
		if opts.fixture != "" {
			c.Source = config.SourceFixture
			c.FixturePath = opts.fixture
		}
		if opts.source != "" {
			c.Source = opts.source
		}
		if opts.format != "" {
			c.Output.Format = opts.format
		}
		if opts.out != "" {
			c.Output.Path = opts.out
		}
		if opts.diagnostics {
			c.Output.IncludeDiagnostics = true
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func openReader(ctx context.Context, cfg *config.Config, logger *zap.Logger) (catalog.Reader, error) {
	logger.Info("Opening catalog",
		zap.String("source", cfg.Source),
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
		zap.String("version", cfg.Version))

	reader, err := catalog.NewReader(ctx, cfg.Source, cfg.ReaderConfig(), logger)
	if err != nil {
		logger.Error("Failed to open catalog", zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to open %s catalog: %w", cfg.Source, err)
	}
	return reader, nil
}

func runIntrospect(cmd *cobra.Command, opts *cliOptions) error {
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	reader, err := openReader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	svc := services.NewIntrospectionService(services.ModelingOptions{
		DropQuotedDefaults: !cfg.Modeling.KeepQuotedDefaults,
		InflectCollections: !cfg.Modeling.LiteralPlurals,
	}, logger)

	result, err := svc.Introspect(ctx, reader)
	if err != nil {
		return err
	}

	for _, d := range result.Diagnostics {
		logDiagnostic(logger, d)
	}

	var v any = result.Model
	if cfg.Output.IncludeDiagnostics {
		v = result
	}
	return writeOutput(cmd.OutOrStdout(), cfg.Output, v)
}

func runSnapshot(cmd *cobra.Command, opts *cliOptions) error {
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()
	reader, err := openReader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer reader.Close()

	snapshot, err := catalog.ReadSnapshot(ctx, reader)
	if err != nil {
		return err
	}

	logger.Info("Catalog read",
		zap.Int("tables", len(snapshot.Tables)),
		zap.Int("columns", len(snapshot.Columns)),
		zap.Int("index_columns", len(snapshot.Indexes)),
		zap.Int("foreign_key_columns", len(snapshot.ForeignKeys)))

	return writeOutput(cmd.OutOrStdout(), cfg.Output, snapshot)
}

func logDiagnostic(logger *zap.Logger, d models.Diagnostic) {
	fields := []zap.Field{
		zap.String("kind", d.Kind),
		zap.String("table", d.Table),
	}
	if d.Column != "" {
		fields = append(fields, zap.String("column", d.Column))
	}
	if d.Constraint != "" {
		fields = append(fields, zap.String("constraint", d.Constraint))
	}
	if d.Severity == models.SeverityInfo {
		logger.Info(d.Message, fields...)
		return
	}
	logger.Warn(d.Message, fields...)
}

// writeOutput writes v to out.Path, or to stdout when no path is set.
func writeOutput(stdout io.Writer, out config.OutputConfig, v any) error {
	if out.Path == "" {
		return services.WriteModel(stdout, out.Format, v)
	}

	f, err := os.Create(out.Path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out.Path, err)
	}
	if err := services.WriteModel(f, out.Format, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
