package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for ekaya-modeler.
// Configuration can come from a YAML file or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Source is the catalog reader type: fixture, oracle, postgres or sqlserver.
	Source string `yaml:"source" env:"MODELER_SOURCE" env-default:"fixture"`

	// FixturePath is the snapshot file read when Source is fixture.
	FixturePath string `yaml:"fixture_path" env:"MODELER_FIXTURE_PATH" env-default:""`

	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration for live catalog readers
	Database DatabaseConfig `yaml:"database"`

	Modeling ModelingConfig `yaml:"modeling"`
	Output   OutputConfig   `yaml:"output"`
}

// DatabaseConfig holds connection settings for the catalog database.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"0"` // 0 uses the dialect's default port
	User     string `yaml:"user" env:"DB_USER" env-default:""`
	Password string `yaml:"-" env:"DB_PASSWORD"` // Secret - not in YAML
	// Database is the database name, or the service name for Oracle.
	Database string `yaml:"database" env:"DB_NAME" env-default:""`
	// Schema limits postgres and sqlserver readers to one schema. Oracle reads the
	// connected user's schema.
	Schema            string `yaml:"schema" env:"DB_SCHEMA" env-default:""`
	SSLMode           string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
	ConnectionTimeout int    `yaml:"connection_timeout" env:"DB_CONNECTION_TIMEOUT" env-default:"30"`
}

// ModelingConfig tunes model building. Both switches default to false because
// cleanenv applies env-default over an explicit false in YAML.
type ModelingConfig struct {
	// KeepQuotedDefaults keeps column defaults containing a double quote. They are
	// dropped otherwise since they are usually expressions rather than literal values.
	KeepQuotedDefaults bool `yaml:"keep_quoted_defaults" env:"MODELER_KEEP_QUOTED_DEFAULTS" env-default:"false"`
	// LiteralPlurals names collection navigation columns by appending "s" instead of
	// using English plurals.
	LiteralPlurals bool `yaml:"literal_plurals" env:"MODELER_LITERAL_PLURALS" env-default:"false"`
}

// OutputConfig controls where and how the model is written.
type OutputConfig struct {
	Format string `yaml:"format" env:"MODELER_OUTPUT_FORMAT" env-default:"yaml"`
	// Path is the output file; empty writes to stdout.
	Path string `yaml:"path" env:"MODELER_OUTPUT_PATH" env-default:""`
	// IncludeDiagnostics writes the diagnostics next to the model.
	IncludeDiagnostics bool `yaml:"include_diagnostics" env:"MODELER_INCLUDE_DIAGNOSTICS" env-default:"false"`
}

// Override adjusts a loaded Config before validation, e.g. from command-line flags.
type Override func(*Config)

// Load reads configuration from path with environment variable overrides.
// An empty path, or one that does not exist, reads the environment only.
// The version parameter is injected at build time and set on the returned Config.
// Overrides run after the file and environment are read and before validation.
func Load(path, version string, overrides ...Override) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if path != "" && fileExists(path) {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	for _, override := range overrides {
		override(cfg)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
}

// Validate checks settings that do not depend on which readers are registered.
func (c *Config) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.Source == SourceFixture {
		if c.FixturePath == "" {
			return errors.New("fixture_path is required when source is fixture")
		}
		return nil
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required for source %s", c.Source)
	}
	if c.Database.Port < 0 {
		return fmt.Errorf("database.port must not be negative, got %d", c.Database.Port)
	}
	return nil
}

// SourceFixture is the reader type for snapshot files.
const SourceFixture = "fixture"

// ReaderConfig returns the generic settings map handed to the catalog reader factory.
func (c *Config) ReaderConfig() map[string]any {
	if c.Source == SourceFixture {
		return map[string]any{"path": c.FixturePath}
	}

	m := map[string]any{
		"host":               ResolveHostForDocker(c.Database.Host),
		"user":               c.Database.User,
		"password":           c.Database.Password,
		"database":           c.Database.Database,
		"ssl_mode":           c.Database.SSLMode,
		"connection_timeout": c.Database.ConnectionTimeout,
	}
	if c.Database.Port > 0 {
		m["port"] = c.Database.Port
	}
	if c.Database.Schema != "" {
		m["schema"] = c.Database.Schema
	}
	return m
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker reports whether /.dockerenv exists. The result is cached.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		isDockerResult = fileExists("/.dockerenv")
	})
	return isDockerResult
}

// ResolveHostForDocker maps localhost to host.docker.internal inside a container so the
// catalog database on the host machine stays reachable.
func ResolveHostForDocker(host string) string {
	if !IsRunningInDocker() {
		return host
	}
	if host == "localhost" || host == "127.0.0.1" {
		return "host.docker.internal"
	}
	return host
}
