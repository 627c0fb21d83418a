package postgres

import (
	"fmt"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
)

// Config contains PostgreSQL connection options.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Schema   string
	SSLMode  string // "disable", "require", "verify-ca", "verify-full"
	// ConnectionTimeout is in seconds.
	ConnectionTimeout int
}

// DefaultPort returns the default PostgreSQL port.
func DefaultPort() int {
	return 5432
}

// DefaultSSLMode returns the default SSL mode.
func DefaultSSLMode() string {
	return "require"
}

// DefaultSchema returns the schema read when none is configured.
func DefaultSchema() string {
	return "public"
}

// FromMap creates a Config from a generic config map.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		Port:    DefaultPort(),
		SSLMode: DefaultSSLMode(),
		Schema:  DefaultSchema(),
	}

	var ok bool
	if cfg.Host, ok = catalog.StringOption(config, "host"); !ok {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.User, ok = catalog.StringOption(config, "user"); !ok {
		return nil, fmt.Errorf("user is required")
	}
	if cfg.Database, ok = catalog.StringOption(config, "database"); !ok {
		return nil, fmt.Errorf("database is required")
	}
	cfg.Password, _ = catalog.StringOption(config, "password")

	if schema, ok := catalog.StringOption(config, "schema"); ok {
		cfg.Schema = schema
	}
	if sslMode, ok := catalog.StringOption(config, "ssl_mode"); ok {
		cfg.SSLMode = sslMode
	}

	port, ok, err := catalog.IntOption(config, "port")
	if err != nil {
		return nil, err
	}
	if ok {
		cfg.Port = port
	}

	timeout, ok, err := catalog.IntOption(config, "connection_timeout")
	if err != nil {
		return nil, err
	}
	if ok {
		cfg.ConnectionTimeout = timeout
	}

	return cfg, nil
}
