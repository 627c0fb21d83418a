package mssql

import (
	"fmt"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
)

// Config contains SQL Server connection options. Only SQL authentication is supported.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Schema   string

	// Encrypt and TrustServerCertificate are derived from ssl_mode:
	// "disable" turns encryption off, "require" encrypts without verifying the
	// certificate, anything else encrypts and verifies.
	Encrypt                bool
	TrustServerCertificate bool
	// ConnectionTimeout is in seconds.
	ConnectionTimeout int
}

// DefaultPort returns the default SQL Server port.
func DefaultPort() int {
	return 1433
}

// DefaultConnectionTimeout returns the default connection timeout in seconds.
func DefaultConnectionTimeout() int {
	return 30
}

// DefaultSchema returns the schema read when none is configured.
func DefaultSchema() string {
	return "dbo"
}

// FromMap creates a Config from a generic config map.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		Port:              DefaultPort(),
		Schema:            DefaultSchema(),
		Encrypt:           true,
		ConnectionTimeout: DefaultConnectionTimeout(),
	}

	var ok bool
	if cfg.Host, ok = catalog.StringOption(config, "host"); !ok {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Database, ok = catalog.StringOption(config, "database"); !ok {
		return nil, fmt.Errorf("database is required")
	}
	if cfg.User, ok = catalog.StringOption(config, "user"); !ok {
		if cfg.User, ok = catalog.StringOption(config, "username"); !ok {
			return nil, fmt.Errorf("user is required for SQL authentication")
		}
	}
	cfg.Password, _ = catalog.StringOption(config, "password")

	if schema, ok := catalog.StringOption(config, "schema"); ok {
		cfg.Schema = schema
	}

	if sslMode, ok := catalog.StringOption(config, "ssl_mode"); ok {
		switch sslMode {
		case "disable":
			cfg.Encrypt = false
		case "require":
			cfg.TrustServerCertificate = true
		}
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
	if ok && timeout > 0 {
		cfg.ConnectionTimeout = timeout
	}

	return cfg, nil
}
