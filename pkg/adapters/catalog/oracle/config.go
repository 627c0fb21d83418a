package oracle

import (
	"fmt"

	"github.com/ekaya-inc/ekaya-modeler/pkg/adapters/catalog"
)

// Config contains Oracle connection options. The catalog read covers the schema of
// the connecting user.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	// Service is the service name (e.g. ORCLPDB1), taken from "service" or "database".
	Service string
	// ConnectionTimeout is in seconds.
	ConnectionTimeout int
}

// DefaultPort returns the default Oracle listener port.
func DefaultPort() int {
	return 1521
}

// DefaultConnectionTimeout returns the default connection timeout in seconds.
func DefaultConnectionTimeout() int {
	return 30
}

// FromMap creates a Config from a generic config map.
func FromMap(config map[string]any) (*Config, error) {
	cfg := &Config{
		Port:              DefaultPort(),
		ConnectionTimeout: DefaultConnectionTimeout(),
	}

	var ok bool
	if cfg.Host, ok = catalog.StringOption(config, "host"); !ok {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.User, ok = catalog.StringOption(config, "user"); !ok {
		return nil, fmt.Errorf("user is required")
	}
	cfg.Password, _ = catalog.StringOption(config, "password")

	if service, ok := catalog.StringOption(config, "service"); ok {
		cfg.Service = service
	} else if database, ok := catalog.StringOption(config, "database"); ok {
		cfg.Service = database
	} else {
		return nil, fmt.Errorf("service is required")
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
