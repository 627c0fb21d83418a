package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv unsets every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MODELER_SOURCE", "MODELER_FIXTURE_PATH", "ENVIRONMENT", "LOG_LEVEL",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SCHEMA", "DB_SSLMODE",
		"DB_CONNECTION_TIMEOUT", "MODELER_KEEP_QUOTED_DEFAULTS", "MODELER_LITERAL_PLURALS",
		"MODELER_OUTPUT_FORMAT", "MODELER_OUTPUT_PATH", "MODELER_INCLUDE_DIAGNOSTICS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modeler.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
source: oracle
env: test
database:
  host: db.example.com
  port: 1521
  user: app
  database: ORCLPDB1
output:
  format: json
`)

	t.Setenv("DB_USER", "reporting")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load(path, "test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Database.User != "reporting" {
		t.Errorf("expected Database.User=reporting (from env), got %s", cfg.Database.User)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("expected Database.Password from env, got %q", cfg.Database.Password)
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("expected Database.Host=db.example.com (from yaml), got %s", cfg.Database.Host)
	}
	if cfg.Database.Port != 1521 {
		t.Errorf("expected Database.Port=1521, got %d", cfg.Database.Port)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected Output.Format=json, got %s", cfg.Output.Format)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
}

func TestLoad_PasswordNotReadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
source: postgres
database:
  host: localhost
  password: from-yaml
`)

	cfg, err := Load(path, "dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.Password != "" {
		t.Errorf("expected password to be ignored in YAML, got %q", cfg.Database.Password)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODELER_FIXTURE_PATH", "catalog.yaml")

	cfg, err := Load("", "dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Source != SourceFixture {
		t.Errorf("expected default Source=fixture, got %s", cfg.Source)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default LogLevel=info, got %s", cfg.LogLevel)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("expected default Output.Format=yaml, got %s", cfg.Output.Format)
	}
	if cfg.Modeling.KeepQuotedDefaults || cfg.Modeling.LiteralPlurals {
		t.Errorf("expected modeling switches off by default, got %+v", cfg.Modeling)
	}
	if cfg.Database.ConnectionTimeout != 30 {
		t.Errorf("expected default ConnectionTimeout=30, got %d", cfg.Database.ConnectionTimeout)
	}
}

func TestLoad_MissingConfigFileFallsBackToEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODELER_SOURCE", "SQLServer")
	t.Setenv("DB_HOST", "mssql.internal")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Source != "sqlserver" {
		t.Errorf("expected Source normalized to sqlserver, got %s", cfg.Source)
	}
}

func TestLoad_ModelingFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
fixture_path: snapshot.json
modeling:
  keep_quoted_defaults: true
  literal_plurals: true
`)

	cfg, err := Load(path, "dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.Modeling.KeepQuotedDefaults || !cfg.Modeling.LiteralPlurals {
		t.Errorf("expected modeling switches from YAML, got %+v", cfg.Modeling)
	}
}

func TestLoad_OverridesRunBeforeValidation(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", "dev", func(c *Config) {
		c.Source = " Postgres "
		c.Database.Host = "pg.internal"
		c.Output.Format = "JSON"
	})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Source != "postgres" {
		t.Errorf("expected overridden Source=postgres, got %q", cfg.Source)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected overridden Output.Format=json, got %q", cfg.Output.Format)
	}

	_, err = Load("", "dev", func(c *Config) { c.FixturePath = "" })
	if err == nil || !strings.Contains(err.Error(), "fixture_path is required") {
		t.Errorf("expected fixture_path validation error, got %v", err)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "fixture without path",
			yaml:    "source: fixture\n",
			wantErr: "fixture_path is required",
		},
		{
			name:    "negative port",
			yaml:    "source: oracle\ndatabase:\n  host: db\n  port: -1\n",
			wantErr: "database.port must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.yaml), "dev")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReaderConfig(t *testing.T) {
	fixture := &Config{Source: SourceFixture, FixturePath: "a.yaml"}
	if got := fixture.ReaderConfig(); got["path"] != "a.yaml" || len(got) != 1 {
		t.Errorf("unexpected fixture reader config: %v", got)
	}

	db := &Config{
		Source: "postgres",
		Database: DatabaseConfig{
			Host:              "db.internal",
			User:              "app",
			Password:          "pw",
			Database:          "shop",
			Schema:            "sales",
			SSLMode:           "require",
			ConnectionTimeout: 5,
		},
	}
	got := db.ReaderConfig()
	if _, ok := got["port"]; ok {
		t.Errorf("expected port to be omitted when unset, got %v", got["port"])
	}
	if got["schema"] != "sales" || got["password"] != "pw" || got["connection_timeout"] != 5 {
		t.Errorf("unexpected database reader config: %v", got)
	}

	db.Database.Port = 5433
	if got := db.ReaderConfig(); got["port"] != 5433 {
		t.Errorf("expected port 5433, got %v", got["port"])
	}
}

func TestResolveHostForDocker(t *testing.T) {
	for _, host := range []string{"localhost", "127.0.0.1", "db.internal"} {
		got := ResolveHostForDocker(host)
		if host == "db.internal" && got != host {
			t.Errorf("expected non-local host unchanged, got %s", got)
		}
		if IsRunningInDocker() && host != "db.internal" && got != "host.docker.internal" {
			t.Errorf("expected %s to map to host.docker.internal in docker, got %s", host, got)
		}
		if !IsRunningInDocker() && got != host {
			t.Errorf("expected %s unchanged outside docker, got %s", host, got)
		}
	}
}
