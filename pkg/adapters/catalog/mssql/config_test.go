package mssql

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap(t *testing.T) {
	tests := []struct {
		name      string
		config    map[string]any
		wantPort  int
		wantUser  string
		encrypt   bool
		trustCert bool
		schema    string
	}{
		{
			name:     "defaults",
			config:   map[string]any{"host": "sql01", "user": "sa", "database": "Shop"},
			wantPort: 1433, wantUser: "sa", encrypt: true, schema: "dbo",
		},
		{
			name:     "username alias and schema",
			config:   map[string]any{"host": "sql01", "username": "modeler", "database": "Shop", "schema": "sales", "port": float64(14330)},
			wantPort: 14330, wantUser: "modeler", encrypt: true, schema: "sales",
		},
		{
			name:     "ssl disabled",
			config:   map[string]any{"host": "localhost", "user": "sa", "database": "Shop", "ssl_mode": "disable"},
			wantPort: 1433, wantUser: "sa", encrypt: false, schema: "dbo",
		},
		{
			name:     "ssl require trusts certificate",
			config:   map[string]any{"host": "localhost", "user": "sa", "database": "Shop", "ssl_mode": "require"},
			wantPort: 1433, wantUser: "sa", encrypt: true, trustCert: true, schema: "dbo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromMap(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPort, cfg.Port)
			assert.Equal(t, tt.wantUser, cfg.User)
			assert.Equal(t, tt.encrypt, cfg.Encrypt)
			assert.Equal(t, tt.trustCert, cfg.TrustServerCertificate)
			assert.Equal(t, tt.schema, cfg.Schema)
			assert.Equal(t, DefaultConnectionTimeout(), cfg.ConnectionTimeout)
		})
	}
}

func TestFromMap_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		wantErr string
	}{
		{name: "missing host", config: map[string]any{"user": "sa", "database": "d"}, wantErr: "host is required"},
		{name: "missing database", config: map[string]any{"host": "h", "user": "sa"}, wantErr: "database is required"},
		{name: "missing user", config: map[string]any{"host": "h", "database": "d"}, wantErr: "user is required"},
		{name: "bad port", config: map[string]any{"host": "h", "user": "sa", "database": "d", "port": true}, wantErr: "port must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildConnectionString(t *testing.T) {
	connStr := buildConnectionString(&Config{
		Host:                   "sql01",
		Port:                   1433,
		User:                   "modeler",
		Password:               "p@ss;word",
		Database:               "Shop",
		Encrypt:                true,
		TrustServerCertificate: true,
		ConnectionTimeout:      15,
	})

	u, err := url.Parse(connStr)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "sql01:1433", u.Host)
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss;word", password)

	q := u.Query()
	assert.Equal(t, "Shop", q.Get("database"))
	assert.Equal(t, "true", q.Get("encrypt"))
	assert.Equal(t, "true", q.Get("TrustServerCertificate"))
	assert.Equal(t, "15", q.Get("connection timeout"))
}

func TestBuildConnectionString_EncryptionDisabled(t *testing.T) {
	connStr := buildConnectionString(&Config{Host: "localhost", Port: 1433, User: "sa", Database: "Shop"})

	u, err := url.Parse(connStr)
	require.NoError(t, err)
	assert.Equal(t, "disable", u.Query().Get("encrypt"))
	assert.False(t, u.Query().Has("TrustServerCertificate"))
}
