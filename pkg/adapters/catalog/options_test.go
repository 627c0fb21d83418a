package catalog

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntOption(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		present bool
		wantErr bool
	}{
		{name: "missing", value: nil},
		{name: "int", value: 1521, want: 1521, present: true},
		{name: "json number", value: float64(5432), want: 5432, present: true},
		{name: "string", value: "1433", want: 1433, present: true},
		{name: "empty string", value: ""},
		{name: "bad string", value: "abc", wantErr: true},
		{name: "bad type", value: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := IntOption(map[string]any{"port": tt.value}, "port")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringOption(t *testing.T) {
	cfg := map[string]any{"host": "db", "empty": "", "num": 1}

	v, ok := StringOption(cfg, "host")
	assert.True(t, ok)
	assert.Equal(t, "db", v)

	_, ok = StringOption(cfg, "empty")
	assert.False(t, ok)
	_, ok = StringOption(cfg, "num")
	assert.False(t, ok)
	_, ok = StringOption(cfg, "missing")
	assert.False(t, ok)
}

func TestNullConversions(t *testing.T) {
	assert.Nil(t, NullIntPtr(sql.NullInt64{}))
	assert.Equal(t, 10, *NullIntPtr(sql.NullInt64{Int64: 10, Valid: true}))
	assert.Nil(t, NullStringPtr(sql.NullString{}))
	assert.Equal(t, "'NEW'", *NullStringPtr(sql.NullString{String: "'NEW'", Valid: true}))
}
