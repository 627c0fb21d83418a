package catalog

import (
	"database/sql"
	"fmt"
	"strconv"
)

// StringOption returns config[key] when it is a non-empty string.
func StringOption(config map[string]any, key string) (string, bool) {
	v, ok := config[key].(string)
	return v, ok && v != ""
}

// IntOption returns config[key] as an int. JSON numbers arrive as float64 and
// environment-sourced values as strings; both are accepted.
func IntOption(config map[string]any, key string) (int, bool, error) {
	switch v := config[key].(type) {
	case nil:
		return 0, false, nil
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		return int(v), true, nil
	case string:
		if v == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false, fmt.Errorf("%s must be a number, got %q", key, v)
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}

// NullIntPtr converts a nullable catalog number to an optional int.
func NullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// NullStringPtr converts a nullable catalog string to an optional string.
func NullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
