package logging

import (
	"regexp"
)

const (
	// MaxQueryLogLength is the maximum length of a catalog query to log
	MaxQueryLogLength = 100
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Key-value passwords: password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// URL credentials: postgres://, sqlserver:// and oracle:// user:pass@host
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@]+@[^/\s]+`)

	// Oracle easy connect and sqlplus style: user/pass@host
	easyConnectPattern = regexp.MustCompile(`(?i)\b([a-z0-9_$#]+)/[^/@\s]+@`)
)

// SanitizeConnectionString removes credentials from a connection string.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	return redact(connStr)
}

// SanitizeError sanitizes driver errors that may echo the connection string.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return redact(err.Error())
}

// SanitizeQuery truncates a catalog query for logging.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}
	return passwordPattern.ReplaceAllString(TruncateString(query, MaxQueryLogLength), "${1}="+RedactedText)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func redact(s string) string {
	s = passwordPattern.ReplaceAllString(s, "${1}="+RedactedText)
	s = connStringPattern.ReplaceAllString(s, "://"+RedactedText+"@"+RedactedText)
	return easyConnectPattern.ReplaceAllString(s, "${1}/"+RedactedText+"@")
}
