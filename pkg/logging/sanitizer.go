package logging

import (
	"regexp"
	"strings"
)

const (
	// MaxScriptLogLength is the maximum length of script content to log
	MaxScriptLogLength = 120
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match JWT tokens (three base64 segments separated by dots)
	jwtPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]*`)

	// Pattern to match potential API keys
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)
)

// SanitizeScriptContent collapses and truncates screenplay text for logging.
// Full scripts run to hundreds of kilobytes and do not belong in log lines.
func SanitizeScriptContent(content string) string {
	if content == "" {
		return ""
	}

	collapsed := strings.Join(strings.Fields(content), " ")
	return TruncateString(collapsed, MaxScriptLogLength)
}

// SanitizeError sanitizes error messages that might contain sensitive data.
// Use this before logging any error from API calls.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()

	// Remove JWT tokens
	sanitized := jwtPattern.ReplaceAllString(errStr, "Bearer "+RedactedText)

	// Remove API keys
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
