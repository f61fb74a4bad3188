package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeScriptContent(t *testing.T) {
	assert.Equal(t, "", SanitizeScriptContent(""))

	collapsed := SanitizeScriptContent("INT. OFFICE - DAY\n\nJANE sits\tat her desk.")
	assert.Equal(t, "INT. OFFICE - DAY JANE sits at her desk.", collapsed)

	long := strings.Repeat("INT. OFFICE - DAY ", 50)
	truncated := SanitizeScriptContent(long)
	assert.True(t, strings.HasSuffix(truncated, "..."))
	assert.LessOrEqual(t, len(truncated), MaxScriptLogLength+3)
}

func TestSanitizeError(t *testing.T) {
	assert.Equal(t, "", SanitizeError(nil))

	err := errors.New("request failed: Bearer eyJhbGciOi.eyJzdWIiOi.SflKxwRJSM rejected")
	assert.NotContains(t, SanitizeError(err), "eyJhbGciOi")
	assert.Contains(t, SanitizeError(err), RedactedText)

	err = errors.New("bad call: api_key=abcdefghijklmnopqrstuvwxyz123456")
	assert.NotContains(t, SanitizeError(err), "abcdefghijklmnopqrstuvwxyz123456")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abc...", TruncateString("abcdef", 3))
}
