package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleStringValue converts a json.RawMessage to a string, handling cases
// where upstream scrapers or LLMs return numbers or booleans instead of
// strings. Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	// Try string first
	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	// Try number
	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	// Try boolean
	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	// Fallback: return raw string representation
	return string(raw)
}

// FlexibleIntValue converts a json.RawMessage to an int, handling numbers,
// quoted numbers ("85") and floats (85.0). Returns 0 for null/empty or
// anything unparseable.
func FlexibleIntValue(raw json.RawMessage) int {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}

	var intVal int
	if err := json.Unmarshal(raw, &intVal); err == nil {
		return intVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		return int(numVal)
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		strVal = strings.TrimSpace(strVal)
		if n, err := strconv.Atoi(strVal); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(strVal, 64); err == nil {
			return int(f)
		}
	}

	return 0
}
