package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"null", "null", ""},
		{"string", `"$250/day"`, "$250/day"},
		{"integer", "250", "250"},
		{"float", "249.5", "249.5"},
		{"boolean", "true", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlexibleStringValue(json.RawMessage(tt.raw)))
		})
	}
}

func TestFlexibleIntValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"empty", "", 0},
		{"null", "null", 0},
		{"integer", "85", 85},
		{"float", "85.7", 85},
		{"quoted integer", `"85"`, 85},
		{"quoted float", `"85.7"`, 85},
		{"padded", `" 85 "`, 85},
		{"garbage", `"high"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlexibleIntValue(json.RawMessage(tt.raw)))
		})
	}
}
