package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mintaslang/dew/internal/types"
)

func TestValidateFields(t *testing.T) {
	values := map[string]types.Value{
		"name":  types.Str("Ada"),
		"email": types.Str("ada@example.test"),
		"age":   types.Str("36"),
	}
	rules := map[string]string{
		"name":  "required|min:2|max:40|alpha",
		"email": "required|email",
		"age":   "numeric",
	}

	assert.Empty(t, ValidateFields(values, rules))
}

func TestValidateFieldMessages(t *testing.T) {
	tests := []struct {
		name    string
		value   types.Value
		present bool
		rule    string
		want    string
	}{
		{"missing required", types.Null(), false, "required", "This field is required"},
		{"empty required", types.Str(""), true, "required", "This field is required"},
		{"bad email", types.Str("not-an-email"), true, "email", "Invalid email format"},
		{"good email", types.Str("a@b.co"), true, "email", ""},
		{"too short", types.Str("ab"), true, "min:3", "Must be at least 3 characters"},
		{"too long", types.Str("abcdef"), true, "max:4", "Must be at most 4 characters"},
		{"not numeric", types.Str("12x"), true, "numeric", "Must be a number"},
		{"numeric float", types.Str("3.14"), true, "numeric", ""},
		{"not alpha", types.Str("ab1"), true, "alpha", "Must contain only letters"},
		{"not alphanumeric", types.Str("ab-1"), true, "alphanumeric", "Must contain only letters and numbers"},
		{"alphanumeric ok", types.Str("ab1"), true, "alphanumeric", ""},
		{"bad url", types.Str("example.test"), true, "url", "Invalid URL format"},
		{"good url", types.Str("https://example.test"), true, "url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateField(tt.value, tt.present, tt.rule))
		})
	}
}

func TestValidateFieldsFirstFailureWins(t *testing.T) {
	values := map[string]types.Value{"email": types.Str("")}
	rules := map[string]string{"email": "required|email"}

	failures := ValidateFields(values, rules)
	assert.Equal(t, map[string]string{"email": "This field is required"}, failures)
}
