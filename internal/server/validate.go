package server

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/mintaslang/dew/internal/types"
)

// ValidateFields applies per-field rule strings ("required|email|min:3") to
// the submitted values. The result maps field names to the first failure
// message for that field; an empty map means everything passed.
func ValidateFields(values map[string]types.Value, rules map[string]string) map[string]string {
	failures := map[string]string{}
	for field, ruleList := range rules {
		value, present := values[field]
		for _, rule := range strings.Split(ruleList, "|") {
			if msg := validateField(value, present, strings.TrimSpace(rule)); msg != "" {
				failures[field] = msg
				break
			}
		}
	}
	return failures
}

func validateField(value types.Value, present bool, rule string) string {
	name, param := rule, ""
	if colon := strings.Index(rule, ":"); colon >= 0 {
		name, param = rule[:colon], rule[colon+1:]
	}

	switch name {
	case "required":
		if !present || value.IsNull() {
			return "This field is required"
		}
		if value.Kind() == types.KindString && value.Text() == "" {
			return "This field is required"
		}
	case "email":
		if value.Kind() == types.KindString {
			s := value.Text()
			if !strings.Contains(s, "@") || !strings.Contains(s, ".") {
				return "Invalid email format"
			}
		}
	case "min":
		if n, err := strconv.Atoi(param); err == nil && value.Kind() == types.KindString {
			if len(value.Text()) < n {
				return "Must be at least " + param + " characters"
			}
		}
	case "max":
		if n, err := strconv.Atoi(param); err == nil && value.Kind() == types.KindString {
			if len(value.Text()) > n {
				return "Must be at most " + param + " characters"
			}
		}
	case "numeric":
		if value.Kind() == types.KindString {
			if _, err := strconv.ParseFloat(value.Text(), 64); err != nil {
				return "Must be a number"
			}
		}
	case "alpha":
		if value.Kind() == types.KindString {
			for _, r := range value.Text() {
				if !unicode.IsLetter(r) {
					return "Must contain only letters"
				}
			}
		}
	case "alphanumeric":
		if value.Kind() == types.KindString {
			for _, r := range value.Text() {
				if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					return "Must contain only letters and numbers"
				}
			}
		}
	case "url":
		if value.Kind() == types.KindString {
			s := value.Text()
			if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
				return "Invalid URL format"
			}
		}
	}
	return ""
}
