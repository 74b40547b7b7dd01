package server

import "strings"

// Suspicious substrings checked by the injection heuristics. This is a
// pattern scan over the request text, not a SQL parser; it exists to stop
// the obvious probes.
var sqlInjectionPatterns = []string{
	"'--",
	"'; drop",
	"1=1",
	"or 1=1",
	"union select",
}

// LooksLikeSQLInjection scans the request path and full request text
// case-insensitively against the pattern list.
func LooksLikeSQLInjection(path, fullRequest string) bool {
	lowerPath := strings.ToLower(path)
	lowerReq := strings.ToLower(fullRequest)
	for _, p := range sqlInjectionPatterns {
		if strings.Contains(lowerPath, p) || strings.Contains(lowerReq, p) {
			return true
		}
	}
	return false
}

// Sanitize strips the characters most often used to break out of HTML and
// SQL string contexts.
func Sanitize(s string) string {
	replacer := strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
