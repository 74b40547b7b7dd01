package router

import "strings"

// MatchPath compares a registered pattern against a request path. Both are
// split on "/" with empty segments discarded, so trailing slashes are
// insignificant. A pattern segment beginning with ">" names a parameter and
// captures the corresponding path segment; any other segment must match
// exactly. Patterns and paths with different segment counts never match.
func MatchPath(pattern, path string) (map[string]string, bool) {
	ps := splitSegments(pattern)
	rs := splitSegments(path)
	if len(ps) != len(rs) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range ps {
		if strings.HasPrefix(seg, ">") {
			params[seg[1:]] = rs[i]
			continue
		}
		if seg != rs[i] {
			return nil, false
		}
	}
	return params, true
}

func splitSegments(s string) []string {
	parts := strings.Split(s, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
