package router

import (
	"os"
	"path/filepath"
	"strings"
)

// Route is one registered handler. Handler is the opaque script body the
// evaluator bridge runs; Rules maps body field names to validation rule
// strings ("required|email"). Routes are immutable once registered.
type Route struct {
	Method  Method
	Path    string
	Handler string
	Rules   map[string]string
}

// Group is a set of routes sharing a path prefix and middleware names.
type Group struct {
	Prefix     string
	Routes     []Route
	Middleware []string
}

// StaticMapping serves files under Dir for request paths starting with
// URLPrefix.
type StaticMapping struct {
	URLPrefix string
	Dir       string
}

// Table is a server's complete routing state. It is built during
// registration and read-only while serving, so lookups take no lock.
type Table struct {
	Routes        []Route
	Groups        []Group
	Static        []StaticMapping
	ErrorHandlers map[int]string

	// groupStack holds groups opened by BeginGroup and not yet closed.
	groupStack []*Group
}

// NewTable returns an empty routing table.
func NewTable() *Table {
	return &Table{ErrorHandlers: map[int]string{}}
}

// Add registers a route. Inside an open group the route joins the innermost
// group; otherwise it is a direct route.
func (t *Table) Add(r Route) {
	if n := len(t.groupStack); n > 0 {
		g := t.groupStack[n-1]
		g.Routes = append(g.Routes, r)
		return
	}
	t.Routes = append(t.Routes, r)
}

// BeginGroup opens a route group. Nested calls concatenate prefixes.
func (t *Table) BeginGroup(prefix string, middleware []string) {
	full := prefix
	if n := len(t.groupStack); n > 0 {
		full = t.groupStack[n-1].Prefix + prefix
	}
	t.groupStack = append(t.groupStack, &Group{Prefix: full, Middleware: middleware})
}

// EndGroup closes the innermost open group and commits it to the table.
func (t *Table) EndGroup() {
	n := len(t.groupStack)
	if n == 0 {
		return
	}
	g := t.groupStack[n-1]
	t.groupStack = t.groupStack[:n-1]
	t.Groups = append(t.Groups, *g)
}

// AddStatic registers a static file mapping.
func (t *Table) AddStatic(urlPrefix, dir string) {
	t.Static = append(t.Static, StaticMapping{URLPrefix: urlPrefix, Dir: dir})
}

// Match is a successful route lookup.
type Match struct {
	Route  Route
	Params map[string]string
	Group  *Group
}

// FindRoute locates the first route matching the verb and path: direct
// routes in registration order, then grouped routes with the group prefix
// prepended. An unrecognized verb matches nothing.
func (t *Table) FindRoute(methodToken, path string) (Match, bool) {
	m, ok := ParseMethod(methodToken)
	if !ok {
		return Match{}, false
	}
	for _, r := range t.Routes {
		if r.Method != m {
			continue
		}
		if params, ok := MatchPath(r.Path, path); ok {
			return Match{Route: r, Params: params}, true
		}
	}
	for gi := range t.Groups {
		g := &t.Groups[gi]
		for _, r := range g.Routes {
			if r.Method != m {
				continue
			}
			if params, ok := MatchPath(g.Prefix+r.Path, path); ok {
				return Match{Route: r, Params: params, Group: g}, true
			}
		}
	}
	return Match{}, false
}

// FindStatic resolves a request path against the static mappings. The first
// mapping whose prefix matches and whose resolved path is an existing
// regular file wins. Paths containing ".." never resolve.
func (t *Table) FindStatic(path string) (string, bool) {
	if strings.Contains(path, "..") {
		return "", false
	}
	for _, s := range t.Static {
		if !strings.HasPrefix(path, s.URLPrefix) {
			continue
		}
		rel := strings.TrimPrefix(path, s.URLPrefix)
		full := filepath.Join(s.Dir, filepath.FromSlash(rel))
		if fi, err := os.Stat(full); err == nil && fi.Mode().IsRegular() {
			return full, true
		}
	}
	return "", false
}
