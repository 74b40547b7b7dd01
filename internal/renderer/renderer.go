// Package renderer implements the dew template language: ?( )? control flow
// and expressions, #( )# comments, <dew> styled blocks, $name substitution,
// and injection of the client runtime.
//
// Rendering runs in fixed passes. Control flow and expressions are parsed
// into a small AST and evaluated against the render data; styled blocks are
// then compiled innermost-first on the resulting markup; comments are
// dropped; remaining $name tokens are substituted; finally the runtime is
// injected before </body> when the document has one.
package renderer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mintaslang/dew/internal/errors"
	"github.com/mintaslang/dew/internal/types"
)

// Renderer loads and renders templates from a template directory, with an
// optional content cache invalidated by the file watcher.
type Renderer struct {
	templateDir string

	mu    sync.RWMutex
	cache map[string]string
}

// New creates a Renderer rooted at templateDir.
func New(templateDir string) *Renderer {
	return &Renderer{
		templateDir: templateDir,
		cache:       map[string]string{},
	}
}

// RenderString renders template source against the given data.
func (r *Renderer) RenderString(tpl string, data map[string]types.Value) string {
	nodes := parse(tokenize(tpl))
	out := renderNodes(nodes, data)
	out = expandCodeBlocks(out, data)
	out = expandStyledBlocks(out, data)
	out = stripComments(out)
	out = substituteVars(out, data)
	out = injectRuntime(out, data)
	return out
}

// RenderFile loads a template by name and renders it. The name is resolved
// against the template directory, then a templates/ and a views/ fallback.
func (r *Renderer) RenderFile(name string, data map[string]types.Value) (string, error) {
	src, err := r.load(name)
	if err != nil {
		return "", err
	}
	return r.RenderString(src, data), nil
}

func (r *Renderer) load(name string) (string, error) {
	r.mu.RLock()
	src, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return src, nil
	}

	candidates := []string{
		filepath.Join(r.templateDir, name),
		filepath.Join("templates", name),
		filepath.Join("views", name),
		name,
	}
	for _, path := range candidates {
		raw, err := os.ReadFile(path)
		if err == nil {
			src = string(raw)
			r.mu.Lock()
			r.cache[name] = src
			r.mu.Unlock()
			return src, nil
		}
	}
	return "", errors.NewTemplateError(name, 0, "template not found in %s, templates/ or views/", r.templateDir)
}

// Invalidate drops cached template content. With an empty name the whole
// cache is cleared; the watcher calls this on file changes.
func (r *Renderer) Invalidate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		r.cache = map[string]string{}
		return
	}
	delete(r.cache, name)
}

// substituteVars replaces remaining $name tokens with stringified bindings.
// Longer names go first so $username is never clobbered by $user.
func substituteVars(s string, data map[string]types.Value) string {
	if len(data) == 0 || !strings.Contains(s, "$") {
		return s
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		s = strings.ReplaceAll(s, "$"+k, data[k].String())
	}
	return s
}

// stripComments removes #( ... )# blocks. An unterminated comment is left
// in place.
func stripComments(s string) string {
	for {
		start := strings.Index(s, "#(")
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], ")#")
		if end < 0 {
			return s
		}
		s = s[:start] + s[start+end+2:]
	}
}
