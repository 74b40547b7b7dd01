package renderer

import (
	"strings"

	"github.com/mintaslang/dew/internal/types"
)

// Template source is tokenized into literal text and ?( )? markers, then
// parsed into a node tree so nested loops and conditionals pair up properly
// instead of by first-marker scanning.

type tokenKind int

const (
	tokText tokenKind = iota
	tokFor
	tokEndFor
	tokIf
	tokEndIf
	tokExpr
)

type token struct {
	kind tokenKind
	text string // literal text, loop header, condition, or expression
}

func tokenize(src string) []token {
	var toks []token
	for {
		start := strings.Index(src, "?(")
		if start < 0 {
			break
		}
		end := strings.Index(src[start:], ")?")
		if end < 0 {
			break
		}
		if start > 0 {
			toks = append(toks, token{kind: tokText, text: src[:start]})
		}
		body := strings.TrimSpace(src[start+2 : start+end])
		switch {
		case body == "endfor":
			toks = append(toks, token{kind: tokEndFor})
		case body == "endif":
			toks = append(toks, token{kind: tokEndIf})
		case strings.HasPrefix(body, "for "):
			toks = append(toks, token{kind: tokFor, text: strings.TrimSpace(body[4:])})
		case strings.HasPrefix(body, "if "):
			toks = append(toks, token{kind: tokIf, text: strings.TrimSpace(body[3:])})
		default:
			toks = append(toks, token{kind: tokExpr, text: body})
		}
		src = src[start+end+2:]
	}
	if src != "" {
		toks = append(toks, token{kind: tokText, text: src})
	}
	return toks
}

type node interface{}

type textNode struct{ text string }

type exprNode struct{ expr string }

type ifNode struct {
	cond string
	body []node
}

type forNode struct {
	item string
	list string
	body []node
}

// parse builds the node tree by recursive descent over the token stream.
// Stray end markers and unterminated blocks degrade to literal text rather
// than failing the render.
func parse(toks []token) []node {
	nodes, _ := parseUntil(toks, 0, 0)
	return nodes
}

// parseUntil consumes tokens until a closing marker of the given kind
// (tokEndFor or tokEndIf) or the end of input. stop of 0 means parse to the
// end. It returns the nodes and the index after the closing marker.
func parseUntil(toks []token, pos int, stop tokenKind) ([]node, int) {
	var nodes []node
	for pos < len(toks) {
		t := toks[pos]
		switch t.kind {
		case tokText:
			nodes = append(nodes, textNode{text: t.text})
			pos++
		case tokExpr:
			nodes = append(nodes, exprNode{expr: t.text})
			pos++
		case tokFor:
			item, list, ok := splitForHeader(t.text)
			if !ok {
				pos++
				continue
			}
			body, next := parseUntil(toks, pos+1, tokEndFor)
			nodes = append(nodes, forNode{item: item, list: list, body: body})
			pos = next
		case tokIf:
			body, next := parseUntil(toks, pos+1, tokEndIf)
			nodes = append(nodes, ifNode{cond: t.text, body: body})
			pos = next
		case tokEndFor, tokEndIf:
			if t.kind == stop {
				return nodes, pos + 1
			}
			// Unmatched close marker, drop it.
			pos++
		}
	}
	return nodes, pos
}

func splitForHeader(header string) (item, list string, ok bool) {
	parts := strings.SplitN(header, " in ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	item = strings.TrimSpace(parts[0])
	list = strings.TrimSpace(parts[1])
	return item, list, item != "" && list != ""
}

// renderBody runs a loop iteration's nodes through every pass except
// runtime injection, so the loop variable is visible to styled blocks and
// $name substitution inside the body. The outer passes re-run over the
// result, which is a no-op since the body's markers are already resolved.
func renderBody(nodes []node, data map[string]types.Value) string {
	out := renderNodes(nodes, data)
	out = expandCodeBlocks(out, data)
	out = expandStyledBlocks(out, data)
	out = stripComments(out)
	out = substituteVars(out, data)
	return out
}

func renderNodes(nodes []node, data map[string]types.Value) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			b.WriteString(n.text)
		case exprNode:
			b.WriteString(evalExpr(n.expr, data))
		case ifNode:
			if evalCondition(n.cond, data) {
				b.WriteString(renderNodes(n.body, data))
			}
		case forNode:
			list, ok := data[n.list]
			if !ok || list.Kind() != types.KindArray {
				continue
			}
			for _, item := range list.Items() {
				scoped := make(map[string]types.Value, len(data)+1)
				for k, v := range data {
					scoped[k] = v
				}
				scoped[n.item] = item
				b.WriteString(renderBody(n.body, scoped))
			}
		}
	}
	return b.String()
}
