package renderer

import (
	"strings"

	"github.com/mintaslang/dew/internal/types"
)

// expandStyledBlocks compiles every <dew ...>...</dew> block to a div,
// innermost blocks first so nested components end up inside their parents.
func expandStyledBlocks(s string, data map[string]types.Value) string {
	for {
		start, ok := findInnermostBlock(s)
		if !ok {
			return s
		}
		endOff := strings.Index(s[start:], "</dew>")
		if endOff < 0 {
			return s
		}
		blockEnd := start + endOff + len("</dew>")
		html := compileBlock(s[start:blockEnd], data)
		s = s[:start] + html + s[blockEnd:]
	}
}

// findInnermostBlock locates the opening of a <dew> block that contains no
// nested <dew> before its close.
func findInnermostBlock(s string) (int, bool) {
	searchFrom := 0
	for {
		pos := strings.Index(s[searchFrom:], "<dew")
		if pos < 0 {
			return 0, false
		}
		abs := searchFrom + pos
		afterTag := abs + 4
		end := strings.Index(s[afterTag:], "</dew>")
		if end < 0 {
			searchFrom = afterTag
			continue
		}
		if next := strings.Index(s[afterTag:], "<dew"); next >= 0 && next < end {
			searchFrom = afterTag + next
			continue
		}
		return abs, true
	}
}

type styledEvent struct {
	name string
	body string
}

func compileBlock(block string, data map[string]types.Value) string {
	tagEnd := strings.Index(block, ">")
	if tagEnd < 0 {
		tagEnd = len(block) - 1
	}
	tagPart := block[4:tagEnd]

	content := ""
	if close := strings.LastIndex(block, "</dew>"); close > tagEnd {
		content = block[tagEnd+1 : close]
	}

	id := extractAttr(tagPart, "id")
	class := extractAttr(tagPart, "class")
	styles, events, inner := parseDSL(content, data)

	var b strings.Builder
	b.WriteString("<div")
	if id != "" {
		b.WriteString(` id="` + id + `"`)
	}
	if class != "" {
		b.WriteString(` class="dew-component ` + class + `"`)
	} else {
		b.WriteString(` class="dew-component"`)
	}
	if styles != "" {
		b.WriteString(` style="` + styles + `"`)
	}
	for _, ev := range events {
		attr, ok := eventAttr(ev.name)
		if !ok {
			continue
		}
		b.WriteString(" " + attr + `="` + compileHandler(ev.body) + `"`)
	}
	b.WriteString(">")
	b.WriteString(inner)
	b.WriteString("</div>")
	return b.String()
}

func extractAttr(tag, name string) string {
	pattern := name + `="`
	start := strings.Index(tag, pattern)
	if start < 0 {
		return ""
	}
	rest := tag[start+len(pattern):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// parseDSL walks the block's lines. Property lines compile to CSS through
// the alias table, on-<event>: ... end spans collect handler bodies,
// text: lines contribute $var-substituted content, lines with inline ?( )?
// are resolved, and anything else passes through as content.
func parseDSL(content string, data map[string]types.Value) (string, []styledEvent, string) {
	var styles []string
	var events []styledEvent
	var inner strings.Builder

	inEvent := false
	var eventName string
	var eventBody strings.Builder

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#(") {
			continue
		}
		if inEvent {
			if line == "end" {
				events = append(events, styledEvent{name: eventName, body: strings.TrimSpace(eventBody.String())})
				inEvent = false
				eventBody.Reset()
				continue
			}
			eventBody.WriteString(line)
			eventBody.WriteByte('\n')
			continue
		}
		if strings.HasPrefix(line, "on-") && strings.HasSuffix(line, ":") {
			eventName = line[3 : len(line)-1]
			inEvent = true
			continue
		}
		if strings.HasPrefix(line, "text:") {
			text := strings.Trim(strings.TrimSpace(line[5:]), `"'`)
			inner.WriteString(substituteVars(text, data))
			continue
		}
		if colon := strings.Index(line, ":"); colon >= 0 {
			prop := strings.TrimSpace(line[:colon])
			value := strings.Trim(strings.TrimSpace(line[colon+1:]), `"'`)
			if css, ok := propToCSS(prop, value); ok {
				styles = append(styles, css)
			}
			continue
		}
		if strings.Contains(line, "?(") && strings.Contains(line, ")?") {
			inner.WriteString(resolveInline(line, data))
			continue
		}
		inner.WriteString(line)
		inner.WriteByte(' ')
	}

	return strings.Join(styles, "; "), events, strings.TrimSpace(inner.String())
}

func eventAttr(name string) (string, bool) {
	switch name {
	case "click":
		return "onclick", true
	case "hover":
		return "onmouseenter", true
	case "focus":
		return "onfocus", true
	case "blur":
		return "onblur", true
	}
	return "", false
}

// compileHandler turns the small action vocabulary into Dew runtime calls.
// Unrecognized lines pass through as raw JavaScript statements.
func compileHandler(body string) string {
	var js strings.Builder
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case line == "increment":
			js.WriteString("Dew.increment(this);")
		case line == "decrement":
			js.WriteString("Dew.decrement(this);")
		case strings.HasPrefix(line, "effect:"):
			js.WriteString("Dew.effect(this,'" + strings.TrimSpace(line[7:]) + "');")
		case strings.HasPrefix(line, "emit "):
			js.WriteString("Dew.emit('" + strings.Trim(strings.TrimSpace(line[5:]), `"`) + "');")
		case strings.HasPrefix(line, "toggle "):
			js.WriteString("Dew.toggle('" + strings.Trim(strings.TrimSpace(line[7:]), `"`) + "');")
		case strings.HasPrefix(line, "show "):
			js.WriteString("Dew.show('" + strings.Trim(strings.TrimSpace(line[5:]), `"`) + "');")
		case strings.HasPrefix(line, "hide "):
			js.WriteString("Dew.hide('" + strings.Trim(strings.TrimSpace(line[5:]), `"`) + "');")
		default:
			js.WriteString(line)
			js.WriteByte(';')
		}
	}
	return strings.ReplaceAll(js.String(), `"`, "&quot;")
}

// expandCodeBlocks resolves elements carrying a class="dew= '<expr>'"
// marker, replacing the whole element with the evaluated expression.
func expandCodeBlocks(s string, data map[string]types.Value) string {
	const pattern = `class="dew= '`
	for {
		start := strings.Index(s, pattern)
		if start < 0 {
			return s
		}
		codeStart := start + len(pattern)
		codeEndOff := strings.Index(s[codeStart:], `'"`)
		if codeEndOff < 0 {
			return s
		}
		codeEnd := codeStart + codeEndOff
		code := s[codeStart:codeEnd]

		tagStart := strings.LastIndex(s[:start], "<")
		if tagStart < 0 {
			tagStart = start
		}
		tagCloseOff := strings.Index(s[codeEnd:], ">")
		if tagCloseOff < 0 {
			return s
		}
		tagClose := codeEnd + tagCloseOff + 1

		tagName := "div"
		if fields := strings.Fields(s[tagStart+1 : start]); len(fields) > 0 {
			tagName = fields[0]
		}
		closing := "</" + tagName + ">"
		closingOff := strings.Index(s[tagClose:], closing)
		if closingOff < 0 {
			return s
		}
		closingEnd := tagClose + closingOff + len(closing)

		s = s[:tagStart] + evalExpr(code, data) + s[closingEnd:]
	}
}
