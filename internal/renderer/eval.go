package renderer

import (
	"strings"

	"github.com/mintaslang/dew/internal/types"
)

// evalExpr evaluates an inline template expression: a direct binding lookup,
// a one-level dotted lookup into a table, a "+"-joined concatenation of
// quoted literals and lookups, or a cond ? a : b ternary. Anything else
// renders empty.
func evalExpr(code string, data map[string]types.Value) string {
	code = strings.TrimSpace(code)

	if v, ok := data[code]; ok {
		return v.String()
	}

	if dot := strings.Index(code, "."); dot >= 0 && !strings.ContainsAny(code, "+?") {
		obj, prop := code[:dot], code[dot+1:]
		if t, ok := data[obj]; ok {
			if v, ok := t.Field(prop); ok {
				return v.String()
			}
		}
		return ""
	}

	if strings.Contains(code, "+") {
		var b strings.Builder
		for _, part := range strings.Split(code, "+") {
			part = strings.TrimSpace(part)
			if len(part) >= 2 && strings.HasPrefix(part, `"`) && strings.HasSuffix(part, `"`) {
				b.WriteString(part[1 : len(part)-1])
			} else if v, ok := data[part]; ok {
				b.WriteString(v.String())
			}
		}
		return b.String()
	}

	if q := strings.Index(code, "?"); q >= 0 {
		rest := code[q+1:]
		if c := strings.Index(rest, ":"); c >= 0 {
			cond := strings.TrimSpace(code[:q])
			chosen := strings.TrimSpace(rest[c+1:])
			if evalCondition(cond, data) {
				chosen = strings.TrimSpace(rest[:c])
			}
			if len(chosen) >= 2 && strings.HasPrefix(chosen, `"`) && strings.HasSuffix(chosen, `"`) {
				return chosen[1 : len(chosen)-1]
			}
			if v, ok := data[chosen]; ok {
				return v.String()
			}
			return chosen
		}
	}

	return ""
}

// evalCondition decides an if/ternary condition: a bound name is judged by
// truthiness; "a == b" compares the stringified left binding against the
// right literal with surrounding quotes removed. Unknown names are false.
func evalCondition(cond string, data map[string]types.Value) bool {
	cond = strings.TrimSpace(cond)

	if v, ok := data[cond]; ok {
		return v.Truthy()
	}

	if eq := strings.Index(cond, "=="); eq >= 0 {
		left := strings.TrimSpace(cond[:eq])
		right := strings.Trim(strings.TrimSpace(cond[eq+2:]), `"`)
		var leftVal string
		if v, ok := data[left]; ok {
			leftVal = v.String()
		}
		return leftVal == right
	}

	return false
}

// resolveInline evaluates every ?( )? span inside a single styled-block
// line.
func resolveInline(line string, data map[string]types.Value) string {
	for {
		start := strings.Index(line, "?(")
		if start < 0 {
			return line
		}
		end := strings.Index(line[start:], ")?")
		if end < 0 {
			return line
		}
		code := line[start+2 : start+end]
		line = line[:start] + evalExpr(code, data) + line[start+end+2:]
	}
}
