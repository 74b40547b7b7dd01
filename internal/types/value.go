// Package types defines the value model shared between the server, the
// handler bridge, and the template renderer. Handler bodies evaluated by the
// host produce Values; templates are rendered against Values.
package types

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates a Value. The set is closed: every consumer switches
// exhaustively over these kinds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindTable
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	case KindResponse:
		return "response"
	}
	return "unknown"
}

// Value is a dynamically typed script value. The zero Value is null.
type Value struct {
	kind  Kind
	boolV bool
	numV  float64
	strV  string
	arrV  []Value
	tblV  map[string]Value
	respV *ResponsePayload
}

// ResponsePayload is the content of a response-kinded Value, produced when a
// handler returns an explicit response rather than plain data.
type ResponsePayload struct {
	Status      int
	Body        string
	ContentType string
	Redirect    string
}

func Null() Value               { return Value{kind: KindNull} }
func Bool(b bool) Value         { return Value{kind: KindBool, boolV: b} }
func Number(n float64) Value    { return Value{kind: KindNumber, numV: n} }
func Str(s string) Value        { return Value{kind: KindString, strV: s} }
func Array(items []Value) Value { return Value{kind: KindArray, arrV: items} }
func Table(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindTable, tblV: m}
}

// Response wraps an explicit handler response payload.
func Response(p ResponsePayload) Value {
	return Value{kind: KindResponse, respV: &p}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() bool      { return v.boolV }
func (v Value) Number() float64 { return v.numV }
func (v Value) Text() string    { return v.strV }

// Items returns the backing slice of an array value, nil otherwise.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arrV
}

// Fields returns the backing map of a table value, nil otherwise.
func (v Value) Fields() map[string]Value {
	if v.kind != KindTable {
		return nil
	}
	return v.tblV
}

// Field looks up a table key. The second return reports presence.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindTable {
		return Value{}, false
	}
	fv, ok := v.tblV[key]
	return fv, ok
}

// Payload returns the response payload of a response value, nil otherwise.
func (v Value) Payload() *ResponsePayload {
	if v.kind != KindResponse {
		return nil
	}
	return v.respV
}

// Tag reports whether a table carries the given "__"-prefixed marker key,
// used for tagged instructions such as cookie sets.
func (v Value) Tag(name string) bool {
	if v.kind != KindTable {
		return false
	}
	_, ok := v.tblV["__"+name]
	return ok
}

// Truthy implements template conditional semantics: booleans as themselves,
// numbers when nonzero, strings/arrays/tables when nonempty, null false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.boolV
	case KindNumber:
		return v.numV != 0
	case KindString:
		return v.strV != ""
	case KindArray:
		return len(v.arrV) > 0
	case KindTable:
		return len(v.tblV) > 0
	case KindResponse:
		return true
	}
	return false
}

// String renders the value for template substitution. Whole numbers within
// safe integer range print without a fractional part.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.boolV {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.numV)
	case KindString:
		return v.strV
	case KindArray:
		parts := make([]string, len(v.arrV))
		for i, it := range v.arrV {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindTable:
		return v.JSON()
	case KindResponse:
		return v.respV.Body
	}
	return ""
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// JSON serializes the value, skipping table keys that start with "__"
// (internal tags never leave the process).
func (v Value) JSON() string {
	var b strings.Builder
	v.writeJSON(&b)
	return b.String()
}

func (v Value) writeJSON(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.boolV {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNumber:
		b.WriteString(formatNumber(v.numV))
	case KindString:
		b.WriteString(strconv.Quote(v.strV))
	case KindArray:
		b.WriteByte('[')
		for i, it := range v.arrV {
			if i > 0 {
				b.WriteByte(',')
			}
			it.writeJSON(b)
		}
		b.WriteByte(']')
	case KindTable:
		b.WriteByte('{')
		keys := make([]string, 0, len(v.tblV))
		for k := range v.tblV {
			if strings.HasPrefix(k, "__") {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			v.tblV[k].writeJSON(b)
		}
		b.WriteByte('}')
	case KindResponse:
		b.WriteString(strconv.Quote(v.respV.Body))
	}
}

// JS renders the value as a JavaScript literal for the injected client
// runtime. Identifier-safe table keys are emitted bare.
func (v Value) JS() string {
	var b strings.Builder
	v.writeJS(&b)
	return b.String()
}

func (v Value) writeJS(b *strings.Builder) {
	switch v.kind {
	case KindTable:
		b.WriteByte('{')
		keys := make([]string, 0, len(v.tblV))
		for k := range v.tblV {
			if strings.HasPrefix(k, "__") {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			if identSafe(k) {
				b.WriteString(k)
			} else {
				b.WriteString(strconv.Quote(k))
			}
			b.WriteByte(':')
			v.tblV[k].writeJS(b)
		}
		b.WriteByte('}')
	case KindArray:
		b.WriteByte('[')
		for i, it := range v.arrV {
			if i > 0 {
				b.WriteByte(',')
			}
			it.writeJS(b)
		}
		b.WriteByte(']')
	default:
		v.writeJSON(b)
	}
}

func identSafe(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Equal compares two values structurally.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolV == b.boolV
	case KindNumber:
		return a.numV == b.numV
	case KindString:
		return a.strV == b.strV
	case KindArray:
		if len(a.arrV) != len(b.arrV) {
			return false
		}
		for i := range a.arrV {
			if !Equal(a.arrV[i], b.arrV[i]) {
				return false
			}
		}
		return true
	case KindTable:
		if len(a.tblV) != len(b.tblV) {
			return false
		}
		for k, av := range a.tblV {
			bv, ok := b.tblV[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindResponse:
		return a.respV == b.respV
	}
	return false
}
