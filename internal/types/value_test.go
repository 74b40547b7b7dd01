package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringFormatting(t *testing.T) {
	assert.Equal(t, "42", Number(42).String())
	assert.Equal(t, "-7", Number(-7).String())
	assert.Equal(t, "3.5", Number(3.5).String())
	assert.Equal(t, "0", Number(0).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "hello", Str("hello").String())
	assert.Equal(t, "[1, 2, 3]", Array([]Value{Number(1), Number(2), Number(3)}).String())
}

func TestTruthy(t *testing.T) {
	assert.False(t, Null().Truthy())
	assert.False(t, Bool(false).Truthy())
	assert.True(t, Bool(true).Truthy())
	assert.False(t, Number(0).Truthy())
	assert.True(t, Number(-1).Truthy())
	assert.False(t, Str("").Truthy())
	assert.True(t, Str("x").Truthy())
	assert.False(t, Array(nil).Truthy())
	assert.True(t, Array([]Value{Null()}).Truthy())
	assert.False(t, Table(nil).Truthy())
	assert.True(t, Table(map[string]Value{"a": Null()}).Truthy())
}

func TestJSONSkipsInternalKeys(t *testing.T) {
	v := Table(map[string]Value{
		"name":       Str("dew"),
		"count":      Number(2),
		"__internal": Str("hidden"),
	})
	assert.Equal(t, `{"count":2,"name":"dew"}`, v.JSON())
}

func TestJSLiteral(t *testing.T) {
	v := Table(map[string]Value{
		"count":    Number(1),
		"my-items": Array([]Value{Str("a")}),
	})
	assert.Equal(t, `{count:1,"my-items":["a"]}`, v.JS())
}

func TestTag(t *testing.T) {
	v := Table(map[string]Value{"__set_cookie": Bool(true), "name": Str("sid")})
	assert.True(t, v.Tag("set_cookie"))
	assert.False(t, v.Tag("redirect"))
	assert.False(t, Str("x").Tag("set_cookie"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Number(3), Number(3)))
	assert.False(t, Equal(Number(3), Str("3")))
	assert.True(t, Equal(
		Table(map[string]Value{"a": Number(1)}),
		Table(map[string]Value{"a": Number(1)}),
	))
	assert.False(t, Equal(
		Array([]Value{Number(1)}),
		Array([]Value{Number(2)}),
	))
}
