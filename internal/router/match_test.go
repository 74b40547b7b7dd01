package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPathExact(t *testing.T) {
	params, ok := MatchPath("/users/list", "/users/list")
	assert.True(t, ok)
	assert.Empty(t, params)
}

func TestMatchPathParams(t *testing.T) {
	params, ok := MatchPath("/users/>id", "/users/42")
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"id": "42"}, params)

	params, ok = MatchPath("/posts/>year/>slug", "/posts/2024/hello-world")
	assert.True(t, ok)
	assert.Equal(t, "2024", params["year"])
	assert.Equal(t, "hello-world", params["slug"])
}

func TestMatchPathSegmentCountMismatch(t *testing.T) {
	_, ok := MatchPath("/users/>id", "/users/42/edit")
	assert.False(t, ok)

	_, ok = MatchPath("/users/>id/edit", "/users/42")
	assert.False(t, ok)
}

func TestMatchPathLiteralMismatch(t *testing.T) {
	_, ok := MatchPath("/users/list", "/users/show")
	assert.False(t, ok)
}

func TestMatchPathTrailingSlash(t *testing.T) {
	_, ok := MatchPath("/users", "/users/")
	assert.True(t, ok)

	_, ok = MatchPath("/", "/")
	assert.True(t, ok)
}
