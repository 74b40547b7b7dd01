package server

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintaslang/dew/internal/errors"
)

func rawRequest(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

func TestParseRequest(t *testing.T) {
	raw := rawRequest(
		"GET /users/42?tab=posts&q=hello%20world HTTP/1.1",
		"Host: example.test",
		"Cookie: dew_session=abc; theme=dark",
		"X-Custom: value",
		"",
		"",
	)

	req, err := ParseRequest(raw, "10.0.0.7", false)
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/users/42", req.Path)
	assert.Equal(t, "/users/42?tab=posts&q=hello%20world", req.URL)
	assert.Equal(t, "posts", req.Query["tab"])
	assert.Equal(t, "hello world", req.Query["q"])
	assert.Equal(t, "example.test", req.Headers["host"])
	assert.Equal(t, "value", req.Headers["x-custom"])
	assert.Equal(t, "abc", req.Cookies["dew_session"])
	assert.Equal(t, "dark", req.Cookies["theme"])
	assert.Equal(t, "10.0.0.7", req.RemoteIP)
}

func TestParseRequestBody(t *testing.T) {
	raw := rawRequest(
		"POST /submit HTTP/1.1",
		"Content-Type: application/x-www-form-urlencoded",
		"Content-Length: 21",
		"",
		"name=Ada&role=pioneer",
	)

	req, err := ParseRequest(raw, "", false)
	require.NoError(t, err)

	assert.Equal(t, "name=Ada&role=pioneer", req.Body)
	form := req.FormValues()
	require.NotNil(t, form)
	assert.Equal(t, "Ada", form["name"])
	assert.Equal(t, "pioneer", form["role"])
}

func TestParseRequestMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"GARBAGE",
		"GET /only-two-parts",
		"GET / NOTHTTP",
	} {
		_, err := ParseRequest([]byte(raw), "", false)
		require.Error(t, err, "raw %q", raw)
		assert.Equal(t, 400, errors.StatusOf(err))
	}
}

func TestParseRequestOverflow(t *testing.T) {
	raw := rawRequest(
		"POST /upload HTTP/1.1",
		"Content-Length: 100000",
		"",
		"partial body",
	)

	// Buffer full and a body shorter than declared means truncation.
	_, err := ParseRequest(raw, "", true)
	require.Error(t, err)
	assert.Equal(t, 413, errors.StatusOf(err))

	// Same request without a full buffer is just a short body.
	_, err = ParseRequest(raw, "", false)
	assert.NoError(t, err)
}

func TestRequestToValue(t *testing.T) {
	raw := rawRequest(
		"POST /api/items?limit=5 HTTP/1.1",
		"Content-Type: application/json",
		"",
		`{"title":"first","count":3}`,
	)
	req, err := ParseRequest(raw, "127.0.0.1", false)
	require.NoError(t, err)
	req.Params = map[string]string{"id": "9"}

	v := req.ToValue()
	method, _ := v.Field("method")
	assert.Equal(t, "POST", method.Text())

	query, _ := v.Field("query")
	limit, _ := query.Field("limit")
	assert.Equal(t, "5", limit.Text())

	params, _ := v.Field("params")
	id, _ := params.Field("id")
	assert.Equal(t, "9", id.Text())

	parsed, ok := v.Field("json")
	require.True(t, ok)
	title, _ := parsed.Field("title")
	assert.Equal(t, "first", title.Text())
	count, _ := parsed.Field("count")
	assert.Equal(t, float64(3), count.Number())
}

func TestIsWebSocketUpgrade(t *testing.T) {
	raw := rawRequest(
		"GET /live HTTP/1.1",
		"Upgrade: websocket",
		"Connection: Upgrade",
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==",
		"",
		"",
	)
	req, err := ParseRequest(raw, "", false)
	require.NoError(t, err)
	assert.True(t, req.IsWebSocketUpgrade())

	plain, err := ParseRequest(rawRequest("GET /live HTTP/1.1", "", ""), "", false)
	require.NoError(t, err)
	assert.False(t, plain.IsWebSocketUpgrade())
}
