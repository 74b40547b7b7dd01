package server

import (
	"bytes"
	"compress/flate"
	"io"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseBytes(t *testing.T) {
	resp := HTMLResponse(200, "<h1>hi</h1>")
	resp.Cookies = []string{"dew_session=abc.def; Max-Age=3600; Path=/"}

	wire := string(resp.Bytes("", false))
	assert.True(t, strings.HasPrefix(wire, "HTTP/1.1 200 OK\r\n"))
	assert.Contains(t, wire, "Content-Type: text/html\r\n")
	assert.Contains(t, wire, "Content-Length: 11\r\n")
	assert.Contains(t, wire, "Connection: close\r\n")
	assert.Contains(t, wire, "Access-Control-Allow-Origin: *\r\n")
	assert.Contains(t, wire, "Set-Cookie: dew_session=abc.def; Max-Age=3600; Path=/\r\n")
	assert.True(t, strings.HasSuffix(wire, "\r\n\r\n<h1>hi</h1>"))
}

func TestResponseRedirect(t *testing.T) {
	wire := string(RedirectResponse("/login").Bytes("", false))
	assert.True(t, strings.HasPrefix(wire, "HTTP/1.1 302 Found\r\n"))
	assert.Contains(t, wire, "Location: /login\r\n")
}

func TestResponseStaticHeaders(t *testing.T) {
	resp := &Response{Status: 200, ContentType: "text/css", Body: []byte("body{}"), Static: true, ETag: "abc123"}
	wire := string(resp.Bytes("", false))
	assert.Contains(t, wire, "Cache-Control: public, max-age=31536000\r\n")
	assert.Contains(t, wire, "ETag: \"abc123\"\r\n")
}

func TestEncodeBodyOrder(t *testing.T) {
	body := bytes.Repeat([]byte("compress me "), 50)

	tests := []struct {
		accept string
		want   string
	}{
		{"gzip, deflate, br", "gzip"},
		{"br;q=1.0, gzip;q=0.8", "br"},
		{"deflate", "deflate"},
		{"identity", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			encoded, encoding := encodeBody(body, tt.accept)
			assert.Equal(t, tt.want, encoding)
			if tt.want == "" {
				assert.Equal(t, body, encoded)
				return
			}

			var r io.Reader
			switch encoding {
			case "gzip":
				gr, err := gzip.NewReader(bytes.NewReader(encoded))
				require.NoError(t, err)
				r = gr
			case "br":
				r = brotli.NewReader(bytes.NewReader(encoded))
			case "deflate":
				r = flate.NewReader(bytes.NewReader(encoded))
			}
			decoded, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, body, decoded)
		})
	}
}

func TestResponseBytesCompressed(t *testing.T) {
	resp := TextResponse(200, strings.Repeat("abcdef ", 100))
	wire := string(resp.Bytes("gzip", true))
	assert.Contains(t, wire, "Content-Encoding: gzip\r\n")

	plain := string(resp.Bytes("gzip", false))
	assert.NotContains(t, plain, "Content-Encoding")
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "text/html", MimeType("index.html"))
	assert.Equal(t, "text/css", MimeType("static/app.CSS"))
	assert.Equal(t, "application/javascript", MimeType("a/b/app.js"))
	assert.Equal(t, "image/svg+xml", MimeType("logo.svg"))
	assert.Equal(t, "application/octet-stream", MimeType("blob.unknown"))
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "OK", StatusText(200))
	assert.Equal(t, "Payload Too Large", StatusText(413))
	assert.Equal(t, "Unknown", StatusText(299))
}
