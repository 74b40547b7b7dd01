package server

import (
	"bytes"
	"compress/flate"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

// Response accumulates everything written back on the socket for one
// request.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	Location    string
	Filename    string
	Cookies     []string
	Static      bool
	ETag        string

	// Extra holds additional header lines as name/value pairs, written in
	// order after the fixed headers.
	Extra [][2]string
}

// TextResponse builds a plain text response.
func TextResponse(status int, body string) *Response {
	return &Response{Status: status, ContentType: "text/plain", Body: []byte(body)}
}

// HTMLResponse builds an HTML response.
func HTMLResponse(status int, body string) *Response {
	return &Response{Status: status, ContentType: "text/html", Body: []byte(body)}
}

// JSONResponse builds a JSON response.
func JSONResponse(status int, body string) *Response {
	return &Response{Status: status, ContentType: "application/json", Body: []byte(body)}
}

// RedirectResponse builds a redirect to the given location.
func RedirectResponse(location string) *Response {
	return &Response{Status: 302, ContentType: "text/html", Location: location}
}

var statusText = map[int]string{
	200: "OK",
	201: "Created",
	204: "No Content",
	301: "Moved Permanently",
	302: "Found",
	304: "Not Modified",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	413: "Payload Too Large",
	422: "Unprocessable Entity",
	429: "Too Many Requests",
	500: "Internal Server Error",
	503: "Service Unavailable",
}

// StatusText returns the reason phrase for a status code.
func StatusText(code int) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return "Unknown"
}

// Bytes serializes the response to its wire form. Every response closes the
// connection and carries a permissive CORS origin. acceptEncoding is the
// request's Accept-Encoding header; it is honored only when compress is
// true.
func (r *Response) Bytes(acceptEncoding string, compress bool) []byte {
	body := r.Body
	encoding := ""
	if compress && len(body) > 0 {
		body, encoding = encodeBody(body, acceptEncoding)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", r.Status, StatusText(r.Status))
	fmt.Fprintf(&b, "Content-Type: %s\r\n", r.ContentType)
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	b.WriteString("Connection: close\r\n")
	b.WriteString("Access-Control-Allow-Origin: *\r\n")
	if encoding != "" {
		fmt.Fprintf(&b, "Content-Encoding: %s\r\n", encoding)
	}
	if r.Location != "" {
		fmt.Fprintf(&b, "Location: %s\r\n", r.Location)
	}
	if r.Filename != "" {
		fmt.Fprintf(&b, "Content-Disposition: attachment; filename=\"%s\"\r\n", r.Filename)
	}
	if r.Static {
		b.WriteString("Cache-Control: public, max-age=31536000\r\n")
	}
	if r.ETag != "" {
		fmt.Fprintf(&b, "ETag: %q\r\n", r.ETag)
	}
	for _, h := range r.Extra {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	for _, c := range r.Cookies {
		fmt.Fprintf(&b, "Set-Cookie: %s\r\n", c)
	}
	b.WriteString("\r\n")
	b.Write(body)
	return b.Bytes()
}

// encodeBody compresses the body with the first encoding from the
// Accept-Encoding header we support, in the order the client listed them.
func encodeBody(body []byte, acceptEncoding string) ([]byte, string) {
	for _, token := range strings.Split(acceptEncoding, ",") {
		token = strings.TrimSpace(token)
		if semi := strings.Index(token, ";"); semi >= 0 {
			token = strings.TrimSpace(token[:semi])
		}
		switch token {
		case "br":
			var buf bytes.Buffer
			w := brotli.NewWriter(&buf)
			if _, err := w.Write(body); err == nil && w.Close() == nil {
				return buf.Bytes(), "br"
			}
		case "gzip":
			var buf bytes.Buffer
			w := gzip.NewWriter(&buf)
			if _, err := w.Write(body); err == nil && w.Close() == nil {
				return buf.Bytes(), "gzip"
			}
		case "deflate":
			var buf bytes.Buffer
			w, err := flate.NewWriter(&buf, flate.DefaultCompression)
			if err != nil {
				continue
			}
			if _, err := w.Write(body); err == nil && w.Close() == nil {
				return buf.Bytes(), "deflate"
			}
		}
	}
	return body, ""
}

var mimeTypes = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".css":   "text/css",
	".js":    "application/javascript",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".webp":  "image/webp",
	".txt":   "text/plain",
	".xml":   "application/xml",
	".pdf":   "application/pdf",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".mp4":   "video/mp4",
	".mp3":   "audio/mpeg",
	".wasm":  "application/wasm",
}

// MimeType resolves a file extension to a content type, defaulting to
// application/octet-stream.
func MimeType(path string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "application/octet-stream"
}
