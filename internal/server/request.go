package server

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mintaslang/dew/internal/errors"
	"github.com/mintaslang/dew/internal/types"
)

// Request is a parsed HTTP/1.1 request. Header names are lower-cased during
// parsing; cookies and query parameters are broken out into maps.
type Request struct {
	Method   string
	Path     string
	URL      string
	Headers  map[string]string
	Query    map[string]string
	Params   map[string]string
	Cookies  map[string]string
	Body     string
	RemoteIP string
}

// ParseRequest parses a raw request read from the socket. Malformed request
// lines produce a 400 error; a body shorter than the declared
// Content-Length means the read buffer filled up, which is a 413.
func ParseRequest(raw []byte, remoteIP string, bufferFilled bool) (*Request, error) {
	text := string(raw)
	headerEnd := strings.Index(text, "\r\n\r\n")
	var head, body string
	if headerEnd >= 0 {
		head = text[:headerEnd]
		body = text[headerEnd+4:]
	} else {
		head = text
	}

	lines := strings.Split(head, "\r\n")
	if len(lines) == 0 {
		return nil, errors.BadRequest("empty request")
	}
	parts := strings.Fields(lines[0])
	if len(parts) < 3 || !strings.HasPrefix(parts[2], "HTTP/") {
		return nil, errors.BadRequest("malformed request line %q", lines[0])
	}
	method := parts[0]
	target := parts[1]

	req := &Request{
		Method:   method,
		URL:      target,
		Headers:  map[string]string{},
		Query:    map[string]string{},
		Params:   map[string]string{},
		Cookies:  map[string]string{},
		Body:     body,
		RemoteIP: remoteIP,
	}

	req.Path = target
	if q := strings.Index(target, "?"); q >= 0 {
		req.Path = target[:q]
		req.Query = parseQuery(target[q+1:])
	}

	for _, line := range lines[1:] {
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimSpace(line[colon+1:])
		req.Headers[name] = value
	}

	if cookie, ok := req.Headers["cookie"]; ok {
		req.Cookies = parseCookies(cookie)
	}

	if cl, ok := req.Headers["content-length"]; ok {
		if n, err := strconv.Atoi(cl); err == nil && n > len(body) && bufferFilled {
			return nil, errors.PayloadTooLarge("declared body of %d bytes exceeds the read buffer", n)
		}
	}

	return req, nil
}

func parseQuery(qs string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(qs, "&") {
		if pair == "" {
			continue
		}
		key, value := pair, ""
		if eq := strings.Index(pair, "="); eq >= 0 {
			key, value = pair[:eq], pair[eq+1:]
		}
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		out[key] = value
	}
	return out
}

func parseCookies(header string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(header, ";") {
		pair = strings.TrimSpace(pair)
		if eq := strings.Index(pair, "="); eq > 0 {
			out[pair[:eq]] = pair[eq+1:]
		}
	}
	return out
}

// IsWebSocketUpgrade reports whether the request asks for a websocket
// handshake.
func (r *Request) IsWebSocketUpgrade() bool {
	return strings.EqualFold(r.Headers["upgrade"], "websocket") && r.Headers["sec-websocket-key"] != ""
}

// ContentType returns the media type without parameters.
func (r *Request) ContentType() string {
	ct := r.Headers["content-type"]
	if semi := strings.Index(ct, ";"); semi >= 0 {
		ct = ct[:semi]
	}
	return strings.TrimSpace(ct)
}

// FormValues parses a urlencoded body into a map.
func (r *Request) FormValues() map[string]string {
	if r.ContentType() != "application/x-www-form-urlencoded" {
		return nil
	}
	return parseQuery(strings.TrimSpace(r.Body))
}

// ToValue exposes the request to handler bodies as a table value.
func (r *Request) ToValue() types.Value {
	headers := map[string]types.Value{}
	for k, v := range r.Headers {
		headers[k] = types.Str(v)
	}
	query := map[string]types.Value{}
	for k, v := range r.Query {
		query[k] = types.Str(v)
	}
	params := map[string]types.Value{}
	for k, v := range r.Params {
		params[k] = types.Str(v)
	}
	cookies := map[string]types.Value{}
	for k, v := range r.Cookies {
		cookies[k] = types.Str(v)
	}

	table := map[string]types.Value{
		"method":  types.Str(r.Method),
		"path":    types.Str(r.Path),
		"url":     types.Str(r.URL),
		"headers": types.Table(headers),
		"query":   types.Table(query),
		"params":  types.Table(params),
		"param":   types.Table(params),
		"cookies": types.Table(cookies),
		"body":    types.Str(r.Body),
		"ip":      types.Str(r.RemoteIP),
	}

	if form := r.FormValues(); form != nil {
		fv := map[string]types.Value{}
		for k, v := range form {
			fv[k] = types.Str(v)
		}
		table["form"] = types.Table(fv)
	}
	if r.ContentType() == "application/json" && strings.TrimSpace(r.Body) != "" {
		if v, ok := parseJSONValue(strings.TrimSpace(r.Body)); ok {
			table["json"] = v
		}
	}

	return types.Table(table)
}
