// Package router holds the route table: registered routes, route groups,
// static file mappings, and the path matcher that binds parameter segments.
package router

// Method is one of the seven supported HTTP verbs.
type Method int

const (
	GET Method = iota
	POST
	PUT
	DELETE
	PATCH
	OPTIONS
	HEAD
)

var methodNames = map[string]Method{
	"GET":     GET,
	"POST":    POST,
	"PUT":     PUT,
	"DELETE":  DELETE,
	"PATCH":   PATCH,
	"OPTIONS": OPTIONS,
	"HEAD":    HEAD,
}

// ParseMethod maps a verb token from the request line to a Method.
// Unknown verbs report false and never match any route.
func ParseMethod(s string) (Method, bool) {
	m, ok := methodNames[s]
	return m, ok
}

func (m Method) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	case PUT:
		return "PUT"
	case DELETE:
		return "DELETE"
	case PATCH:
		return "PATCH"
	case OPTIONS:
		return "OPTIONS"
	case HEAD:
		return "HEAD"
	}
	return "UNKNOWN"
}
