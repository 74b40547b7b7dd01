// Package errors defines the typed errors shared across the server and the
// template renderer.
package errors

import (
	stderrors "errors"
	"fmt"
	"sync"
	"time"
)

// RequestError represents a request-handling failure mapped to an HTTP status.
type RequestError struct {
	Status    int
	Message   string
	Timestamp time.Time
}

// Error implements the error interface
func (e *RequestError) Error() string {
	return fmt.Sprintf("request error %d: %s", e.Status, e.Message)
}

// NewRequestError creates a RequestError stamped with the current time.
func NewRequestError(status int, format string, args ...any) *RequestError {
	return &RequestError{
		Status:    status,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	}
}

// BadRequest builds a 400 error.
func BadRequest(format string, args ...any) *RequestError {
	return NewRequestError(400, format, args...)
}

// PayloadTooLarge builds a 413 error.
func PayloadTooLarge(format string, args ...any) *RequestError {
	return NewRequestError(413, format, args...)
}

// TooManyRequests builds a 429 error.
func TooManyRequests(format string, args ...any) *RequestError {
	return NewRequestError(429, format, args...)
}

// StatusOf maps an error to its HTTP status, defaulting to 500.
func StatusOf(err error) int {
	var re *RequestError
	if stderrors.As(err, &re) {
		return re.Status
	}
	return 500
}

// TemplateError represents a failure while parsing or rendering a template.
type TemplateError struct {
	Template string
	Line     int
	Message  string
}

// Error implements the error interface
func (e *TemplateError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("template %s:%d: %s", e.Template, e.Line, e.Message)
	}
	return fmt.Sprintf("template line %d: %s", e.Line, e.Message)
}

// NewTemplateError creates a TemplateError for the given source line.
func NewTemplateError(template string, line int, format string, args ...any) *TemplateError {
	return &TemplateError{
		Template: template,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Collector accumulates non-fatal errors observed while serving, so the
// accept loop can keep running while failures remain inspectable.
type Collector struct {
	mutex  sync.RWMutex
	errors []error
}

// NewCollector creates a new error collector
func NewCollector() *Collector {
	return &Collector{errors: make([]error, 0)}
}

// Add records an error. Nil errors are ignored.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err)
}

// Errors returns a copy of the recorded errors.
func (c *Collector) Errors() []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	out := make([]error, len(c.errors))
	copy(out, c.errors)
	return out
}

// Count returns the number of recorded errors.
func (c *Collector) Count() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors)
}

// Clear drops all recorded errors.
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = c.errors[:0]
}
