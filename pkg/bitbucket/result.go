package bitbucket

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Payload is a decoded 200 response. Value holds the generic JSON tree
// (map[string]any, []any, string, float64, bool or nil). A body that is not
// valid JSON leaves Value nil.
type Payload struct {
	Value any
	Body  []byte
}

// Decode maps the raw body onto v, for callers that want a concrete shape.
func (p Payload) Decode(v any) error {
	if len(p.Body) == 0 {
		return errors.New("bitbucket: empty payload")
	}
	if err := json.Unmarshal(p.Body, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// Object returns the payload as a JSON object when it is one.
func (p Payload) Object() (map[string]any, bool) {
	m, ok := p.Value.(map[string]any)
	return m, ok
}

// StatusError carries a non-200 response envelope. The body is not decoded.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bitbucket: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, bodySnippet(e.Body))
}

// TransportError wraps a failure below HTTP: DNS, connect, TLS, timeout or
// context cancellation.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bitbucket: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a StatusError with status 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
