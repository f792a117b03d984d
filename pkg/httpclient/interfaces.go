package httpclient

import (
	"context"
	"net/http"
	"time"
)

// Request describes a single outbound call. It is built per call and never reused.
type Request struct {
	Method      string
	URL         string
	Timeout     time.Duration
	HTTPVersion string
	Headers     map[string]string
	Body        []byte
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
