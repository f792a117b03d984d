package httpclient

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	// http1 never negotiates HTTP/2; used for "1.0" and "1.1" requests.
	http1 *resty.Client
	// http2 keeps the default transport and may upgrade to HTTP/2 over TLS.
	http2 *resty.Client
	// fallbackTimeout bounds requests that carry no Request.Timeout.
	fallbackTimeout time.Duration
}

// NewRestyClient creates a new RestyClient with the specified fallback timeout.
// The resty clients carry no timeout of their own; each request is bounded by
// a context deadline from Request.Timeout, or the fallback when that is unset.
func NewRestyClient(timeout time.Duration) *RestyClient {
	h1 := newRestyBaseClient(0)
	h1.SetTransport(http1Transport())
	return &RestyClient{
		http1:           h1,
		http2:           newRestyBaseClient(0),
		fallbackTimeout: timeout,
	}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client. A zero timeout leaves the
// client unbounded.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	c.SetRetryCount(0)
	return c
}

// http1Transport clones the default transport with HTTP/2 negotiation disabled.
func http1Transport() *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ForceAttemptHTTP2 = false
	tr.TLSNextProto = make(map[string]func(string, *tls.Conn) http.RoundTripper)
	return tr
}

// Do performs a single HTTP request. Non-2xx statuses are not errors; only
// transport failures are returned as err.
func (r *RestyClient) Do(ctx context.Context, in Request) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := in.Timeout
	if timeout <= 0 {
		timeout = r.fallbackTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = http.MethodGet
	}

	req := r.clientFor(in.HTTPVersion).R().SetContext(ctx)
	if len(in.Headers) > 0 {
		req.SetHeaders(in.Headers)
	}
	if in.Body != nil {
		req.SetBody(in.Body)
	}

	resp, err := req.Execute(method, in.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

func (r *RestyClient) clientFor(version string) *resty.Client {
	switch strings.TrimSpace(version) {
	case "2", "2.0":
		return r.http2
	default:
		return r.http1
	}
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
