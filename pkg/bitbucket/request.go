package bitbucket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Do executes a typed endpoint. Paginated endpoints always use the client's
// configured page length.
func (c *Client) Do(ctx context.Context, ep Endpoint) (Payload, error) {
	apiURL, pageLen, args := c.snapshot()
	if re, ok := paginated(ep); ok {
		re.PageLen = pageLen
		ep = re
	}

	u, err := buildURL(apiURL, ep)
	if err != nil {
		return Payload{}, err
	}
	return c.execute(ctx, u, "", args)
}

// MakeRequest performs exactly one request against rawURL. method defaults to
// GET. A 200 response is JSON-decoded into a Payload; any other status returns
// a *StatusError and transport failures return a *TransportError.
func (c *Client) MakeRequest(ctx context.Context, rawURL, method string) (Payload, error) {
	_, _, args := c.snapshot()
	return c.execute(ctx, rawURL, method, args)
}

func (c *Client) execute(ctx context.Context, rawURL, method string, args HTTPArgs) (Payload, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req := mergeArgs(c.defaultRequest(rawURL, method), args)

	start := time.Now()
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		c.log.WarnObj("bitbucket request failed", "bitbucket_transport_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
		return Payload{}, &TransportError{Method: req.Method, URL: req.URL, Err: err}
	}

	status := resp.StatusCode()
	c.log.DebugObj("bitbucket request completed", "bitbucket_request", map[string]any{
		"method":     req.Method,
		"url":        req.URL,
		"status":     status,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	body := resp.Body()
	if status != http.StatusOK {
		return Payload{}, &StatusError{
			Method:     req.Method,
			URL:        req.URL,
			StatusCode: status,
			Header:     resp.Header(),
			Body:       body,
		}
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		c.log.DebugObj("bitbucket response is not json", "bitbucket_decode", map[string]any{
			"url":   req.URL,
			"error": err.Error(),
		})
		value = nil
	}
	return Payload{Value: value, Body: body}, nil
}
