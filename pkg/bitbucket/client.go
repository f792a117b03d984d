// Package bitbucket is a credential-bearing client for a fixed set of
// Bitbucket Cloud REST v2 read endpoints.
package bitbucket

import (
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/samvad-hq/bitbucket-harvester/pkg/httpclient"
)

const (
	// DefaultAPIURL is the Bitbucket Cloud v2 API root.
	DefaultAPIURL = "https://bitbucket.org/api/2.0/"

	// DefaultPageLen is the page length a new Client starts with.
	DefaultPageLen = 25
	// MinPageLen is the smallest page length SetPageLen keeps.
	MinPageLen = 10
	// MaxPageLen is the largest page length SetPageLen keeps.
	MaxPageLen = 100

	defaultTimeout     = 5 * time.Second
	defaultHTTPVersion = "1.0"
)

// ErrMissingCredentials is returned by New when the username or password is empty.
var ErrMissingCredentials = errors.New("bitbucket: username and password are required")

// credentials are fixed for the lifetime of a Client.
type credentials struct {
	username string
	password string
}

func (c credentials) authorization() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.username+":"+c.password))
}

// HTTPArgs overrides the per-request transport defaults. Zero fields keep the
// default; Headers are merged key by key over the default headers.
type HTTPArgs struct {
	Method      string            `json:"method" yaml:"method"`
	Timeout     time.Duration     `json:"timeout" yaml:"timeout"`
	HTTPVersion string            `json:"http_version" yaml:"http_version"`
	Headers     map[string]string `json:"headers" yaml:"headers"`
	Body        []byte            `json:"-" yaml:"-"`
}

func (a HTTPArgs) clone() HTTPArgs {
	if a.Headers != nil {
		h := make(map[string]string, len(a.Headers))
		for k, v := range a.Headers {
			h[k] = v
		}
		a.Headers = h
	}
	if a.Body != nil {
		a.Body = append([]byte(nil), a.Body...)
	}
	return a
}

// Client holds the API root, credentials, page length and transport overrides.
// Configuration setters are safe to call concurrently with requests; a request
// uses the configuration observed when it starts.
type Client struct {
	creds     credentials
	transport httpclient.Client
	log       Logger

	mu       sync.RWMutex
	apiURL   string
	pageLen  int
	httpArgs HTTPArgs
}

// Option customises a Client at construction time.
type Option func(*Client)

// WithTransport replaces the default resty-backed transport.
func WithTransport(t httpclient.Client) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// WithAPIURL overrides DefaultAPIURL.
func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = u }
}

// WithPageLen sets the initial page length (clamped).
func WithPageLen(n int) Option {
	return func(c *Client) { c.pageLen = clampPageLen(n) }
}

// WithHTTPArgs sets the initial transport overrides.
func WithHTTPArgs(args HTTPArgs) Option {
	return func(c *Client) { c.httpArgs = args.clone() }
}

// New builds a Client for the given credentials.
func New(username, password string, opts ...Option) (*Client, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		creds:   credentials{username: username, password: password},
		log:     noopLogger{},
		apiURL:  DefaultAPIURL,
		pageLen: DefaultPageLen,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.transport == nil {
		c.transport = httpclient.NewRestyClient(defaultTimeout)
	}
	return c, nil
}

// Username returns the account the client authenticates as.
func (c *Client) Username() string { return c.creds.username }

// APIURL returns the API root.
func (c *Client) APIURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiURL
}

// SetAPIURL replaces the API root. No validation is performed.
func (c *Client) SetAPIURL(u string) {
	c.mu.Lock()
	c.apiURL = u
	c.mu.Unlock()
}

// PageLen returns the page length used for paginated endpoints.
func (c *Client) PageLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pageLen
}

// SetPageLen stores n clamped to [MinPageLen, MaxPageLen].
func (c *Client) SetPageLen(n int) {
	c.mu.Lock()
	c.pageLen = clampPageLen(n)
	c.mu.Unlock()
}

// HTTPArgs returns a copy of the transport overrides.
func (c *Client) HTTPArgs() HTTPArgs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.httpArgs.clone()
}

// SetHTTPArgs replaces the transport overrides.
func (c *Client) SetHTTPArgs(args HTTPArgs) {
	c.mu.Lock()
	c.httpArgs = args.clone()
	c.mu.Unlock()
}

func (c *Client) snapshot() (apiURL string, pageLen int, args HTTPArgs) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiURL, c.pageLen, c.httpArgs.clone()
}

func clampPageLen(n int) int {
	switch {
	case n < MinPageLen:
		return MinPageLen
	case n > MaxPageLen:
		return MaxPageLen
	default:
		return n
	}
}

// defaultRequest returns the request defaults before overrides are applied.
func (c *Client) defaultRequest(rawURL, method string) httpclient.Request {
	if method == "" {
		method = http.MethodGet
	}
	return httpclient.Request{
		Method:      method,
		URL:         rawURL,
		Timeout:     defaultTimeout,
		HTTPVersion: defaultHTTPVersion,
		Headers: map[string]string{
			"Authorization": c.creds.authorization(),
		},
	}
}

// mergeArgs applies overrides on top of req; override values win.
func mergeArgs(req httpclient.Request, args HTTPArgs) httpclient.Request {
	if args.Method != "" {
		req.Method = args.Method
	}
	if args.Timeout > 0 {
		req.Timeout = args.Timeout
	}
	if args.HTTPVersion != "" {
		req.HTTPVersion = args.HTTPVersion
	}
	if args.Body != nil {
		req.Body = args.Body
	}
	if len(args.Headers) > 0 {
		headers := make(map[string]string, len(req.Headers)+len(args.Headers))
		for k, v := range req.Headers {
			headers[http.CanonicalHeaderKey(k)] = v
		}
		for k, v := range args.Headers {
			headers[http.CanonicalHeaderKey(k)] = v
		}
		req.Headers = headers
	}
	return req
}
