package predict

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single prediction request.
const DefaultTimeout = 3000 * time.Millisecond

// DefaultEndpoint is where the bundled server listens by default.
const DefaultEndpoint = "http://127.0.0.1:5000/output"

// QueryParam carries the text in the GET request.
const QueryParam = "string"

const maxResponseBytes = 64 << 10

// userAgentTransport stamps every request with the client identity.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(req)
}

// Client queries a remote prediction endpoint.
type Client struct {
	endpoint *url.URL
	http     *http.Client
	timeout  time.Duration
	logger   *zap.Logger
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient returns a client for endpoint, e.g. http://host:5000/output.
func NewClient(endpoint, version string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid prediction endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid prediction endpoint %q: scheme must be http or https", endpoint)
	}

	c := &Client{
		endpoint: u,
		http: &http.Client{
			Transport: &userAgentTransport{
				base:      http.DefaultTransport,
				userAgent: "typeahead/" + version,
			},
		},
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Timeout returns the per-request deadline.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Predict issues GET <endpoint>?string=<text> and returns the first element of
// each entry of the response list.
func (c *Client) Predict(ctx context.Context, text string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.endpoint
	q := u.Query()
	q.Set(QueryParam, text)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("prediction request failed: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading prediction response: %w", err)
	}

	words, err := ParseResponse(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("prediction received",
		zap.String("text", text),
		zap.Strings("words", words),
		zap.Duration("elapsed", time.Since(start)),
	)
	return words, nil
}

// ParseResponse extracts suggestion words from a body shaped like
// [["word", score], ...]. Entries that are not lists, or whose first element
// is not a string, yield "".
func ParseResponse(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, ErrMalformedResponse
	}

	entries := root.Array()
	words := make([]string, 0, len(entries))
	for _, e := range entries {
		first := e.Get("0")
		if !e.IsArray() || first.Type != gjson.String {
			words = append(words, "")
			continue
		}
		words = append(words, first.String())
	}
	return words, nil
}
