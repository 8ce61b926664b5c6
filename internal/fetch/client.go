// Package fetch retrieves page content for the extraction engine. It
// owns the HTTP session, rate limiting, and retry policy; the engine
// only ever sees the returned bytes and headers.
package fetch

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/apiscope/apiscope/internal/errors"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Config holds client configuration.
type Config struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	MaxBodySize       int64
	SkipTLSVerify     bool
	Headers           map[string]string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:           30 * time.Second,
		UserAgent:         defaultUserAgent,
		RequestsPerSecond: 10,
		Burst:             5,
		MaxBodySize:       10 << 20, // 10 MB
		SkipTLSVerify:     true,
	}
}

// Response is the result of one fetch.
type Response struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Headers     map[string]string
	Body        []byte
	Duration    time.Duration
}

// Client is a rate-limited HTTP client with classified-error retries.
type Client struct {
	client  *http.Client
	config  Config
	limiter *rate.Limiter
	retrier *errors.Retrier
}

// New creates a fetch client.
func New(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 10
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = 10 << 20
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		ForceAttemptHTTP2:   true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.SkipTLSVerify,
		},
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		retrier: errors.NewRetrier(errors.DefaultRetryConfig()),
	}
}

// Get fetches a URL, waiting on the rate limiter first and retrying
// transient failures. The response body is read fully and the
// connection released on every path.
func (c *Client) Get(ctx context.Context, targetURL string) (*Response, error) {
	start := time.Now()

	var resp *Response
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Classify("rate_wait", targetURL, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
		if err != nil {
			return errors.New(errors.Unknown, "build_request", targetURL, err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		for k, v := range c.config.Headers {
			req.Header.Set(k, v)
		}

		httpResp, err := c.client.Do(req)
		if err != nil {
			return errors.Classify("get", targetURL, err)
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(httpResp.Body, c.config.MaxBodySize))
		if err != nil {
			return errors.Classify("read_body", targetURL, err)
		}

		headers := make(map[string]string, len(httpResp.Header))
		for k := range httpResp.Header {
			headers[k] = httpResp.Header.Get(k)
		}

		resp = &Response{
			URL:         targetURL,
			FinalURL:    httpResp.Request.URL.String(),
			StatusCode:  httpResp.StatusCode,
			ContentType: httpResp.Header.Get("Content-Type"),
			Headers:     headers,
			Body:        body,
		}

		if fe := errors.FromStatus("get", targetURL, httpResp.StatusCode); fe != nil && fe.Retryable() {
			return fe
		}
		return nil
	})

	if resp != nil {
		// A gated status (401/403) is still a usable response for
		// access analysis; only transport-level failures are errors.
		resp.Duration = time.Since(start)
		return resp, nil
	}
	return nil, err
}
