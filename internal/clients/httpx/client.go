// Package httpx is the shared HTTP transport for the service clients.
// It owns base-URL resolution, authentication headers, finite timeouts,
// proactive rate limiting, bounded retry for idempotent reads, and the
// mapping from transport failures to the domain error taxonomy.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/logger"
)

const (
	// DefaultTimeout bounds every request when configuration supplies none.
	DefaultTimeout = 15 * time.Second

	// DefaultRetryCount is how many times idempotent reads are retried on
	// transient failures. Writes are never retried.
	DefaultRetryCount = 2

	// retryBaseDelay is the initial backoff between read retries.
	retryBaseDelay = 250 * time.Millisecond

	// defaultRequestRate throttles requests per client (req/sec).
	defaultRequestRate = 10

	// maxErrorBodyBytes caps how much of an error body is kept for messages.
	maxErrorBodyBytes = 512
)

// Config holds the per-service transport settings. Values come from the
// immutable application configuration at construction time.
type Config struct {
	// BaseURL is the service root, e.g. "https://api.gigaio.com/fabrexfleet".
	BaseURL string

	// Timeout bounds each request. Zero means DefaultTimeout; never infinite.
	Timeout time.Duration

	// UserAgent identifies this client to the service.
	UserAgent string

	// RetryCount is the retry budget for idempotent reads.
	// Negative disables retries; zero means DefaultRetryCount.
	RetryCount int

	// RequestsPerSecond throttles outbound requests. Zero uses the default.
	RequestsPerSecond float64
}

// Client is a thin JSON-over-HTTP client bound to one service base URL.
type Client struct {
	http    *http.Client
	base    *url.URL
	ua      string
	retries int
	limiter *rate.Limiter
}

// New creates a client for a service root.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q must be absolute", domain.ErrInvalidInput, cfg.BaseURL)
	}
	// Relative resolution replaces the last path segment unless the base
	// ends with a slash.
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := cfg.RetryCount
	if retries == 0 {
		retries = DefaultRetryCount
	}
	if retries < 0 {
		retries = 0
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestRate
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "FabreXLens/dev"
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		base:    base,
		ua:      ua,
		retries: retries,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// GetJSON performs an idempotent read and decodes the JSON body into out.
// Transient failures are retried up to the configured budget.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, auth domain.AuthContext, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			logger.Debug("httpx: retrying GET %s in %s (attempt %d)", path, delay, attempt+1)
			select {
			case <-ctx.Done():
				return mapContextErr(ctx.Err())
			case <-time.After(delay):
			}
		}

		_, lastErr = c.do(ctx, http.MethodGet, path, query, auth, nil, out)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// PostJSON performs a write. Writes are non-idempotent and never retried.
func (c *Client) PostJSON(ctx context.Context, path string, auth domain.AuthContext, body, out any) error {
	_, err := c.do(ctx, http.MethodPost, path, nil, auth, body, out)
	return err
}

// PostJSONWithHeaders is PostJSON but also surfaces the response headers,
// for services that return material there (e.g. Redfish X-Auth-Token).
func (c *Client) PostJSONWithHeaders(ctx context.Context, path string, auth domain.AuthContext, body, out any) (http.Header, error) {
	return c.do(ctx, http.MethodPost, path, nil, auth, body, out)
}

// do issues one request and maps failures onto the domain taxonomy.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, auth domain.AuthContext, body, out any) (http.Header, error) {
	target, err := c.base.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("resolve path %q: %w", path, err)
	}
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	applyAuth(req, auth)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, mapContextErr(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, mapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		return resp.Header, fmt.Errorf("%s %s: HTTP %d: %w", method, path, resp.StatusCode, domain.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return resp.Header, fmt.Errorf("%s %s: %w", method, path, &domain.RemoteError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(snippet)),
		})
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.Header, fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrMalformedResponse, err)
		}
	}
	return resp.Header, nil
}

// applyAuth sets the request's authentication headers. Bearer wins when
// both forms are present.
func applyAuth(req *http.Request, auth domain.AuthContext) {
	switch {
	case auth.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+auth.BearerToken)
	case auth.BasicUser != "":
		req.SetBasicAuth(auth.BasicUser, auth.BasicPass)
	}
}

// mapTransportErr converts net/http failures onto the domain taxonomy.
func mapTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
}

// mapContextErr converts context termination during waits.
func mapContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}

// retryable reports whether a read may be reissued safely.
func retryable(err error) bool {
	return errors.Is(err, domain.ErrTimeout) || errors.Is(err, domain.ErrUnreachable)
}

// Page is the cursor-paginated list envelope shared by the GigaIO services.
type Page[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next,omitempty"`
}

// PageQuery converts pagination parameters into query values.
func PageQuery(p domain.Pagination) url.Values {
	if p.Limit == 0 && p.Cursor == "" {
		return nil
	}
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", p.Limit))
	}
	if p.Cursor != "" {
		q.Set("cursor", p.Cursor)
	}
	return q
}
