// Package fetch provides the HTTP GET client shared by the WikiCFP scraper and the
// reference-data loader.
//
// Requests carry a fixed User-Agent and timeout. Transport errors and 5xx responses are
// retried a bounded number of times with exponential backoff; anything else is returned
// as an *UpstreamError.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/cfp-search/internal/metrics"
)

const (
	DefaultUserAgent = "cfp-search/1.0 (github.com/pfrederiksen/cfp-search)"
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 2

	maxBodyBytes = 10 << 20
)

// ErrBodyTooLarge is returned when a response exceeds the body limit
var ErrBodyTooLarge = errors.New("response body too large")

// Getter fetches the body of a URL. target labels the request for logs and metrics.
type Getter interface {
	Get(ctx context.Context, target, url string) ([]byte, error)
}

// UpstreamError reports that a remote resource could not be fetched
type UpstreamError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	// Err is the transport or read error; nil for a plain bad status
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed later
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// Options configures a Client
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	Retries       int
	RetryInterval time.Duration
	Metrics       *metrics.Metrics
}

// Client is a retrying HTTP GET client
type Client struct {
	httpClient    *http.Client
	userAgent     string
	retries       uint64
	retryInterval time.Duration
	maxBody       int64
	metrics       *metrics.Metrics
}

// New creates a Client, filling zero options with defaults
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent:     opts.UserAgent,
		retries:       uint64(opts.Retries),
		retryInterval: opts.RetryInterval,
		maxBody:       maxBodyBytes,
		metrics:       opts.Metrics,
	}
}

// Get fetches url, retrying transient failures
func (c *Client) Get(ctx context.Context, target, url string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.retries), ctx)

	var body []byte
	err := backoff.Retry(func() error {
		start := time.Now()
		var err error
		body, err = c.get(ctx, url)
		c.metrics.ObserveFetch(target, err, time.Since(start))

		var upstream *UpstreamError
		if errors.As(err, &upstream) && !upstream.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
	if err != nil {
		var upstream *UpstreamError
		if !errors.As(err, &upstream) {
			err = &UpstreamError{URL: url, Err: err}
		}
		return nil, err
	}

	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > c.maxBody {
		return nil, &UpstreamError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w (limit %d bytes)", ErrBodyTooLarge, c.maxBody),
		}
	}

	return body, nil
}
