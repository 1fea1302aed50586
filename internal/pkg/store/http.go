package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/internetarchive/linzstac/internal/pkg/utils"
	"golang.org/x/net/http/httpproxy"
)

// HTTPOptions configures the HTTP client.
type HTTPOptions struct {
	// Timeout for individual requests.
	// Default: 60s
	Timeout time.Duration

	// RetryAttempts is the maximum number of retries on transport errors and 5xx.
	// Default: 3
	RetryAttempts int

	// RetryBackoff is the initial backoff duration, doubled on every retry.
	// Default: 500ms
	RetryBackoff time.Duration

	// Proxy overrides the proxy read from the environment.
	Proxy string

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultHTTPOptions returns options with sensible defaults.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout:       60 * time.Second,
		RetryAttempts: 3,
		RetryBackoff:  500 * time.Millisecond,
		UserAgent:     "linzstac/" + utils.GetVersion().Version,
	}
}

// NewHTTPClient returns an HTTP client honouring the proxy settings of opts.
// A zero timeout disables the client deadline.
func NewHTTPClient(opts HTTPOptions) *http.Client {
	proxyConfig := httpproxy.FromEnvironment()
	if opts.Proxy != "" {
		proxyConfig.HTTPProxy = opts.Proxy
		proxyConfig.HTTPSProxy = opts.Proxy
	}
	proxyFunc := proxyConfig.ProxyFunc()

	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			return proxyFunc(req.URL)
		},
		MaxIdleConnsPerHost: 64,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}
}

// HTTPStore reads documents over HTTP.
type HTTPStore struct {
	client *http.Client
	opts   HTTPOptions
}

// NewHTTPStore creates a new HTTP store with the given options.
func NewHTTPStore(opts HTTPOptions) *HTTPStore {
	return &HTTPStore{
		client: NewHTTPClient(opts),
		opts:   opts,
	}
}

// Get implements CatalogStore.
func (s *HTTPStore) Get(ctx context.Context, href string, opts AccessOptions, dst any) error {
	if !opts.SkipSignature {
		return ErrSignedAccess
	}

	target, err := HTTPLocation(href, opts.Region)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= s.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			if err := s.backoff(ctx, attempt); err != nil {
				return err
			}
		}

		retry, err := s.get(ctx, target, dst)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("get %s failed after %d attempts: %w", target, s.opts.RetryAttempts+1, lastErr)
}

func (s *HTTPStore) get(ctx context.Context, target string, dst any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	if s.opts.UserAgent != "" {
		req.Header.Set("User-Agent", s.opts.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return true, fmt.Errorf("%w: %s", ErrServerError, resp.Status)
	}

	if err := checkStatusCode(resp.StatusCode); err != nil {
		return false, fmt.Errorf("%s: %w", target, err)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", target, err)
	}

	return false, nil
}

func (s *HTTPStore) backoff(ctx context.Context, attempt int) error {
	delay := s.opts.RetryBackoff << (attempt - 1)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func checkStatusCode(code int) error {
	switch {
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusForbidden, code == http.StatusUnauthorized:
		return ErrForbidden
	case code < 200 || code >= 300:
		return fmt.Errorf("unexpected status code %d", code)
	}
	return nil
}

// HTTPLocation expands s3://bucket/key locations to the regional virtual-hosted
// URL of the bucket. Other locations are returned unchanged.
func HTTPLocation(href, region string) (string, error) {
	if !strings.HasPrefix(strings.ToLower(href), "s3://") {
		return href, nil
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", href, err)
	}

	if region == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com%s", u.Host, u.Path), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com%s", u.Host, region, u.Path), nil
}
