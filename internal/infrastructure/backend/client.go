// Package backend implements the HTTP client for the Comercial Comarapa
// catalog API. The backend owns all persistence, matching, and AI
// extraction; this package only speaks its wire contract.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/comarapa/catalog-desk/internal/domain"
)

// Options configures a Client.
type Options struct {
	// Timeout applies to ordinary API calls.
	Timeout time.Duration
	// ImportTimeout applies to the AI extraction endpoint, which can
	// legitimately run for minutes.
	ImportTimeout time.Duration
	MaxRetries    int
}

// Client handles communication with the Comercial Comarapa backend API
type Client struct {
	httpClient   *http.Client
	importClient *http.Client
	baseURL      string
	maxRetries   int
	rateLimiter  *rate.Limiter
	debug        bool
	log          *zap.SugaredLogger
}

// NewClient creates a new backend API client
func NewClient(baseURL string, opts Options, log *zap.SugaredLogger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	importTimeout := opts.ImportTimeout
	if importTimeout <= 0 {
		importTimeout = 120 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	// Keep a polite ceiling on backend traffic; bursts cover a staff
	// member clicking through results quickly.
	limiter := rate.NewLimiter(rate.Limit(20), 40)

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		importClient: &http.Client{Timeout: importTimeout},
		baseURL:      baseURL,
		maxRetries:   maxRetries,
		rateLimiter:  limiter,
		log:          log,
	}
}

// SetDebug enables request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the wait before the given retry attempt:
// 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	return 500 * time.Millisecond << (attempt - 1)
}

// do executes one HTTP request and reads the full body. Transport
// failures are mapped to the timeout/unreachable sentinels so callers
// can produce the right user-facing message.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, int, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "catalog-desk/1.0")

	if c.debug && c.log != nil {
		c.log.Debugw("backend request", "method", method, "url", reqURL)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, 0, transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: reading response: %v", domain.ErrBackendUnavailable, err)
	}

	if c.debug && c.log != nil {
		c.log.Debugw("backend response", "method", method, "url", reqURL,
			"status", resp.StatusCode, "bytes", len(respBody))
	}

	return respBody, resp.StatusCode, nil
}

// doWithRetry retries transient failures (transport errors and 5xx
// responses) with exponential backoff. Client errors return immediately.
func (c *Client) doWithRetry(ctx context.Context, hc *http.Client, method, path string, query url.Values, makeBody func() (io.Reader, string, error)) ([]byte, int, error) {
	var lastErr error
	var lastStatus int
	var lastBody []byte

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("rate limiter: %w", err)
		}

		body, contentType, err := makeBody()
		if err != nil {
			return nil, 0, err
		}

		respBody, status, err := c.do(ctx, hc, method, path, query, body, contentType)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, err
			}
			lastErr = err
			if c.log != nil {
				c.log.Warnw("backend request failed", "method", method, "path", path,
					"attempt", attempt, "error", err)
			}
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		if status >= http.StatusInternalServerError {
			lastErr = nil
			lastStatus = status
			lastBody = respBody
			if c.log != nil {
				c.log.Warnw("backend server error", "method", method, "path", path,
					"attempt", attempt, "status", status)
			}
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		return respBody, status, nil
	}

	if lastErr != nil {
		return nil, 0, lastErr
	}
	return lastBody, lastStatus, nil
}

// getJSON issues a GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	body, status, err := c.doWithRetry(ctx, c.httpClient, http.MethodGet, path, query, emptyBody)
	if err != nil {
		return err
	}
	return c.decode(path, body, status, out)
}

// postJSON issues a POST with a JSON payload and decodes a 200 response
// into out. The extended import timeout is used when long is true.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}, long bool) error {
	hc := c.httpClient
	if long {
		hc = c.importClient
	}

	makeBody := func() (io.Reader, string, error) {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}

	body, status, err := c.doWithRetry(ctx, hc, http.MethodPost, path, nil, makeBody)
	if err != nil {
		return err
	}
	return c.decode(path, body, status, out)
}

// decode maps non-200 statuses to errors and unmarshals the body.
func (c *Client) decode(path string, body []byte, status int, out interface{}) error {
	if status == http.StatusNotFound {
		return domain.ErrProductNotFound
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return newStatusError(status, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", domain.ErrBackendFailure, path, err)
	}
	return nil
}

func emptyBody() (io.Reader, string, error) {
	return nil, "", nil
}
