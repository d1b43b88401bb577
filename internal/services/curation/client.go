// Package curation wraps the remote curation service that categorizes
// documents and extracts citation metadata from PDF content.
package curation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	contentTypePDF = "pdf"

	defaultClassifyTimeout = 60 * time.Second
	defaultExtractTimeout  = 120 * time.Second
	defaultRetryMaxDelay   = 10 * time.Second
	defaultRetryBaseDelay  = 1 * time.Second
	defaultRetryAttempts   = 5
)

// Config captures the runtime settings required to talk to the service.
type Config struct {
	BaseURL                string
	ClassifyTimeoutSeconds int
	ExtractTimeoutSeconds  int
}

// Client wraps the curation HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	classifyTimeout time.Duration
	extractTimeout  time.Duration

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 5).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a curation client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			BaseURL:                strings.TrimSpace(cfg.BaseURL),
			ClassifyTimeoutSeconds: cfg.ClassifyTimeoutSeconds,
			ExtractTimeoutSeconds:  cfg.ExtractTimeoutSeconds,
		},
		classifyTimeout:  defaultClassifyTimeout,
		extractTimeout:   defaultExtractTimeout,
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	if cfg.ClassifyTimeoutSeconds > 0 {
		client.classifyTimeout = time.Duration(cfg.ClassifyTimeoutSeconds) * time.Second
	}
	if cfg.ExtractTimeoutSeconds > 0 {
		client.extractTimeout = time.Duration(cfg.ExtractTimeoutSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{}
	}
	return client
}

// request is the payload both endpoints accept. Headers names the metadata
// fields the caller wants back; the categorize endpoint requires the key to
// be present even when empty.
type request struct {
	EncodedContent string   `json:"encoded_content"`
	ContentType    string   `json:"content_type"`
	Headers        []string `json:"headers"`
	Category       string   `json:"category,omitempty"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("curation request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Categorize submits PDF content and returns the category the service
// assigned to it.
func (c *Client) Categorize(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", errors.New("curation categorize: content required")
	}
	payload := request{
		EncodedContent: base64.StdEncoding.EncodeToString(content),
		ContentType:    contentTypePDF,
		Headers:        []string{},
	}
	body, err := c.postWithRetry(ctx, "/categorize", payload, c.classifyTimeout, "curation categorize")
	if err != nil {
		return "", err
	}
	var parsed struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("curation categorize: decode response: %w", err)
	}
	category := strings.TrimSpace(parsed.Category)
	if category == "" {
		return "", errors.New("curation categorize: empty category in response")
	}
	return category, nil
}

// Extract submits PDF content and returns the requested metadata fields.
// The response is a flat map keyed by field name; non-string values are
// rendered to their JSON text so callers always see strings.
func (c *Client) Extract(ctx context.Context, content []byte, fields []string, category string) (map[string]string, error) {
	if len(content) == 0 {
		return nil, errors.New("curation extract: content required")
	}
	if len(fields) == 0 {
		return nil, errors.New("curation extract: at least one field required")
	}
	payload := request{
		EncodedContent: base64.StdEncoding.EncodeToString(content),
		ContentType:    contentTypePDF,
		Headers:        fields,
		Category:       strings.TrimSpace(category),
	}
	body, err := c.postWithRetry(ctx, "/curadoria", payload, c.extractTimeout, "curation extract")
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("curation extract: decode response: %w", err)
	}
	metadata := make(map[string]string, len(raw))
	for field, value := range raw {
		metadata[field] = stringifyValue(value)
	}
	return metadata, nil
}

func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

func (c *Client) postWithRetry(ctx context.Context, path string, payload request, timeout time.Duration, op string) ([]byte, error) {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.postOnce(ctx, path, payload, timeout)
		if err == nil {
			return body, nil
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return nil, err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return nil, fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) postOnce(ctx context.Context, path string, payload request, timeout time.Duration) ([]byte, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return nil, fmt.Errorf("curation request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("curation request: encode body: %w", err)
	}
	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("curation request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("curation request: http error (timeout=%s): %w", timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("curation request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	return body, nil
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return c.backoffDelay(attempt), true
	}

	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	if base <= 0 {
		base = defaultRetryBaseDelay
	}
	delay := base << (attempt - 1)
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}
