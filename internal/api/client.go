package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"aiknvm/internal/metrics"
)

// DefaultTimeout bounds every call unless overridden per call.
const DefaultTimeout = 10 * time.Second

const maxResponseBytes = 4 << 20

// TokenSource yields the current session token, if any. The client reads it
// before every call and never caches it across calls.
type TokenSource interface {
	Token(ctx context.Context) (token string, ok bool, err error)
}

type Config struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client
	Timeout    time.Duration
	Debug      bool
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

// Client is the single chokepoint for backend requests: URL resolution,
// bearer attachment, deadline enforcement and failure classification all
// happen here. It performs no retries; callers decide what is retryable.
type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Global()
	}
	return &Client{cfg: cfg}
}

type callOptions struct {
	timeout time.Duration
	headers http.Header
}

type Option func(*callOptions)

// WithTimeout overrides the default deadline for a single call.
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) { o.timeout = d }
}

// WithHeader adds a request header. A caller-supplied Content-Type replaces
// the default application/json.
func WithHeader(key, value string) Option {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// Execute performs one authenticated JSON call and decodes the response into
// out. A nil out, a 204 status or an empty 2xx body all resolve to a
// no-content success.
func (c *Client) Execute(ctx context.Context, method, path string, body, out any, opts ...Option) error {
	raw, status, err := c.ExecuteRaw(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	if status == http.StatusNoContent || len(raw) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// ExecuteRaw performs one call and returns the raw 2xx body.
func (c *Client) ExecuteRaw(ctx context.Context, method, path string, body any, opts ...Option) ([]byte, int, error) {
	start := time.Now()
	raw, status, err := c.do(ctx, method, path, body, opts...)
	elapsed := time.Since(start)

	c.cfg.Metrics.ObserveRequest(outcomeOf(err), elapsed)
	if c.cfg.Debug {
		evt := c.cfg.Logger.Debug().
			Str("request_id", uuid.NewString()).
			Str("method", method).
			Str("path", path).
			Dur("elapsed", elapsed)
		if status > 0 {
			evt = evt.Int("status", status)
		}
		if err != nil {
			evt = evt.Str("outcome", outcomeOf(err))
		}
		evt.Msg("api call")
	}
	return raw, status, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, opts ...Option) ([]byte, int, error) {
	if c.cfg.BaseURL == "" {
		return nil, 0, ErrNoBaseURL
	}

	var options callOptions
	for _, opt := range opts {
		opt(&options)
	}
	timeout := c.cfg.Timeout
	if options.timeout > 0 {
		timeout = options.timeout
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		payload = bytes.NewReader(b)
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, method, c.resolveURL(path), payload)
	if err != nil {
		return nil, 0, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	// The token is read fresh for every call; absence is not an error here,
	// the backend enforces auth on its own.
	if c.cfg.Tokens != nil {
		token, ok, err := c.cfg.Tokens.Token(ctx)
		if err != nil {
			return nil, 0, &StorageError{Err: err}
		}
		if ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for key, values := range options.headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, 0, &TimeoutError{Bound: timeout}
		}
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, resp.StatusCode, &TimeoutError{Bound: timeout}
		}
		return nil, resp.StatusCode, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &HTTPError{Status: resp.StatusCode, Body: string(raw)}
	}
	return raw, resp.StatusCode, nil
}

// resolveURL joins the configured base URL and path with exactly one slash.
func (c *Client) resolveURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.cfg.BaseURL + path
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	var (
		httpErr    *HTTPError
		netErr     *NetworkError
		timeoutErr *TimeoutError
		storErr    *StorageError
	)
	switch {
	case errors.Is(err, ErrNoBaseURL):
		return metrics.OutcomeConfig
	case errors.As(err, &timeoutErr):
		return metrics.OutcomeTimeout
	case errors.As(err, &httpErr):
		return metrics.OutcomeHTTP
	case errors.As(err, &storErr):
		return metrics.OutcomeStorage
	case errors.As(err, &netErr):
		return metrics.OutcomeNetwork
	default:
		return metrics.OutcomeNetwork
	}
}
