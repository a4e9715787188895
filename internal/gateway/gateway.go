// Package gateway is the client's single path to the storefront API. It
// attaches the bearer credential when one is held and turns every failure
// into a *RequestFailed.
package gateway

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

	"github.com/rs/zerolog"

	"github.com/hay-kot/shopcart/pkg/randid"
)

// DefaultTimeout bounds a call when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// HeaderRequestID carries the client generated request id.
const HeaderRequestID = "X-Request-Id"

// TokenSource supplies the bearer credential, or "" when signed out.
// session.Holder implementations satisfy it.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues JSON requests against the API.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	tokens  TokenSource
	logger  zerolog.Logger
	newID   func() string
}

// New creates a gateway client. tokens may be nil for a client that never
// sends credentials.
func New(cfg Config, tokens TokenSource, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be http or https", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		base:    base,
		http:    hc,
		timeout: timeout,
		tokens:  tokens,
		logger:  logger.With().Str("component", "gateway").Logger(),
		newID:   randid.RequestID,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Request sends body (if non-nil) as JSON and returns the raw success body.
// The bearer credential is attached when one is held.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return c.send(ctx, method, path, body, c.token(ctx))
}

// RequestAuthenticated is Request for bearer-only endpoints. Without a held
// token it fails with ErrUnauthorized and sends nothing.
func (c *Client) RequestAuthenticated(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	token := c.token(ctx)
	if token == "" {
		return nil, &RequestFailed{
			Status:  http.StatusUnauthorized,
			Message: "Not signed in",
		}
	}
	return c.send(ctx, method, path, body, token)
}

// Do is Request followed by decoding the body into out.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// DoAuthenticated is RequestAuthenticated followed by decoding into out.
func (c *Client) DoAuthenticated(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.RequestAuthenticated(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

func (c *Client) token(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	return strings.TrimSpace(c.tokens.Token(ctx))
}

func (c *Client) send(ctx context.Context, method, path string, body any, token string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqID := c.newID()
	logger := c.logger.With().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Logger()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, &RequestFailed{RequestID: reqID, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, reqID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("request failed before response")
		return nil, &RequestFailed{RequestID: reqID, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Debug().Err(err).Int("status", resp.StatusCode).Msg("read response body")
		return nil, &RequestFailed{RequestID: reqID, Err: err}
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Bool("bearer", token != "").
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestFailed{
			Status:    resp.StatusCode,
			Message:   errorMessage(data),
			RequestID: reqID,
		}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, &RequestFailed{
			RequestID: reqID,
			Err:       errors.New("response is not valid JSON"),
		}
	}

	return json.RawMessage(data), nil
}

func (c *Client) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base.String() + path
}

// errorMessage extracts the server supplied message from an error body. It is
// empty when the body carries none; RequestFailed.Error falls back then.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && strings.TrimSpace(body.Message) != "" {
		return body.Message
	}
	return ""
}

func decodeInto(raw json.RawMessage, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestFailed{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
