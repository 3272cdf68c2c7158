// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/realty-tui/internal/model"
)

// DefaultBaseURL is the service address used when none is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 16 << 20

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeStatus
	ErrTypeInvalidResponse
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeStatus:
		return "status"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// ClientError is a failed request. Every error returned by Client is one.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int

	// ServerMessage is the error field of the response body, if any.
	ServerMessage string

	Cause error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.ServerMessage != "" {
		msg += ": " + e.ServerMessage
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the server-provided error text.
func (e *ClientError) UserMessage() string {
	return e.ServerMessage
}

// FallbackMessage is shown when a failure carries no server message.
const FallbackMessage = model.FallbackErrorText

// ErrorText returns the text to show for a failed request: the server's
// error field when present, else FallbackMessage.
func ErrorText(err error) string {
	return model.ErrorText(err)
}

// IsConnectionError reports whether err means the service was unreachable.
func IsConnectionError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && (ce.Type == ErrTypeConnection || ce.Type == ErrTypeTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the analysis client.
type ClientConfig struct {
	// BaseURL is the service base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout bounds analyze requests. Zero means no timeout.
	Timeout time.Duration

	// HealthTimeout bounds health and localities requests (default: 3s)
	HealthTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       DefaultBaseURL,
		HealthTimeout: 3 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the analysis service. It is safe for concurrent use.
type Client struct {
	mu         sync.RWMutex
	config     ClientConfig
	httpClient *http.Client
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	// Fill in defaults for any zero values
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 3 * time.Second
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		config:     cfg,
		httpClient: &http.Client{},
	}
}

// BaseURL returns the current service base URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.BaseURL
}

// Reconfigure swaps the base URL and timeouts. Requests already sent keep
// the settings they started with.
func (c *Client) Reconfigure(config ClientConfig) {
	fresh := NewClientWithConfig(&config)
	c.mu.Lock()
	c.config = fresh.config
	c.mu.Unlock()
}

func (c *Client) snapshot() ClientConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// =============================================================================
// ANALYZE
// =============================================================================

// Analyze sends query to POST /api/analyze/ and returns the response body.
// A 2xx body is returned as is, even when it carries an error field.
func (c *Client) Analyze(ctx context.Context, query string) (*model.BotContent, error) {
	cfg := c.snapshot()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(AnalyzeRequest{Query: query})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	start := time.Now()
	slog.Debug("analyze request", "url", cfg.BaseURL, "query_len", len(query))

	raw, status, err := c.do(ctx, http.MethodPost, cfg.BaseURL+"/api/analyze/", body)
	if err != nil {
		slog.Warn("analyze failed", "err", err, "duration", time.Since(start))
		return nil, err
	}
	slog.Info("analyze done", "status", status, "bytes", len(raw), "duration", time.Since(start))

	content := &model.BotContent{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, content); err != nil {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", StatusCode: status, Cause: err}
		}
	}
	content.Raw = raw
	return content, nil
}

// =============================================================================
// LOCALITIES AND HEALTH
// =============================================================================

// Localities returns the locality names the service knows about.
func (c *Client) Localities(ctx context.Context) ([]string, error) {
	cfg := c.snapshot()
	ctx, cancel := context.WithTimeout(ctx, cfg.HealthTimeout)
	defer cancel()

	raw, _, err := c.do(ctx, http.MethodGet, cfg.BaseURL+"/api/localities/", nil)
	if err != nil {
		return nil, err
	}

	var result LocalitiesResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return result.Localities, nil
}

// Health checks GET /api/health/.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	cfg := c.snapshot()
	ctx, cancel := context.WithTimeout(ctx, cfg.HealthTimeout)
	defer cancel()

	raw, _, err := c.do(ctx, http.MethodGet, cfg.BaseURL+"/api/health/", nil)
	if err != nil {
		return nil, err
	}

	var result HealthResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &result, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do sends one request and returns the body of a 2xx response.
// Non-2xx responses become ErrTypeStatus errors carrying the body's error
// field when it has one.
func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, 0, &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		}
		return nil, 0, &ClientError{Type: ErrTypeConnection, Message: "analysis service unreachable", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ce := &ClientError{
			Type:       ErrTypeStatus,
			Message:    fmt.Sprintf("unexpected status %s", resp.Status),
			StatusCode: resp.StatusCode,
		}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			ce.ServerMessage = eb.Error
		}
		return nil, resp.StatusCode, ce
	}

	return raw, resp.StatusCode, nil
}
