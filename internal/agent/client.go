// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/foundry-tui/internal/credentials"
	"github.com/jeranaias/foundry-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds a single request/response call.
	DefaultTimeout = 60 * time.Second

	// DefaultUploadTimeout bounds a file upload, which includes
	// server-side content extraction.
	DefaultUploadTimeout = 180 * time.Second

	// DefaultStreamTimeout is the ceiling on a streaming send. Chunks
	// keep the connection busy; this only catches a hung backend.
	DefaultStreamTimeout = 10 * time.Minute

	// maxResponseSize caps response bodies read into memory.
	maxResponseSize = 10 * 1024 * 1024

	// refreshBurst is the burst allowance of the list-refresh limiter.
	refreshBurst = 5

	// sessionHeader carries the per-session key on every request.
	sessionHeader = "X-Tab-Session-Key"

	// contentTypeJSON is the default request content type. Multipart
	// uploads replace it with the writer's boundary-delimited type.
	contentTypeJSON = "application/json"

	// defaultUserAgent identifies the client to the backend.
	defaultUserAgent = "foundry-tui/0.3.0"
)

var (
	// sharedHTTPClient pools connections for request/response calls.
	// No client-level timeout: every call carries its own context
	// deadline so the configured bound applies per call.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}

	// sharedStreamingClient serves SSE responses, lifetime controlled
	// by the request context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// SESSION SOURCE
// =============================================================================

// SessionSource yields the per-session key attached to every request.
type SessionSource interface {
	Key() (string, error)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the generic agent client. One instance talks to exactly one
// variant, selected by base path; the wire contract is identical across
// variants. Variant-specific operations live on FoundryClient and
// LocalClient, which embed Client.
//
// Operations are single-shot: one HTTP call per invocation, no retries.
// Every call runs under a bounded timeout derived from the client
// configuration and the caller's context.
type Client struct {
	baseURL  string
	basePath string

	httpClient   *http.Client
	streamClient *http.Client

	creds   credentials.Source
	session SessionSource
	logger  *zap.Logger

	timeout       time.Duration
	uploadTimeout time.Duration
	streamTimeout time.Duration
	userAgent     string

	// refreshLimiter caps conversation-list reloads; nil means uncapped.
	refreshLimiter *rate.Limiter
}

// NewClient creates a client for the agent mounted at baseURL+basePath.
// The credential source and session source are consulted per request
// and never written.
func NewClient(baseURL, basePath string, creds credentials.Source, sess SessionSource) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		basePath:      "/" + strings.Trim(basePath, "/"),
		httpClient:    sharedHTTPClient,
		streamClient:  sharedStreamingClient,
		creds:         creds,
		session:       sess,
		logger:        zap.NewNop(),
		timeout:       DefaultTimeout,
		uploadTimeout: DefaultUploadTimeout,
		streamTimeout: DefaultStreamTimeout,
		userAgent:     defaultUserAgent,
	}
}

// WithHTTPClient sets a custom HTTP client for request/response calls.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// WithTimeout sets the per-call timeout for request/response calls.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// WithUploadTimeout sets the per-call timeout for file uploads.
func (c *Client) WithUploadTimeout(d time.Duration) *Client {
	if d > 0 {
		c.uploadTimeout = d
	}
	return c
}

// WithStreamTimeout sets the ceiling on a streaming send.
func (c *Client) WithStreamTimeout(d time.Duration) *Client {
	if d > 0 {
		c.streamTimeout = d
	}
	return c
}

// WithLogger sets the diagnostic logger. Request bodies, tokens, and
// session keys are never logged.
func (c *Client) WithLogger(l *zap.Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

// WithUserAgent sets the User-Agent header value.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// WithRefreshLimit caps conversation-list reloads to perMinute calls,
// with a small burst for interactive use. Zero or negative disables
// the cap.
func (c *Client) WithRefreshLimit(perMinute int) *Client {
	if perMinute > 0 {
		c.refreshLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), refreshBurst)
	} else {
		c.refreshLimiter = nil
	}
	return c
}

// BasePath returns the variant base path this client talks to.
func (c *Client) BasePath() string {
	return c.basePath
}

// endpoint joins the variant base with an operation path.
func (c *Client) endpoint(path string) string {
	return c.baseURL + c.basePath + path
}

// =============================================================================
// REQUEST BUILDER
// =============================================================================

// buildRequest composes an authenticated request: the session key
// header always, the bearer token only when the credential source
// yields one, and the given content type unless empty (multipart
// writers bring their own).
func (c *Client) buildRequest(ctx context.Context, op, method, url string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, newError(op, KindUnknown, 0, "", fmt.Errorf("build request: %w", err))
	}

	key, err := c.session.Key()
	if err != nil {
		return nil, newError(op, KindUnknown, 0, "", fmt.Errorf("session key: %w", err))
	}
	req.Header.Set(sessionHeader, key)

	token, err := c.creds.Token()
	if err != nil {
		return nil, newError(op, KindUnknown, 0, "", fmt.Errorf("read credential: %w", err))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// =============================================================================
// REQUEST PIPELINE
// =============================================================================

// do runs one JSON request/response exchange: marshal body, bound the
// context, send, classify failures, decode into out, and surface
// success: false as an application error.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return newError(op, KindUnknown, 0, "", fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(ctx, op, method, c.endpoint(path), reader, contentTypeJSON)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		kind, cause := classifyTransport(ctx, err)
		c.logger.Warn("request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("kind", kind.String()),
			zap.Duration("duration", duration),
			zap.Error(cause))
		return newError(op, kind, 0, "", cause)
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	payload, err := readLimited(resp.Body)
	if err != nil {
		return newError(op, KindRequest, resp.StatusCode, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(op, resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	if env, isEnv := out.(envelope); isEnv {
		return unmarshalEnvelope(op, resp.StatusCode, payload, env)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return newError(op, KindRequest, resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// unmarshalEnvelope decodes a success-flagged payload and surfaces
// success: false as an application error.
func unmarshalEnvelope(op string, status int, payload []byte, out envelope) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return newError(op, KindRequest, status, "", fmt.Errorf("decode response: %w", err))
	}
	if !out.ok() {
		return newError(op, KindApplication, status, out.failureDetail(), nil)
	}
	return nil
}

// readLimited reads a response body with a size cap.
func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) == maxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", maxResponseSize)
	}
	return body, nil
}

// classifyTransport sorts a transport failure into timeout, cancel, or
// network. The per-call deadline and the caller's cancellation stay
// distinguishable for the UI.
func classifyTransport(ctx context.Context, err error) (Kind, error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return KindTimeout, err
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return KindCanceled, err
	default:
		return KindNetwork, err
	}
}

// mapStatus converts a non-2xx response into a request error, wrapping
// the matching sentinel for the statuses callers branch on.
func mapStatus(op string, status int, body []byte) *Error {
	detail := extractDetail(body)
	var sentinel error
	switch status {
	case http.StatusUnauthorized:
		sentinel = ErrAuthRequired
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	}
	return newError(op, KindRequest, status, detail, sentinel)
}

// extractDetail pulls the human-readable message out of an error body.
// The backend answers {"detail": ...} for HTTP errors; detail may be a
// string or a validation structure.
func extractDetail(body []byte) string {
	var eb struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &eb); err == nil {
		if len(eb.Detail) > 0 {
			var s string
			if json.Unmarshal(eb.Detail, &s) == nil {
				return s
			}
			return string(eb.Detail)
		}
		if eb.Error != "" {
			return eb.Error
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	return util.TruncateRunes(strings.TrimSpace(string(body)), 200)
}

// =============================================================================
// HEALTH
// =============================================================================

// Health fetches the agent's health report. Both variants expose the
// endpoint; the local variant fills the runtime fields.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
