// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chatterm backend. It is
// the single point of outbound communication: every authenticated
// request carries a bearer token obtained from an injected TokenSource,
// and every operation returns either a typed payload or a *ClientError
// the caller can branch on.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/chatterm/internal/model"
)

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// TokenSource supplies the current bearer token. The session store
// implements it; tests inject fakes. The client never mutates the
// source; callers do, based on results.
type TokenSource interface {
	// Token returns the current token and whether one is present.
	Token() (string, bool)
}

// StaticToken is a fixed-value TokenSource, mainly for tests and
// one-shot CLI commands.
type StaticToken string

func (s StaticToken) Token() (string, bool) {
	return string(s), s != ""
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds configuration options for the backend client.
type Config struct {
	// BaseURL is the backend base URL (default: http://localhost:5000)
	BaseURL string

	// Timeout per request (default: 30s)
	Timeout time.Duration

	// RequestsPerSecond caps outbound request rate (default: 10)
	RequestsPerSecond float64

	// Burst is the rate limiter burst size (default: 5)
	Burst int

	// UserAgent sent with every request
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "http://localhost:5000",
		Timeout:           30 * time.Second,
		RequestsPerSecond: 10,
		Burst:             5,
		UserAgent:         "chatterm/1.0",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the chatterm backend.
//
// The Client is safe for concurrent use. It performs network I/O only
// and holds no session state beyond the injected TokenSource.
type Client struct {
	config     *Config
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter

	// baseURL can be swapped at runtime by a config reload. Requests
	// already in flight keep the URL they dispatched with.
	mu      sync.RWMutex
	baseURL string
}

// NewClient creates a backend client with default configuration.
func NewClient(tokens TokenSource) *Client {
	return NewClientWithConfig(tokens, DefaultConfig())
}

// NewClientWithConfig creates a backend client with custom configuration.
func NewClientWithConfig(tokens TokenSource, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:5000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 10
	}
	if config.Burst == 0 {
		config.Burst = 5
	}
	if config.UserAgent == "" {
		config.UserAgent = "chatterm/1.0"
	}
	if tokens == nil {
		tokens = StaticToken("")
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		baseURL:    config.BaseURL,
	}
}

// BaseURL returns the current backend base URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL retargets subsequent requests at a new backend base URL.
// An empty URL is ignored.
func (c *Client) SetBaseURL(url string) {
	if url == "" {
		return
	}
	c.mu.Lock()
	c.baseURL = url
	c.mu.Unlock()
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// Register creates a new account. The server does not log the account
// in; callers switch to the login flow on success.
func (c *Client) Register(ctx context.Context, username, password string) error {
	var resp statusEnvelope
	err := c.doJSON(ctx, http.MethodPost, "/register",
		credentialsRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return applicationError(resp, "registration failed")
	}
	return nil
}

// Login exchanges credentials for a bearer token and user record.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/login",
		credentialsRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, applicationError(resp.statusEnvelope, "login failed")
	}
	if resp.Token == "" {
		return nil, &ClientError{Type: ErrTypeApplication, Message: "server returned no token"}
	}
	return &LoginResult{Token: resp.Token, User: resp.User}, nil
}

// Logout notifies the server the session is over. Best-effort: callers
// clear local session state whether or not this succeeds.
func (c *Client) Logout(ctx context.Context) error {
	var resp statusEnvelope
	err := c.doJSON(ctx, http.MethodGet, "/logout", nil, &resp)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return applicationError(resp, "logout failed")
	}
	return nil
}

// VerifyToken checks whether the current bearer token is still valid.
// A definitive "no" returns (false, nil); transport failures return an
// error so the caller can tell the two apart.
func (c *Client) VerifyToken(ctx context.Context) (bool, error) {
	var resp verifyTokenResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/verify-token", nil, &resp)
	if err != nil {
		if IsAuthError(err) {
			return false, nil
		}
		return false, err
	}
	return resp.Authenticated, nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// ListChats fetches all chats for the authenticated user.
func (c *Client) ListChats(ctx context.Context) ([]model.Chat, error) {
	var resp listChatsResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/chats", nil, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, applicationError(resp.statusEnvelope, "failed to load chats")
	}
	return resp.Chats, nil
}

// CreateChat creates a new, unnamed chat and returns it.
func (c *Client) CreateChat(ctx context.Context) (*model.Chat, error) {
	var resp createChatResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/chats", nil, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, applicationError(resp.statusEnvelope, "failed to create chat")
	}
	return &resp.Chat, nil
}

// RenameChat changes a chat's display name. The caller should only
// update local state after this returns nil.
func (c *Client) RenameChat(ctx context.Context, chatID int, name string) error {
	var resp statusEnvelope
	path := fmt.Sprintf("/api/chats/%d", chatID)
	err := c.doJSON(ctx, http.MethodPatch, path, renameChatRequest{ChatName: name}, &resp)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return applicationError(resp, "failed to rename chat")
	}
	return nil
}

// =============================================================================
// THREAD OPERATIONS
// =============================================================================

// CreateThread creates, or returns the existing, thread session for a
// chat. The server decides which; the client treats both the same.
func (c *Client) CreateThread(ctx context.Context, chatID int) (*model.ThreadSession, error) {
	var resp createThreadResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/threads", createThreadRequest{ChatID: chatID}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, applicationError(resp.statusEnvelope, "failed to open thread")
	}
	return &resp.ThreadSession, nil
}

// ListMessages fetches the full transcript for a thread, oldest first.
func (c *Client) ListMessages(ctx context.Context, threadID int) ([]model.Message, error) {
	var resp messagesResponse
	path := fmt.Sprintf("/api/threads/%d/messages", threadID)
	err := c.doJSON(ctx, http.MethodGet, path, nil, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, applicationError(resp.statusEnvelope, "failed to load messages")
	}
	return resp.Messages, nil
}

// SendMessage posts a user message to a thread. When the server echoes
// the new messages back they are returned; a nil slice with nil error
// means the caller should reload the transcript.
func (c *Client) SendMessage(ctx context.Context, threadID int, text string) ([]model.Message, error) {
	var resp messagesResponse
	path := fmt.Sprintf("/api/threads/%d/messages", threadID)
	err := c.doJSON(ctx, http.MethodPost, path, sendMessageRequest{Message: text}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, applicationError(resp.statusEnvelope, "failed to send message")
	}
	return resp.Messages, nil
}

// =============================================================================
// HTTP PLUMBING
// =============================================================================

// doJSON performs one request/response cycle: marshal body, attach
// headers, run it through the rate limiter, and decode the reply into
// out. All failures come back as *ClientError.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTransport, Message: "request cancelled", Cause: err}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Type: ErrTypeTransport, Message: "failed to marshal request", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}
	c.setHeaders(req, body != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeTransport, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Drain the body so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return ErrUnauthorized
	}
	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return &ClientError{
			Type:       ErrTypeTransport,
			Message:    fmt.Sprintf("server error (HTTP %d)", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	// Non-2xx application responses still carry a JSON envelope; decode
	// and let the caller's status check surface the message.
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &ClientError{
				Type:       ErrTypeTransport,
				Message:    "failed to decode response",
				StatusCode: resp.StatusCode,
				Cause:      err,
			}
		}
	}
	return nil
}

// setHeaders attaches the standard header set: content negotiation,
// the bearer token when one is present, and a per-request id for
// server-side correlation.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func applicationError(env statusEnvelope, fallback string) error {
	msg := env.Message
	if msg == "" {
		msg = fallback
	}
	return &ClientError{Type: ErrTypeApplication, Message: msg}
}
