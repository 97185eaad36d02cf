// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth orchestrates login, signup, logout, and startup token
// verification. It owns the session store: no other component writes
// session state.
package auth

import (
	"context"
	"sync"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/session"
)

// =============================================================================
// STATES
// =============================================================================

// State is the controller's position in the auth lifecycle.
type State int

const (
	// StateUnverified is the initial state before the stored token has
	// been checked.
	StateUnverified State = iota

	// StateVerifying means a verify-token call is in flight.
	StateVerifying

	// StateAuthenticated means the session is valid; the app shows the
	// chat dashboard.
	StateAuthenticated

	// StateUnauthenticated means no valid session; the app shows the
	// login screen. Left only via an explicit login.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnverified:
		return "unverified"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is the slice of the API client the controller needs. Tests
// substitute fakes.
type Backend interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*api.LoginResult, error)
	Logout(ctx context.Context) error
	VerifyToken(ctx context.Context) (bool, error)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives the auth state machine. Safe for concurrent use,
// though the UI issues one auth action at a time.
type Controller struct {
	mu      sync.Mutex
	backend Backend
	store   *session.Store
	state   State
}

// NewController creates a controller in StateUnverified.
func NewController(backend Backend, store *session.Store) *Controller {
	return &Controller{
		backend: backend,
		store:   store,
		state:   StateUnverified,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser returns the authenticated user, if any.
func (c *Controller) CurrentUser() (model.User, bool) {
	if c.State() != StateAuthenticated {
		return model.User{}, false
	}
	return c.store.User()
}

// VerifyOnStart resolves the initial state. With no stored token it
// settles on StateUnauthenticated without touching the network. With a
// token it asks the server; any failure to get a definitive "yes" is
// fail-closed: the token is cleared and the state becomes
// StateUnauthenticated.
func (c *Controller) VerifyOnStart(ctx context.Context) State {
	c.mu.Lock()
	if _, ok := c.store.Token(); !ok {
		c.state = StateUnauthenticated
		c.mu.Unlock()
		return StateUnauthenticated
	}
	c.state = StateVerifying
	c.mu.Unlock()

	authenticated, err := c.backend.VerifyToken(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil || !authenticated {
		c.store.Clear()
		c.state = StateUnauthenticated
		return StateUnauthenticated
	}
	c.state = StateAuthenticated
	return StateAuthenticated
}

// Login exchanges credentials for a session. On success the session is
// persisted and the state becomes StateAuthenticated; on failure the
// state stays StateUnauthenticated and the error carries the reason.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return &api.ClientError{Type: api.ErrTypeValidation, Message: "Username and password are required"}
	}

	result, err := c.backend.Login(ctx, username, password)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateUnauthenticated
		return err
	}
	if err := c.store.Save(result.Token, result.User); err != nil {
		c.state = StateUnauthenticated
		return err
	}
	c.state = StateAuthenticated
	return nil
}

// Signup registers a new account. The password check happens locally
// and fails fast with no network call. Success does not authenticate:
// the caller switches the UI to the login form.
func (c *Controller) Signup(ctx context.Context, username, password, confirmPassword string) error {
	if username == "" || password == "" {
		return &api.ClientError{Type: api.ErrTypeValidation, Message: "Username and password are required"}
	}
	if password != confirmPassword {
		return &api.ClientError{Type: api.ErrTypeValidation, Message: "Passwords do not match"}
	}
	return c.backend.Register(ctx, username, password)
}

// Logout ends the session. The remote call is best-effort: whatever it
// returns, the local session is cleared and the state becomes
// StateUnauthenticated. Logout never fails.
func (c *Controller) Logout(ctx context.Context) {
	// Notify the server while the token is still attached.
	_ = c.backend.Logout(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Clear()
	c.state = StateUnauthenticated
}
