// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/session"
)

// fakeBackend records calls and returns scripted results.
type fakeBackend struct {
	registerErr error
	loginResult *api.LoginResult
	loginErr    error
	logoutErr   error
	verified    bool
	verifyErr   error

	registerCalls int
	loginCalls    int
	logoutCalls   int
	verifyCalls   int
}

func (f *fakeBackend) Register(ctx context.Context, username, password string) error {
	f.registerCalls++
	return f.registerErr
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (*api.LoginResult, error) {
	f.loginCalls++
	return f.loginResult, f.loginErr
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeBackend) VerifyToken(ctx context.Context) (bool, error) {
	f.verifyCalls++
	return f.verified, f.verifyErr
}

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestInitialStateIsUnverified(t *testing.T) {
	c := NewController(&fakeBackend{}, newTestStore(t))
	if c.State() != StateUnverified {
		t.Errorf("state = %v, want unverified", c.State())
	}
}

func TestVerifyOnStartWithoutToken(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, newTestStore(t))

	got := c.VerifyOnStart(context.Background())

	if got != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", got)
	}
	if backend.verifyCalls != 0 {
		t.Error("no token present: verify must not hit the network")
	}
}

func TestVerifyOnStartValidToken(t *testing.T) {
	store := newTestStore(t)
	store.Save("tok", model.User{ID: 1, Username: "ada"})
	backend := &fakeBackend{verified: true}
	c := NewController(backend, store)

	if got := c.VerifyOnStart(context.Background()); got != StateAuthenticated {
		t.Errorf("state = %v, want authenticated", got)
	}
	if user, ok := c.CurrentUser(); !ok || user.Username != "ada" {
		t.Errorf("user = %+v, %v", user, ok)
	}
	if _, ok := store.Token(); !ok {
		t.Error("token should survive successful verification")
	}
}

func TestVerifyOnStartRejectedTokenIsCleared(t *testing.T) {
	store := newTestStore(t)
	store.Save("stale", model.User{ID: 1})
	c := NewController(&fakeBackend{verified: false}, store)

	if got := c.VerifyOnStart(context.Background()); got != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", got)
	}
	if _, ok := store.Token(); ok {
		t.Error("rejected token must be removed")
	}

	// Idempotent: a second pass with no token settles the same way
	// without a crash or a network call.
	backend2 := &fakeBackend{}
	c2 := NewController(backend2, store)
	if got := c2.VerifyOnStart(context.Background()); got != StateUnauthenticated {
		t.Errorf("second pass state = %v", got)
	}
	if backend2.verifyCalls != 0 {
		t.Error("second pass should not call verify")
	}
}

func TestVerifyOnStartErrorFailsClosed(t *testing.T) {
	store := newTestStore(t)
	store.Save("tok", model.User{ID: 1})
	c := NewController(&fakeBackend{verifyErr: api.ErrUnavailable}, store)

	if got := c.VerifyOnStart(context.Background()); got != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", got)
	}
	if _, ok := store.Token(); ok {
		t.Error("token must be cleared when verification errors")
	}
}

func TestLoginSuccess(t *testing.T) {
	store := newTestStore(t)
	backend := &fakeBackend{
		loginResult: &api.LoginResult{Token: "tok-1", User: model.User{ID: 2, Username: "ada"}},
	}
	c := NewController(backend, store)

	if err := c.Login(context.Background(), "ada", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.State() != StateAuthenticated {
		t.Errorf("state = %v", c.State())
	}
	token, ok := store.Token()
	if !ok || token != "tok-1" {
		t.Errorf("stored token = %q, %v", token, ok)
	}
}

func TestLoginFailureStaysUnauthenticated(t *testing.T) {
	store := newTestStore(t)
	backend := &fakeBackend{
		loginErr: &api.ClientError{Type: api.ErrTypeApplication, Message: "Invalid credentials"},
	}
	c := NewController(backend, store)

	err := c.Login(context.Background(), "ada", "bad")
	if err == nil {
		t.Fatal("expected error")
	}
	if api.UserMessage(err) != "Invalid credentials" {
		t.Errorf("surfaced message = %q", api.UserMessage(err))
	}
	if c.State() != StateUnauthenticated {
		t.Errorf("state = %v", c.State())
	}
	if _, ok := store.Token(); ok {
		t.Error("no token should be stored on failed login")
	}
}

func TestLoginEmptyFieldsRejectedLocally(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, newTestStore(t))

	err := c.Login(context.Background(), "", "")
	if !api.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if backend.loginCalls != 0 {
		t.Error("local validation must not hit the network")
	}
}

func TestSignupPasswordMismatch(t *testing.T) {
	backend := &fakeBackend{}
	c := NewController(backend, newTestStore(t))

	err := c.Signup(context.Background(), "ada", "a", "b")

	if !api.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if api.UserMessage(err) != "Passwords do not match" {
		t.Errorf("message = %q", api.UserMessage(err))
	}
	if backend.registerCalls != 0 {
		t.Error("mismatched passwords must not reach the network")
	}
}

func TestSignupSuccessDoesNotAuthenticate(t *testing.T) {
	store := newTestStore(t)
	c := NewController(&fakeBackend{}, store)

	if err := c.Signup(context.Background(), "ada", "pw", "pw"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if c.State() == StateAuthenticated {
		t.Error("signup must not authenticate")
	}
	if _, ok := store.Token(); ok {
		t.Error("signup must not store a token")
	}
}

func TestSignupServerFailureSurfaced(t *testing.T) {
	backend := &fakeBackend{
		registerErr: &api.ClientError{Type: api.ErrTypeApplication, Message: "Username taken"},
	}
	c := NewController(backend, newTestStore(t))

	err := c.Signup(context.Background(), "ada", "pw", "pw")
	if api.UserMessage(err) != "Username taken" {
		t.Errorf("message = %q", api.UserMessage(err))
	}
}

func TestLogoutClearsSessionEvenWhenRemoteFails(t *testing.T) {
	store := newTestStore(t)
	store.Save("tok", model.User{ID: 1})
	backend := &fakeBackend{logoutErr: errors.New("boom")}
	c := NewController(backend, store)

	c.Logout(context.Background())

	if backend.logoutCalls != 1 {
		t.Error("remote logout should be attempted")
	}
	if _, ok := store.Token(); ok {
		t.Error("session must be cleared regardless of remote failure")
	}
	if c.State() != StateUnauthenticated {
		t.Errorf("state = %v", c.State())
	}
}
