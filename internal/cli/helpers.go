// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared bootstrap for CLI command handlers.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/session"
)

// =============================================================================
// APP BOOTSTRAP
// =============================================================================

// App bundles the dependencies every command handler needs.
type App struct {
	Config *config.Config
	Store  *session.Store
	Client *api.Client
}

// Bootstrap loads configuration, the session store, and the API
// client. Global flags override the loaded config.
func Bootstrap(args Args) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyEnvOverrides()

	if args.ServerURL != "" {
		cfg.Server.BaseURL = args.ServerURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sessionPath, err := session.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolving session path: %w", err)
	}
	store := session.NewStore(sessionPath)

	client := api.NewClientWithConfig(store, &api.Config{
		BaseURL:           cfg.Server.BaseURL,
		Timeout:           time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
	})

	return &App{Config: cfg, Store: store, Client: client}, nil
}

// RequireSession returns an error when no session is stored. Commands
// that need a token call this before touching the network.
func (a *App) RequireSession() error {
	if !a.Store.Present() {
		return fmt.Errorf("not logged in (run: chatterm login)")
	}
	return nil
}

// =============================================================================
// TERMINAL HELPERS
// =============================================================================

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// readPassword reads a password from stdin without echoing.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passBytes), nil
}

// Fatal prints the friendly form of an error and exits non-zero.
// Client errors get their user-facing text; anything else prints
// as-is.
func Fatal(err error) {
	var ce *api.ClientError
	if errors.As(err, &ce) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", api.UserMessage(err))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
