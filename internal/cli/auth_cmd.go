// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, signup, logout, and whoami command handlers.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/chatterm/internal/auth"
)

// =============================================================================
// LOGIN
// =============================================================================

// HandleLogin prompts for credentials, logs in, and stores the
// session.
func HandleLogin(args Args) error {
	app, err := Bootstrap(args)
	if err != nil {
		return err
	}

	username := args.Username
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			return err
		}
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	controller := auth.NewController(app.Client, app.Store)
	if err := controller.Login(context.Background(), username, password); err != nil {
		return err
	}

	if !args.Quiet {
		if user, ok := controller.CurrentUser(); ok {
			fmt.Printf("Logged in as %s\n", user.DisplayName())
		} else {
			fmt.Println("Logged in")
		}
	}
	return nil
}

// =============================================================================
// SIGNUP
// =============================================================================

// HandleSignup creates an account. The user logs in separately.
func HandleSignup(args Args) error {
	app, err := Bootstrap(args)
	if err != nil {
		return err
	}

	username := args.Username
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			return err
		}
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}

	controller := auth.NewController(app.Client, app.Store)
	if err := controller.Signup(context.Background(), username, password, confirm); err != nil {
		return err
	}

	if !args.Quiet {
		fmt.Println("Account created. Run: chatterm login")
	}
	return nil
}

// =============================================================================
// LOGOUT
// =============================================================================

// HandleLogout clears the stored session. The server call is best
// effort; the local session always goes away.
func HandleLogout(args Args) error {
	app, err := Bootstrap(args)
	if err != nil {
		return err
	}

	controller := auth.NewController(app.Client, app.Store)
	controller.Logout(context.Background())

	if !args.Quiet {
		fmt.Println("Logged out")
	}
	return nil
}

// =============================================================================
// WHOAMI
// =============================================================================

// HandleWhoami verifies the stored session and prints the user.
func HandleWhoami(args Args) error {
	app, err := Bootstrap(args)
	if err != nil {
		return err
	}
	if err := app.RequireSession(); err != nil {
		return err
	}

	ok, err := app.Client.VerifyToken(context.Background())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("session expired (run: chatterm login)")
	}

	user, present := app.Store.User()
	if !present {
		return fmt.Errorf("no user recorded in the session")
	}

	if args.JSON {
		out, err := json.MarshalIndent(user, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Logged in as %s", user.DisplayName())
	if user.Email != "" {
		fmt.Printf(" <%s>", user.Email)
	}
	fmt.Println()
	return nil
}

// promptLine reads one line from stdin.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
