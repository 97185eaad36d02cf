// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// ===== CHATS =====

// Chat is a named conversation owned by a user. A chat holds zero or
// more thread sessions; the client only ever works with the most
// recent one.
type Chat struct {
	ID        int    `json:"id"`
	Name      string `json:"chat_name"`
	UserID    int    `json:"user_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Title returns the chat name, or a placeholder when the server sent
// an empty one.
func (c Chat) Title() string {
	if strings.TrimSpace(c.Name) == "" {
		return "Untitled chat"
	}
	return c.Name
}

// ===== THREAD SESSIONS =====

// ThreadSession binds a chat to a provider-side conversation thread.
// OpenAIThreadID is opaque to the client and echoed back as-is.
type ThreadSession struct {
	ID             int    `json:"id"`
	ChatID         int    `json:"chat_id"`
	OpenAIThreadID string `json:"openai_thread_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// ===== USERS =====

// User is the authenticated account returned by login and
// verify-token. Only the fields the terminal UI shows are kept.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// DisplayName prefers the username and falls back to the email local
// part.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}
