// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the wire-level types exchanged with the
// chatterm backend: users, chats, thread sessions, and messages.
package model

import "strings"

// ===== ROLES =====

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DisplayName returns the label shown next to a message bubble.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one the client knows how to render.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ===== MESSAGES =====

// Message is a single entry in a thread transcript as the server
// returns it. CreatedAt is kept as the server's formatted string and
// never parsed; it is display-only.
type Message struct {
	ID        int    `json:"id"`
	ThreadID  int    `json:"thread_id,omitempty"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at,omitempty"`
}

// IsBlank reports whether the message body is empty or whitespace.
func (m Message) IsBlank() bool {
	return strings.TrimSpace(m.Content) == ""
}
