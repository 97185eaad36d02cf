// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat dashboard view for the TUI.
//
// This file defines the Bubble Tea message types used by the
// dashboard. Messages are organized into the following categories:
//   - Chat list: loading, creation, renaming
//   - Thread: opening a chat's thread and loading its transcript
//   - Sending: message round trips
//   - Export: transcript export results
//   - Session: logout
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import "github.com/jeranaias/chatterm/internal/model"

// =============================================================================
// CHAT LIST MESSAGES
// =============================================================================

// ChatsLoadedMsg reports the outcome of a chat list fetch. On success
// the list controller already holds the chats.
type ChatsLoadedMsg struct {
	Err error
}

// ChatCreatedMsg reports the outcome of creating a chat with its
// initial thread.
type ChatCreatedMsg struct {
	Chat   *model.Chat
	Thread *model.ThreadSession
	Err    error
}

// ChatRenamedMsg reports the outcome of a rename.
type ChatRenamedMsg struct {
	ChatID int
	Err    error
}

// =============================================================================
// THREAD MESSAGES
// =============================================================================

// ThreadOpenedMsg reports that a chat's thread was opened and its
// transcript loaded. Stale selections arrive with Stale set and are
// dropped without comment.
type ThreadOpenedMsg struct {
	ChatID int
	Stale  bool
	Err    error
}

// MessagesReloadedMsg reports a transcript refresh for the current
// thread.
type MessagesReloadedMsg struct {
	Stale bool
	Err   error
}

// =============================================================================
// SEND MESSAGES
// =============================================================================

// MessageSentMsg reports the outcome of a send round trip. On success
// the thread controller already holds the updated transcript.
type MessageSentMsg struct {
	Stale bool
	Err   error
}

// =============================================================================
// EXPORT MESSAGES
// =============================================================================

// ExportDoneMsg reports where a transcript export landed.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// LoggedOutMsg signals that the user logged out and the app should
// return to the login screen.
type LoggedOutMsg struct{}

// statusClearMsg clears the transient status line.
type statusClearMsg struct{}
