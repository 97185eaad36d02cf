// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat dashboard view for the TUI.
//
// This file holds the tea.Cmd constructors. Each command performs one
// controller round trip off the UI goroutine and reports back with a
// typed message. History writes are best effort: the server is the
// source of truth and a cache failure never surfaces to the user.
package chat

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatterm/internal/chats"
	"github.com/jeranaias/chatterm/internal/export"
)

// requestTimeout bounds every dashboard round trip.
const requestTimeout = 60 * time.Second

// =============================================================================
// CHAT LIST COMMANDS
// =============================================================================

func (m Model) loadChatsCmd() tea.Cmd {
	list := m.list
	hist := m.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := list.LoadChats(ctx)
		if err == nil && hist != nil {
			_ = hist.RememberChats(ctx, list.Chats())
		}
		return ChatsLoadedMsg{Err: err}
	}
}

func (m Model) createChatCmd() tea.Cmd {
	list := m.list
	hist := m.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		chat, thread, err := list.CreateChat(ctx)
		if err == nil && hist != nil {
			_ = hist.RememberChats(ctx, list.Chats())
		}
		return ChatCreatedMsg{Chat: chat, Thread: thread, Err: err}
	}
}

func (m Model) renameChatCmd(chatID int, name string) tea.Cmd {
	list := m.list
	hist := m.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := list.RenameChat(ctx, chatID, name)
		if err == nil && hist != nil {
			_ = hist.RememberChats(ctx, list.Chats())
		}
		return ChatRenamedMsg{ChatID: chatID, Err: err}
	}
}

// =============================================================================
// THREAD COMMANDS
// =============================================================================

func (m Model) openChatCmd(chatID int) tea.Cmd {
	thread := m.thread
	hist := m.history
	maxHistory := m.maxHistory
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := thread.SelectChat(ctx, chatID)
		if errors.Is(err, chats.ErrStale) {
			return ThreadOpenedMsg{ChatID: chatID, Stale: true}
		}
		if err == nil && hist != nil {
			if curChat, curThread, ok := thread.Current(); ok {
				_ = hist.ReplaceTranscript(ctx, curChat, curThread, thread.Messages(), maxHistory)
			}
		}
		return ThreadOpenedMsg{ChatID: chatID, Err: err}
	}
}

// attachThreadCmd adopts the thread returned by chat creation so a
// fresh chat opens without a second create-thread round trip.
func (m Model) attachThreadCmd(chatID, threadID int) tea.Cmd {
	thread := m.thread
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := thread.Attach(ctx, chatID, threadID)
		if errors.Is(err, chats.ErrStale) {
			return ThreadOpenedMsg{ChatID: chatID, Stale: true}
		}
		return ThreadOpenedMsg{ChatID: chatID, Err: err}
	}
}

func (m Model) reloadMessagesCmd() tea.Cmd {
	thread := m.thread
	hist := m.history
	maxHistory := m.maxHistory
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := thread.LoadMessages(ctx)
		if errors.Is(err, chats.ErrStale) {
			return MessagesReloadedMsg{Stale: true}
		}
		if err == nil && hist != nil {
			if curChat, curThread, ok := thread.Current(); ok {
				_ = hist.ReplaceTranscript(ctx, curChat, curThread, thread.Messages(), maxHistory)
			}
		}
		return MessagesReloadedMsg{Err: err}
	}
}

// =============================================================================
// SEND COMMAND
// =============================================================================

func (m Model) sendMessageCmd(text string) tea.Cmd {
	thread := m.thread
	hist := m.history
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		appended, err := thread.SendMessage(ctx, text)
		if errors.Is(err, chats.ErrStale) {
			return MessageSentMsg{Stale: true}
		}
		if err == nil && hist != nil && len(appended) > 0 {
			if curChat, curThread, ok := thread.Current(); ok {
				_ = hist.AppendMessages(ctx, curChat, curThread, appended)
			}
		}
		return MessageSentMsg{Err: err}
	}
}

// =============================================================================
// EXPORT COMMAND
// =============================================================================

func (m Model) exportTranscriptCmd() tea.Cmd {
	chat, ok := m.selectedChat()
	if !ok {
		return nil
	}
	transcript := export.Transcript{
		Chat:     chat,
		Messages: m.thread.Messages(),
	}
	dir := m.exportDir
	format := m.exportFormat
	return func() tea.Msg {
		path, err := transcript.WriteFile(dir, format)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

func (m Model) logoutCmd() tea.Cmd {
	controller := m.auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		controller.Logout(ctx)
		return LoggedOutMsg{}
	}
}

// clearStatusCmd clears the transient status line after a delay.
func clearStatusCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}
