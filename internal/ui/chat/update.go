// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat dashboard view for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatterm/internal/chats"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChatsLoadedMsg:
		return m.handleChatsLoaded(msg)

	case ChatCreatedMsg:
		return m.handleChatCreated(msg)

	case ChatRenamedMsg:
		return m.handleChatRenamed(msg)

	case ThreadOpenedMsg:
		return m.handleThreadOpened(msg)

	case MessagesReloadedMsg:
		return m.handleMessagesReloaded(msg)

	case MessageSentMsg:
		return m.handleMessageSent(msg)

	case ExportDoneMsg:
		return m.handleExportDone(msg)

	case statusClearMsg:
		m.statusMsg = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.ready = true

	m.viewport.Width = m.transcriptWidth()
	m.viewport.Height = m.transcriptHeight()
	m.input.Width = m.transcriptWidth() - 4
	m.errBanner.SetWidth(m.transcriptWidth())

	m.refreshViewport()
	return m
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Quit always works.
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	if key.Matches(msg, m.keyMap.Cancel) {
		if m.focus == FocusRename {
			m.focus = FocusSidebar
			m.renameInput.Blur()
			m.renameInput.SetValue("")
			return m, nil
		}
		if m.errBanner.Visible() {
			m.errBanner.Dismiss()
			return m, nil
		}
		return m, nil
	}

	switch m.focus {
	case FocusRename:
		return m.handleRenameKey(msg)
	case FocusSidebar:
		return m.handleSidebarKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keyMap.FocusNext):
		if m.focus == FocusSidebar {
			m.focus = FocusInput
			m.input.Focus()
		} else {
			m.focus = FocusSidebar
			m.input.Blur()
		}
		return m, nil, true

	case key.Matches(msg, m.keyMap.NewChat):
		m.loadingChats = true
		return m, m.createChatCmd(), true

	case key.Matches(msg, m.keyMap.Reload):
		m.loadingChats = true
		return m, tea.Batch(m.loadChatsCmd(), m.reloadMessagesCmd()), true

	case key.Matches(msg, m.keyMap.Export):
		return m, m.exportTranscriptCmd(), true

	case key.Matches(msg, m.keyMap.Logout):
		return m, m.logoutCmd(), true

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil, true

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil, true
	}

	return m, nil, false
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if next, cmd, handled := m.handleGlobalKey(msg); handled {
		return next, cmd
	}

	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.selected < m.list.Len()-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Rename):
		chat, ok := m.selectedChat()
		if !ok {
			return m, nil
		}
		m.focus = FocusRename
		m.renameInput.SetValue(chat.Name)
		m.renameInput.Focus()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		chat, ok := m.selectedChat()
		if !ok {
			return m, nil
		}
		m.openingChat = true
		cmds := []tea.Cmd{m.openChatCmd(chat.ID), m.spinner.Start()}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if next, cmd, handled := m.handleGlobalKey(msg); handled {
		return next, cmd
	}

	if key.Matches(msg, m.keyMap.Submit) {
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			m.errBanner.ShowError(chats.ErrEmptyMessage)
			return m, nil
		}
		if m.thread.Sending() {
			m.errBanner.ShowError(chats.ErrSendInFlight)
			return m, nil
		}
		cmds := []tea.Cmd{m.sendMessageCmd(text), m.spinner.Start()}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Submit) {
		chat, ok := m.selectedChat()
		if !ok {
			m.focus = FocusSidebar
			return m, nil
		}
		name := strings.TrimSpace(m.renameInput.Value())
		if name == "" {
			return m, nil
		}
		m.focus = FocusSidebar
		m.renameInput.Blur()
		m.renameInput.SetValue("")
		return m, m.renameChatCmd(chat.ID, name)
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

// =============================================================================
// RESULT HANDLERS
// =============================================================================

func (m Model) handleChatsLoaded(msg ChatsLoadedMsg) (Model, tea.Cmd) {
	m.loadingChats = false
	if msg.Err != nil {
		// The previous list stays on screen.
		m.errBanner.ShowError(msg.Err)
		return m, nil
	}
	m.clampSelection()
	return m, nil
}

func (m Model) handleChatCreated(msg ChatCreatedMsg) (Model, tea.Cmd) {
	m.loadingChats = false
	if msg.Err != nil {
		m.errBanner.ShowError(msg.Err)
		return m, nil
	}

	// The new chat is prepended; select it and adopt its thread.
	m.selected = 0
	m.focus = FocusInput
	m.input.Focus()

	if msg.Chat != nil && msg.Thread != nil {
		m.openingChat = true
		return m, m.attachThreadCmd(msg.Chat.ID, msg.Thread.ID)
	}
	return m, nil
}

func (m Model) handleChatRenamed(msg ChatRenamedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.errBanner.ShowError(msg.Err)
		return m, nil
	}
	m.statusMsg = "Chat renamed"
	return m, clearStatusCmd()
}

func (m Model) handleThreadOpened(msg ThreadOpenedMsg) (Model, tea.Cmd) {
	if msg.Stale {
		return m, nil
	}
	m.openingChat = false
	m.spinner.Stop()
	if msg.Err != nil {
		m.errBanner.ShowError(msg.Err)
		return m, nil
	}
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleMessagesReloaded(msg MessagesReloadedMsg) (Model, tea.Cmd) {
	if msg.Stale {
		return m, nil
	}
	if msg.Err != nil {
		m.errBanner.ShowError(msg.Err)
		return m, nil
	}
	m.refreshViewport()
	return m, nil
}

func (m Model) handleMessageSent(msg MessageSentMsg) (Model, tea.Cmd) {
	if msg.Stale {
		return m, nil
	}
	m.spinner.Stop()
	if msg.Err != nil {
		// Input keeps its text so the message can be retried.
		m.errBanner.ShowError(msg.Err)
		return m, nil
	}
	m.input.SetValue("")
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleExportDone(msg ExportDoneMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.errBanner.Show("Export failed", msg.Err.Error())
		return m, nil
	}
	m.statusMsg = "Exported to " + msg.Path
	return m, clearStatusCmd()
}
