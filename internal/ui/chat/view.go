// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat dashboard view for the TUI.
package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatterm/internal/ui/components"
	"github.com/jeranaias/chatterm/internal/ui/styles"
	"github.com/jeranaias/chatterm/internal/util"
)

// sidebarWidth is the fixed width of the chat list pane. The sidebar
// collapses entirely in narrow terminals.
const sidebarWidth = 28

// =============================================================================
// LAYOUT MATH
// =============================================================================

func (m Model) sidebarVisible() bool {
	return m.theme.GetLayoutMode() != styles.LayoutNarrow
}

func (m Model) transcriptWidth() int {
	w := m.width
	if m.sidebarVisible() {
		w -= sidebarWidth
	}
	if w < 20 {
		w = 20
	}
	return w - 2
}

func (m Model) transcriptHeight() int {
	// Header, input line, status bar.
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport() {
	list := components.NewMessageList(m.theme)
	list.SetWidth(m.transcriptWidth())
	list.ShowTimestamps = m.showTimestamps
	list.Markdown = m.markdown
	list.SetMessages(m.thread.Messages())

	m.viewport.Width = m.transcriptWidth()
	m.viewport.Height = m.transcriptHeight()
	m.viewport.SetContent(list.View())
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	main := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInputArea(),
	)

	var body string
	if m.sidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
	} else {
		body = main
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar() string {
	chatList := m.list.Chats()

	var rows []string
	rows = append(rows, m.theme.HeaderTitle.Render("Chats"))

	if m.loadingChats && len(chatList) == 0 {
		rows = append(rows, m.theme.ChatItemMeta.Render("loading..."))
	}
	if !m.loadingChats && len(chatList) == 0 {
		rows = append(rows, m.theme.ChatItemMeta.Render("no chats yet"), m.theme.ChatItemMeta.Render("ctrl+n to start one"))
	}

	currentChat, _, hasCurrent := m.thread.Current()

	for i, chat := range chatList {
		title := util.TruncateWidth(chat.Title(), sidebarWidth-6)

		marker := "  "
		if hasCurrent && chat.ID == currentChat {
			marker = "* "
		}

		line := marker + title
		if i == m.selected && m.focus != FocusInput {
			line = m.theme.ChatItemSelected.Render(line)
		} else {
			line = m.theme.ChatItem.Render(line)
		}
		rows = append(rows, line)

		if i == m.selected && m.focus == FocusRename {
			rows = append(rows, m.renameInput.View())
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	return m.theme.Sidebar.
		Width(sidebarWidth - 2).
		Height(m.transcriptHeight() + 2).
		Render(content)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := "chatterm"
	if chat, ok := m.selectedChat(); ok {
		if _, _, hasCurrent := m.thread.Current(); hasCurrent {
			title = chat.Title()
		}
	}

	who := m.user.DisplayName()
	if who == "" {
		who = "signed in"
	}

	left := m.theme.HeaderTitle.Render(title)
	right := m.theme.HeaderSubtitle.Render(who)

	gap := m.transcriptWidth() - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return m.theme.Header.Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// INPUT AREA
// =============================================================================

func (m Model) renderInputArea() string {
	var parts []string

	if m.errBanner.Visible() {
		parts = append(parts, m.errBanner.View())
	}

	if m.thread.Sending() || m.openingChat {
		parts = append(parts, m.spinner.View())
	}

	prompt := m.theme.InputPrompt.Render("> ")
	parts = append(parts, m.theme.InputContainer.
		Width(m.transcriptWidth()-2).
		Render(prompt+m.input.View()))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	if m.statusMsg != "" {
		return m.theme.StatusBar.Width(m.width).Render(m.statusMsg)
	}

	var parts []string
	for _, binding := range m.keyMap.ShortHelp() {
		help := binding.Help()
		parts = append(parts,
			m.theme.ShortcutKey.Render(help.Key)+" "+m.theme.ShortcutDesc.Render(help.Desc))
	}

	count := m.list.Len()
	parts = append(parts, m.theme.ShortcutDesc.Render(strconv.Itoa(count)+" chats"))

	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}
