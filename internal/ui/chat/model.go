// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat dashboard view for the TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatterm/internal/auth"
	"github.com/jeranaias/chatterm/internal/chats"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/export"
	"github.com/jeranaias/chatterm/internal/history"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/ui/components"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus identifies which pane receives keyboard input.
type Focus int

const (
	FocusSidebar Focus = iota
	FocusInput
	FocusRename
)

// =============================================================================
// DASHBOARD MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat dashboard: the sidebar
// chat list, the transcript viewport, and the message input.
type Model struct {
	// Controllers
	list    *chats.ListController
	thread  *chats.ThreadController
	auth    *auth.Controller
	history *history.Store // nil when local history is disabled

	// Styling
	theme *styles.Theme

	// Configuration snapshot
	showTimestamps bool
	markdownOn     bool
	maxHistory     int
	exportDir      string
	exportFormat   export.Format

	// Identity
	user model.User

	// UI components
	viewport    viewport.Model
	input       textinput.Model
	renameInput textinput.Model
	spinner     components.Spinner
	errBanner   components.ErrorBanner
	markdown    *components.MarkdownRenderer

	// Key bindings
	keyMap KeyMap

	// State
	focus        Focus
	selected     int // sidebar cursor index into list.Chats()
	loadingChats bool
	openingChat  bool
	statusMsg    string
	ready        bool

	// Dimensions
	width  int
	height int
}

// Options carries the dependencies the dashboard needs.
type Options struct {
	List    *chats.ListController
	Thread  *chats.ThreadController
	Auth    *auth.Controller
	History *history.Store
	Theme   *styles.Theme
	Config  *config.Config
	User    model.User
}

// New creates the dashboard model.
func New(opts Options) Model {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.CharLimit = 4000
	input.Focus()

	renameInput := textinput.New()
	renameInput.Placeholder = "New chat name"
	renameInput.CharLimit = 128

	vp := viewport.New(80, 20)

	cfg := opts.Config
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		format = export.FormatMarkdown
	}

	m := Model{
		list:           opts.List,
		thread:         opts.Thread,
		auth:           opts.Auth,
		history:        opts.History,
		theme:          opts.Theme,
		showTimestamps: cfg.UI.ShowTimestamps,
		markdownOn:     cfg.UI.MarkdownRendering,
		maxHistory:     cfg.History.MaxMessagesPerThread,
		exportDir:      cfg.Export.Dir,
		exportFormat:   format,
		user:           opts.User,
		viewport:       vp,
		input:          input,
		renameInput:    renameInput,
		spinner:        components.NewThinkingSpinner(),
		errBanner:      components.NewErrorBanner(),
		keyMap:         DefaultKeyMap(),
		focus:          FocusInput,
		width:          80,
		height:         24,
	}

	// Compact mode drops the elapsed-time readout next to the spinner.
	m.spinner.SetShowTimer(!cfg.UI.CompactMode)

	if m.markdownOn {
		m.markdown = components.NewMarkdownRenderer(76)
	}

	return m
}

// Init implements tea.Model. It kicks off the initial chat list load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadChatsCmd())
}

// ApplyConfig updates the display settings from a reloaded config.
func (m *Model) ApplyConfig(cfg *config.Config) {
	m.showTimestamps = cfg.UI.ShowTimestamps
	m.markdownOn = cfg.UI.MarkdownRendering
	m.spinner.SetShowTimer(!cfg.UI.CompactMode)
	m.maxHistory = cfg.History.MaxMessagesPerThread
	m.exportDir = cfg.Export.Dir
	if format, err := export.ParseFormat(cfg.Export.Format); err == nil {
		m.exportFormat = format
	}
	if m.markdownOn && m.markdown == nil {
		m.markdown = components.NewMarkdownRenderer(m.transcriptWidth())
	}
	if !m.markdownOn {
		m.markdown = nil
	}
	m.refreshViewport()
}

// selectedChat returns the chat under the sidebar cursor.
func (m Model) selectedChat() (model.Chat, bool) {
	chatList := m.list.Chats()
	if m.selected < 0 || m.selected >= len(chatList) {
		return model.Chat{}, false
	}
	return chatList[m.selected], true
}

// clampSelection keeps the cursor inside the list after reloads.
func (m *Model) clampSelection() {
	n := m.list.Len()
	if n == 0 {
		m.selected = 0
		return
	}
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}
