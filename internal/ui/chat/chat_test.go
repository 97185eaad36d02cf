// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatterm/internal/chats"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// fakeBackend implements chats.Backend with scriptable results.
type fakeBackend struct {
	chats    []model.Chat
	messages map[int][]model.Message
	nextChat int
	sendErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		chats: []model.Chat{
			{ID: 1, Name: "First chat"},
			{ID: 2, Name: "Second chat"},
		},
		messages: map[int][]model.Message{
			101: {
				{ID: 1, Role: model.RoleUser, Content: "hello"},
				{ID: 2, Role: model.RoleAssistant, Content: "hi there"},
			},
		},
		nextChat: 3,
	}
}

func (f *fakeBackend) ListChats(ctx context.Context) ([]model.Chat, error) {
	return append([]model.Chat(nil), f.chats...), nil
}

func (f *fakeBackend) CreateChat(ctx context.Context) (*model.Chat, error) {
	chat := model.Chat{ID: f.nextChat, Name: "New chat"}
	f.nextChat++
	return &chat, nil
}

func (f *fakeBackend) RenameChat(ctx context.Context, chatID int, name string) error {
	return nil
}

func (f *fakeBackend) CreateThread(ctx context.Context, chatID int) (*model.ThreadSession, error) {
	return &model.ThreadSession{ID: chatID + 100, ChatID: chatID}, nil
}

func (f *fakeBackend) ListMessages(ctx context.Context, threadID int) ([]model.Message, error) {
	return append([]model.Message(nil), f.messages[threadID]...), nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, threadID int, text string) ([]model.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	appended := []model.Message{
		{ID: 10, Role: model.RoleUser, Content: text},
		{ID: 11, Role: model.RoleAssistant, Content: "echo: " + text},
	}
	f.messages[threadID] = append(f.messages[threadID], appended...)
	return appended, nil
}

func newTestModel(t *testing.T, backend *fakeBackend) Model {
	t.Helper()

	cfg := config.Default()
	cfg.UI.MarkdownRendering = false

	m := New(Options{
		List:   chats.NewListController(backend),
		Thread: chats.NewThreadController(backend),
		Theme:  styles.NewTheme(),
		Config: cfg,
		User:   model.User{ID: 1, Username: "carol"},
	})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

// loadChats runs the initial chat list load synchronously.
func loadChats(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.loadChatsCmd()()
	m, _ = m.Update(msg)
	return m
}

func TestChatsLoadedPopulatesSidebar(t *testing.T) {
	m := loadChats(t, newTestModel(t, newFakeBackend()))

	view := m.View()
	for _, want := range []string{"First chat", "Second chat"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing chat %q", want)
		}
	}
}

func TestSidebarNavigationClamps(t *testing.T) {
	m := loadChats(t, newTestModel(t, newFakeBackend()))
	m.focus = FocusSidebar

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.selected != 0 {
		t.Errorf("selected = %d, want 0 at top", m.selected)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != 1 {
		t.Errorf("selected = %d, want 1 at bottom", m.selected)
	}
}

func TestOpenChatLoadsTranscript(t *testing.T) {
	m := loadChats(t, newTestModel(t, newFakeBackend()))
	m.focus = FocusSidebar
	m.selected = 0

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Enter on a chat should dispatch a command")
	}

	m, _ = m.Update(runBatch(t, cmd))
	if !strings.Contains(m.View(), "hi there") {
		t.Error("transcript should show loaded messages")
	}
}

func TestBlankSendRejectedLocally(t *testing.T) {
	m := loadChats(t, newTestModel(t, newFakeBackend()))
	m.focus = FocusInput
	m.input.SetValue("   ")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("blank send should not dispatch a command")
	}
	if !m.errBanner.Visible() {
		t.Error("blank send should show the error banner")
	}
}

func TestSendAppendsMessages(t *testing.T) {
	backend := newFakeBackend()
	m := loadChats(t, newTestModel(t, backend))

	// Open the first chat.
	m.focus = FocusSidebar
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(runBatch(t, cmd))

	m.focus = FocusInput
	m.input.Focus()
	m.input.SetValue("what is up")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("send should dispatch a command")
	}
	if m.input.Value() != "what is up" {
		t.Error("input should keep its text until the send succeeds")
	}

	m, _ = m.Update(runBatch(t, cmd))
	if m.input.Value() != "" {
		t.Error("input should clear after a successful send")
	}
	view := m.View()
	if !strings.Contains(view, "what is up") || !strings.Contains(view, "echo: what is up") {
		t.Error("transcript should include the sent exchange")
	}
}

func TestStaleResultsIgnored(t *testing.T) {
	m := loadChats(t, newTestModel(t, newFakeBackend()))

	before := m.View()
	m, cmd := m.Update(ThreadOpenedMsg{ChatID: 1, Stale: true})
	if cmd != nil {
		t.Error("stale open should produce no follow-up")
	}
	if m.errBanner.Visible() {
		t.Error("stale results must never surface an error")
	}
	if m.View() != before {
		t.Error("stale open should not change the view")
	}

	m, _ = m.Update(MessageSentMsg{Stale: true})
	if m.errBanner.Visible() {
		t.Error("stale send must never surface an error")
	}
}

func TestRenameFlow(t *testing.T) {
	m := loadChats(t, newTestModel(t, newFakeBackend()))
	m.focus = FocusSidebar

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.focus != FocusRename {
		t.Fatal("ctrl+r should enter rename mode")
	}
	if m.renameInput.Value() != "First chat" {
		t.Errorf("rename input = %q, want current name", m.renameInput.Value())
	}

	m.renameInput.SetValue("Trip planning")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("rename submit should dispatch a command")
	}
	if m.focus != FocusSidebar {
		t.Error("rename submit should return focus to the sidebar")
	}

	m, _ = m.Update(cmd())
	if !strings.Contains(m.View(), "Trip planning") {
		t.Error("sidebar should show the confirmed name")
	}
}

func TestRenameCancelRestores(t *testing.T) {
	m := loadChats(t, newTestModel(t, newFakeBackend()))
	m.focus = FocusSidebar

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != FocusSidebar {
		t.Error("esc should cancel rename mode")
	}
}

func TestCreateChatSelectsNew(t *testing.T) {
	m := loadChats(t, newTestModel(t, newFakeBackend()))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if cmd == nil {
		t.Fatal("ctrl+n should dispatch chat creation")
	}

	m, cmd = m.Update(cmd())
	if m.selected != 0 {
		t.Error("new chat should be selected at the top of the list")
	}
	if m.focus != FocusInput {
		t.Error("focus should move to the input for a fresh chat")
	}
	if cmd == nil {
		t.Fatal("creation should attach the returned thread")
	}

	m, _ = m.Update(cmd())
	if _, _, ok := m.thread.Current(); !ok {
		t.Error("thread should be open after attach")
	}
}

func TestExportWithNoSelectionIsNoop(t *testing.T) {
	m := newTestModel(t, newFakeBackend())
	if cmd := m.exportTranscriptCmd(); cmd != nil {
		t.Error("export with no chats should be a no-op")
	}
}

func TestExportWritesFile(t *testing.T) {
	backend := newFakeBackend()
	m := loadChats(t, newTestModel(t, backend))
	m.exportDir = t.TempDir()

	// Open the first chat so there is a transcript.
	m.focus = FocusSidebar
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(runBatch(t, cmd))

	cmd = m.exportTranscriptCmd()
	if cmd == nil {
		t.Fatal("export should dispatch")
	}

	msg := cmd()
	done, ok := msg.(ExportDoneMsg)
	if !ok {
		t.Fatalf("cmd() returned %T, want ExportDoneMsg", msg)
	}
	if done.Err != nil {
		t.Fatalf("export error = %v", done.Err)
	}
	if done.Path == "" {
		t.Error("export should report the written path")
	}
}

// runBatch executes a command, resolving tea.Batch into the first
// non-tick controller result.
func runBatch(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			inner := c()
			switch inner.(type) {
			case ChatsLoadedMsg, ChatCreatedMsg, ChatRenamedMsg,
				ThreadOpenedMsg, MessagesReloadedMsg, MessageSentMsg:
				return inner
			}
		}
		t.Fatal("batch contained no controller result")
	}
	return msg
}
