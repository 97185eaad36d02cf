// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chats

import (
	"context"
	"fmt"
	"testing"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/model"
)

// fakeBackend is a scriptable Backend shared by the list and thread
// controller tests.
type fakeBackend struct {
	chats    []model.Chat
	listErr  error
	createFn func() (*model.Chat, error)

	threadFn  func(chatID int) (*model.ThreadSession, error)
	renameErr error

	messagesFn func(threadID int) ([]model.Message, error)
	sendFn     func(threadID int, text string) ([]model.Message, error)

	listCalls     int
	createCalls   int
	threadCalls   int
	renameCalls   int
	messagesCalls int
	sendCalls     int
}

func (f *fakeBackend) ListChats(ctx context.Context) ([]model.Chat, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.chats, nil
}

func (f *fakeBackend) CreateChat(ctx context.Context) (*model.Chat, error) {
	f.createCalls++
	if f.createFn != nil {
		return f.createFn()
	}
	return &model.Chat{ID: 100 + f.createCalls}, nil
}

func (f *fakeBackend) RenameChat(ctx context.Context, chatID int, name string) error {
	f.renameCalls++
	return f.renameErr
}

func (f *fakeBackend) CreateThread(ctx context.Context, chatID int) (*model.ThreadSession, error) {
	f.threadCalls++
	if f.threadFn != nil {
		return f.threadFn(chatID)
	}
	return &model.ThreadSession{ID: 1000 + chatID, ChatID: chatID}, nil
}

func (f *fakeBackend) ListMessages(ctx context.Context, threadID int) ([]model.Message, error) {
	f.messagesCalls++
	if f.messagesFn != nil {
		return f.messagesFn(threadID)
	}
	return nil, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, threadID int, text string) ([]model.Message, error) {
	f.sendCalls++
	if f.sendFn != nil {
		return f.sendFn(threadID, text)
	}
	return nil, nil
}

func TestLoadChatsReplacesList(t *testing.T) {
	backend := &fakeBackend{chats: []model.Chat{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}}}
	c := NewListController(backend)

	if err := c.LoadChats(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := c.Chats()
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Errorf("chats = %+v", got)
	}
}

func TestLoadChatsFailSoft(t *testing.T) {
	backend := &fakeBackend{chats: []model.Chat{{ID: 1, Name: "kept"}}}
	c := NewListController(backend)
	if err := c.LoadChats(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	backend.listErr = api.ErrUnavailable
	err := c.LoadChats(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	// The previously displayed list survives the failed refresh.
	got := c.Chats()
	if len(got) != 1 || got[0].Name != "kept" {
		t.Errorf("chats after failed reload = %+v", got)
	}
}

func TestCreateChatPrependsNewestFirst(t *testing.T) {
	nextID := 0
	backend := &fakeBackend{
		createFn: func() (*model.Chat, error) {
			nextID++
			return &model.Chat{ID: nextID, Name: fmt.Sprintf("chat %d", nextID)}, nil
		},
	}
	c := NewListController(backend)

	for i := 0; i < 3; i++ {
		if _, _, err := c.CreateChat(context.Background()); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	got := c.Chats()
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	// Most recently created first.
	for i, wantID := range []int{3, 2, 1} {
		if got[i].ID != wantID {
			t.Errorf("chats[%d].ID = %d, want %d", i, got[i].ID, wantID)
		}
	}
}

func TestCreateChatReturnsThreadForSelection(t *testing.T) {
	backend := &fakeBackend{}
	c := NewListController(backend)

	chat, thread, err := c.CreateChat(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if thread == nil || thread.ChatID != chat.ID {
		t.Errorf("thread = %+v for chat %+v", thread, chat)
	}
}

func TestCreateChatAllOrNothing(t *testing.T) {
	backend := &fakeBackend{
		threadFn: func(chatID int) (*model.ThreadSession, error) {
			return nil, api.ErrUnavailable
		},
	}
	c := NewListController(backend)

	_, _, err := c.CreateChat(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if backend.createCalls != 1 || backend.threadCalls != 1 {
		t.Errorf("calls: create=%d thread=%d", backend.createCalls, backend.threadCalls)
	}
	// Chat created server-side but thread failed: not shown.
	if c.Len() != 0 {
		t.Errorf("list should be empty, got %+v", c.Chats())
	}
}

func TestRenameChatUpdatesOnlyOnSuccess(t *testing.T) {
	backend := &fakeBackend{chats: []model.Chat{{ID: 1, Name: "old"}}}
	c := NewListController(backend)
	if err := c.LoadChats(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := c.RenameChat(context.Background(), 1, "new"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if chat, _ := c.Find(1); chat.Name != "new" {
		t.Errorf("name = %q", chat.Name)
	}
}

func TestRenameChatNoOptimisticUpdate(t *testing.T) {
	backend := &fakeBackend{
		chats:     []model.Chat{{ID: 1, Name: "old"}},
		renameErr: api.ErrUnavailable,
	}
	c := NewListController(backend)
	if err := c.LoadChats(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := c.RenameChat(context.Background(), 1, "new"); err == nil {
		t.Fatal("expected error")
	}
	if chat, _ := c.Find(1); chat.Name != "old" {
		t.Errorf("failed rename must not touch the list, name = %q", chat.Name)
	}
}

func TestResetDropsList(t *testing.T) {
	backend := &fakeBackend{chats: []model.Chat{{ID: 1, Name: "private"}, {ID: 2}}}
	c := NewListController(backend)
	if err := c.LoadChats(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	c.Reset()
	if c.Len() != 0 {
		t.Errorf("list after reset = %+v", c.Chats())
	}
	if _, ok := c.Find(1); ok {
		t.Error("reset list should not find old chats")
	}
}

func TestChatsReturnsCopy(t *testing.T) {
	backend := &fakeBackend{chats: []model.Chat{{ID: 1, Name: "a"}}}
	c := NewListController(backend)
	if err := c.LoadChats(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	got := c.Chats()
	got[0].Name = "mutated"
	if chat, _ := c.Find(1); chat.Name != "a" {
		t.Error("caller mutation leaked into controller state")
	}
}
