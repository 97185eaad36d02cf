// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chats holds the two dashboard controllers: the chat list and
// the thread transcript for the selected chat. Both are plain state
// machines over the API client so their behavior is testable without a
// terminal.
package chats

import (
	"context"
	"sync"

	"github.com/jeranaias/chatterm/internal/model"
)

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is the slice of the API client the dashboard controllers
// need. Tests substitute fakes.
type Backend interface {
	ListChats(ctx context.Context) ([]model.Chat, error)
	CreateChat(ctx context.Context) (*model.Chat, error)
	RenameChat(ctx context.Context, chatID int, name string) error
	CreateThread(ctx context.Context, chatID int) (*model.ThreadSession, error)
	ListMessages(ctx context.Context, threadID int) ([]model.Message, error)
	SendMessage(ctx context.Context, threadID int, text string) ([]model.Message, error)
}

// =============================================================================
// CHAT LIST CONTROLLER
// =============================================================================

// ListController maintains the ordered chat list: newest chat first,
// fetched order otherwise. Safe for concurrent use.
type ListController struct {
	mu      sync.Mutex
	backend Backend
	chats   []model.Chat
}

// NewListController creates an empty list controller.
func NewListController(backend Backend) *ListController {
	return &ListController{backend: backend}
}

// LoadChats fetches the user's chats and replaces the list. Fail-soft:
// on any error the previously displayed list is left untouched and the
// error is surfaced for a banner.
func (c *ListController) LoadChats(ctx context.Context) error {
	chats, err := c.backend.ListChats(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.chats = chats
	c.mu.Unlock()
	return nil
}

// CreateChat creates a chat and immediately opens its thread. Only
// when both calls succeed is the chat prepended to the list; a chat
// whose thread could not be opened is never shown. Returns the new
// chat and its thread session so the caller can select it.
func (c *ListController) CreateChat(ctx context.Context) (*model.Chat, *model.ThreadSession, error) {
	chat, err := c.backend.CreateChat(ctx)
	if err != nil {
		return nil, nil, err
	}

	thread, err := c.backend.CreateThread(ctx, chat.ID)
	if err != nil {
		// The chat may exist server-side; it will appear on the next
		// full reload. It is not added to the visible list now.
		return nil, nil, err
	}

	c.mu.Lock()
	c.chats = append([]model.Chat{*chat}, c.chats...)
	c.mu.Unlock()
	return chat, thread, nil
}

// RenameChat issues the rename first and only updates the local entry
// once the server confirms. No optimistic update.
func (c *ListController) RenameChat(ctx context.Context, chatID int, name string) error {
	if err := c.backend.RenameChat(ctx, chatID, name); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.chats {
		if c.chats[i].ID == chatID {
			c.chats[i].Name = name
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// Chats returns a copy of the current list, newest first.
func (c *ListController) Chats() []model.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Chat, len(c.chats))
	copy(out, c.chats)
	return out
}

// Find returns the chat with the given id, if it is in the list.
func (c *ListController) Find(chatID int) (model.Chat, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, chat := range c.chats {
		if chat.ID == chatID {
			return chat, true
		}
	}
	return model.Chat{}, false
}

// Len returns the number of chats currently listed.
func (c *ListController) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chats)
}

// Reset drops the list, as on logout. The next user starts from an
// empty sidebar.
func (c *ListController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chats = nil
}
