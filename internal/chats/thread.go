// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chats

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrStale marks a response that arrived after the user switched
	// chats. Callers discard it silently; it is never shown.
	ErrStale = errors.New("selection changed while request was in flight")

	// ErrEmptyMessage rejects blank input before any network call.
	ErrEmptyMessage = &api.ClientError{Type: api.ErrTypeValidation, Message: "Message cannot be empty"}

	// ErrNoThread rejects a send with no chat selected.
	ErrNoThread = &api.ClientError{Type: api.ErrTypeValidation, Message: "No chat selected"}

	// ErrSendInFlight enforces one outstanding send per thread.
	ErrSendInFlight = &api.ClientError{Type: api.ErrTypeValidation, Message: "Still sending the previous message"}
)

// =============================================================================
// THREAD CONTROLLER
// =============================================================================

// ThreadController drives the conversation view for the selected chat:
// it opens the chat's thread, loads the transcript, and sends user
// messages.
//
// Every network round trip is tagged with the generation current at
// dispatch. Responses whose generation no longer matches are dropped,
// so rapidly switching chats can never paint a stale transcript.
type ThreadController struct {
	mu         sync.Mutex
	backend    Backend
	chatID     int
	threadID   int
	hasThread  bool
	messages   []model.Message
	generation uint64
	sending    bool
}

// NewThreadController creates a controller with no chat selected.
func NewThreadController(backend Backend) *ThreadController {
	return &ThreadController{backend: backend}
}

// SelectChat opens (or fetches) the thread for chatID and loads its
// transcript. On failure the previously displayed thread and messages
// stay as they were.
func (c *ThreadController) SelectChat(ctx context.Context, chatID int) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	thread, err := c.backend.CreateThread(ctx, chatID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return ErrStale
	}
	c.chatID = chatID
	c.threadID = thread.ID
	c.hasThread = true
	c.mu.Unlock()

	return c.loadMessages(ctx, thread.ID, gen)
}

// Attach adopts a thread that was already opened elsewhere, as after
// creating a new chat, and loads its transcript.
func (c *ThreadController) Attach(ctx context.Context, chatID, threadID int) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.chatID = chatID
	c.threadID = threadID
	c.hasThread = true
	c.messages = nil
	c.mu.Unlock()

	return c.loadMessages(ctx, threadID, gen)
}

// LoadMessages refetches the full transcript for the current thread
// and replaces the in-memory sequence.
func (c *ThreadController) LoadMessages(ctx context.Context) error {
	c.mu.Lock()
	if !c.hasThread {
		c.mu.Unlock()
		return ErrNoThread
	}
	threadID := c.threadID
	gen := c.generation
	c.mu.Unlock()

	return c.loadMessages(ctx, threadID, gen)
}

func (c *ThreadController) loadMessages(ctx context.Context, threadID int, gen uint64) error {
	messages, err := c.backend.ListMessages(ctx, threadID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return ErrStale
	}
	c.messages = messages
	return nil
}

// SendMessage posts text to the current thread. Blank input and
// missing selection are rejected locally with no network call, and a
// second send while one is outstanding is refused. On success the
// server's returned messages are appended directly; when the server
// returns none, the transcript is reloaded instead.
func (c *ThreadController) SendMessage(ctx context.Context, text string) ([]model.Message, error) {
	if (model.Message{Content: text}).IsBlank() {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	if !c.hasThread {
		c.mu.Unlock()
		return nil, ErrNoThread
	}
	if c.sending {
		c.mu.Unlock()
		return nil, ErrSendInFlight
	}
	c.sending = true
	threadID := c.threadID
	gen := c.generation
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	returned, err := c.backend.SendMessage(ctx, threadID, text)
	if err != nil {
		return nil, err
	}

	if len(returned) == 0 {
		// Server did not echo the new messages; fall back to a reload.
		if err := c.loadMessages(ctx, threadID, gen); err != nil {
			return nil, err
		}
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return nil, ErrStale
	}
	c.messages = append(c.messages, returned...)
	return returned, nil
}

// Messages returns a copy of the transcript, oldest first.
func (c *ThreadController) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Current returns the selected chat and thread ids, if a thread is
// open.
func (c *ThreadController) Current() (chatID, threadID int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chatID, c.threadID, c.hasThread
}

// Sending reports whether a send is in flight; the UI disables the
// input while it is.
func (c *ThreadController) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Reset drops the selection and transcript, as on logout.
func (c *ThreadController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.chatID = 0
	c.threadID = 0
	c.hasThread = false
	c.messages = nil
}
