// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history mirrors thread transcripts into a local SQLite
// database so they can be browsed and exported offline. The cache is
// advisory: the server stays the source of truth and the cache is
// rewritten from server responses, never the other way around.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/chatterm/internal/model"
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS chats (
    id         INTEGER PRIMARY KEY,
    chat_name  TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
    id         INTEGER NOT NULL,
    thread_id  INTEGER NOT NULL,
    chat_id    INTEGER NOT NULL,
    role       TEXT NOT NULL,
    content    TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (thread_id, id)
);

CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id);
`

// =============================================================================
// STORE
// =============================================================================

// Store is the transcript cache. Safe for concurrent use; the
// connection pool is capped at one connection, which serializes
// writers the way SQLite wants.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// CHATS
// =============================================================================

// RememberChats upserts the chat list as last seen from the server.
func (s *Store) RememberChats(ctx context.Context, chats []model.Chat) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, chat := range chats {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chats (id, chat_name, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET chat_name = excluded.chat_name`,
			chat.ID, chat.Name, chat.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert chat %d: %w", chat.ID, err)
		}
	}
	return tx.Commit()
}

// Chats returns the cached chat list, newest first.
func (s *Store) Chats(ctx context.Context) ([]model.Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_name, created_at FROM chats ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []model.Chat
	for rows.Next() {
		var chat model.Chat
		if err := rows.Scan(&chat.ID, &chat.Name, &chat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// =============================================================================
// TRANSCRIPTS
// =============================================================================

// ReplaceTranscript rewrites the cached transcript for a thread from a
// full server reload. maxMessages > 0 keeps only the newest that many.
func (s *Store) ReplaceTranscript(ctx context.Context, chatID, threadID int, messages []model.Message, maxMessages int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE thread_id = ?`, threadID); err != nil {
		return fmt.Errorf("failed to clear transcript: %w", err)
	}

	if maxMessages > 0 && len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}
	for _, m := range messages {
		if err := insertMessage(ctx, tx, chatID, threadID, m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AppendMessages adds newly arrived messages to a cached transcript.
func (s *Store) AppendMessages(ctx context.Context, chatID, threadID int, messages []model.Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range messages {
		if err := insertMessage(ctx, tx, chatID, threadID, m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertMessage(ctx context.Context, tx *sql.Tx, chatID, threadID int, m model.Message) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, thread_id, chat_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(thread_id, id) DO UPDATE SET content = excluded.content`,
		m.ID, threadID, chatID, string(m.Role), m.Content, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message %d: %w", m.ID, err)
	}
	return nil
}

// Transcript returns the cached messages for a thread, oldest first.
func (s *Store) Transcript(ctx context.Context, threadID int) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, thread_id, role, content, created_at
		FROM messages WHERE thread_id = ? ORDER BY id ASC`, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		var role string
		if err := rows.Scan(&m.ID, &m.ThreadID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = model.Role(role)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// TranscriptForChat returns the cached messages for a chat across its
// threads, oldest first.
func (s *Store) TranscriptForChat(ctx context.Context, chatID int) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, thread_id, role, content, created_at
		FROM messages WHERE chat_id = ? ORDER BY thread_id ASC, id ASC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcript: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		var role string
		if err := rows.Scan(&m.ID, &m.ThreadID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = model.Role(role)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Forget removes everything cached for a single chat.
func (s *Store) Forget(ctx context.Context, chatID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return tx.Commit()
}

// Wipe clears the whole cache.
func (s *Store) Wipe(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("failed to wipe messages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chats`); err != nil {
		return fmt.Errorf("failed to wipe chats: %w", err)
	}
	return nil
}
