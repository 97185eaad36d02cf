// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat transcripts to files a human can keep:
// Markdown for reading, JSON for tooling.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/util"
)

// Format selects the output encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat maps a user-supplied string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want markdown or json)", s)
	}
}

// Transcript bundles everything an export needs.
type Transcript struct {
	Chat     model.Chat      `json:"chat"`
	Messages []model.Message `json:"messages"`
}

// =============================================================================
// RENDERING
// =============================================================================

// Markdown renders the transcript as a Markdown document with role
// labels and, where the server provided them, timestamps.
func (t Transcript) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# " + t.Chat.Title() + "\n\n")
	if t.Chat.CreatedAt != "" {
		sb.WriteString("Created: " + t.Chat.CreatedAt + "\n\n")
	}
	sb.WriteString("---\n\n")

	for _, msg := range t.Messages {
		label := "**" + msg.Role.DisplayName() + "**"
		if msg.CreatedAt != "" {
			label += " (" + msg.CreatedAt + ")"
		}
		sb.WriteString(label + ":\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// JSON renders the transcript as pretty-printed JSON.
func (t Transcript) JSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileName builds a filesystem-safe name for the transcript. Long chat
// titles are capped so the file name stays manageable.
func (t Transcript) FileName(format Format) string {
	title := util.TruncateRunes(t.Chat.Title(), 48)
	title = strings.TrimSuffix(title, "...")
	name := unsafeFileChars.ReplaceAllString(title, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "chat"
	}
	ext := ".md"
	if format == FormatJSON {
		ext = ".json"
	}
	return fmt.Sprintf("%s-%d%s", name, t.Chat.ID, ext)
}

// WriteFile renders the transcript and writes it under dir, returning
// the path written. An empty dir means the current directory.
func (t Transcript) WriteFile(dir string, format Format) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	var data []byte
	switch format {
	case FormatJSON:
		out, err := t.JSON()
		if err != nil {
			return "", fmt.Errorf("failed to encode transcript: %w", err)
		}
		data = out
	case FormatMarkdown:
		data = []byte(t.Markdown())
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}

	path := filepath.Join(dir, t.FileName(format))
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}
