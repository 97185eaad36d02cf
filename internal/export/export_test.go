// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/jeranaias/chatterm/internal/model"
)

func sampleTranscript() Transcript {
	return Transcript{
		Chat: model.Chat{ID: 7, Name: "Trip planning", CreatedAt: "2025-03-01 09:30:00"},
		Messages: []model.Message{
			{ID: 1, Role: model.RoleUser, Content: "Where should we go?", CreatedAt: "2025-03-01 09:31:00"},
			{ID: 2, Role: model.RoleAssistant, Content: "Somewhere with mountains."},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"JSON", FormatJSON, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestMarkdownRendering(t *testing.T) {
	md := sampleTranscript().Markdown()

	for _, want := range []string{
		"# Trip planning",
		"Created: 2025-03-01 09:30:00",
		"**You** (2025-03-01 09:31:00):",
		"Where should we go?",
		"**Assistant**:",
		"Somewhere with mountains.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := sampleTranscript().JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}

	var decoded Transcript
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Chat.ID != 7 || len(decoded.Messages) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		chat   model.Chat
		format Format
		want   string
	}{
		{model.Chat{ID: 7, Name: "Trip planning"}, FormatMarkdown, "Trip-planning-7.md"},
		{model.Chat{ID: 3, Name: "a/b: c?"}, FormatJSON, "a-b-c-3.json"},
		{model.Chat{ID: 9, Name: "  "}, FormatMarkdown, "Untitled-chat-9.md"},
	}

	for _, tt := range tests {
		got := Transcript{Chat: tt.chat}.FileName(tt.format)
		if got != tt.want {
			t.Errorf("FileName(%+v) = %q, want %q", tt.chat, got, tt.want)
		}
	}
}

func TestFileNameCapsLongTitles(t *testing.T) {
	chat := model.Chat{ID: 5, Name: strings.Repeat("very long title ", 20)}
	got := Transcript{Chat: chat}.FileName(FormatMarkdown)

	if len(got) > 60 {
		t.Errorf("file name too long (%d): %q", len(got), got)
	}
	if !strings.HasSuffix(got, "-5.md") {
		t.Errorf("file name lost id or extension: %q", got)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path, err := sampleTranscript().WriteFile(dir, FormatMarkdown)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "# Trip planning") {
		t.Errorf("unexpected content:\n%s", data)
	}
}
