// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// MarkdownRenderer renders assistant markdown for terminal display.
// Rendering failures fall back to the raw text so a bad document can
// never blank out a transcript.
type MarkdownRenderer struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdownRenderer creates a renderer wrapping at the given width.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	m := &MarkdownRenderer{}
	m.rebuild(width)
	return m
}

// rebuild replaces the underlying glamour renderer. Glamour bakes the
// wrap width into the renderer, so resizes need a fresh one.
func (m *MarkdownRenderer) rebuild(width int) {
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		renderer = nil
	}
	m.renderer = renderer
	m.width = width
}

// Render renders markdown content at the given wrap width. Returns
// the original content when rendering is unavailable or fails.
func (m *MarkdownRenderer) Render(content string, width int) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if width > 0 && width != m.width {
		m.rebuild(width)
	}
	if m.renderer == nil {
		return content
	}

	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
