// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewThemeInitializesStyles(t *testing.T) {
	theme := NewTheme()
	if theme == nil {
		t.Fatal("nil theme")
	}
	// Spot-check a few styles render without panicking.
	_ = theme.UserBubble.Render("hi")
	_ = theme.ChatItemSelected.Render("chat")
	_ = theme.ErrorBox.Render("boom")
}

func TestThemeModeOverridesDetection(t *testing.T) {
	dark := NewThemeWithMode("dark")
	if !dark.IsDark {
		t.Error(`mode "dark" should force a dark palette`)
	}

	light := NewThemeWithMode("light")
	if light.IsDark {
		t.Error(`mode "light" should force a light palette`)
	}
}

func TestApplyModeSwitchesPalette(t *testing.T) {
	theme := NewThemeWithMode("dark")

	theme.ApplyMode("light")
	if theme.IsDark {
		t.Error("theme stays dark after switching to light")
	}
	// Styles survive the rebuild.
	_ = theme.UserBubble.Render("hi")

	theme.ApplyMode("dark")
	if !theme.IsDark {
		t.Error("theme stays light after switching to dark")
	}
}

func TestLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	theme := NewTheme()
	for _, tt := range tests {
		theme.SetSize(tt.width, 40)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: mode = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestStatusRenderersIncludeIndicators(t *testing.T) {
	if !strings.Contains(RenderSuccess("done"), "[OK]") {
		t.Error("success indicator missing")
	}
	if !strings.Contains(RenderError("boom"), "[X]") {
		t.Error("error indicator missing")
	}
	if !strings.Contains(RenderWarning("careful"), "[!]") {
		t.Error("warning indicator missing")
	}
	if !strings.Contains(RenderInfo("fyi"), "[i]") {
		t.Error("info indicator missing")
	}
}
