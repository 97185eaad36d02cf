// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// =============================================================================
// ERROR BANNER
// =============================================================================

// ErrorBanner is a dismissible error strip shown above the input
// area. It renders the friendly text for client errors rather than
// the raw error string.
type ErrorBanner struct {
	title   string
	message string
	width   int
	visible bool
}

// NewErrorBanner creates an empty, hidden banner.
func NewErrorBanner() ErrorBanner {
	return ErrorBanner{width: 80}
}

// ShowError derives display text from an error and makes the banner
// visible. Validation errors keep their own message; everything else
// goes through the friendly mapping.
func (e *ErrorBanner) ShowError(err error) {
	if err == nil {
		return
	}

	switch {
	case api.IsValidationError(err):
		e.title = "Invalid input"
	case api.IsAuthError(err):
		e.title = "Signed out"
	case api.IsTransportError(err):
		e.title = "Connection problem"
	default:
		e.title = "Error"
	}
	e.message = api.UserMessage(err)
	e.visible = true
}

// Show displays an explicit title and message.
func (e *ErrorBanner) Show(title, message string) {
	e.title = title
	e.message = message
	e.visible = true
}

// Dismiss hides the banner.
func (e *ErrorBanner) Dismiss() {
	e.visible = false
}

// Visible reports whether the banner is showing.
func (e *ErrorBanner) Visible() bool {
	return e.visible
}

// SetWidth sets the banner width.
func (e *ErrorBanner) SetWidth(width int) {
	e.width = width
}

// View renders the banner, or an empty string when hidden.
func (e ErrorBanner) View() string {
	if !e.visible {
		return ""
	}

	iconStyle := lipgloss.NewStyle().
		Foreground(styles.ErrorHighContrast).
		Bold(true)

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Rose).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	content := iconStyle.Render(styles.StatusIndicators.Error) + " " +
		titleStyle.Render(e.title) + "\n" +
		messageStyle.Render(e.message) + "\n" +
		hintStyle.Render("esc to dismiss")

	maxWidth := e.width - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Rose).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(content)
}
