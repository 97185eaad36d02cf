// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive terminal chat without the full TUI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/chats"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/ui/components"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive
// chat. Arrow keys navigate history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// MARKDOWN OUTPUT
// =============================================================================

// markdownRenderer renders assistant replies when stdout is a TTY.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown for terminal display. When glamour is
// unavailable, fenced code blocks are still syntax highlighted.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return components.ParseCodeBlocks(content, 80) + "\n"
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return components.ParseCodeBlocks(content, 80) + "\n"
	}
	return rendered
}

// displayMessage prints one message, rendering assistant markdown
// only when stdout is a TTY so piped output stays clean.
func displayMessage(msg model.Message) {
	switch msg.Role {
	case model.RoleAssistant:
		if IsStdoutTTY() {
			fmt.Print(renderMarkdown(msg.Content))
			return
		}
		fmt.Println(msg.Content)
	case model.RoleUser:
		fmt.Printf("> %s\n", msg.Content)
	default:
		fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
	}
}

// =============================================================================
// INTERACTIVE CHAT
// =============================================================================

const chatHelpText = `Commands:
  /rename <name>   Rename this chat
  /reload          Reload the transcript from the server
  /help            Show this help
  /quit            Exit (also Ctrl+D)
`

// HandleChat runs an interactive chat session in the terminal.
func HandleChat(args Args) error {
	app, err := Bootstrap(args)
	if err != nil {
		return err
	}
	if err := app.RequireSession(); err != nil {
		return err
	}

	ctx := context.Background()
	list := chats.NewListController(app.Client)
	thread := chats.NewThreadController(app.Client)

	chat, err := resolveChat(ctx, app, list, args.ChatID)
	if err != nil {
		return err
	}

	if err := thread.SelectChat(ctx, chat.ID); err != nil {
		return err
	}

	if !args.Quiet {
		fmt.Printf("Chat: %s (id %d). /help for commands, /quit to exit.\n\n", chat.Title(), chat.ID)
	}
	for _, msg := range thread.Messages() {
		displayMessage(msg)
	}

	cli := NewChatCLI()
	defer cli.Close()

	for {
		input, err := cli.ReadInput("> ")
		if err != nil {
			// Ctrl+D or Ctrl+C ends the session.
			if errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := handleChatCommand(ctx, app, list, thread, chat.ID, input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", api.UserMessage(err))
			}
			if quit {
				return nil
			}
			continue
		}

		arrived, err := sendAndCollect(ctx, thread, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", api.UserMessage(err))
			continue
		}
		for _, msg := range arrived {
			if msg.Role == model.RoleAssistant {
				displayMessage(msg)
			}
		}
	}
}

// sendAndCollect posts one message and returns the messages that
// arrived in response. When the server does not echo the new messages,
// the controller falls back to a transcript reload; the new tail of the
// transcript is what arrived.
func sendAndCollect(ctx context.Context, thread *chats.ThreadController, input string) ([]model.Message, error) {
	before := len(thread.Messages())

	appended, err := thread.SendMessage(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(appended) > 0 {
		return appended, nil
	}

	if all := thread.Messages(); len(all) > before {
		return all[before:], nil
	}
	return nil, nil
}

// handleChatCommand runs a /command and reports whether to exit.
func handleChatCommand(ctx context.Context, app *App, list *chats.ListController, thread *chats.ThreadController, chatID int, input string) (bool, error) {
	parts := strings.SplitN(input, " ", 2)
	cmd := parts[0]
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/quit", "/exit", "/q":
		return true, nil

	case "/help", "/?":
		fmt.Print(chatHelpText)
		return false, nil

	case "/rename":
		if arg == "" {
			return false, fmt.Errorf("usage: /rename <name>")
		}
		if err := list.RenameChat(ctx, chatID, arg); err != nil {
			return false, err
		}
		fmt.Println("Renamed")
		return false, nil

	case "/reload":
		if err := thread.LoadMessages(ctx); err != nil {
			return false, err
		}
		for _, msg := range thread.Messages() {
			displayMessage(msg)
		}
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s (/help for commands)", cmd)
	}
}

// resolveChat picks the chat to talk in: an explicit id, or a new
// chat when none was given.
func resolveChat(ctx context.Context, app *App, list *chats.ListController, rawID string) (model.Chat, error) {
	if rawID == "" {
		chat, _, err := list.CreateChat(ctx)
		if err != nil {
			return model.Chat{}, err
		}
		return *chat, nil
	}

	chatID, err := strconv.Atoi(rawID)
	if err != nil {
		return model.Chat{}, fmt.Errorf("invalid chat id %q", rawID)
	}
	return findChat(ctx, app, chatID)
}
