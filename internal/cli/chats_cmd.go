// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chats_cmd.go - chat listing, export, and local history handlers.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/jeranaias/chatterm/internal/export"
	"github.com/jeranaias/chatterm/internal/history"
	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/ui/styles"
	"github.com/jeranaias/chatterm/internal/util"
)

// =============================================================================
// CHATS
// =============================================================================

// HandleChats lists the user's chats.
func HandleChats(args Args) error {
	app, err := Bootstrap(args)
	if err != nil {
		return err
	}
	if err := app.RequireSession(); err != nil {
		return err
	}

	chats, err := app.Client.ListChats(context.Background())
	if err != nil {
		return err
	}

	if args.JSON {
		out, err := json.MarshalIndent(chats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(chats) == 0 {
		fmt.Println(styles.RenderInfo("No chats yet. Start one in the TUI or with: chatterm chat"))
		return nil
	}

	fmt.Printf("%-6s %-40s %s\n", "ID", "NAME", "CREATED")
	for _, chat := range chats {
		fmt.Printf("%-6d %s %s\n",
			chat.ID,
			util.PadRight(util.TruncateWidth(chat.Title(), 40), 40),
			chat.CreatedAt,
		)
	}
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

// HandleExport writes a chat transcript to disk.
func HandleExport(args Args) error {
	app, err := Bootstrap(args)
	if err != nil {
		return err
	}
	if err := app.RequireSession(); err != nil {
		return err
	}
	if args.ChatID == "" {
		return fmt.Errorf("usage: chatterm export <chat-id> [--format md|json] [--output DIR]")
	}

	chatID, err := strconv.Atoi(args.ChatID)
	if err != nil {
		return fmt.Errorf("invalid chat id %q", args.ChatID)
	}

	ctx := context.Background()

	chat, messages, err := fetchTranscript(ctx, app, chatID)
	if err != nil {
		// When the server cannot be reached, the local cache still
		// satisfies the export.
		cachedChat, cachedMsgs, cacheErr := cachedTranscript(ctx, app, chatID)
		if cacheErr != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, styles.RenderWarning("Server unreachable, exporting the cached transcript"))
		chat, messages = cachedChat, cachedMsgs
	}

	formatName := args.Format
	if formatName == "" {
		formatName = app.Config.Export.Format
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	dir := args.OutputDir
	if dir == "" {
		dir = app.Config.Export.Dir
	}

	transcript := export.Transcript{Chat: chat, Messages: messages}
	path, err := transcript.WriteFile(dir, format)
	if err != nil {
		return err
	}

	if !args.Quiet {
		fmt.Printf("Exported %d messages to %s\n", len(messages), path)
	}
	return nil
}

// fetchTranscript pulls a chat and its full transcript from the server.
func fetchTranscript(ctx context.Context, app *App, chatID int) (model.Chat, []model.Message, error) {
	chat, err := findChat(ctx, app, chatID)
	if err != nil {
		return model.Chat{}, nil, err
	}

	thread, err := app.Client.CreateThread(ctx, chatID)
	if err != nil {
		return model.Chat{}, nil, err
	}
	messages, err := app.Client.ListMessages(ctx, thread.ID)
	if err != nil {
		return model.Chat{}, nil, err
	}
	return chat, messages, nil
}

// cachedTranscript reads a chat and its transcript from the local
// history cache.
func cachedTranscript(ctx context.Context, app *App, chatID int) (model.Chat, []model.Message, error) {
	if !app.Config.History.Enabled {
		return model.Chat{}, nil, fmt.Errorf("local history is disabled in the config")
	}

	store, err := history.Open(app.Config.History.Path)
	if err != nil {
		return model.Chat{}, nil, err
	}
	defer store.Close()

	chats, err := store.Chats(ctx)
	if err != nil {
		return model.Chat{}, nil, err
	}
	var chat model.Chat
	found := false
	for _, c := range chats {
		if c.ID == chatID {
			chat = c
			found = true
			break
		}
	}
	if !found {
		return model.Chat{}, nil, fmt.Errorf("chat %d not in the local cache", chatID)
	}

	messages, err := store.TranscriptForChat(ctx, chatID)
	if err != nil {
		return model.Chat{}, nil, err
	}
	if len(messages) == 0 {
		return model.Chat{}, nil, fmt.Errorf("no cached messages for chat %d", chatID)
	}
	return chat, messages, nil
}

func findChat(ctx context.Context, app *App, chatID int) (model.Chat, error) {
	chats, err := app.Client.ListChats(ctx)
	if err != nil {
		return model.Chat{}, err
	}
	for _, chat := range chats {
		if chat.ID == chatID {
			return chat, nil
		}
	}
	return model.Chat{}, fmt.Errorf("chat %d not found", chatID)
}

// =============================================================================
// HISTORY
// =============================================================================

// HandleHistory inspects or clears the local transcript cache.
func HandleHistory(args Args) error {
	app, err := Bootstrap(args)
	if err != nil {
		return err
	}
	if !app.Config.History.Enabled {
		return fmt.Errorf("local history is disabled in the config")
	}

	store, err := history.Open(app.Config.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	switch args.Subcommand {
	case "", "show":
		chats, err := store.Chats(ctx)
		if err != nil {
			return err
		}
		if len(chats) == 0 {
			fmt.Println("Local history is empty")
			return nil
		}
		fmt.Printf("%-6s %s\n", "ID", "NAME")
		for _, chat := range chats {
			fmt.Printf("%-6d %s\n", chat.ID, chat.Title())
		}
		return nil

	case "clear":
		// With a chat id only that chat is forgotten; without one the
		// whole cache goes.
		if args.ChatID != "" {
			chatID, err := strconv.Atoi(args.ChatID)
			if err != nil {
				return fmt.Errorf("invalid chat id %q", args.ChatID)
			}
			if err := store.Forget(ctx, chatID); err != nil {
				return err
			}
			if !args.Quiet {
				fmt.Printf("Forgot local history for chat %d\n", chatID)
			}
			return nil
		}
		if err := store.Wipe(ctx); err != nil {
			return err
		}
		if !args.Quiet {
			fmt.Println("Local history cleared")
		}
		return nil

	default:
		return fmt.Errorf("unknown history subcommand %q (want show or clear)", args.Subcommand)
	}
}
