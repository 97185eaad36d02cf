// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/jeranaias/chatterm/internal/config"
)

// =============================================================================
// ARGUMENT PARSING TESTS
// =============================================================================

func TestParseArgsCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"Empty", nil, CmdTUI},
		{"TUI", []string{"tui"}, CmdTUI},
		{"Login", []string{"login"}, CmdLogin},
		{"Signup", []string{"signup"}, CmdSignup},
		{"Register", []string{"register"}, CmdSignup},
		{"Logout", []string{"logout"}, CmdLogout},
		{"Whoami", []string{"whoami"}, CmdWhoami},
		{"Chats", []string{"chats"}, CmdChats},
		{"List", []string{"list"}, CmdChats},
		{"Chat", []string{"chat", "3"}, CmdChat},
		{"Export", []string{"export", "3"}, CmdExport},
		{"History", []string{"history", "show"}, CmdHistory},
		{"Config", []string{"config", "show"}, CmdConfig},
		{"Version", []string{"version"}, CmdVersion},
		{"Help", []string{"help"}, CmdHelp},
		{"Unknown", []string{"frobnicate"}, CmdHelp},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := parseArgs(tc.args)
			if got != tc.want {
				t.Errorf("parseArgs(%v) = %v, want %v", tc.args, got, tc.want)
			}
		})
	}
}

func TestParseArgsLoginUsername(t *testing.T) {
	_, args := parseArgs([]string{"login", "carol"})
	if args.Username != "carol" {
		t.Errorf("Username = %q, want %q", args.Username, "carol")
	}
}

func TestParseArgsChatID(t *testing.T) {
	_, args := parseArgs([]string{"chat", "42"})
	if args.ChatID != "42" {
		t.Errorf("ChatID = %q, want %q", args.ChatID, "42")
	}
}

func TestParseGlobalFlags(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantServer string
		wantJSON   bool
		wantQuiet  bool
		wantLeft   int
	}{
		{"None", []string{"chats"}, "", false, false, 1},
		{"Server", []string{"--server", "http://host:9000", "chats"}, "http://host:9000", false, false, 1},
		{"ServerEquals", []string{"--server=http://host:9000"}, "http://host:9000", false, false, 0},
		{"JSON", []string{"--json", "whoami"}, "", true, false, 1},
		{"Quiet", []string{"-q", "logout"}, "", false, true, 1},
		{"Mixed", []string{"--json", "--quiet", "chats"}, "", true, true, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			remaining, parsed := parseGlobalFlags(tc.args)
			if parsed.ServerURL != tc.wantServer {
				t.Errorf("ServerURL = %q, want %q", parsed.ServerURL, tc.wantServer)
			}
			if parsed.JSON != tc.wantJSON {
				t.Errorf("JSON = %t, want %t", parsed.JSON, tc.wantJSON)
			}
			if parsed.Quiet != tc.wantQuiet {
				t.Errorf("Quiet = %t, want %t", parsed.Quiet, tc.wantQuiet)
			}
			if len(remaining) != tc.wantLeft {
				t.Errorf("len(remaining) = %d, want %d", len(remaining), tc.wantLeft)
			}
		})
	}
}

func TestParseExportArgs(t *testing.T) {
	_, args := parseArgs([]string{"export", "7", "--format", "json", "--output", "/tmp/exports"})
	if args.ChatID != "7" {
		t.Errorf("ChatID = %q, want %q", args.ChatID, "7")
	}
	if args.Format != "json" {
		t.Errorf("Format = %q, want %q", args.Format, "json")
	}
	if args.OutputDir != "/tmp/exports" {
		t.Errorf("OutputDir = %q, want %q", args.OutputDir, "/tmp/exports")
	}
}

func TestParseConfigArgs(t *testing.T) {
	_, args := parseArgs([]string{"config", "set", "ui.theme", "light"})
	if args.Subcommand != "set" || args.ConfigKey != "ui.theme" || args.ConfigVal != "light" {
		t.Errorf("config args = %q %q %q", args.Subcommand, args.ConfigKey, args.ConfigVal)
	}
}

func TestParseHistoryArgs(t *testing.T) {
	_, args := parseArgs([]string{"history", "clear", "7"})
	if args.Subcommand != "clear" {
		t.Errorf("Subcommand = %q, want %q", args.Subcommand, "clear")
	}
	if args.ChatID != "7" {
		t.Errorf("ChatID = %q, want %q", args.ChatID, "7")
	}

	_, args = parseArgs([]string{"history", "clear"})
	if args.ChatID != "" {
		t.Errorf("ChatID = %q, want empty for a full clear", args.ChatID)
	}
}

// =============================================================================
// CONFIG KEY MAPPING TESTS
// =============================================================================

func TestApplyConfigKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(*config.Config) bool
	}{
		{
			name: "ServerURL", key: "server.base_url", value: "http://host:9000",
			check: func(c *config.Config) bool { return c.Server.BaseURL == "http://host:9000" },
		},
		{
			name: "Theme", key: "ui.theme", value: "light",
			check: func(c *config.Config) bool { return c.UI.Theme == "light" },
		},
		{
			name: "Timestamps", key: "ui.show_timestamps", value: "false",
			check: func(c *config.Config) bool { return !c.UI.ShowTimestamps },
		},
		{
			name: "MaxMessages", key: "history.max_messages", value: "250",
			check: func(c *config.Config) bool { return c.History.MaxMessagesPerThread == 250 },
		},
		{
			name: "BadNumber", key: "history.max_messages", value: "lots", wantErr: true,
		},
		{
			name: "BadBool", key: "ui.show_timestamps", value: "yep", wantErr: true,
		},
		{
			name: "UnknownKey", key: "nope.nothing", value: "x", wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			err := applyConfigKey(cfg, tc.key, tc.value)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("applyConfigKey() error = %v", err)
			}
			if !tc.check(cfg) {
				t.Error("config field not updated")
			}
		})
	}
}
