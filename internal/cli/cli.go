// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for chatterm.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdSignup
	CmdLogout
	CmdWhoami
	CmdChats
	CmdChat
	CmdExport
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ServerURL string
	Quiet     bool
	JSON      bool

	// Command-specific
	Username   string
	ChatID     string
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Format     string
	OutputDir  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `chatterm - terminal client for the chatterm chat service

Chatterm talks to a chatterm server over its REST API. Sessions are
stored locally, so you log in once and stay signed in.

Usage:
  chatterm                    Start the TUI (default)
  chatterm login [user]       Log in and store the session
  chatterm signup [user]      Create an account
  chatterm logout             Log out and clear the session
  chatterm whoami             Show the signed-in user
  chatterm chats              List your chats
  chatterm chat <id>          Interactive chat in the terminal
  chatterm export <id>        Export a chat transcript
    --format md|json          Export format (default from config)
    --output DIR              Destination directory
  chatterm history [sub]      Local history cache (show | clear [id])
  chatterm config [show|set|path]
                              Configuration management
  chatterm version            Show version information
  chatterm help               Show this help

Global flags:
  --server URL                Override the server base URL
  --json                      Machine-readable output where supported
  --quiet                     Suppress informational output

Configuration:
  ~/.chatterm/config.toml     Settings (server, theme, history, export)
  ~/.chatterm/session.json    Stored session token
  ~/.chatterm/history.db      Local transcript cache

Environment:
  CHATTERM_SERVER_URL         Override the server base URL
  CHATTERM_THEME              dark, light, or auto
  CHATTERM_NO_HISTORY         Disable the local history cache
  CHATTERM_EXPORT_DIR         Default export directory

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("chatterm version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

// parseArgs is the testable core of Parse.
func parseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	// No arguments: start the TUI.
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "login":
		if len(remaining) > 0 {
			parsedArgs.Username = remaining[0]
		}
		return CmdLogin, parsedArgs

	case "signup", "register":
		if len(remaining) > 0 {
			parsedArgs.Username = remaining[0]
		}
		return CmdSignup, parsedArgs

	case "logout":
		return CmdLogout, parsedArgs

	case "whoami":
		return CmdWhoami, parsedArgs

	case "chats", "list":
		return CmdChats, parsedArgs

	case "chat":
		if len(remaining) > 0 {
			parsedArgs.ChatID = remaining[0]
		}
		return CmdChat, parsedArgs

	case "export":
		parseExportArgs(&parsedArgs, remaining)
		return CmdExport, parsedArgs

	case "history":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		if len(remaining) > 1 {
			parsedArgs.ChatID = remaining[1]
		}
		return CmdHistory, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts flags understood by every command.
func parseGlobalFlags(args []string) ([]string, Args) {
	parsed := Args{}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == "--server" && i+1 < len(args):
			parsed.ServerURL = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--server="):
			parsed.ServerURL = strings.TrimPrefix(arg, "--server=")
			i++
		case arg == "--json":
			parsed.JSON = true
			i++
		case arg == "--quiet", arg == "-q":
			parsed.Quiet = true
			i++
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	return remaining, parsed
}

// parseExportArgs parses export-specific flags.
func parseExportArgs(args *Args, remaining []string) {
	i := 0
	for i < len(remaining) {
		arg := remaining[i]
		switch {
		case arg == "--format" && i+1 < len(remaining):
			args.Format = remaining[i+1]
			i += 2
		case strings.HasPrefix(arg, "--format="):
			args.Format = strings.TrimPrefix(arg, "--format=")
			i++
		case arg == "--output" && i+1 < len(remaining):
			args.OutputDir = remaining[i+1]
			i += 2
		case strings.HasPrefix(arg, "--output="):
			args.OutputDir = strings.TrimPrefix(arg, "--output=")
			i++
		default:
			if args.ChatID == "" {
				args.ChatID = arg
			}
			i++
		}
	}
}

// parseConfigArgs parses the config subcommand and key/value.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
	}
	if len(remaining) > 1 {
		args.ConfigKey = remaining[1]
	}
	if len(remaining) > 2 {
		args.ConfigVal = remaining[2]
	}
}
