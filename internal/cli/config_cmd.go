// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - config show/set/path command handlers.
package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/chatterm/internal/config"
)

// =============================================================================
// CONFIG
// =============================================================================

// HandleConfig manages the configuration file.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(args)
	case "set":
		return configSet(args)
	case "path":
		return configPath()
	default:
		return fmt.Errorf("unknown config subcommand %q (want show, set, or path)", args.Subcommand)
	}
}

func configShow(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.ApplyEnvOverrides()

	if args.JSON {
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("server.base_url              %s\n", cfg.Server.BaseURL)
	fmt.Printf("server.timeout_secs          %d\n", cfg.Server.TimeoutSecs)
	fmt.Printf("server.requests_per_second   %g\n", cfg.Server.RequestsPerSecond)
	fmt.Printf("server.burst                 %d\n", cfg.Server.Burst)
	fmt.Printf("ui.theme                     %s\n", cfg.UI.Theme)
	fmt.Printf("ui.show_timestamps           %t\n", cfg.UI.ShowTimestamps)
	fmt.Printf("ui.compact_mode              %t\n", cfg.UI.CompactMode)
	fmt.Printf("ui.markdown_rendering        %t\n", cfg.UI.MarkdownRendering)
	fmt.Printf("history.enabled              %t\n", cfg.History.Enabled)
	fmt.Printf("history.path                 %s\n", cfg.History.Path)
	fmt.Printf("history.max_messages         %d\n", cfg.History.MaxMessagesPerThread)
	fmt.Printf("export.dir                   %s\n", cfg.Export.Dir)
	fmt.Printf("export.format                %s\n", cfg.Export.Format)
	return nil
}

func configSet(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return fmt.Errorf("usage: chatterm config set <key> <value>")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := applyConfigKey(cfg, args.ConfigKey, args.ConfigVal); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	if !args.Quiet {
		fmt.Printf("Set %s = %s\n", args.ConfigKey, args.ConfigVal)
	}
	return nil
}

func configPath() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// applyConfigKey maps a dotted key to a config field.
func applyConfigKey(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "server.base_url", "server.url":
		cfg.Server.BaseURL = value
	case "server.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid number %q", value)
		}
		cfg.Server.TimeoutSecs = n
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.show_timestamps":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		cfg.UI.ShowTimestamps = b
	case "ui.compact_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		cfg.UI.CompactMode = b
	case "ui.markdown_rendering":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		cfg.UI.MarkdownRendering = b
	case "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		cfg.History.Enabled = b
	case "history.max_messages":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid number %q", value)
		}
		cfg.History.MaxMessagesPerThread = n
	case "export.dir":
		cfg.Export.Dir = value
	case "export.format":
		cfg.Export.Format = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
