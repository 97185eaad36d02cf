// chatterm - a terminal client for the chatterm chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/auth"
	"github.com/jeranaias/chatterm/internal/chats"
	"github.com/jeranaias/chatterm/internal/cli"
	"github.com/jeranaias/chatterm/internal/config"
	"github.com/jeranaias/chatterm/internal/history"
	"github.com/jeranaias/chatterm/internal/ui/chat"
	"github.com/jeranaias/chatterm/internal/ui/login"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for config reload notifications
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args))
	case cli.CmdSignup:
		exitOnError(cli.HandleSignup(args))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(args))
	case cli.CmdWhoami:
		exitOnError(cli.HandleWhoami(args))
	case cli.CmdChats:
		exitOnError(cli.HandleChats(args))
	case cli.CmdChat:
		exitOnError(cli.HandleChat(args))
	case cli.CmdExport:
		exitOnError(cli.HandleExport(args))
	case cli.CmdHistory:
		exitOnError(cli.HandleHistory(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

func exitOnError(err error) {
	if err != nil {
		cli.Fatal(err)
	}
}

// =============================================================================
// TUI ENTRY POINT
// =============================================================================

func runTUI(args cli.Args) {
	app, err := cli.Bootstrap(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg := app.Config
	config.SetGlobal(cfg)

	theme := styles.NewThemeWithMode(cfg.UI.Theme)

	authController := auth.NewController(app.Client, app.Store)
	listController := chats.NewListController(app.Client)
	threadController := chats.NewThreadController(app.Client)

	// Local history cache is optional; the TUI works without it.
	var historyStore *history.Store
	if cfg.History.Enabled {
		historyStore, err = history.Open(cfg.History.Path)
		if err != nil {
			fmt.Fprintln(os.Stderr, styles.RenderWarning("Local history unavailable: "+err.Error()))
			historyStore = nil
		} else {
			defer historyStore.Close()
		}
	}

	m := newAppModel(appDeps{
		config:  cfg,
		client:  app.Client,
		auth:    authController,
		list:    listController,
		thread:  threadController,
		history: historyStore,
		theme:   theme,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Watch the config file and push reloads into the program.
	watcher := startConfigWatcher()
	if watcher != nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running chatterm: %v\n", err)
		os.Exit(1)
	}
}

// startConfigWatcher begins watching the TOML config. Returns nil
// when watching is unavailable (no config file yet, no inotify).
func startConfigWatcher() *config.Watcher {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return nil
	}
	watcher, err := config.NewWatcher(path, 0, func(cfg *config.Config) {
		config.SetGlobal(cfg)
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(configReloadedMsg{config: cfg})
		}
	})
	if err != nil {
		return nil
	}
	if err := watcher.Watch(); err != nil {
		return nil
	}
	return watcher
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// State represents the current application state.
type State int

const (
	StateVerifying State = iota // Checking the stored token on startup
	StateLogin                  // Login or signup screen
	StateDashboard              // Chat dashboard
)

// verifiedMsg reports the startup token check outcome.
type verifiedMsg struct {
	state auth.State
}

// configReloadedMsg carries a hot-reloaded configuration.
type configReloadedMsg struct {
	config *config.Config
}

type appDeps struct {
	config  *config.Config
	client  *api.Client
	auth    *auth.Controller
	list    *chats.ListController
	thread  *chats.ThreadController
	history *history.Store
	theme   *styles.Theme
}

// appModel is the top-level Bubble Tea model. It owns the screen
// switch between login and the dashboard.
type appModel struct {
	deps  appDeps
	state State

	login     login.Model
	dashboard chat.Model

	width  int
	height int
}

func newAppModel(deps appDeps) appModel {
	return appModel{
		deps:  deps,
		state: StateVerifying,
		login: login.New(deps.auth, deps.theme),
	}
}

// Init starts the stored-token verification.
func (m appModel) Init() tea.Cmd {
	controller := m.deps.auth
	verify := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return verifiedMsg{state: controller.VerifyOnStart(ctx)}
	}
	return tea.Batch(verify, m.login.Init())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Both screens track the size so switching is seamless.
		var loginCmd, dashCmd tea.Cmd
		m.login, loginCmd = m.login.Update(msg)
		if m.state == StateDashboard {
			m.dashboard, dashCmd = m.dashboard.Update(msg)
		}
		return m, tea.Batch(loginCmd, dashCmd)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && m.state != StateDashboard {
			return m, tea.Quit
		}

	case verifiedMsg:
		if msg.state == auth.StateAuthenticated {
			return m.enterDashboard()
		}
		m.state = StateLogin
		return m, nil

	case login.AuthenticatedMsg:
		return m.enterDashboard()

	case chat.LoggedOutMsg:
		// Drop the previous user's chat list and transcript before the
		// login screen comes up; the next login must start clean.
		m.deps.list.Reset()
		m.deps.thread.Reset()
		m.state = StateLogin
		m.login = login.New(m.deps.auth, m.deps.theme)
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		return m, tea.Batch(m.login.Init(), cmd)

	case configReloadedMsg:
		m.deps.theme.ApplyMode(msg.config.UI.Theme)
		if m.deps.client != nil {
			m.deps.client.SetBaseURL(msg.config.Server.BaseURL)
		}
		if m.state == StateDashboard {
			m.dashboard.ApplyConfig(msg.config)
		}
		return m, nil
	}

	switch m.state {
	case StateDashboard:
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}
}

// enterDashboard builds a fresh dashboard for the authenticated user.
func (m appModel) enterDashboard() (tea.Model, tea.Cmd) {
	user, _ := m.deps.auth.CurrentUser()

	m.dashboard = chat.New(chat.Options{
		List:    m.deps.list,
		Thread:  m.deps.thread,
		Auth:    m.deps.auth,
		History: m.deps.history,
		Theme:   m.deps.theme,
		Config:  m.deps.config,
		User:    user,
	})
	m.state = StateDashboard

	var cmd tea.Cmd
	m.dashboard, cmd = m.dashboard.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	return m, tea.Batch(m.dashboard.Init(), cmd)
}

func (m appModel) View() string {
	switch m.state {
	case StateVerifying:
		return "Checking session..."
	case StateDashboard:
		return m.dashboard.View()
	default:
		return m.login.View()
	}
}
