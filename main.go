// foundry-tui - A terminal client for the Foundry assistant backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/cli"
	"github.com/jeranaias/foundry-tui/internal/config"
	"github.com/jeranaias/foundry-tui/internal/credentials"
	"github.com/jeranaias/foundry-tui/internal/logging"
	"github.com/jeranaias/foundry-tui/internal/session"
	"github.com/jeranaias/foundry-tui/internal/storage"
	"github.com/jeranaias/foundry-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with the cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdChat:
		// `chat` without --plain is the TUI scoped to a conversation.
		if args.Plain {
			cli.HandleChat(args)
			return
		}
		runTUI(args)
	case cli.CmdLogin:
		cli.HandleLogin(args)
	case cli.CmdLogout:
		cli.HandleLogout(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdHealth:
		cli.HandleHealth(args)
	case cli.CmdConversations:
		cli.HandleConversations(args)
	case cli.CmdExport:
		cli.HandleExport(args)
	case cli.CmdSession:
		cli.HandleSession(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

// runTUI wires the full-screen client and blocks until it exits.
func runTUI(args cli.Args) {
	cfg := cli.EffectiveConfig(args)

	logger := buildLogger(cfg)
	defer logger.Sync()

	credPath, err := config.CredentialsPath()
	if err != nil {
		fatal(err)
	}
	keyPath, err := config.CredentialsKeyPath()
	if err != nil {
		fatal(err)
	}
	sessPath, err := config.SessionPath()
	if err != nil {
		fatal(err)
	}

	creds := credentials.NewStore(credPath, keyPath)
	sessions := session.NewProvider(session.NewFileStore(sessPath))

	base := agent.NewClient(cfg.Agent.BaseURL, cfg.VariantPath(), creds, sessions).
		WithTimeout(time.Duration(cfg.Agent.TimeoutSecs) * time.Second).
		WithUploadTimeout(time.Duration(cfg.Agent.UploadTimeoutSecs) * time.Second).
		WithRefreshLimit(cfg.Agent.ListRefreshPerMin).
		WithUserAgent("foundry-tui/" + Version).
		WithLogger(logger)

	// The variant wrapper carries the extras (thread or history reset)
	// the chat view discovers by capability assertion.
	var client agent.Backend = agent.NewFoundryClient(base)
	if cfg.Agent.Variant == config.VariantLocal {
		client = agent.NewLocalClient(base)
	}

	var cache *storage.ThreadCache
	if cfg.Cache.Enabled {
		path, err := cfg.CachePath()
		if err == nil {
			cache, err = storage.Open(path, logger)
		}
		if err != nil {
			// The TUI works without the offline cache.
			logger.Warn("cache unavailable", zap.Error(err))
			cache = nil
		}
	}
	if cache != nil {
		defer cache.Close()
	}

	token, _ := creds.Token()

	m := chat.New(client, chat.Options{
		Variant:        cfg.Agent.Variant,
		Cache:          cache,
		Logger:         logger,
		Streaming:      cfg.Agent.Stream,
		IncludeContext: cfg.Agent.IncludeUserContext,
		Authenticated:  token != "",
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.SetProgram(p)

	// Config edits apply to the running session without a restart.
	watcher, err := config.NewWatcher(func(next *config.Config) {
		p.Send(chat.SettingsChangedMsg{
			Streaming:      next.Agent.Stream,
			IncludeContext: next.Agent.IncludeUserContext,
		})
	})
	if err == nil {
		if err := watcher.Watch(); err != nil {
			logger.Warn("config watch unavailable", zap.Error(err))
		}
		defer watcher.Close()
	} else {
		logger.Warn("config watcher unavailable", zap.Error(err))
	}

	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}

// buildLogger opens the rotating file logger, falling back to a no-op
// logger so the TUI never writes diagnostics to the terminal it draws on.
func buildLogger(cfg *config.Config) *zap.Logger {
	path, err := cfg.LogPath()
	if err != nil {
		return logging.Nop()
	}
	logger, err := logging.New(logging.Options{
		Path:       path,
		Level:      cfg.Logging.Level,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return logging.Nop()
	}
	return logger
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(cli.GetExitCode(err))
}
