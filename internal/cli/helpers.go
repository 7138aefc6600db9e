// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared wiring and formatting helpers for CLI commands.
package cli

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/config"
	"github.com/jeranaias/foundry-tui/internal/credentials"
	"github.com/jeranaias/foundry-tui/internal/session"
	"github.com/jeranaias/foundry-tui/internal/storage"
)

// =============================================================================
// BACKEND WIRING
// =============================================================================

// clientEnv bundles everything a command needs to reach the backend.
// client is the variant wrapper so commands can reach variant extras
// by capability assertion; base stays available for With* tuning.
type clientEnv struct {
	cfg      *config.Config
	base     *agent.Client
	client   agent.Backend
	creds    *credentials.Store
	sessions *session.Provider
	variant  string
}

// EffectiveConfig copies the global config and applies command-line
// overrides. The copy keeps one-shot overrides from leaking into the
// process-wide config.
func EffectiveConfig(args Args) *config.Config {
	cfg := *config.Global()
	if args.Variant != "" {
		cfg.Agent.Variant = strings.ToLower(args.Variant)
	}
	if args.BaseURL != "" {
		cfg.Agent.BaseURL = args.BaseURL
	}
	if args.Stream {
		cfg.Agent.Stream = true
	}
	if args.NoStream {
		cfg.Agent.Stream = false
	}
	return &cfg
}

// buildEnv wires the credential store, session provider, and agent client
// for the effective configuration.
func buildEnv(args Args) (*clientEnv, error) {
	cfg := EffectiveConfig(args)

	credPath, err := config.CredentialsPath()
	if err != nil {
		return nil, err
	}
	keyPath, err := config.CredentialsKeyPath()
	if err != nil {
		return nil, err
	}
	sessPath, err := config.SessionPath()
	if err != nil {
		return nil, err
	}

	creds := credentials.NewStore(credPath, keyPath)
	provider := session.NewProvider(session.NewFileStore(sessPath))

	base := agent.NewClient(cfg.Agent.BaseURL, cfg.VariantPath(), creds, provider).
		WithTimeout(time.Duration(cfg.Agent.TimeoutSecs) * time.Second).
		WithUploadTimeout(time.Duration(cfg.Agent.UploadTimeoutSecs) * time.Second).
		WithUserAgent("foundry-tui/" + Version)

	var client agent.Backend = agent.NewFoundryClient(base)
	if cfg.Agent.Variant == config.VariantLocal {
		client = agent.NewLocalClient(base)
	}

	return &clientEnv{
		cfg:      cfg,
		base:     base,
		client:   client,
		creds:    creds,
		sessions: provider,
		variant:  cfg.Agent.Variant,
	}, nil
}

// openCache opens the thread cache when caching is enabled. Returns nil
// without error when disabled.
func openCache(cfg *config.Config, logger *zap.Logger) (*storage.ThreadCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	path, err := cfg.CachePath()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return storage.Open(path, logger)
}

// =============================================================================
// FORMATTING
// =============================================================================

// maskSecret keeps the first eight characters and hides the rest. Short
// values are fully masked.
func maskSecret(s string) string {
	const keep = 8
	runes := []rune(s)
	if len(runes) <= keep {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:keep]) + strings.Repeat("*", 4)
}

// formatNumber formats an integer with comma separators.
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 1000 {
		return s
	}
	result := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

// formatTime renders a timestamp for display, "-" when zero.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// formatBytes renders a byte count in the nearest binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
