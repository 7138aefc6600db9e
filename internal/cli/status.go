// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - status command handler.
//
// Status is a read-only report: it never mints a session key, never writes
// the credential file, and never creates the cache database. An unreachable
// backend is part of the report, not a command failure.

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/config"
	"github.com/jeranaias/foundry-tui/internal/credentials"
	"github.com/jeranaias/foundry-tui/internal/logging"
	"github.com/jeranaias/foundry-tui/internal/session"
	"github.com/jeranaias/foundry-tui/internal/storage"
)

const statusProbeTimeout = 5 * time.Second

// HandleStatusCommand reports session, credential, backend, and cache state.
func HandleStatusCommand(args Args) error {
	cfg := EffectiveConfig(args)

	stateDir, err := config.StateDir()
	if err != nil {
		return fmt.Errorf("resolve state directory: %w", err)
	}

	// Session presence, read directly from the store so nothing gets
	// minted as a side effect of asking.
	var sessionKey string
	var sessionCreated time.Time
	if path, err := config.SessionPath(); err == nil {
		store := session.NewFileStore(path)
		if key, err := store.Load(); err == nil && key != "" {
			sessionKey = key
			sessionCreated = store.CreatedAt()
		}
	}

	// Stored token plus its unverified claims.
	var token string
	var savedAt time.Time
	var claims *credentials.Claims
	credPath, err := config.CredentialsPath()
	if err == nil {
		keyPath, kerr := config.CredentialsKeyPath()
		if kerr == nil {
			store := credentials.NewStore(credPath, keyPath)
			if t, err := store.Token(); err == nil && t != "" {
				token = t
				savedAt = store.SavedAt()
				claims, _ = credentials.PeekClaims(t)
			}
		}
	}

	// Backend probe. A memory-backed session provider keeps the probe
	// from writing the session file.
	health, healthErr := probeBackend(cfg, token)

	// Cache stats, only when the database already exists.
	var cacheStats *storage.Stats
	if cfg.Cache.Enabled {
		if path, err := cfg.CachePath(); err == nil {
			if _, err := os.Stat(path); err == nil {
				if cache, err := storage.Open(path, logging.Nop()); err == nil {
					if st, err := cache.Stats(); err == nil {
						cacheStats = &st
					}
					cache.Close()
				}
			}
		}
	}

	if args.JSON {
		return printStatusJSON(cfg, stateDir, sessionKey, sessionCreated,
			token, savedAt, claims, health, healthErr, cacheStats)
	}

	printStatusHuman(cfg, stateDir, sessionKey, sessionCreated,
		token, savedAt, claims, health, healthErr, cacheStats)
	return nil
}

// probeBackend checks the health endpoint without touching local state.
func probeBackend(cfg *config.Config, token string) (*agent.Health, error) {
	provider := session.NewProvider(session.NewMemStore())
	client := agent.NewClient(cfg.Agent.BaseURL, cfg.VariantPath(),
		credentials.StaticToken(token), provider).
		WithTimeout(statusProbeTimeout).
		WithUserAgent("foundry-tui/" + Version)

	ctx, cancel := context.WithTimeout(context.Background(), statusProbeTimeout)
	defer cancel()
	return client.Health(ctx)
}

func printStatusJSON(cfg *config.Config, stateDir, sessionKey string, sessionCreated time.Time,
	token string, savedAt time.Time, claims *credentials.Claims,
	health *agent.Health, healthErr error, cacheStats *storage.Stats) error {

	data := StatusData{
		Variant:  cfg.Agent.Variant,
		BaseURL:  cfg.Agent.BaseURL,
		StateDir: stateDir,
	}

	if sessionKey != "" {
		data.Session.Present = true
		data.Session.Key = maskSecret(sessionKey)
		if !sessionCreated.IsZero() {
			data.Session.CreatedAt = sessionCreated.UTC().Format(time.RFC3339)
		}
	}

	if token != "" {
		data.Token.Present = true
		if !savedAt.IsZero() {
			data.Token.SavedAt = savedAt.UTC().Format(time.RFC3339)
		}
		if claims != nil {
			data.Token.Subject = claims.Subject
			if !claims.IssuedAt.IsZero() {
				data.Token.IssuedAt = claims.IssuedAt.UTC().Format(time.RFC3339)
			}
			if !claims.ExpiresAt.IsZero() {
				data.Token.ExpiresAt = claims.ExpiresAt.UTC().Format(time.RFC3339)
			}
			data.Token.Expired = claims.Expired(time.Now())
		}
	}

	if healthErr != nil {
		data.Backend.Error = healthErr.Error()
	} else if health != nil {
		data.Backend.Reachable = true
		data.Backend.Status = health.Status
	}

	if cacheStats != nil {
		data.Cache = &StatusCacheInfo{
			Conversations: cacheStats.Conversations,
			Messages:      cacheStats.Messages,
			SizeBytes:     cacheStats.SizeBytes,
			Path:          cacheStats.Path,
		}
	}

	return NewJSONResponse("status", data).Print()
}

func printStatusHuman(cfg *config.Config, stateDir, sessionKey string, sessionCreated time.Time,
	token string, savedAt time.Time, claims *credentials.Claims,
	health *agent.Health, healthErr error, cacheStats *storage.Stats) {

	fmt.Println()
	fmt.Println(TitleStyle.Render("foundry-tui status"))
	fmt.Println(RenderSeparator())

	fmt.Printf("%s %s\n", LabelStyle.Render("Variant"), ValueStyle.Render(cfg.Agent.Variant))
	fmt.Printf("%s %s\n", LabelStyle.Render("Backend"), ValueStyle.Render(cfg.Agent.BaseURL))
	fmt.Printf("%s %s\n", LabelStyle.Render("State dir"), ValueStyle.Render(stateDir))

	if sessionKey != "" {
		detail := maskSecret(sessionKey)
		if !sessionCreated.IsZero() {
			detail += DimStyle.Render(fmt.Sprintf("  (created %s)", formatTime(sessionCreated)))
		}
		fmt.Printf("%s %s\n", LabelStyle.Render("Session"), detail)
	} else {
		fmt.Printf("%s %s\n", LabelStyle.Render("Session"), DimStyle.Render("none (minted on first use)"))
	}

	switch {
	case token == "":
		fmt.Printf("%s %s\n", LabelStyle.Render("Token"), DimStyle.Render("not logged in"))
	case claims == nil:
		fmt.Printf("%s %s\n", LabelStyle.Render("Token"),
			ValueStyle.Render("present")+DimStyle.Render("  (not a JWT)"))
	default:
		detail := claims.Subject
		if detail == "" {
			detail = "present"
		}
		if !claims.ExpiresAt.IsZero() {
			if claims.Expired(time.Now()) {
				detail += "  " + ErrorStyle.Render("[expired "+formatTime(claims.ExpiresAt)+"]")
			} else {
				detail += DimStyle.Render("  (expires " + formatTime(claims.ExpiresAt) + ")")
			}
		}
		fmt.Printf("%s %s\n", LabelStyle.Render("Token"), detail)
		if !savedAt.IsZero() {
			fmt.Printf("%s %s\n", LabelStyle.Render("Saved"), DimStyle.Render(formatTime(savedAt)))
		}
	}

	if healthErr != nil {
		fmt.Printf("%s %s %s\n", LabelStyle.Render("Health"),
			RenderStatus("fail"), DimStyle.Render(healthErr.Error()))
	} else if health != nil {
		fmt.Printf("%s %s %s\n", LabelStyle.Render("Health"),
			RenderStatus(health.Status), DimStyle.Render("reachable"))
	}

	if cacheStats != nil {
		fmt.Printf("%s %s\n", LabelStyle.Render("Cache"),
			ValueStyle.Render(fmt.Sprintf("%d conversations, %d messages",
				cacheStats.Conversations, cacheStats.Messages))+
				DimStyle.Render("  ("+formatBytes(cacheStats.SizeBytes)+")"))
	} else if cfg.Cache.Enabled {
		fmt.Printf("%s %s\n", LabelStyle.Render("Cache"), DimStyle.Render("empty"))
	} else {
		fmt.Printf("%s %s\n", LabelStyle.Render("Cache"), DimStyle.Render("disabled"))
	}

	fmt.Println()
}
