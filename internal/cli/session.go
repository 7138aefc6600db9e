// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session.go - session command handler.
//
// Shows or resets the per-terminal session key sent as X-Tab-Session-Key.
// Showing never mints a key; resetting clears the old one and mints a
// replacement immediately so the new identity is visible.

package cli

import (
	"fmt"
	"time"

	"github.com/jeranaias/foundry-tui/internal/config"
	"github.com/jeranaias/foundry-tui/internal/session"
)

// HandleSessionCommand dispatches the session subcommand.
func HandleSessionCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return sessionShow(args)
	case "reset":
		return sessionReset(args)
	default:
		return NewUsageError("session",
			fmt.Sprintf("unknown subcommand %q", args.Subcommand),
			"foundry-tui session [show|reset]")
	}
}

func sessionShow(args Args) error {
	path, err := config.SessionPath()
	if err != nil {
		return err
	}
	store := session.NewFileStore(path)

	key, err := store.Load()
	if err != nil || key == "" {
		if args.JSON {
			return NewJSONResponse("session", SessionData{}).Print()
		}
		fmt.Println(DimStyle.Render("No session key yet. One is minted on the first backend request."))
		return nil
	}

	created := store.CreatedAt()

	if args.JSON {
		data := SessionData{Key: maskSecret(key)}
		if !created.IsZero() {
			data.CreatedAt = created.UTC().Format(time.RFC3339)
		}
		return NewJSONResponse("session", data).Print()
	}

	fmt.Printf("%s %s\n", LabelStyle.Render("Session key"), ValueStyle.Render(maskSecret(key)))
	if !created.IsZero() {
		fmt.Printf("%s %s\n", LabelStyle.Render("Created"), ValueStyle.Render(formatTime(created)))
	}
	return nil
}

func sessionReset(args Args) error {
	path, err := config.SessionPath()
	if err != nil {
		return err
	}
	provider := session.NewProvider(session.NewFileStore(path))

	if err := provider.Reset(); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}

	key, err := provider.Key()
	if err != nil {
		return fmt.Errorf("mint session key: %w", err)
	}

	if args.JSON {
		return NewJSONResponse("session", SessionData{
			Key:       maskSecret(key),
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Reset:     true,
		}).Print()
	}

	fmt.Println(SuccessStyle.Render("Session reset."))
	fmt.Printf("%s %s\n", LabelStyle.Render("New key"), ValueStyle.Render(maskSecret(key)))
	return nil
}
