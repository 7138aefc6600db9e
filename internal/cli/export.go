// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export.go - export command handler.
//
// Writes one conversation to a file (markdown, html, json, or text).
// Without --conversation the most recently updated conversation is
// exported. --offline exports straight from the local cache.

package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/export"
)

// HandleExportCommand exports a conversation transcript to a file.
func HandleExportCommand(args Args) error {
	env, err := buildEnv(args)
	if err != nil {
		return err
	}

	format := args.Format
	if format == "" {
		format = "markdown"
	}

	opts := export.DefaultOptions()
	if args.Output != "" {
		opts.OutputDir = args.Output
	}
	opts.Theme = env.cfg.UI.Theme

	// Validate the format before any network or disk work.
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return NewUsageError("export", err.Error(),
			"foundry-tui export [ID] [--format markdown|html|json|text] [--output DIR]")
	}

	conv, msgs, fromCache, err := resolveExportSource(env, args)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("conversation %q has no messages to export", conv.ID)
	}

	doc := export.FromCache(conv, msgs, env.variant)
	path, err := export.ExportToFile(doc, exporter, opts)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("export", ExportData{
			Path:           path,
			Format:         format,
			ConversationID: conv.ID,
			Messages:       len(msgs),
			FromCache:      fromCache,
		}).Print()
	}

	fmt.Printf("%s %s\n", SuccessStyle.Render("Exported"), ValueStyle.Render(path))
	fmt.Println(DimStyle.Render(fmt.Sprintf("  %s · %d messages · %s",
		conv.Title, len(msgs), format)))
	return nil
}

// resolveExportSource finds the conversation and its messages, from the
// backend or the cache.
func resolveExportSource(env *clientEnv, args Args) (*agent.Conversation, []agent.Message, bool, error) {
	cache, cacheErr := openCache(env.cfg, nil)
	if cache != nil {
		defer cache.Close()
	}

	if args.Offline {
		if cache == nil {
			if cacheErr != nil {
				return nil, nil, false, fmt.Errorf("offline export needs the cache: %w", cacheErr)
			}
			return nil, nil, false, fmt.Errorf("offline export needs the cache enabled in config.toml")
		}
		conv, msgs, err := exportFromCache(cache, env.variant, args.ConversationID)
		return conv, msgs, true, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
	defer cancel()

	convs, err := env.client.ListConversations(ctx)
	if err != nil {
		// The backend being down should not block getting a transcript out.
		if cache != nil && transportFailure(err) {
			conv, msgs, cerr := exportFromCache(cache, env.variant, args.ConversationID)
			if cerr != nil {
				return nil, nil, false, err
			}
			if !args.JSON {
				fmt.Fprintf(os.Stderr, "%s backend unreachable, exporting from cache\n",
					WarningStyle.Render("[offline]"))
			}
			return conv, msgs, true, nil
		}
		return nil, nil, false, err
	}

	conv, err := pickConversation(convs, args.ConversationID)
	if err != nil {
		return nil, nil, false, err
	}

	msgs, err := env.client.Messages(ctx, conv.ID)
	if err != nil {
		return nil, nil, false, err
	}
	return conv, msgs, false, nil
}

// exportFromCache resolves the conversation and messages from local storage.
func exportFromCache(cache cacheReader, variant, id string) (*agent.Conversation, []agent.Message, error) {
	conv, err := resolveCachedConversation(cache, variant, id)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := cache.Messages(conv.ID)
	if err != nil {
		return nil, nil, err
	}
	return conv, msgs, nil
}

func resolveCachedConversation(cache cacheReader, variant, id string) (*agent.Conversation, error) {
	if id != "" {
		conv, err := cache.Conversation(id)
		if err != nil {
			return nil, fmt.Errorf("conversation %q not in cache: %w", id, err)
		}
		return conv, nil
	}
	convs, err := cache.Conversations(variant)
	if err != nil {
		return nil, err
	}
	return pickConversation(convs, "")
}

// cacheReader is the slice of the thread cache the export path reads.
type cacheReader interface {
	Conversation(id string) (*agent.Conversation, error)
	Conversations(variant string) ([]agent.Conversation, error)
	Messages(id string) ([]agent.Message, error)
}

// pickConversation selects by id, or the most recently updated when id is
// empty.
func pickConversation(convs []agent.Conversation, id string) (*agent.Conversation, error) {
	if id != "" {
		for i := range convs {
			if convs[i].ID == id {
				return &convs[i], nil
			}
		}
		return nil, fmt.Errorf("conversation %q: %w", id, agent.ErrNotFound)
	}

	if len(convs) == 0 {
		return nil, fmt.Errorf("no conversations to export")
	}

	sorted := make([]agent.Conversation, len(convs))
	copy(sorted, convs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.Time.After(sorted[j].UpdatedAt.Time)
	})
	return &sorted[0], nil
}
