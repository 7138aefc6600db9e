// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// conversations.go - conversations command handler.
//
// Lists conversations from the backend, falling back to the local cache
// when the backend is unreachable. Successful listings refresh the cache
// so the fallback stays current.

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/util"
)

const listTimeout = 15 * time.Second

// HandleConversationsCommand lists conversations for the active variant.
func HandleConversationsCommand(args Args) error {
	env, err := buildEnv(args)
	if err != nil {
		return err
	}

	cache, cacheErr := openCache(env.cfg, nil)
	if cache != nil {
		defer cache.Close()
	}

	var convs []agent.Conversation
	fromCache := false

	if args.Offline {
		if cache == nil {
			if cacheErr != nil {
				return fmt.Errorf("offline listing needs the cache: %w", cacheErr)
			}
			return fmt.Errorf("offline listing needs the cache enabled in config.toml")
		}
		convs, err = cache.Conversations(env.variant)
		if err != nil {
			return err
		}
		fromCache = true
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		convs, err = env.client.ListConversations(ctx)
		cancel()

		switch {
		case err == nil:
			if cache != nil {
				// Best effort; a cache write failure never fails the listing.
				cache.PutConversations(env.variant, convs)
			}
		case cache != nil && transportFailure(err):
			cached, cerr := cache.Conversations(env.variant)
			if cerr != nil || len(cached) == 0 {
				return err
			}
			if !args.JSON {
				fmt.Fprintf(os.Stderr, "%s backend unreachable, showing cached conversations\n",
					WarningStyle.Render("[offline]"))
			}
			convs = cached
			fromCache = true
		default:
			return err
		}
	}

	if args.JSON {
		data := ConversationsData{
			Variant:       env.variant,
			FromCache:     fromCache,
			Conversations: make([]ConversationSummary, 0, len(convs)),
		}
		for _, conv := range convs {
			summary := ConversationSummary{
				ID:           conv.ID,
				Title:        conv.Title,
				MessageCount: conv.MessageCount,
			}
			if !conv.UpdatedAt.IsZero() {
				summary.UpdatedAt = conv.UpdatedAt.UTC().Format(time.RFC3339)
			}
			data.Conversations = append(data.Conversations, summary)
		}
		return NewJSONResponse("conversations", data).Print()
	}

	printConversationList(convs, env.variant, fromCache)
	return nil
}

// transportFailure reports whether the error is worth a cache fallback.
// Auth and not-found answers came from the backend and must surface.
func transportFailure(err error) bool {
	switch agent.KindOf(err) {
	case agent.KindNetwork, agent.KindTimeout:
		return true
	}
	return false
}

func printConversationList(convs []agent.Conversation, variant string, fromCache bool) {
	fmt.Println()
	header := fmt.Sprintf("Conversations (%s)", variant)
	if fromCache {
		header += "  [cached]"
	}
	fmt.Println(TitleStyle.Render(header))
	fmt.Println(RenderSeparator())

	if len(convs) == 0 {
		fmt.Println(DimStyle.Render("  no conversations"))
		fmt.Println()
		return
	}

	now := time.Now()
	for i, conv := range convs {
		title := conv.Title
		if title == "" {
			title = conv.ID
		}
		fmt.Printf("%3d. %s\n", i+1, ValueStyle.Render(util.TruncateRunes(title, 64)))
		fmt.Printf("     %s\n", DimStyle.Render(fmt.Sprintf("%s · %d messages · %s",
			conv.ID, conv.MessageCount, util.RelativeTime(conv.UpdatedAt.Time, now))))
	}
	fmt.Println()
}
