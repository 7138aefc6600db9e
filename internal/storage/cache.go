// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local SQLite thread cache. The cache is
// written through after successful server fetches and serves export and
// offline browsing; the live view never reads from it.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/foundry-tui/internal/agent"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotCached     = errors.New("conversation not cached")
	ErrDatabaseError = errors.New("cache database error")
)

// Variant names scope cached conversations per agent backend.
const (
	VariantFoundry = "foundry"
	VariantLocal   = "local"
)

// =============================================================================
// THREAD CACHE
// =============================================================================

// ThreadCache is the on-disk mirror of server-side conversation state.
type ThreadCache struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens (creating if needed) the cache database at path.
func Open(path string, logger *zap.Logger) (*ThreadCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	// SQLite allows one writer; a single connection serializes access.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(initMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed metadata: %w", err)
	}

	return &ThreadCache{db: db, path: path, logger: logger}, nil
}

// Close releases the database.
func (c *ThreadCache) Close() error {
	return c.db.Close()
}

// =============================================================================
// WRITE-THROUGH
// =============================================================================

// PutConversations mirrors a variant's conversation list. Conversations
// absent from the new list are dropped along with their messages, so the
// cache equals the last server truth.
func (c *ThreadCache) PutConversations(variant string, convs []agent.Conversation) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	now := time.Now().UnixNano()

	keep := make(map[string]bool, len(convs))
	for _, conv := range convs {
		keep[conv.ID] = true
		_, err := tx.Exec(`
			INSERT INTO conversations (id, variant, title, created_at, updated_at, message_count, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				variant = excluded.variant,
				title = excluded.title,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at,
				message_count = excluded.message_count,
				synced_at = excluded.synced_at
		`, conv.ID, variant, conv.Title, toNanos(conv.CreatedAt), toNanos(conv.UpdatedAt), conv.MessageCount, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	rows, err := tx.Query("SELECT id FROM conversations WHERE variant = ?", variant)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for _, id := range stale {
		if _, err := tx.Exec("DELETE FROM conversations WHERE id = ?", id); err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	c.logger.Debug("cached conversation list",
		zap.String("variant", variant),
		zap.Int("count", len(convs)),
		zap.Int("pruned", len(stale)))
	return nil
}

// PutMessages mirrors one conversation's thread wholesale. The
// conversation row must exist (PutConversations runs first in every
// sync).
func (c *ThreadCache) PutMessages(conversationID string, msgs []agent.Message) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow("SELECT COUNT(*) FROM conversations WHERE id = ?", conversationID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if exists == 0 {
		return ErrNotCached
	}

	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	for i, msg := range msgs {
		attachments := ""
		if len(msg.Attachments) > 0 {
			data, err := json.Marshal(msg.Attachments)
			if err != nil {
				return fmt.Errorf("failed to encode attachments: %w", err)
			}
			attachments = string(data)
		}

		_, err := tx.Exec(`
			INSERT INTO messages (id, conversation_id, position, role, content, image_url, attachments, tokens_used, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, msg.ID, conversationID, i, msg.Role, msg.Content, msg.ImageURL, attachments, msg.TokensUsed, toNanos(msg.CreatedAt))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	c.logger.Debug("cached thread",
		zap.String("conversation_id", conversationID),
		zap.Int("messages", len(msgs)))
	return nil
}

// Delete removes a cached conversation and its messages. Missing ids
// are not an error; the cache converges on server truth either way.
func (c *ThreadCache) Delete(conversationID string) error {
	if _, err := c.db.Exec("DELETE FROM conversations WHERE id = ?", conversationID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Clear drops every cached conversation and message.
func (c *ThreadCache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM conversations"); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// =============================================================================
// READS (export, offline browsing)
// =============================================================================

// Conversations returns a variant's cached list, newest first.
func (c *ThreadCache) Conversations(variant string) ([]agent.Conversation, error) {
	rows, err := c.db.Query(`
		SELECT id, title, created_at, updated_at, message_count
		FROM conversations WHERE variant = ?
		ORDER BY updated_at DESC
	`, variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var convs []agent.Conversation
	for rows.Next() {
		var conv agent.Conversation
		var created, updated int64
		if err := rows.Scan(&conv.ID, &conv.Title, &created, &updated, &conv.MessageCount); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		conv.CreatedAt = fromNanos(created)
		conv.UpdatedAt = fromNanos(updated)
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return convs, nil
}

// Conversation returns one cached conversation by id, any variant.
func (c *ThreadCache) Conversation(conversationID string) (*agent.Conversation, error) {
	var conv agent.Conversation
	var created, updated int64
	err := c.db.QueryRow(`
		SELECT id, title, created_at, updated_at, message_count
		FROM conversations WHERE id = ?
	`, conversationID).Scan(&conv.ID, &conv.Title, &created, &updated, &conv.MessageCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	conv.CreatedAt = fromNanos(created)
	conv.UpdatedAt = fromNanos(updated)
	return &conv, nil
}

// Messages returns a cached thread in stored order.
func (c *ThreadCache) Messages(conversationID string) ([]agent.Message, error) {
	if _, err := c.Conversation(conversationID); err != nil {
		return nil, err
	}

	rows, err := c.db.Query(`
		SELECT id, role, content, image_url, attachments, tokens_used, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY position
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var msgs []agent.Message
	for rows.Next() {
		var msg agent.Message
		var attachments string
		var created int64
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.ImageURL, &attachments, &msg.TokensUsed, &created); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		msg.ConversationID = conversationID
		msg.CreatedAt = fromNanos(created)
		if attachments != "" {
			if err := json.Unmarshal([]byte(attachments), &msg.Attachments); err != nil {
				return nil, fmt.Errorf("failed to decode attachments: %w", err)
			}
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return msgs, nil
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats summarizes cache contents for the status command.
type Stats struct {
	Conversations int
	Messages      int
	Path          string
	SizeBytes     int64
}

// Stats returns current cache statistics.
func (c *ThreadCache) Stats() (Stats, error) {
	stats := Stats{Path: c.path}

	if err := c.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&stats.Conversations); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if err := c.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&stats.Messages); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if info, err := os.Stat(c.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

// =============================================================================
// TIMESTAMP CONVERSION
// =============================================================================

func toNanos(t agent.Timestamp) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) agent.Timestamp {
	if n == 0 {
		return agent.Timestamp{}
	}
	return agent.Timestamp{Time: time.Unix(0, n).UTC()}
}
