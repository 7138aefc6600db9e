// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the cache schema for migrations.
	SchemaVersion = 1
)

// SQLite schema for the thread cache. Conversations are scoped by
// agent variant; messages cascade with their conversation.
const schema = `
-- Metadata table for schema version
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Conversations: last server truth per variant
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    variant TEXT NOT NULL,
    title TEXT NOT NULL,
    created_at INTEGER NOT NULL,   -- Unix nanoseconds, 0 = unknown
    updated_at INTEGER NOT NULL,
    message_count INTEGER NOT NULL DEFAULT 0,
    synced_at INTEGER NOT NULL
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_conversations_variant ON conversations(variant, updated_at DESC);

-- Messages: ordered thread per conversation
CREATE TABLE IF NOT EXISTS messages (
    id TEXT NOT NULL,
    conversation_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    attachments TEXT NOT NULL DEFAULT '',  -- JSON array, empty when none
    tokens_used INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (conversation_id, position),
    FOREIGN KEY(conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
) WITHOUT ROWID;
`

// initMetadata seeds the metadata table.
const initMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
