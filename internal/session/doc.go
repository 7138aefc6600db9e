// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the per-session identity key sent on every
// backend request as the X-Tab-Session-Key header.
//
// One authenticated user may run several client sessions at once; the
// backend tells them apart by this opaque key. The key is a UUIDv4,
// generated lazily on first access and persisted through an injected Store:
//
//	provider := session.NewProvider(session.NewFileStore(path))
//	key, err := provider.Key()   // same value on every later call
//	provider.Reset()             // next Key() yields a fresh one
//
// FileStore persists under the state directory, so the key survives
// restarts; MemStore backs tests. The key is unguessable enough for
// session scoping but is not a credential and grants nothing by itself.
package session
