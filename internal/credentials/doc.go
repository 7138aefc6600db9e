// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credentials stores the bearer token the agent client attaches
// to authenticated requests.
//
// The token is written to a single well-known file in the state
// directory, sealed at rest with AES-256-GCM under a PBKDF2-SHA-256
// derived key. The key material is machine-local and lives beside the
// credentials file; both carry 0600 permissions inside a 0700 state
// directory.
//
// The request path consumes credentials through the narrow Source
// interface:
//
//	store := credentials.NewStore(credPath, keyPath)
//	token, err := store.Token() // "" when not logged in
//
// The client never mints tokens. Login stores an already-issued token;
// PeekClaims decodes its registered claims for display without
// signature verification.
package credentials
