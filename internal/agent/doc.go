// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent is the HTTP client for the assistant backend.
//
// One Client talks to one variant of the agent API, selected by base
// path at construction. The request/response contract is identical
// across variants, so conversation CRUD, sends, streaming, uploads,
// image generation, and health checks all live on the generic Client.
// FoundryClient and LocalClient embed Client and add the few
// operations only their variant exposes.
//
// Every request carries the per-session key header and, when the
// credential source yields a token, a bearer Authorization header.
// Calls are single-shot with a bounded timeout; failures map onto a
// small Kind taxonomy (network, timeout, canceled, request,
// application) so the UI can phrase them without string matching, and
// 401/403/404 additionally match the ErrAuthRequired, ErrForbidden,
// and ErrNotFound sentinels via errors.Is.
package agent
