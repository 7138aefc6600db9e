// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for CLI commands.
//
// Every read command honors --json with one envelope shape so scripts can
// consume output without per-command parsing. Human-readable notes go to
// stderr when JSON mode is active; stdout carries only the envelope.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONResponse is the envelope for all --json command output.
type JSONResponse struct {
	// Success indicates whether the command completed.
	Success bool `json:"success"`

	// Data carries the command-specific payload, null on failure.
	Data interface{} `json:"data"`

	// Error carries the failure message, null on success.
	Error *string `json:"error"`

	// Timestamp is when the response was generated, RFC 3339 UTC.
	Timestamp string `json:"timestamp"`

	// Command names the command that ran.
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response envelope.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failure response envelope.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the envelope to stdout, indented.
func (r *JSONResponse) Print() error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// String returns the envelope as an indented JSON string.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":%q}`, err.Error())
	}
	return string(data)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// VersionData is the payload of `version --json`.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// StatusData is the payload of `status --json`.
type StatusData struct {
	Variant  string            `json:"variant"`
	BaseURL  string            `json:"base_url"`
	StateDir string            `json:"state_dir"`
	Session  StatusSessionInfo `json:"session"`
	Token    StatusTokenInfo   `json:"token"`
	Backend  StatusBackendInfo `json:"backend"`
	Cache    *StatusCacheInfo  `json:"cache,omitempty"`
}

// StatusSessionInfo describes the tab session key.
type StatusSessionInfo struct {
	Present   bool   `json:"present"`
	Key       string `json:"key,omitempty"` // masked
	CreatedAt string `json:"created_at,omitempty"`
}

// StatusTokenInfo describes the stored bearer token. Claim values come
// from an unverified decode; the backend remains the authority.
type StatusTokenInfo struct {
	Present   bool   `json:"present"`
	Subject   string `json:"subject,omitempty"`
	IssuedAt  string `json:"issued_at,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Expired   bool   `json:"expired,omitempty"`
	SavedAt   string `json:"saved_at,omitempty"`
}

// StatusBackendInfo describes backend reachability.
type StatusBackendInfo struct {
	Reachable bool   `json:"reachable"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StatusCacheInfo describes the local thread cache.
type StatusCacheInfo struct {
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
	SizeBytes     int64  `json:"size_bytes,omitempty"`
	Path          string `json:"path,omitempty"`
}

// ConversationsData is the payload of `conversations --json`.
type ConversationsData struct {
	Variant       string                `json:"variant"`
	FromCache     bool                  `json:"from_cache"`
	Conversations []ConversationSummary `json:"conversations"`
}

// ConversationSummary is one row of the conversation listing.
type ConversationSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// ExportData is the payload of `export --json`.
type ExportData struct {
	Path           string `json:"path"`
	Format         string `json:"format"`
	ConversationID string `json:"conversation_id"`
	Messages       int    `json:"messages"`
	FromCache      bool   `json:"from_cache"`
}

// SessionData is the payload of `session --json`.
type SessionData struct {
	Key       string `json:"key"` // masked
	CreatedAt string `json:"created_at,omitempty"`
	Reset     bool   `json:"reset,omitempty"`
}

// LoginData is the payload of `login --json`.
type LoginData struct {
	Subject   string `json:"subject,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Expired   bool   `json:"expired,omitempty"`
}
