// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and error classification for CLI commands.
//
// Every command handler returns an error; the dispatch wrapper prints it
// once and exits with a category-specific code so scripts can tell an
// expired token from an unreachable backend.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/foundry-tui/internal/agent"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitGeneralError indicates an uncategorized failure.
	ExitGeneralError = 1
	// ExitUsageError indicates invalid arguments or flags.
	ExitUsageError = 2
	// ExitConfigError indicates a configuration problem.
	ExitConfigError = 3
	// ExitAuthError indicates a missing, rejected, or expired token.
	ExitAuthError = 4
	// ExitNetworkError indicates the backend could not be reached.
	ExitNetworkError = 5
	// ExitNotFoundError indicates a missing conversation or resource.
	ExitNotFoundError = 6
	// ExitTimeoutError indicates a call exceeded its deadline.
	ExitTimeoutError = 7
)

// =============================================================================
// USAGE ERRORS
// =============================================================================

// UsageError reports invalid command-line input together with the correct
// invocation.
type UsageError struct {
	Command string
	Reason  string
	Usage   string
}

func (e *UsageError) Error() string {
	msg := e.Reason
	if e.Command != "" {
		msg = e.Command + ": " + msg
	}
	if e.Usage != "" {
		msg += "\nUsage: " + e.Usage
	}
	return msg
}

// NewUsageError creates a usage error for a command.
func NewUsageError(command, reason, usage string) error {
	return &UsageError{Command: command, Reason: reason, Usage: usage}
}

// ErrMissingArgument reports a required argument that was not supplied.
func ErrMissingArgument(command, argName, usage string) error {
	return NewUsageError(command, fmt.Sprintf("missing required %s", argName), usage)
}

// =============================================================================
// EXIT CODE CLASSIFICATION
// =============================================================================

// GetExitCode maps an error to its exit code. Agent errors classify by
// kind; everything else falls back to message inspection the way shell
// tooling expects.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var ttyErr *TTYRequiredError
	if errors.As(err, &ttyErr) {
		return ExitUsageError
	}

	if errors.Is(err, agent.ErrAuthRequired) || errors.Is(err, agent.ErrForbidden) {
		return ExitAuthError
	}
	if errors.Is(err, agent.ErrNotFound) {
		return ExitNotFoundError
	}

	switch agent.KindOf(err) {
	case agent.KindTimeout:
		return ExitTimeoutError
	case agent.KindNetwork, agent.KindCanceled:
		return ExitNetworkError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "config"):
		return ExitConfigError
	case strings.Contains(msg, "not logged in"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "token"):
		return ExitAuthError
	case strings.Contains(msg, "not found"):
		return ExitNotFoundError
	case strings.Contains(msg, "timed out"),
		strings.Contains(msg, "deadline exceeded"):
		return ExitTimeoutError
	case strings.Contains(msg, "connection"),
		strings.Contains(msg, "unreachable"),
		strings.Contains(msg, "dial"):
		return ExitNetworkError
	}

	return ExitGeneralError
}
