// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth.go - login and logout command handlers.
//
// Login stores a bearer token in the sealed credential file. The token is
// decoded locally for display only; the backend remains the authority on
// whether it is accepted.

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/jeranaias/foundry-tui/internal/credentials"
)

// HandleLoginCommand reads a token from the flag, piped stdin, or a hidden
// prompt, and saves it to the credential store.
func HandleLoginCommand(args Args) error {
	env, err := buildEnv(args)
	if err != nil {
		return err
	}

	token, err := resolveToken(args)
	if err != nil {
		return err
	}
	if token == "" {
		return NewUsageError("login", "no token provided",
			"foundry-tui login [--token TOKEN]  (or pipe the token on stdin)")
	}

	claims, claimsErr := credentials.PeekClaims(token)

	if err := env.creds.Save(token); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	if args.JSON {
		data := LoginData{}
		if claims != nil {
			data.Subject = claims.Subject
			if !claims.ExpiresAt.IsZero() {
				data.ExpiresAt = claims.ExpiresAt.UTC().Format(time.RFC3339)
			}
			data.Expired = claims.Expired(time.Now())
		}
		return NewJSONResponse("login", data).Print()
	}

	fmt.Println(SuccessStyle.Render("Logged in."))

	if claimsErr != nil {
		fmt.Println(WarningStyle.Render("The token does not decode as a JWT. It was saved anyway; the backend decides whether it is valid."))
		return nil
	}

	if claims.Subject != "" {
		fmt.Printf("%s %s\n", LabelStyle.Render("Subject"), ValueStyle.Render(claims.Subject))
	}
	if !claims.ExpiresAt.IsZero() {
		fmt.Printf("%s %s\n", LabelStyle.Render("Expires"), ValueStyle.Render(formatTime(claims.ExpiresAt)))
		if claims.Expired(time.Now()) {
			fmt.Println(WarningStyle.Render("This token is already expired. Requests will be rejected until you log in with a fresh one."))
		}
	}
	return nil
}

// resolveToken picks the token source: flag, piped stdin, then a hidden
// interactive prompt.
func resolveToken(args Args) (string, error) {
	if args.Token != "" {
		return strings.TrimSpace(args.Token), nil
	}

	// Piped input: `pbpaste | foundry-tui login`
	if !IsTTY() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		if scanner.Scan() {
			return strings.TrimSpace(scanner.Text()), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read token from stdin: %w", err)
		}
		return "", nil
	}

	// Hidden prompt keeps the token out of the scrollback.
	fmt.Fprint(os.Stderr, "Token: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// HandleLogoutCommand clears the stored token. Clearing when nothing is
// stored succeeds and says so.
func HandleLogoutCommand(args Args) error {
	env, err := buildEnv(args)
	if err != nil {
		return err
	}

	token, _ := env.creds.Token()
	hadToken := token != ""

	if err := env.creds.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}

	if args.JSON {
		return NewJSONResponse("logout", map[string]bool{"cleared": hadToken}).Print()
	}

	if hadToken {
		fmt.Println(SuccessStyle.Render("Logged out. Stored credentials removed."))
	} else {
		fmt.Println(infoStyle.Render("No stored credentials."))
	}
	return nil
}
