// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing and dispatch for foundry-tui.
//
// The parser is hand-rolled: global flags first, then one subcommand with
// its own flags. Anything unrecognized falls through to the TUI untouched,
// so `foundry-tui` with no arguments and `foundry-tui <garbage>` both land
// in the full-screen client instead of erroring.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================

// Version identifiers, overridden at build time via -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command identifies which command was requested.
type Command int

const (
	// CmdTUI launches the full-screen client. Default when no command given.
	CmdTUI Command = iota
	// CmdChat runs chat from the command line (--plain for the REPL).
	CmdChat
	// CmdLogin stores a backend-issued bearer token.
	CmdLogin
	// CmdLogout removes the stored token.
	CmdLogout
	// CmdStatus shows session, credential, and backend status.
	CmdStatus
	// CmdHealth probes the backend health endpoint.
	CmdHealth
	// CmdConversations lists conversations.
	CmdConversations
	// CmdExport writes a conversation transcript to a file.
	CmdExport
	// CmdSession shows or resets the tab session key.
	CmdSession
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

// Args holds parsed command-line arguments.
type Args struct {
	// Global flags
	Verbose bool
	Quiet   bool
	JSON    bool
	Variant string // --variant foundry|local
	BaseURL string // --base-url overrides the configured backend root
	Offline bool   // --offline serves reads from the local cache

	// chat
	Plain    bool
	Stream   bool
	NoStream bool

	// login
	Token string

	// export / chat
	ConversationID string
	Format         string
	Output         string

	// session and other subcommand-bearing commands
	Subcommand string

	// Raw holds the unparsed remainder when falling through to the TUI.
	Raw []string
}

// =============================================================================
// USAGE
// =============================================================================

const usageText = `foundry-tui %s - terminal client for the Foundry assistant

USAGE:
    foundry-tui [command] [flags]

COMMANDS:
    (none)            Launch the TUI
    chat              Chat from the command line (--plain for the REPL)
    login             Store the backend bearer token
    logout            Remove the stored token
    status (s)        Show session, credential, and backend status
    health            Probe the backend health endpoint
    conversations (ls)
                      List conversations
    export            Export a conversation transcript
    session           Show the tab session key ('session reset' for a new one)
    version           Show version information
    help              Show this help

GLOBAL FLAGS:
    --variant NAME    Agent variant: foundry or local
    --base-url URL    Backend root URL (overrides config)
    --offline         Serve reads from the local cache, no network
    --json            Machine-readable output
    -q, --quiet       Minimal output
    -v, --verbose     Verbose output

CHAT FLAGS:
    --plain           Line-mode REPL instead of the TUI
    --stream          Stream replies chunk by chunk
    --no-stream       Wait for complete replies
    -c, --conversation ID
                      Resume an existing conversation

LOGIN FLAGS:
    --token VALUE     Token value (otherwise prompted with hidden input)

EXPORT FLAGS:
    -f, --format FMT  markdown, html, json, or text (default: markdown)
    -o, --output DIR  Destination directory (default: current directory)
    -c, --conversation ID
                      Conversation to export (default: most recent)

EXAMPLES:
    foundry-tui
    foundry-tui chat --plain --stream
    foundry-tui login
    foundry-tui status --json
    foundry-tui conversations --offline
    foundry-tui export -f html -c 68a1f0c2
    foundry-tui session reset
`

// PrintUsage prints the usage text to stdout.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information to stdout.
func PrintVersion() {
	fmt.Printf("foundry-tui %s\n", Version)
	fmt.Printf("  commit: %s\n", GitCommit)
	fmt.Printf("  built:  %s\n", BuildDate)
	fmt.Printf("  go:     %s\n", runtime.Version())
}

// =============================================================================
// PARSING
// =============================================================================

// Parse reads os.Args and returns the requested command with its arguments.
func Parse() (Command, Args) {
	raw := os.Args[1:]
	args, remaining := parseGlobalFlags(raw)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	switch strings.ToLower(remaining[0]) {
	case "chat":
		return CmdChat, parseChatArgs(args, remaining[1:])
	case "login":
		return CmdLogin, parseLoginArgs(args, remaining[1:])
	case "logout":
		return CmdLogout, args
	case "status", "s":
		return CmdStatus, args
	case "health":
		return CmdHealth, args
	case "conversations", "ls":
		return CmdConversations, args
	case "export":
		return CmdExport, parseExportArgs(args, remaining[1:])
	case "session":
		return CmdSession, parseSessionArgs(args, remaining[1:])
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		// Unknown input belongs to the TUI, not to an error path.
		args.Raw = remaining
		return CmdTUI, args
	}
}

// parseGlobalFlags extracts flags that apply to every command and returns
// the untouched remainder.
func parseGlobalFlags(raw []string) (Args, []string) {
	var args Args
	var remaining []string

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		switch arg {
		case "-v", "--verbose":
			args.Verbose = true
		case "-q", "--quiet":
			args.Quiet = true
		case "--json":
			args.JSON = true
		case "--offline":
			args.Offline = true
		case "--variant":
			if i+1 < len(raw) {
				i++
				args.Variant = raw[i]
			}
		case "--base-url":
			if i+1 < len(raw) {
				i++
				args.BaseURL = raw[i]
			}
		case "--version":
			remaining = append(remaining, "version")
		case "-h", "--help":
			remaining = append(remaining, "help")
		default:
			switch {
			case strings.HasPrefix(arg, "--variant="):
				args.Variant = strings.TrimPrefix(arg, "--variant=")
			case strings.HasPrefix(arg, "--base-url="):
				args.BaseURL = strings.TrimPrefix(arg, "--base-url=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return args, remaining
}

// parseChatArgs parses flags for the chat command.
func parseChatArgs(args Args, rest []string) Args {
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--plain", "-p":
			args.Plain = true
		case "--stream":
			args.Stream = true
		case "--no-stream":
			args.NoStream = true
		case "-c", "--conversation":
			if i+1 < len(rest) {
				i++
				args.ConversationID = rest[i]
			}
		default:
			if strings.HasPrefix(rest[i], "--conversation=") {
				args.ConversationID = strings.TrimPrefix(rest[i], "--conversation=")
			}
		}
	}
	return args
}

// parseLoginArgs parses flags for the login command.
func parseLoginArgs(args Args, rest []string) Args {
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--token", "-t":
			if i+1 < len(rest) {
				i++
				args.Token = rest[i]
			}
		default:
			if strings.HasPrefix(rest[i], "--token=") {
				args.Token = strings.TrimPrefix(rest[i], "--token=")
			}
		}
	}
	return args
}

// parseExportArgs parses flags for the export command. A bare positional
// argument is taken as the conversation id.
func parseExportArgs(args Args, rest []string) Args {
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "-f", "--format":
			if i+1 < len(rest) {
				i++
				args.Format = rest[i]
			}
		case "-o", "--output":
			if i+1 < len(rest) {
				i++
				args.Output = rest[i]
			}
		case "-c", "--conversation":
			if i+1 < len(rest) {
				i++
				args.ConversationID = rest[i]
			}
		default:
			switch {
			case strings.HasPrefix(rest[i], "--format="):
				args.Format = strings.TrimPrefix(rest[i], "--format=")
			case strings.HasPrefix(rest[i], "--output="):
				args.Output = strings.TrimPrefix(rest[i], "--output=")
			case strings.HasPrefix(rest[i], "--conversation="):
				args.ConversationID = strings.TrimPrefix(rest[i], "--conversation=")
			case !strings.HasPrefix(rest[i], "-") && args.ConversationID == "":
				args.ConversationID = rest[i]
			}
		}
	}
	return args
}

// parseSessionArgs takes the first non-flag argument as the subcommand.
func parseSessionArgs(args Args, rest []string) Args {
	for _, r := range rest {
		if !strings.HasPrefix(r, "-") {
			args.Subcommand = strings.ToLower(r)
			break
		}
	}
	return args
}

// =============================================================================
// DISPATCH WRAPPERS
// =============================================================================

// exitOnError prints the error and exits with a category-specific code.
func exitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(GetExitCode(err))
}

// HandleChat runs the plain chat REPL and exits on failure.
func HandleChat(args Args) {
	exitOnError(HandleChatCommand(args))
}

// HandleLogin stores a bearer token and exits on failure.
func HandleLogin(args Args) {
	exitOnError(HandleLoginCommand(args))
}

// HandleLogout removes the stored token and exits on failure.
func HandleLogout(args Args) {
	exitOnError(HandleLogoutCommand(args))
}

// HandleStatus shows client and backend status and exits on failure.
func HandleStatus(args Args) {
	exitOnError(HandleStatusCommand(args))
}

// HandleHealth probes the backend and exits on failure.
func HandleHealth(args Args) {
	exitOnError(HandleHealthCommand(args))
}

// HandleConversations lists conversations and exits on failure.
func HandleConversations(args Args) {
	exitOnError(HandleConversationsCommand(args))
}

// HandleExport writes a transcript and exits on failure.
func HandleExport(args Args) {
	exitOnError(HandleExportCommand(args))
}

// HandleSession shows or resets the session key and exits on failure.
func HandleSession(args Args) {
	exitOnError(HandleSessionCommand(args))
}

// HandleVersion prints version information, as JSON when requested.
func HandleVersion(args Args) {
	if args.JSON {
		data := VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}
		NewJSONResponse("version", data).Print()
		return
	}
	PrintVersion()
}
