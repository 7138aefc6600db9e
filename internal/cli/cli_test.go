// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jeranaias/foundry-tui/internal/agent"
)

// =============================================================================
// PARSING
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
		// check inspects the parsed Args beyond the command.
		check func(t *testing.T, args Args)
	}{
		{
			name: "no arguments launches the TUI",
			argv: []string{"foundry-tui"},
			want: CmdTUI,
		},
		{
			name: "chat",
			argv: []string{"foundry-tui", "chat"},
			want: CmdChat,
		},
		{
			name: "chat with plain, stream, and conversation",
			argv: []string{"foundry-tui", "chat", "--plain", "--stream", "-c", "abc123"},
			want: CmdChat,
			check: func(t *testing.T, args Args) {
				if !args.Plain {
					t.Error("Plain = false, want true")
				}
				if !args.Stream {
					t.Error("Stream = false, want true")
				}
				if args.ConversationID != "abc123" {
					t.Errorf("ConversationID = %q, want %q", args.ConversationID, "abc123")
				}
			},
		},
		{
			name: "chat with equals-form conversation",
			argv: []string{"foundry-tui", "chat", "--conversation=xyz"},
			want: CmdChat,
			check: func(t *testing.T, args Args) {
				if args.ConversationID != "xyz" {
					t.Errorf("ConversationID = %q, want %q", args.ConversationID, "xyz")
				}
			},
		},
		{
			name: "login with token flag",
			argv: []string{"foundry-tui", "login", "--token", "eyJhbGci"},
			want: CmdLogin,
			check: func(t *testing.T, args Args) {
				if args.Token != "eyJhbGci" {
					t.Errorf("Token = %q, want %q", args.Token, "eyJhbGci")
				}
			},
		},
		{
			name: "logout",
			argv: []string{"foundry-tui", "logout"},
			want: CmdLogout,
		},
		{
			name: "status",
			argv: []string{"foundry-tui", "status"},
			want: CmdStatus,
		},
		{
			name: "status alias",
			argv: []string{"foundry-tui", "s"},
			want: CmdStatus,
		},
		{
			name: "status with json flag after command",
			argv: []string{"foundry-tui", "status", "--json"},
			want: CmdStatus,
			check: func(t *testing.T, args Args) {
				if !args.JSON {
					t.Error("JSON = false, want true")
				}
			},
		},
		{
			name: "health",
			argv: []string{"foundry-tui", "health"},
			want: CmdHealth,
		},
		{
			name: "conversations",
			argv: []string{"foundry-tui", "conversations"},
			want: CmdConversations,
		},
		{
			name: "conversations alias",
			argv: []string{"foundry-tui", "ls"},
			want: CmdConversations,
		},
		{
			name: "conversations offline with variant",
			argv: []string{"foundry-tui", "--variant", "local", "conversations", "--offline"},
			want: CmdConversations,
			check: func(t *testing.T, args Args) {
				if args.Variant != "local" {
					t.Errorf("Variant = %q, want %q", args.Variant, "local")
				}
				if !args.Offline {
					t.Error("Offline = false, want true")
				}
			},
		},
		{
			name: "export with flags",
			argv: []string{"foundry-tui", "export", "-f", "html", "-o", "/tmp/out", "-c", "68a1"},
			want: CmdExport,
			check: func(t *testing.T, args Args) {
				if args.Format != "html" {
					t.Errorf("Format = %q, want %q", args.Format, "html")
				}
				if args.Output != "/tmp/out" {
					t.Errorf("Output = %q, want %q", args.Output, "/tmp/out")
				}
				if args.ConversationID != "68a1" {
					t.Errorf("ConversationID = %q, want %q", args.ConversationID, "68a1")
				}
			},
		},
		{
			name: "export with bare positional id",
			argv: []string{"foundry-tui", "export", "68a1f0c2"},
			want: CmdExport,
			check: func(t *testing.T, args Args) {
				if args.ConversationID != "68a1f0c2" {
					t.Errorf("ConversationID = %q, want %q", args.ConversationID, "68a1f0c2")
				}
			},
		},
		{
			name: "session reset",
			argv: []string{"foundry-tui", "session", "reset"},
			want: CmdSession,
			check: func(t *testing.T, args Args) {
				if args.Subcommand != "reset" {
					t.Errorf("Subcommand = %q, want %q", args.Subcommand, "reset")
				}
			},
		},
		{
			name: "session with no subcommand",
			argv: []string{"foundry-tui", "session"},
			want: CmdSession,
			check: func(t *testing.T, args Args) {
				if args.Subcommand != "" {
					t.Errorf("Subcommand = %q, want empty", args.Subcommand)
				}
			},
		},
		{
			name: "version word",
			argv: []string{"foundry-tui", "version"},
			want: CmdVersion,
		},
		{
			name: "version flag",
			argv: []string{"foundry-tui", "--version"},
			want: CmdVersion,
		},
		{
			name: "help flag",
			argv: []string{"foundry-tui", "-h"},
			want: CmdHelp,
		},
		{
			name: "base url override with equals form",
			argv: []string{"foundry-tui", "--base-url=http://10.0.0.5:9000", "health"},
			want: CmdHealth,
			check: func(t *testing.T, args Args) {
				if args.BaseURL != "http://10.0.0.5:9000" {
					t.Errorf("BaseURL = %q, want %q", args.BaseURL, "http://10.0.0.5:9000")
				}
			},
		},
		{
			name: "unknown input falls through to the TUI",
			argv: []string{"foundry-tui", "blorp", "bleep"},
			want: CmdTUI,
			check: func(t *testing.T, args Args) {
				if len(args.Raw) != 2 || args.Raw[0] != "blorp" {
					t.Errorf("Raw = %v, want [blorp bleep]", args.Raw)
				}
			},
		},
		{
			name: "command casing is ignored",
			argv: []string{"foundry-tui", "STATUS"},
			want: CmdStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()
			os.Args = tt.argv

			cmd, args := Parse()
			if cmd != tt.want {
				t.Fatalf("Parse() command = %d, want %d", cmd, tt.want)
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: ExitSuccess,
		},
		{
			name: "usage error",
			err:  NewUsageError("export", "bad format", "foundry-tui export"),
			want: ExitUsageError,
		},
		{
			name: "wrapped usage error",
			err:  fmt.Errorf("while parsing: %w", NewUsageError("login", "no token", "")),
			want: ExitUsageError,
		},
		{
			name: "tty required",
			err:  &TTYRequiredError{Operation: "chat"},
			want: ExitUsageError,
		},
		{
			name: "auth sentinel through the agent error chain",
			err: &agent.Error{
				Kind: agent.KindRequest, Op: "conversations.list",
				Status: 401, Err: agent.ErrAuthRequired,
			},
			want: ExitAuthError,
		},
		{
			name: "forbidden sentinel",
			err: &agent.Error{
				Kind: agent.KindRequest, Op: "messages.send",
				Status: 403, Err: agent.ErrForbidden,
			},
			want: ExitAuthError,
		},
		{
			name: "not found sentinel",
			err: &agent.Error{
				Kind: agent.KindRequest, Op: "conversations.messages",
				Status: 404, Err: agent.ErrNotFound,
			},
			want: ExitNotFoundError,
		},
		{
			name: "timeout kind",
			err:  &agent.Error{Kind: agent.KindTimeout, Op: "messages.send"},
			want: ExitTimeoutError,
		},
		{
			name: "network kind",
			err:  &agent.Error{Kind: agent.KindNetwork, Op: "health"},
			want: ExitNetworkError,
		},
		{
			name: "canceled kind maps to network",
			err:  &agent.Error{Kind: agent.KindCanceled, Op: "messages.send"},
			want: ExitNetworkError,
		},
		{
			name: "config message fallback",
			err:  errors.New("config: invalid TOML at line 3"),
			want: ExitConfigError,
		},
		{
			name: "not logged in message fallback",
			err:  errors.New("not logged in"),
			want: ExitAuthError,
		},
		{
			name: "plain error",
			err:  errors.New("something odd"),
			want: ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestUsageErrorMessage(t *testing.T) {
	err := NewUsageError("export", "unsupported export format: docx",
		"foundry-tui export [--format markdown|html|json|text]")

	got := err.Error()
	want := "export: unsupported export format: docx\nUsage: foundry-tui export [--format markdown|html|json|text]"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "*****"},
		{"12345678", "********"},
		{"123456789", "12345678****"},
		{"a1b2c3d4-e5f6-7890", "a1b2c3d4****"},
	}

	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// EXPORT RESOLUTION
// =============================================================================

func TestPickConversation(t *testing.T) {
	now := time.Now()
	convs := []agent.Conversation{
		{ID: "c-old", Title: "Old", UpdatedAt: agent.Timestamp{Time: now.Add(-48 * time.Hour)}},
		{ID: "c-new", Title: "New", UpdatedAt: agent.Timestamp{Time: now}},
		{ID: "c-mid", Title: "Mid", UpdatedAt: agent.Timestamp{Time: now.Add(-1 * time.Hour)}},
	}

	t.Run("most recent when no id given", func(t *testing.T) {
		got, err := pickConversation(convs, "")
		if err != nil {
			t.Fatalf("pickConversation() error = %v", err)
		}
		if got.ID != "c-new" {
			t.Errorf("picked %q, want %q", got.ID, "c-new")
		}
	})

	t.Run("exact id match", func(t *testing.T) {
		got, err := pickConversation(convs, "c-mid")
		if err != nil {
			t.Fatalf("pickConversation() error = %v", err)
		}
		if got.ID != "c-mid" {
			t.Errorf("picked %q, want %q", got.ID, "c-mid")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := pickConversation(convs, "c-missing")
		if err == nil {
			t.Fatal("expected error for unknown id")
		}
		if !errors.Is(err, agent.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound in chain", err)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		if _, err := pickConversation(nil, ""); err == nil {
			t.Fatal("expected error for empty list")
		}
	})

	t.Run("input order preserved", func(t *testing.T) {
		if _, err := pickConversation(convs, ""); err != nil {
			t.Fatal(err)
		}
		if convs[0].ID != "c-old" {
			t.Errorf("input slice reordered, first = %q", convs[0].ID)
		}
	})
}

type fakeCacheReader struct {
	convs map[string]*agent.Conversation
	lists map[string][]agent.Conversation
	msgs  map[string][]agent.Message
}

func (f *fakeCacheReader) Conversation(id string) (*agent.Conversation, error) {
	if c, ok := f.convs[id]; ok {
		return c, nil
	}
	return nil, errors.New("no such conversation")
}

func (f *fakeCacheReader) Conversations(variant string) ([]agent.Conversation, error) {
	return f.lists[variant], nil
}

func (f *fakeCacheReader) Messages(id string) ([]agent.Message, error) {
	return f.msgs[id], nil
}

func TestExportFromCache(t *testing.T) {
	now := time.Now()
	cache := &fakeCacheReader{
		convs: map[string]*agent.Conversation{
			"c-1": {ID: "c-1", Title: "Kept"},
		},
		lists: map[string][]agent.Conversation{
			"foundry": {
				{ID: "c-1", Title: "Kept", UpdatedAt: agent.Timestamp{Time: now.Add(-time.Hour)}},
				{ID: "c-2", Title: "Fresh", UpdatedAt: agent.Timestamp{Time: now}},
			},
		},
		msgs: map[string][]agent.Message{
			"c-1": {{ID: "m-1", Role: agent.RoleUser, Content: "hello"}},
			"c-2": {{ID: "m-2", Role: agent.RoleAssistant, Content: "hi"}},
		},
	}

	t.Run("by id", func(t *testing.T) {
		conv, msgs, err := exportFromCache(cache, "foundry", "c-1")
		if err != nil {
			t.Fatalf("exportFromCache() error = %v", err)
		}
		if conv.ID != "c-1" {
			t.Errorf("conversation = %q, want %q", conv.ID, "c-1")
		}
		if len(msgs) != 1 || msgs[0].ID != "m-1" {
			t.Errorf("messages = %v, want the cached m-1", msgs)
		}
	})

	t.Run("most recent when id omitted", func(t *testing.T) {
		conv, msgs, err := exportFromCache(cache, "foundry", "")
		if err != nil {
			t.Fatalf("exportFromCache() error = %v", err)
		}
		if conv.ID != "c-2" {
			t.Errorf("conversation = %q, want %q", conv.ID, "c-2")
		}
		if len(msgs) != 1 || msgs[0].ID != "m-2" {
			t.Errorf("messages = %v, want the cached m-2", msgs)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, _, err := exportFromCache(cache, "foundry", "c-gone"); err == nil {
			t.Fatal("expected error for uncached id")
		}
	})
}

// =============================================================================
// TRANSPORT CLASSIFICATION
// =============================================================================

func TestTransportFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", &agent.Error{Kind: agent.KindNetwork, Op: "conversations.list"}, true},
		{"timeout", &agent.Error{Kind: agent.KindTimeout, Op: "conversations.list"}, true},
		{"auth", &agent.Error{Kind: agent.KindRequest, Status: 401, Op: "conversations.list", Err: agent.ErrAuthRequired}, false},
		{"application", &agent.Error{Kind: agent.KindApplication, Op: "conversations.list"}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transportFailure(tt.err); got != tt.want {
				t.Errorf("transportFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
