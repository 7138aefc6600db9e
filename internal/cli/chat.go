// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Plain-mode chat REPL for foundry-tui.
//
// Handles `foundry-tui chat --plain`, a line-oriented session for terminals
// where the full TUI is unwanted: ssh hops, screen readers, scrollback
// piping. The REPL shares the TUI's client, conversation semantics, and
// create-on-first-message behavior.
//
// Interactive commands (during chat):
//   /help, /h           Show available commands
//   /new                Start a fresh conversation on the next message
//   /list, /ls          List conversations
//   /switch N|ID        Resume a conversation from /list or by id
//   /context            Show the agent's server-side working context
//   /reset              Reset the agent's server-side working context
//   /retry              Resend the last failed message
//   /image PROMPT       Generate an image
//   /upload PATH        Upload a file into the conversation
//   /status, /s         Show session statistics
//   /quit, /q           Exit
//   Ctrl+C              Cancel the in-flight request
//   Ctrl+D              Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/config"
	"github.com/jeranaias/foundry-tui/internal/logging"
	"github.com/jeranaias/foundry-tui/internal/ui/styles"
	"github.com/jeranaias/foundry-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	summaryHeaderStyle = lipgloss.NewStyle().
				Foreground(styles.Cyan).
				Bold(true)
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders assistant replies on TTY stdout. Nil when
// initialization fails; output then stays plain.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown for terminal display, falling back to
// the raw content on failure.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse prints a reply, rendered as markdown only on a TTY so
// piped output stays clean.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Print(response)
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides line editing and input history for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a liner with history loaded from the state directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	stateDir, err := config.StateDir()
	if err != nil {
		stateDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(stateDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureStateDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and releases the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// PlainSession holds the state of one REPL session. Client is the
// variant wrapper, so /context and /reset reach the variant extras by
// capability assertion.
type PlainSession struct {
	Client  agent.Backend
	Variant string
	Cfg     *config.Config

	// ConversationID is empty until the first message creates one.
	ConversationID string
	Title          string

	Stream  bool
	Include bool
	Quiet   bool

	StartTime   time.Time
	Turns       int
	TotalTokens int

	// lastFailed keeps the payload of the most recent failed send so
	// /retry can resend it verbatim.
	lastFailed string

	// listed holds the conversations from the last /list, for /switch N.
	listed []agent.Conversation

	// CancelFunc aborts the in-flight request on Ctrl+C.
	CancelFunc context.CancelFunc

	Input  *ChatCLI
	logger *zap.Logger
}

// NewPlainSession wires the backend client and input handling.
func NewPlainSession(args Args) (*PlainSession, error) {
	env, err := buildEnv(args)
	if err != nil {
		return nil, err
	}

	logger := logging.Nop()
	if path, err := env.cfg.LogPath(); err == nil {
		if l, err := logging.New(logging.Options{
			Path:       path,
			Level:      env.cfg.Logging.Level,
			MaxSizeMB:  env.cfg.Logging.MaxSizeMB,
			MaxBackups: env.cfg.Logging.MaxBackups,
			MaxAgeDays: env.cfg.Logging.MaxAgeDays,
			Compress:   env.cfg.Logging.Compress,
		}); err == nil {
			logger = l
		}
	}
	env.base.WithLogger(logger)

	return &PlainSession{
		Client:         env.client,
		Variant:        env.variant,
		Cfg:            env.cfg,
		ConversationID: args.ConversationID,
		Stream:         env.cfg.Agent.Stream,
		Include:        env.cfg.Agent.IncludeUserContext,
		Quiet:          args.Quiet,
		StartTime:      time.Now(),
		Input:          NewChatCLI(),
		logger:         logger,
	}, nil
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand runs the plain REPL until the user exits.
func HandleChatCommand(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	session, err := NewPlainSession(args)
	if err != nil {
		return err
	}
	defer session.Input.Close()
	defer session.logger.Sync()

	if !session.Quiet {
		printWelcome(session)
	}

	// Resuming an existing conversation shows its tail for context.
	if session.ConversationID != "" {
		session.showRecent()
	}

	// First Ctrl+C cancels the in-flight request instead of killing the
	// process; liner owns Ctrl+C at the prompt itself.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if session.CancelFunc != nil {
				session.CancelFunc()
				session.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+WarningStyle.Render("[canceled]"))
			}
		}
	}()

	for {
		input, err := session.Input.ReadInput(promptStyle.Render("foundry> "))
		if err != nil {
			// Ctrl+C at the prompt or Ctrl+D both end the session.
			fmt.Println()
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := handlePlainCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[error]"), err)
			}
			if !keepGoing {
				printExitSummary(session)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		session.process(input)
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// process sends one user message, keeping the payload for /retry when the
// send fails.
func (s *PlainSession) process(content string) {
	ctx, cancel := context.WithCancel(context.Background())
	s.CancelFunc = cancel
	defer func() {
		s.CancelFunc = nil
		cancel()
	}()

	if err := s.send(ctx, content); err != nil {
		s.lastFailed = content
		printSendError(err)
		return
	}
	s.lastFailed = ""
}

// ensureConversation creates the conversation on the first message, so
// abandoned sessions never leave empty conversations behind.
func (s *PlainSession) ensureConversation(ctx context.Context, content string) error {
	if s.ConversationID != "" {
		return nil
	}

	title := util.TruncateRunes(util.FirstLine(content), 48)
	conv, err := s.Client.CreateConversation(ctx, title)
	if err != nil {
		return err
	}
	s.ConversationID = conv.ID
	s.Title = conv.Title

	if !s.Quiet {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			infoStyle.Render("[conversation]"),
			commandStyle.Render(conv.Title))
	}
	return nil
}

// send delivers one message and prints the reply.
func (s *PlainSession) send(ctx context.Context, content string) error {
	if err := s.ensureConversation(ctx, content); err != nil {
		return err
	}

	opts := agent.SendOptions{IncludeContext: s.Include}
	useMarkdown := IsStdoutTTY() && s.Cfg.UI.Markdown

	fmt.Println()

	start := time.Now()
	var reply string
	var tokens int

	if s.Stream {
		// Stream chunks straight to stdout in plain mode; collect and
		// render at the end when markdown formatting is on.
		res, err := s.Client.StreamMessage(ctx, s.ConversationID, content, opts, func(chunk string) {
			if !useMarkdown {
				fmt.Print(chunk)
			}
		})
		if res != nil {
			reply = res.Message.Content
		}
		if err != nil {
			if reply != "" && !useMarkdown {
				fmt.Println()
			}
			return err
		}
		if useMarkdown {
			displayResponse(reply)
		}
		tokens = res.Message.TokensUsed
	} else {
		res, err := s.Client.SendMessage(ctx, s.ConversationID, content, opts)
		if err != nil {
			return err
		}
		reply = res.Message.Content
		tokens = res.Tokens.Total
		if useMarkdown {
			displayResponse(reply)
		} else {
			fmt.Print(reply)
		}
	}

	fmt.Println()
	fmt.Println()

	s.Turns++
	s.TotalTokens += tokens

	if !s.Quiet {
		showTurnStats(tokens, time.Since(start))
	}
	return nil
}

// printSendError prints a failure with a recovery hint where one exists.
func printSendError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[error]"), err)

	switch {
	case agent.KindOf(err) == agent.KindTimeout:
		fmt.Fprintln(os.Stderr, DimStyle.Render("The request timed out. Type /retry to resend."))
	case agent.KindOf(err) == agent.KindNetwork:
		fmt.Fprintln(os.Stderr, DimStyle.Render("Could not reach the backend. Type /retry once it is back."))
	case errorIsAuth(err):
		fmt.Fprintln(os.Stderr, DimStyle.Render("Not signed in. Run 'foundry-tui login' in another terminal, then /retry."))
	default:
		fmt.Fprintln(os.Stderr, DimStyle.Render("Type /retry to resend."))
	}
}

func errorIsAuth(err error) bool {
	return errors.Is(err, agent.ErrAuthRequired) || errors.Is(err, agent.ErrForbidden)
}

// showTurnStats prints the per-turn summary line.
func showTurnStats(tokens int, duration time.Duration) {
	if tokens > 0 {
		fmt.Fprintf(os.Stderr, "%s %s tokens | %s\n",
			infoStyle.Render("[stats]"),
			formatNumber(tokens),
			duration.Round(time.Millisecond))
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n",
		infoStyle.Render("[stats]"),
		duration.Round(time.Millisecond))
}

// showRecent prints the tail of the resumed conversation.
func (s *PlainSession) showRecent() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msgs, err := s.Client.Messages(ctx, s.ConversationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s could not load history: %v\n",
			WarningStyle.Render("[warn]"), err)
		return
	}

	const tail = 6
	if len(msgs) > tail {
		fmt.Println(DimStyle.Render(fmt.Sprintf("  ... %d earlier messages", len(msgs)-tail)))
		msgs = msgs[len(msgs)-tail:]
	}
	for _, msg := range msgs {
		printHistoryLine(msg.Role, msg.Content)
	}
	fmt.Println()
}

// printHistoryLine prints one prior message, truncated to a single line.
func printHistoryLine(role, content string) {
	label := role
	switch role {
	case agent.RoleUser:
		label = lipgloss.NewStyle().Foreground(styles.Cyan).Render("you")
	case agent.RoleAssistant:
		label = lipgloss.NewStyle().Foreground(styles.Purple).Render("assistant")
	}

	content = strings.ReplaceAll(content, "\n", " ")
	content = util.TruncateRunes(content, 100)
	fmt.Printf("  %s: %s\n", label, content)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handlePlainCommand processes one slash command. Returns keepGoing=false
// to end the session.
func handlePlainCommand(cmd string, s *PlainSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	rest := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printPlainHelp()
		return true, nil

	case "/new":
		s.ConversationID = ""
		s.Title = ""
		fmt.Println(commandStyle.Render("[new conversation on next message]"))
		return true, nil

	case "/list", "/ls":
		return true, s.listConversations()

	case "/switch":
		if len(rest) == 0 {
			return true, fmt.Errorf("usage: /switch N or /switch <conversation id>")
		}
		return true, s.switchConversation(rest[0])

	case "/context":
		return true, s.showContext()

	case "/reset":
		return true, s.resetContext()

	case "/retry":
		if s.lastFailed == "" {
			fmt.Println(infoStyle.Render("[nothing to retry]"))
			return true, nil
		}
		s.process(s.lastFailed)
		return true, nil

	case "/image":
		if len(rest) == 0 {
			return true, fmt.Errorf("usage: /image <prompt>")
		}
		s.generateImage(strings.Join(rest, " "))
		return true, nil

	case "/upload":
		if len(rest) == 0 {
			return true, fmt.Errorf("usage: /upload <path>")
		}
		s.uploadFile(strings.Join(rest, " "))
		return true, nil

	case "/status", "/s":
		printSessionStatus(s)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// listConversations prints the conversation list and remembers it for
// /switch N.
func (s *PlainSession) listConversations() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	convs, err := s.Client.ListConversations(ctx)
	if err != nil {
		return err
	}
	s.listed = convs

	if len(convs) == 0 {
		fmt.Println(infoStyle.Render("[no conversations yet]"))
		return nil
	}

	fmt.Println()
	for i, conv := range convs {
		marker := "  "
		if conv.ID == s.ConversationID {
			marker = commandStyle.Render("> ")
		}
		fmt.Printf("%s%2d. %s %s\n",
			marker,
			i+1,
			util.TruncateRunes(conv.Title, 60),
			DimStyle.Render(fmt.Sprintf("(%d messages, %s)",
				conv.MessageCount,
				util.RelativeTime(conv.UpdatedAt.Time, time.Now()))))
	}
	fmt.Println()
	return nil
}

// switchConversation binds the session to a listed index or a raw id.
func (s *PlainSession) switchConversation(arg string) error {
	id := arg
	title := ""

	if n, err := strconv.Atoi(arg); err == nil {
		if len(s.listed) == 0 {
			return fmt.Errorf("run /list first, then /switch %d", n)
		}
		if n < 1 || n > len(s.listed) {
			return fmt.Errorf("no conversation %d in the last /list", n)
		}
		id = s.listed[n-1].ID
		title = s.listed[n-1].Title
	}

	s.ConversationID = id
	s.Title = title
	s.lastFailed = ""

	if title != "" {
		fmt.Printf("%s %s\n", commandStyle.Render("[switched]"), title)
	} else {
		fmt.Printf("%s %s\n", commandStyle.Render("[switched]"), id)
	}
	s.showRecent()
	return nil
}

// showContext prints the agent's server-side working context: the
// hosted variant's thread, or the local variant's history. Both are
// variant capabilities reached by assertion on the client.
func (s *PlainSession) showContext() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch c := s.Client.(type) {
	case agent.ThreadViewer:
		msgs, err := c.ThreadMessages(ctx)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			fmt.Println(infoStyle.Render("[agent context is empty]"))
			return nil
		}
		fmt.Println()
		fmt.Println(summaryHeaderStyle.Render(fmt.Sprintf("Agent Thread (%d messages)", len(msgs))))
		for _, msg := range msgs {
			printHistoryLine(msg.Role, msg.Content)
		}
		fmt.Println()
		return nil

	case agent.HistoryViewer:
		snap, err := c.History(ctx)
		if err != nil {
			return err
		}
		if len(snap.History) == 0 {
			fmt.Println(infoStyle.Render("[agent context is empty]"))
			return nil
		}
		fmt.Println()
		fmt.Println(summaryHeaderStyle.Render(fmt.Sprintf("Agent History (%d turns)", snap.Turns)))
		for _, turn := range snap.History {
			printHistoryLine(turn.Role, turn.Content)
		}
		fmt.Println()
		return nil

	default:
		return fmt.Errorf("this backend cannot show the agent context")
	}
}

// resetContext discards the agent's working context. Stored
// conversations stay; only what the agent currently sees resets.
func (s *PlainSession) resetContext() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	switch c := s.Client.(type) {
	case agent.ThreadResetter:
		err = c.ResetThread(ctx)
	case agent.HistoryResetter:
		err = c.ResetHistory(ctx)
	default:
		return fmt.Errorf("this backend cannot reset the agent context")
	}
	if err != nil {
		return err
	}
	fmt.Println(commandStyle.Render("[agent context reset]"))
	return nil
}

// generateImage requests an image and prints its URL.
func (s *PlainSession) generateImage(prompt string) {
	ctx, cancel := context.WithCancel(context.Background())
	s.CancelFunc = cancel
	defer func() {
		s.CancelFunc = nil
		cancel()
	}()

	if err := s.ensureConversation(ctx, "Generate image: "+prompt); err != nil {
		printSendError(err)
		return
	}

	fmt.Println(infoStyle.Render("[generating image...]"))
	msg, err := s.Client.GenerateImage(ctx, s.ConversationID, prompt)
	if err != nil {
		printSendError(err)
		return
	}

	s.Turns++
	if msg.ImageURL != "" {
		fmt.Printf("%s %s\n", commandStyle.Render("[image]"), msg.ImageURL)
	}
	if msg.Content != "" {
		fmt.Println(msg.Content)
	}
	fmt.Println()
}

// uploadFile sends a file into the conversation.
func (s *PlainSession) uploadFile(path string) {
	ctx, cancel := context.WithCancel(context.Background())
	s.CancelFunc = cancel
	defer func() {
		s.CancelFunc = nil
		cancel()
	}()

	if err := s.ensureConversation(ctx, "Upload file: "+filepath.Base(path)); err != nil {
		printSendError(err)
		return
	}

	fmt.Println(infoStyle.Render("[uploading...]"))
	res, err := s.Client.UploadFile(ctx, s.ConversationID, path)
	if err != nil {
		printSendError(err)
		return
	}

	s.Turns++
	fmt.Printf("%s %s\n", commandStyle.Render("[uploaded]"), res.Status)
	fmt.Println()
}

// =============================================================================
// DISPLAY
// =============================================================================

// printWelcome prints the session banner.
func printWelcome(s *PlainSession) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("foundry-tui plain chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))

	fmt.Printf("%s %s\n",
		infoStyle.Render("Backend:"),
		commandStyle.Render(s.Cfg.Agent.BaseURL))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Variant:"),
		commandStyle.Render(s.Variant))

	mode := "complete replies"
	if s.Stream {
		mode = "streaming"
	}
	fmt.Printf("%s %s\n", infoStyle.Render("Mode:"), mode)

	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printPlainHelp prints available slash commands.
func printPlainHelp() {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/new", "Start a fresh conversation on the next message"},
		{"/list, /ls", "List conversations"},
		{"/switch N|ID", "Resume a conversation"},
		{"/context", "Show the agent's working context"},
		{"/reset", "Reset the agent's working context"},
		{"/retry", "Resend the last failed message"},
		{"/image PROMPT", "Generate an image"},
		{"/upload PATH", "Upload a file"},
		{"/status, /s", "Show session statistics"},
		{"/quit, /q", "Exit"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels the current request, Ctrl+D exits"))
	fmt.Println()
}

// printSessionStatus prints session statistics.
func printSessionStatus(s *PlainSession) {
	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Status"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	title := s.Title
	if title == "" {
		if s.ConversationID != "" {
			title = s.ConversationID
		} else {
			title = "(new on next message)"
		}
	}
	fmt.Printf("  %s %s\n", infoStyle.Render("Conversation:"), commandStyle.Render(title))
	fmt.Printf("  %s %s\n", infoStyle.Render("Duration:"),
		time.Since(s.StartTime).Round(time.Second))
	fmt.Printf("  %s %d\n", infoStyle.Render("Turns:"), s.Turns)
	fmt.Printf("  %s %s\n", infoStyle.Render("Tokens:"), formatNumber(s.TotalTokens))
	fmt.Println()
}

// printExitSummary prints the closing summary.
func printExitSummary(s *PlainSession) {
	if s.Turns == 0 {
		fmt.Println(infoStyle.Render("Goodbye!"))
		return
	}

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Session Summary"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 15)))
	fmt.Printf("  %s %d\n", infoStyle.Render("Turns:"), s.Turns)
	fmt.Printf("  %s %s\n", infoStyle.Render("Tokens:"), formatNumber(s.TotalTokens))
	fmt.Printf("  %s %s\n", infoStyle.Render("Duration:"),
		time.Since(s.StartTime).Round(time.Second))
	fmt.Println()
	fmt.Println(infoStyle.Render("Goodbye!"))
}
