// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

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

	"github.com/peterh/liner"

	"github.com/jeranaias/toonchat/internal/config"
	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/session"
	"github.com/jeranaias/toonchat/internal/util"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader reads one line of input with a prompt.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// ChatInput provides input history and line editing for interactive chat.
type ChatInput struct {
	line        *liner.State
	historyFile string
}

// NewChatInput creates a liner-backed reader and loads saved history.
func NewChatInput() *ChatInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	in := &ChatInput{line: line, historyFile: filepath.Join(dir, "chat_history")}

	if f, err := os.Open(in.historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return in
}

// Prompt reads a line and adds it to the history.
func (c *ChatInput) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with owner-only permissions and restores the
// terminal.
func (c *ChatInput) Close() error {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = c.line.WriteHistory(f)
			f.Close()
		}
	}
	return c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession is the line-mode chat loop.
type ChatSession struct {
	app    *App
	input  LineReader
	thread string
}

// NewChatSession starts on threadID, or on the most recent thread when it
// is empty.
func NewChatSession(ctx context.Context, a *App, input LineReader, threadID string) (*ChatSession, error) {
	if threadID == "" {
		id, err := a.Store.EnsureThread(ctx)
		if err != nil {
			return nil, NewCommandError("chat", "start", "could not open a thread", err)
		}
		threadID = id
	}
	return &ChatSession{app: a, input: input, thread: threadID}, nil
}

// Thread returns the active thread id.
func (s *ChatSession) Thread() string {
	return s.thread
}

// HandleChat runs the interactive chat.
func HandleChat(ctx context.Context, a *App, args Args) error {
	if a.JSON {
		return NewValidationErrorWithExample("flag", "--json", "chat is interactive", `toonchat ask --json "질문"`)
	}

	input := NewChatInput()
	defer input.Close()

	s, err := NewChatSession(ctx, a, input, args.Thread)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// Run reads lines until /quit, EOF or Ctrl+C at the prompt.
func (s *ChatSession) Run(ctx context.Context) error {
	out := s.app.Out
	if !s.app.Quiet {
		s.printWelcome()
	}

	for {
		line, err := s.input.Prompt(PromptStyle.Render("toonchat> "))
		if err != nil {
			// Ctrl+C, Ctrl+D and a closed pipe all end the session.
			fmt.Fprintln(out)
			return nil
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "/"):
			keepGoing, err := s.handleSlashCommand(ctx, line)
			if err != nil {
				fmt.Fprintf(s.app.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				return nil
			}
		case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
			return nil
		default:
			s.send(ctx, line)
		}
	}
}

// send asks one question. Ctrl+C while waiting cancels the request; the
// cancellation is recorded in the thread like any other failure.
func (s *ChatSession) send(ctx context.Context, question string) {
	reqCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if !s.app.Quiet {
		fmt.Fprintln(s.app.Out, DimStyle.Render("답변을 작성하고 있습니다…"))
	}
	msg, err := s.app.Ctrl.Send(reqCtx, s.thread, question)
	switch {
	case errors.Is(err, session.ErrThreadGone):
		fmt.Fprintln(s.app.Err, WarningStyle.Render("대화가 삭제되어 답변을 저장하지 않았습니다"))
		return
	case err != nil:
		fmt.Fprintf(s.app.Err, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return
	}
	printMessage(s.app.Out, msg, s.app.Config.UI.ShowChunks, s.app.Config.UI.ChunkLimit)
	fmt.Fprintln(s.app.Out)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs a /command. It returns false when the session
// should end.
func (s *ChatSession) handleSlashCommand(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch command {
	case "/help", "/h", "/?", "/":
		s.printHelp()

	case "/quit", "/q", "/exit":
		return false, nil

	case "/new", "/n":
		// An untouched thread is already new.
		if model.IsGreetingOnly(s.app.Store.LoadMessages(ctx, s.thread)) {
			fmt.Fprintf(s.app.Out, "%s %s\n", SuccessStyle.Render("[새 대화]"), s.thread)
			return true, nil
		}
		id, err := s.app.Store.CreateThread(ctx)
		if err != nil {
			return true, err
		}
		s.thread = id
		fmt.Fprintf(s.app.Out, "%s %s\n", SuccessStyle.Render("[새 대화]"), id)

	case "/threads", "/t":
		s.printThreads(ctx)

	case "/switch", "/s":
		if rest == "" {
			return true, ErrMissingArgument("thread", "/switch 2")
		}
		id, err := s.resolveThread(ctx, rest)
		if err != nil {
			return true, err
		}
		s.thread = id
		s.printHistory(ctx)

	case "/rename":
		if err := s.app.Store.RenameThread(ctx, s.thread, rest); err != nil {
			return true, err
		}
		fmt.Fprintf(s.app.Out, "%s %s\n", SuccessStyle.Render("[OK]"), s.currentTitle(ctx))

	case "/delete":
		if err := s.app.Store.DeleteThread(ctx, s.thread); err != nil {
			return true, err
		}
		id, err := s.app.Store.EnsureThread(ctx)
		if err != nil {
			return true, err
		}
		s.thread = id
		fmt.Fprintf(s.app.Out, "%s %s\n", SuccessStyle.Render("[삭제됨]"), s.currentTitle(ctx))

	case "/history":
		s.printHistory(ctx)

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
	return true, nil
}

// resolveThread accepts a 1-based index into the thread list or an id.
func (s *ChatSession) resolveThread(ctx context.Context, ref string) (string, error) {
	threads := s.app.Store.ListThreads(ctx)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(threads) {
			return "", ErrNotFound("thread", ref)
		}
		return threads[n-1].ID, nil
	}
	for _, th := range threads {
		if th.ID == ref {
			return th.ID, nil
		}
	}
	return "", ErrNotFound("thread", ref)
}

func (s *ChatSession) currentTitle(ctx context.Context) string {
	th, err := s.app.Store.Thread(ctx, s.thread)
	if err != nil {
		return model.DefaultTitle
	}
	return th.Title
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

func (s *ChatSession) printWelcome() {
	out := s.app.Out
	fmt.Fprintln(out, TitleStyle.Render("toonchat"))
	fmt.Fprintln(out, RenderSeparator(30))
	target := s.app.Config.Backend.BaseURL
	if s.app.Config.Backend.Stub {
		target = "stub"
	}
	fmt.Fprintf(out, "%s %s\n", RenderLabel("서버"), ValueStyle.Render(target))
	fmt.Fprintf(out, "%s %s\n", RenderLabel("대화"), ValueStyle.Render(s.thread))
	fmt.Fprintln(out, DimStyle.Render("메시지를 입력하고 Enter를 누르세요. 명령: /help, /quit"))
	fmt.Fprintln(out)
}

func (s *ChatSession) printHelp() {
	commands := []struct {
		cmd  string
		desc string
	}{
		{"/new", "새 대화"},
		{"/threads", "대화 목록"},
		{"/switch N|ID", "대화 전환"},
		{"/rename TITLE", "제목 변경 (비우면 기본 제목)"},
		{"/delete", "현재 대화 삭제"},
		{"/history", "현재 대화 보기"},
		{"/quit", "종료"},
	}
	for _, c := range commands {
		fmt.Fprintf(s.app.Out, "  %s %s\n", PromptStyle.Render(fmt.Sprintf("%-15s", c.cmd)), DimStyle.Render(c.desc))
	}
}

func (s *ChatSession) printThreads(ctx context.Context) {
	threads := s.app.Store.ListThreads(ctx)
	if len(threads) == 0 {
		fmt.Fprintln(s.app.Out, DimStyle.Render("대화가 없습니다"))
		return
	}
	for i, th := range threads {
		marker := " "
		if th.ID == s.thread {
			marker = "*"
		}
		fmt.Fprintf(s.app.Out, "%s %2d. %s %s\n",
			marker, i+1,
			util.PadRight(util.TruncateWidth(th.Title, 24), 24),
			DimStyle.Render(th.Updated().Format("01-02 15:04")))
	}
}

func (s *ChatSession) printHistory(ctx context.Context) {
	msgs := s.app.Store.LoadMessages(ctx, s.thread)
	fmt.Fprintln(s.app.Out, TitleStyle.Render(s.currentTitle(ctx)))
	printTranscript(s.app.Out, msgs, s.app.Config.UI.ShowChunks, s.app.Config.UI.ChunkLimit)
	fmt.Fprintln(s.app.Out)
}
