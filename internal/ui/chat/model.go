// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat screen for toonchat.
package chat

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/session"
	"github.com/jeranaias/toonchat/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// ThreadStore is the part of the thread store the screen uses.
type ThreadStore interface {
	ListThreads(ctx context.Context) []model.ThreadSummary
	LoadMessages(ctx context.Context, threadID string) []model.Message
	CreateThread(ctx context.Context) (string, error)
	RenameThread(ctx context.Context, threadID, title string) error
	DeleteThread(ctx context.Context, threadID string) error
	EnsureThread(ctx context.Context) (string, error)
}

// Options configures the chat screen.
type Options struct {
	// ThreadID selects the initial thread; empty picks the most recent.
	ThreadID string

	ShowChunks   bool
	ChunkLimit   int
	SidebarWidth int

	// Changes, when set, triggers a reload of the thread list.
	Changes <-chan struct{}

	// Copy writes text to the clipboard; nil uses the system clipboard.
	Copy func(string) error

	Logger zerolog.Logger
}

// =============================================================================
// CHAT STATE
// =============================================================================

type mode int

const (
	modeCompose mode = iota
	modeRename
	modeConfirmDelete
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx   context.Context
	store ThreadStore
	ctrl  *session.Controller
	opts  Options
	log   zerolog.Logger

	theme  *styles.Theme
	keyMap KeyMap

	// Dimensions
	width  int
	height int

	// Conversation
	threads  []model.ThreadSummary
	current  string
	messages []model.Message

	// Threads with a request in flight, and those whose indicator the user
	// hid with Esc. Both are keyed by thread id.
	pending map[string]bool
	hidden  map[string]bool

	// UI Components
	viewport viewport.Model
	input    textarea.Model
	rename   textinput.Model
	spinner  spinner.Model

	mode   mode
	status string
	err    error
}

// New creates the chat screen and loads the initial thread.
func New(ctx context.Context, store ThreadStore, ctrl *session.Controller, theme *styles.Theme, opts Options) (Model, error) {
	if opts.SidebarWidth <= 0 {
		opts.SidebarWidth = 28
	}
	if opts.ChunkLimit <= 0 {
		opts.ChunkLimit = model.ChunkPreviewLimit
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	input := textarea.New()
	input.Placeholder = "메시지를 입력하세요"
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(3)
	input.KeyMap.InsertNewline.SetKeys("alt+enter")
	input.Focus()

	rename := textinput.New()
	rename.Prompt = "제목: "
	rename.CharLimit = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := Model{
		ctx:      ctx,
		store:    store,
		ctrl:     ctrl,
		opts:     opts,
		log:      opts.Logger,
		theme:    theme,
		keyMap:   DefaultKeyMap(),
		pending:  make(map[string]bool),
		hidden:   make(map[string]bool),
		viewport: viewport.New(0, 0),
		input:    input,
		rename:   rename,
		spinner:  sp,
	}

	current := opts.ThreadID
	if current == "" {
		id, err := store.EnsureThread(ctx)
		if err != nil {
			return Model{}, err
		}
		current = id
	}
	m.current = current
	m.reload()
	return m, nil
}

// Init starts the cursor blink and the store watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForChange(m.opts.Changes))
}

// CurrentThread returns the active thread id.
func (m Model) CurrentThread() string {
	return m.current
}

// Messages returns the messages shown for the active thread.
func (m Model) Messages() []model.Message {
	return m.messages
}

// Threads returns the thread list in sidebar order.
func (m Model) Threads() []model.ThreadSummary {
	return m.threads
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

// reload refreshes the thread list and the active thread's messages.
func (m *Model) reload() {
	m.threads = m.store.ListThreads(m.ctx)
	m.messages = m.store.LoadMessages(m.ctx, m.current)
	m.refreshViewport()
}

// typingVisible reports whether the typing indicator shows for the active
// thread.
func (m Model) typingVisible() bool {
	return m.pending[m.current] && !m.hidden[m.current]
}

func (m *Model) refreshViewport() {
	if m.viewport.Width <= 0 {
		return
	}
	m.viewport.SetContent(m.renderMessages(m.viewport.Width))
	m.viewport.GotoBottom()
}
