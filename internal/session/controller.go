// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/toonchat/internal/askapi"
	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput is returned when the input is blank after trimming.
	ErrEmptyInput = errors.New("input is empty")

	// ErrBusy is returned when the thread is still waiting for a reply.
	ErrBusy = errors.New("thread is awaiting a reply")

	// ErrThreadGone is returned when a reply arrives for a deleted thread.
	ErrThreadGone = errors.New("thread was deleted before the reply arrived")
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Asker answers a question within a server-side session.
type Asker interface {
	Ask(ctx context.Context, question, sessionID string) (*model.Reply, error)
}

// Store persists thread messages.
type Store interface {
	AppendMessage(ctx context.Context, threadID string, msg model.Message) ([]model.Message, error)
	SaveMessages(ctx context.Context, threadID string, msgs []model.Message) error
}

// persistTimeout bounds the write of a reply. The write is detached from
// the request context so a cancelled request still leaves its failure
// message in the thread.
const persistTimeout = 10 * time.Second

// =============================================================================
// STATE
// =============================================================================

// State is the request state of a single thread.
type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	if s == StateAwaiting {
		return "awaiting"
	}
	return "idle"
}

// Turn is a question that has been recorded and is waiting for its reply.
type Turn struct {
	// ThreadID is the thread that was active when the question was sent.
	ThreadID    string
	Question    string
	UserMessage model.Message
	SentAt      time.Time
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Options configures a Controller. Zero values select defaults.
type Options struct {
	Now    func() time.Time
	Logger zerolog.Logger
}

// Controller runs chat exchanges. At most one request is in flight per
// thread; different threads may await replies concurrently.
type Controller struct {
	store Store
	asker Asker
	now   func() time.Time
	log   zerolog.Logger

	mu       sync.Mutex
	awaiting map[string]bool
}

// NewController creates a controller.
func NewController(store Store, asker Asker, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		store:    store,
		asker:    asker,
		now:      opts.Now,
		log:      opts.Logger,
		awaiting: make(map[string]bool),
	}
}

// State returns the request state of a thread.
func (c *Controller) State(threadID string) State {
	if c.Busy(threadID) {
		return StateAwaiting
	}
	return StateIdle
}

// Busy reports whether a thread is waiting for a reply.
func (c *Controller) Busy(threadID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.awaiting[threadID]
}

// Submit records the user's question in the thread and moves the thread to
// Awaiting. Blank input and busy threads are rejected without any change.
func (c *Controller) Submit(ctx context.Context, threadID, input string) (*Turn, error) {
	question := strings.TrimSpace(input)
	if question == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	if c.awaiting[threadID] {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.awaiting[threadID] = true
	c.mu.Unlock()

	now := c.now()
	userMsg := model.NewUserMessage(question, now)

	_, err := c.store.AppendMessage(ctx, threadID, userMsg)
	if errors.Is(err, storage.ErrThreadNotFound) {
		// The thread only existed on screen; persist it with its greeting.
		err = c.store.SaveMessages(ctx, threadID, []model.Message{model.Greeting(now), userMsg})
	}
	if err != nil {
		c.release(threadID)
		return nil, err
	}

	c.log.Debug().Str("thread", threadID).Int("chars", len([]rune(question))).Msg("question submitted")
	return &Turn{ThreadID: threadID, Question: question, UserMessage: userMsg, SentAt: now}, nil
}

// Resolve asks the service and appends the reply, or a failure notice, to
// the turn's thread. Ask failures are rendered into the bot message and
// never returned. The thread is Idle again when Resolve returns.
func (c *Controller) Resolve(ctx context.Context, turn *Turn) (model.Message, error) {
	defer c.release(turn.ThreadID)

	var botMsg model.Message
	reply, err := c.asker.Ask(ctx, turn.Question, turn.ThreadID)
	if err != nil {
		c.log.Warn().Err(err).Str("thread", turn.ThreadID).Msg("ask failed")
		botMsg = model.NewBotMessage(model.FailurePrefix+askapi.FormatError(err), c.now())
	} else {
		botMsg = model.NewReplyMessage(reply, c.now())
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if _, err := c.store.AppendMessage(saveCtx, turn.ThreadID, botMsg); err != nil {
		if errors.Is(err, storage.ErrThreadNotFound) {
			c.log.Info().Str("thread", turn.ThreadID).Msg("dropping reply for deleted thread")
			return botMsg, ErrThreadGone
		}
		return botMsg, err
	}

	c.log.Debug().Str("thread", turn.ThreadID).Str("intent", string(botMsg.Intent)).
		Dur("elapsed", c.now().Sub(turn.SentAt)).Msg("reply stored")
	return botMsg, nil
}

// Send submits input and waits for the reply.
func (c *Controller) Send(ctx context.Context, threadID, input string) (model.Message, error) {
	turn, err := c.Submit(ctx, threadID, input)
	if err != nil {
		return model.Message{}, err
	}
	return c.Resolve(ctx, turn)
}

func (c *Controller) release(threadID string) {
	c.mu.Lock()
	delete(c.awaiting, threadID)
	c.mu.Unlock()
}
