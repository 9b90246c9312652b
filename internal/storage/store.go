// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/toonchat/internal/model"
)

// DefaultKey is the key the thread record is stored under.
const DefaultKey = "chatgpt-ui-threads-v1"

// =============================================================================
// RECORD
// =============================================================================

type entry struct {
	Title     string          `json:"title"`
	UpdatedAt int64           `json:"updatedAt"`
	Msgs      []model.Message `json:"msgs"`
}

// record maps thread id to thread data.
type record map[string]*entry

// =============================================================================
// THREAD STORE
// =============================================================================

// Options configures a ThreadStore. Zero values select defaults.
type Options struct {
	Key    string
	Now    func() time.Time
	NewID  func() string
	Logger zerolog.Logger
}

// ThreadStore owns the serialized thread record.
type ThreadStore struct {
	backend Backend
	key     string
	now     func() time.Time
	newID   func() string
	log     zerolog.Logger

	// Held across every read-modify-write of the record.
	mu sync.Mutex
}

// NewThreadStore creates a store on top of backend.
func NewThreadStore(backend Backend, opts Options) *ThreadStore {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = model.NewID
	}
	return &ThreadStore{
		backend: backend,
		key:     opts.Key,
		now:     opts.Now,
		newID:   opts.NewID,
		log:     opts.Logger,
	}
}

// Backend returns the underlying backend.
func (s *ThreadStore) Backend() Backend {
	return s.backend
}

// Key returns the key the record is stored under.
func (s *ThreadStore) Key() string {
	return s.key
}

// read loads the record. A missing or undecodable record yields an empty
// map; only backend failures are returned.
func (s *ThreadStore) read(ctx context.Context) (record, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, ErrNoData) {
		return record{}, nil
	}
	if err != nil {
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("thread record is corrupted, treating as empty")
		return record{}, nil
	}
	if rec == nil {
		rec = record{}
	}
	for id, e := range rec {
		if e == nil {
			delete(rec, id)
		}
	}
	return rec, nil
}

// readLenient is read for operations that must not fail.
func (s *ThreadStore) readLenient(ctx context.Context, op string) record {
	rec, err := s.read(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("op", op).Str("backend", s.backend.Name()).Msg("failed to read thread record")
		return record{}
	}
	return rec
}

func (s *ThreadStore) write(ctx context.Context, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, s.key, data)
}

func (s *ThreadStore) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Backend: s.backend.Name(), Err: err}
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// ListThreads returns every thread, most recently updated first. It never
// fails; unreadable data yields an empty list.
func (s *ThreadStore) ListThreads(ctx context.Context) []model.ThreadSummary {
	s.mu.Lock()
	rec := s.readLenient(ctx, "list")
	s.mu.Unlock()

	return summarize(rec, nil)
}

// LoadMessages returns the messages of a thread, or a single greeting when
// the thread is unknown.
func (s *ThreadStore) LoadMessages(ctx context.Context, threadID string) []model.Message {
	s.mu.Lock()
	rec := s.readLenient(ctx, "load")
	s.mu.Unlock()

	if e, ok := rec[threadID]; ok && len(e.Msgs) > 0 {
		return e.Msgs
	}
	return []model.Message{model.Greeting(s.now())}
}

// Exists reports whether the thread is stored.
func (s *ThreadStore) Exists(ctx context.Context, threadID string) bool {
	s.mu.Lock()
	rec := s.readLenient(ctx, "exists")
	s.mu.Unlock()

	_, ok := rec[threadID]
	return ok
}

// Thread returns a full thread or ErrThreadNotFound.
func (s *ThreadStore) Thread(ctx context.Context, threadID string) (*model.Thread, error) {
	s.mu.Lock()
	rec, err := s.read(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, s.wrap("get", err)
	}

	e, ok := rec[threadID]
	if !ok {
		return nil, ErrThreadNotFound
	}
	return &model.Thread{ID: threadID, Title: e.Title, UpdatedAt: e.UpdatedAt, Messages: e.Msgs}, nil
}

// Search returns threads whose title or any message contains query,
// ignoring case, most recently updated first.
func (s *ThreadStore) Search(ctx context.Context, query string) []model.ThreadSummary {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	rec := s.readLenient(ctx, "search")
	s.mu.Unlock()

	if query == "" {
		return summarize(rec, nil)
	}
	return summarize(rec, func(e *entry) bool {
		if strings.Contains(strings.ToLower(e.Title), query) {
			return true
		}
		for _, m := range e.Msgs {
			if strings.Contains(strings.ToLower(m.Text), query) {
				return true
			}
		}
		return false
	})
}

func summarize(rec record, keep func(*entry) bool) []model.ThreadSummary {
	out := make([]model.ThreadSummary, 0, len(rec))
	for id, e := range rec {
		if keep != nil && !keep(e) {
			continue
		}
		out = append(out, model.ThreadSummary{ID: id, Title: e.Title, UpdatedAt: e.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt != out[j].UpdatedAt {
			return out[i].UpdatedAt > out[j].UpdatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// SaveMessages replaces a thread's messages, creating the thread if needed.
// The title is derived from the first user message, falling back to the
// previous title and then the default title.
func (s *ThreadStore) SaveMessages(ctx context.Context, threadID string, msgs []model.Message) error {
	if len(msgs) == 0 {
		return ErrEmptyThread
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(ctx)
	if err != nil {
		return s.wrap("save", err)
	}

	title, ok := model.SummarizeTitle(msgs)
	if !ok {
		title = model.DefaultTitle
		if prev, exists := rec[threadID]; exists && prev.Title != "" {
			title = prev.Title
		}
	}

	rec[threadID] = &entry{
		Title:     title,
		UpdatedAt: s.now().UnixMilli(),
		Msgs:      append([]model.Message(nil), msgs...),
	}
	if err := s.write(ctx, rec); err != nil {
		return s.wrap("save", err)
	}

	s.log.Debug().Str("thread", threadID).Int("messages", len(msgs)).Msg("thread saved")
	return nil
}

// AppendMessage adds msg to the end of a stored thread and saves it.
// It returns ErrThreadNotFound when the thread is not stored.
func (s *ThreadStore) AppendMessage(ctx context.Context, threadID string, msg model.Message) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(ctx)
	if err != nil {
		return nil, s.wrap("append", err)
	}
	e, ok := rec[threadID]
	if !ok {
		return nil, ErrThreadNotFound
	}

	msgs := append(append([]model.Message(nil), e.Msgs...), msg)
	if title, ok := model.SummarizeTitle(msgs); ok {
		e.Title = title
	} else if e.Title == "" {
		e.Title = model.DefaultTitle
	}
	e.Msgs = msgs
	e.UpdatedAt = s.now().UnixMilli()

	if err := s.write(ctx, rec); err != nil {
		return nil, s.wrap("append", err)
	}
	return msgs, nil
}

// CreateThread stores a new thread holding only the greeting and returns
// its id.
func (s *ThreadStore) CreateThread(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(ctx)
	if err != nil {
		return "", s.wrap("create", err)
	}

	id := s.newID()
	now := s.now()
	rec[id] = &entry{
		Title:     model.DefaultTitle,
		UpdatedAt: now.UnixMilli(),
		Msgs:      []model.Message{model.Greeting(now)},
	}
	if err := s.write(ctx, rec); err != nil {
		return "", s.wrap("create", err)
	}

	s.log.Debug().Str("thread", id).Msg("thread created")
	return id, nil
}

// RenameThread sets the title of an existing thread. A blank title resets
// it to the default. Unknown threads are ignored.
func (s *ThreadStore) RenameThread(ctx context.Context, threadID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(ctx)
	if err != nil {
		return s.wrap("rename", err)
	}
	e, ok := rec[threadID]
	if !ok {
		return nil
	}
	e.Title = title
	return s.wrap("rename", s.write(ctx, rec))
}

// DeleteThread removes a thread. Unknown threads are ignored.
func (s *ThreadStore) DeleteThread(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(ctx)
	if err != nil {
		return s.wrap("delete", err)
	}
	if _, ok := rec[threadID]; !ok {
		return nil
	}
	delete(rec, threadID)
	if err := s.write(ctx, rec); err != nil {
		return s.wrap("delete", err)
	}

	s.log.Debug().Str("thread", threadID).Msg("thread deleted")
	return nil
}

// EnsureThread returns the most recently updated thread, creating one when
// the store is empty.
func (s *ThreadStore) EnsureThread(ctx context.Context) (string, error) {
	if threads := s.ListThreads(ctx); len(threads) > 0 {
		return threads[0].ID, nil
	}
	return s.CreateThread(ctx)
}
