// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/toonchat/internal/askapi"
	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/storage"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// askFunc adapts a function to Asker.
type askFunc func(ctx context.Context, question, sessionID string) (*model.Reply, error)

func (f askFunc) Ask(ctx context.Context, question, sessionID string) (*model.Reply, error) {
	return f(ctx, question, sessionID)
}

func answer(text string) askFunc {
	return func(context.Context, string, string) (*model.Reply, error) {
		return &model.Reply{Answer: text}, nil
	}
}

// gate blocks Ask until released and records the session ids it saw.
type gate struct {
	mu       sync.Mutex
	sessions []string
	started  chan struct{}
	release  chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gate) Ask(ctx context.Context, question, sessionID string) (*model.Reply, error) {
	g.mu.Lock()
	g.sessions = append(g.sessions, sessionID)
	g.mu.Unlock()
	g.started <- struct{}{}
	<-g.release
	return &model.Reply{Answer: "answer to " + question}, nil
}

var testNow = time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)

func newTestController(t *testing.T, asker Asker) (*Controller, *storage.ThreadStore) {
	t.Helper()
	store := storage.NewThreadStore(storage.NewMemoryBackend(), storage.Options{
		Now: func() time.Time { return testNow },
	})
	ctrl := NewController(store, asker, Options{Now: func() time.Time { return testNow }})
	return ctrl, store
}

func createThread(t *testing.T, store *storage.ThreadStore) string {
	t.Helper()
	id, err := store.CreateThread(context.Background())
	require.NoError(t, err)
	return id
}

// =============================================================================
// ROUND TRIP TESTS
// =============================================================================

func TestController_Send_AddsTwoMessages(t *testing.T) {
	ctx := context.Background()
	ctrl, store := newTestController(t, answer("hello"))
	id := createThread(t, store)

	before := len(store.LoadMessages(ctx, id))
	msg, err := ctrl.Send(ctx, id, "  hi there  ")
	require.NoError(t, err)

	msgs := store.LoadMessages(ctx, id)
	require.Len(t, msgs, before+2)

	user := msgs[len(msgs)-2]
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, "hi there", user.Text)
	assert.Equal(t, "09:05", user.Time)

	bot := msgs[len(msgs)-1]
	assert.Equal(t, model.RoleBot, bot.Role)
	assert.Equal(t, "hello", bot.Text)
	assert.Equal(t, msg.ID, bot.ID)
	assert.NotEqual(t, user.ID, bot.ID)

	assert.Equal(t, StateIdle, ctrl.State(id))
}

func TestController_Send_UpdatesTitle(t *testing.T) {
	ctx := context.Background()
	ctrl, store := newTestController(t, answer("ok"))
	id := createThread(t, store)

	_, err := ctrl.Send(ctx, id, "가나다라마바사아자차카타파하가나다라마바")
	require.NoError(t, err)

	th, err := store.Thread(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "가나다라마바사아자차카타파하가나다라…", th.Title)
}

func TestController_Send_PassesThreadAsSession(t *testing.T) {
	ctx := context.Background()
	var gotQuestion, gotSession string
	ctrl, store := newTestController(t, askFunc(func(_ context.Context, q, sid string) (*model.Reply, error) {
		gotQuestion, gotSession = q, sid
		return &model.Reply{Answer: "a"}, nil
	}))
	id := createThread(t, store)

	_, err := ctrl.Send(ctx, id, "\t웹툰 추천해줘\n")
	require.NoError(t, err)
	assert.Equal(t, "웹툰 추천해줘", gotQuestion)
	assert.Equal(t, id, gotSession)
}

func TestController_Send_KeepsIntentAndChunks(t *testing.T) {
	ctx := context.Background()
	ctrl, store := newTestController(t, askFunc(func(context.Context, string, string) (*model.Reply, error) {
		return &model.Reply{Answer: "a", Intent: model.IntentLaw, Chunks: []string{"c1"}}, nil
	}))
	id := createThread(t, store)

	_, err := ctrl.Send(ctx, id, "q")
	require.NoError(t, err)

	msgs := store.LoadMessages(ctx, id)
	bot := msgs[len(msgs)-1]
	assert.Equal(t, model.IntentLaw, bot.Intent)
	assert.Equal(t, []string{"c1"}, bot.Chunks)
}

func TestController_Send_UnsavedThreadGetsGreeting(t *testing.T) {
	ctx := context.Background()
	ctrl, store := newTestController(t, answer("a"))

	_, err := ctrl.Send(ctx, "fresh", "first question")
	require.NoError(t, err)

	msgs := store.LoadMessages(ctx, "fresh")
	require.Len(t, msgs, 3)
	assert.Equal(t, model.GreetingText, msgs[0].Text)
	assert.Equal(t, "first question", msgs[1].Text)
	assert.Equal(t, "a", msgs[2].Text)
}

// =============================================================================
// FAILURE TESTS
// =============================================================================

func TestController_Send_AskFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "server detail",
			err:  &askapi.ClientError{Type: askapi.ErrTypeServer, Message: "request failed with status code 400", Detail: "question is empty"},
			want: "요청 실패: question is empty",
		},
		{
			name: "timeout",
			err:  &askapi.ClientError{Type: askapi.ErrTypeTimeout, Message: "timeout of 20s exceeded"},
			want: "요청 실패: timeout of 20s exceeded",
		},
		{
			name: "no description",
			err:  &askapi.ClientError{},
			want: "요청 실패: 요청 중 오류가 발생했습니다.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			ctrl, store := newTestController(t, askFunc(func(context.Context, string, string) (*model.Reply, error) {
				return nil, tc.err
			}))
			id := createThread(t, store)

			msg, err := ctrl.Send(ctx, id, "q")
			require.NoError(t, err)
			assert.Equal(t, tc.want, msg.Text)

			msgs := store.LoadMessages(ctx, id)
			require.Len(t, msgs, 3)
			assert.Equal(t, model.RoleBot, msgs[2].Role)
			assert.Equal(t, tc.want, msgs[2].Text)
			assert.Equal(t, StateIdle, ctrl.State(id))
		})
	}
}

// ctxStore fails like the network and SQL backends once ctx is done.
type ctxStore struct {
	*storage.ThreadStore
}

func (s ctxStore) AppendMessage(ctx context.Context, threadID string, msg model.Message) ([]model.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.ThreadStore.AppendMessage(ctx, threadID, msg)
}

func TestController_Send_CanceledRequestStillStoresFailure(t *testing.T) {
	store := storage.NewThreadStore(storage.NewMemoryBackend(), storage.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	asker := askFunc(func(ctx context.Context, _, _ string) (*model.Reply, error) {
		cancel()
		return nil, &askapi.ClientError{Type: askapi.ErrTypeCanceled, Message: "request canceled", Cause: ctx.Err()}
	})
	ctrl := NewController(ctxStore{store}, asker, Options{})
	id := createThread(t, store)

	msg, err := ctrl.Send(ctx, id, "hello")
	require.NoError(t, err)
	assert.Equal(t, "요청 실패: request canceled", msg.Text)

	msgs := store.LoadMessages(context.Background(), id)
	require.Len(t, msgs, 3)
	assert.Equal(t, model.RoleBot, msgs[2].Role)
	assert.Equal(t, msg.Text, msgs[2].Text)
	assert.False(t, ctrl.Busy(id))
}

func TestController_Send_CanceledRequestOnSQLite(t *testing.T) {
	backend, err := storage.OpenSQLiteBackend(filepath.Join(t.TempDir(), "threads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	store := storage.NewThreadStore(backend, storage.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	asker := askFunc(func(ctx context.Context, _, _ string) (*model.Reply, error) {
		cancel()
		<-ctx.Done()
		return nil, &askapi.ClientError{Type: askapi.ErrTypeCanceled, Message: "request canceled", Cause: ctx.Err()}
	})
	ctrl := NewController(store, asker, Options{})
	id := createThread(t, store)

	_, err = ctrl.Send(ctx, id, "hello")
	require.NoError(t, err)

	msgs := store.LoadMessages(context.Background(), id)
	require.Len(t, msgs, 3)
	assert.Equal(t, "요청 실패: request canceled", msgs[2].Text)
}

func TestController_Send_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := askapi.NewClientWithConfig(&askapi.ClientConfig{BaseURL: url, Timeout: time.Second})
	ctrl, store := newTestController(t, client)
	id := createThread(t, store)

	msg, err := ctrl.Send(context.Background(), id, "q")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg.Text, model.FailurePrefix+model.GenericErrorText), msg.Text)
	assert.Equal(t, msg.Text, store.LoadMessages(context.Background(), id)[2].Text)
}

func TestController_Submit_EmptyInput(t *testing.T) {
	ctx := context.Background()
	ctrl, store := newTestController(t, answer("a"))
	id := createThread(t, store)

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := ctrl.Submit(ctx, id, input)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Len(t, store.LoadMessages(ctx, id), 1)
	assert.Equal(t, StateIdle, ctrl.State(id))
}

func TestController_Submit_StoreFailureReleasesThread(t *testing.T) {
	ctx := context.Background()
	failing := errors.New("disk full")
	store := &errStore{err: failing}
	ctrl := NewController(store, answer("a"), Options{})

	_, err := ctrl.Submit(ctx, "t", "q")
	assert.ErrorIs(t, err, failing)
	assert.False(t, ctrl.Busy("t"))
}

type errStore struct{ err error }

func (s *errStore) AppendMessage(context.Context, string, model.Message) ([]model.Message, error) {
	return nil, s.err
}

func (s *errStore) SaveMessages(context.Context, string, []model.Message) error {
	return s.err
}

// =============================================================================
// CONCURRENCY TESTS
// =============================================================================

func TestController_Submit_BusyWhileAwaiting(t *testing.T) {
	ctx := context.Background()
	g := newGate()
	ctrl, store := newTestController(t, g)
	id := createThread(t, store)

	turn, err := ctrl.Submit(ctx, id, "first")
	require.NoError(t, err)
	assert.Equal(t, StateAwaiting, ctrl.State(id))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := ctrl.Resolve(ctx, turn)
		assert.NoError(t, err)
	}()
	<-g.started

	_, err = ctrl.Submit(ctx, id, "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, store.LoadMessages(ctx, id), 2)

	close(g.release)
	<-done

	assert.Equal(t, StateIdle, ctrl.State(id))
	msgs := store.LoadMessages(ctx, id)
	require.Len(t, msgs, 3)
	assert.Equal(t, "answer to first", msgs[2].Text)
}

func TestController_ReplyBindsToRequestThread(t *testing.T) {
	ctx := context.Background()
	g := newGate()
	ctrl, store := newTestController(t, g)
	a := createThread(t, store)
	b := createThread(t, store)

	turnA, err := ctrl.Submit(ctx, a, "question in A")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = ctrl.Resolve(ctx, turnA)
	}()
	<-g.started

	// The user moved on to B while A is awaiting; B accepts input.
	assert.False(t, ctrl.Busy(b))
	turnB, err := ctrl.Submit(ctx, b, "question in B")
	require.NoError(t, err)
	assert.True(t, ctrl.Busy(b))

	close(g.release)
	<-done
	_, err = ctrl.Resolve(ctx, turnB)
	require.NoError(t, err)
	<-g.started

	msgsA := store.LoadMessages(ctx, a)
	msgsB := store.LoadMessages(ctx, b)
	require.Len(t, msgsA, 3)
	require.Len(t, msgsB, 3)
	assert.Equal(t, "answer to question in A", msgsA[2].Text)
	assert.Equal(t, "answer to question in B", msgsB[2].Text)

	g.mu.Lock()
	assert.ElementsMatch(t, []string{a, b}, g.sessions)
	g.mu.Unlock()
}

func TestController_Resolve_ThreadDeleted(t *testing.T) {
	ctx := context.Background()
	g := newGate()
	ctrl, store := newTestController(t, g)
	id := createThread(t, store)

	turn, err := ctrl.Submit(ctx, id, "q")
	require.NoError(t, err)

	var resolveErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, resolveErr = ctrl.Resolve(ctx, turn)
	}()
	<-g.started

	require.NoError(t, store.DeleteThread(ctx, id))
	close(g.release)
	<-done

	assert.ErrorIs(t, resolveErr, ErrThreadGone)
	assert.False(t, store.Exists(ctx, id))
	assert.Equal(t, StateIdle, ctrl.State(id))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting", StateAwaiting.String())
}
