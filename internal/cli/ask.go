// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/session"
)

// maxStdinQuestion caps a question read from a pipe.
const maxStdinQuestion = 64 * 1024

// askResult is the --json shape of an answered question.
type askResult struct {
	ThreadID string   `json:"thread_id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Intent   string   `json:"intent,omitempty"`
	Chunks   []string `json:"chunks,omitempty"`
	Time     string   `json:"time"`
}

// tapAsker remembers the last ask error so the command can exit non-zero
// even though the failure is stored in the thread as a bot message.
type tapAsker struct {
	session.Asker

	mu  sync.Mutex
	err error
}

func (t *tapAsker) Ask(ctx context.Context, question, sessionID string) (*model.Reply, error) {
	reply, err := t.Asker.Ask(ctx, question, sessionID)
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
	return reply, err
}

func (t *tapAsker) lastErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// HandleAsk asks a single question. Without --thread the question starts a
// new thread. The question is read from stdin when it is "-" or omitted
// and stdin is a pipe.
func HandleAsk(ctx context.Context, a *App, args Args) error {
	question, err := a.readQuestion(args.Query)
	if err != nil {
		return err
	}

	tap := &tapAsker{Asker: a.Service}
	ctrl := session.NewController(a.Store, tap, session.Options{Logger: a.Log})

	threadID := args.Thread
	if threadID == "" {
		threadID, err = a.Store.CreateThread(ctx)
		if err != nil {
			return NewCommandError("ask", "create thread", "could not create thread", err)
		}
	}

	return OutputJSON(a.Out, a.JSON, "ask", func() (interface{}, error) {
		msg, err := ctrl.Send(ctx, threadID, question)
		if err != nil {
			return nil, NewCommandError("ask", "send", "could not store the conversation", err)
		}

		if !a.JSON {
			printMessage(a.Out, msg, a.Config.UI.ShowChunks, a.Config.UI.ChunkLimit)
			if !a.Quiet && args.Thread == "" {
				fmt.Fprintln(a.Err, DimStyle.Render("thread: "+threadID))
			}
		}

		if askErr := tap.lastErr(); askErr != nil {
			return nil, askErr
		}
		return askResult{
			ThreadID: threadID,
			Question: question,
			Answer:   msg.Text,
			Intent:   string(msg.Intent),
			Chunks:   msg.Chunks,
			Time:     msg.Time,
		}, nil
	})
}

func (a *App) readQuestion(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query != "" && query != "-" {
		return query, nil
	}
	if query == "" && IsTTY() {
		return "", ErrMissingArgument("question", `toonchat ask "나 혼자만 레벨업 같은 웹툰 추천해줘"`)
	}

	data, err := io.ReadAll(io.LimitReader(a.In, maxStdinQuestion))
	if err != nil {
		return "", NewCommandError("ask", "read", "could not read stdin", err)
	}
	question := strings.TrimSpace(string(data))
	if question == "" {
		return "", ErrMissingArgument("question", `echo "질문" | toonchat ask -`)
	}
	return question, nil
}
