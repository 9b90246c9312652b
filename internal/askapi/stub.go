// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package askapi

import (
	"context"
	"time"

	"github.com/jeranaias/toonchat/internal/model"
)

// Stub answers locally without contacting the service. It is used when the
// network is disabled in the configuration.
type Stub struct {
	// Delay simulates network latency.
	Delay time.Duration
}

// StubAnswer is the text Stub replies with for question q.
func StubAnswer(q string) string {
	return "질문: " + q + "\n\n여기는 스텁 응답입니다. 서버 연동 후에는 실제 답변이 표시됩니다."
}

// Ask returns StubAnswer(question) after Delay.
func (s *Stub) Ask(ctx context.Context, question, _ string) (*model.Reply, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, classifyTransport(ctx.Err(), "timeout exceeded")
		}
	}
	return &model.Reply{Answer: StubAnswer(question)}, nil
}

// Health always reports the stub as healthy.
func (s *Stub) Health(context.Context) (*Health, error) {
	return &Health{Status: "ok", Time: time.Now().Format(time.RFC3339)}, nil
}
