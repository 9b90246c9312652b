// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// User-facing strings.
const (
	GreetingText     = "안녕하세요! 무엇을 도와드릴까요?"
	DefaultTitle     = "새 대화"
	EmptyAnswerText  = "서버 응답이 비어있습니다."
	GenericErrorText = "요청 중 오류가 발생했습니다."
	FailurePrefix    = "요청 실패: "
)

// =============================================================================
// THREAD TYPES
// =============================================================================

// Thread is one persisted conversation.
type Thread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt int64     `json:"updatedAt"` // milliseconds since the Unix epoch
	Messages  []Message `json:"msgs"`
}

// Updated returns UpdatedAt as a time.Time.
func (t *Thread) Updated() time.Time {
	return time.UnixMilli(t.UpdatedAt)
}

// Summary projects the thread to its list entry.
func (t *Thread) Summary() ThreadSummary {
	return ThreadSummary{ID: t.ID, Title: t.Title, UpdatedAt: t.UpdatedAt}
}

// UserMessageCount returns the number of messages sent by the user.
func (t *Thread) UserMessageCount() int {
	n := 0
	for _, m := range t.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// ThreadSummary is the list projection of a thread.
type ThreadSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Updated returns UpdatedAt as a time.Time.
func (s ThreadSummary) Updated() time.Time {
	return time.UnixMilli(s.UpdatedAt)
}
