// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "나"
	case RoleBot:
		return "봇"
	default:
		return string(r)
	}
}

// Avatar returns the single-letter avatar drawn next to a message.
func (r Role) Avatar() string {
	if r == RoleBot {
		return "B"
	}
	return "M"
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single chat line. Messages are never edited after creation.
type Message struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Text string `json:"text"`
	Time string `json:"time"`

	// Set on bot messages when the service classified the question.
	Intent Intent   `json:"intent,omitempty"`
	Chunks []string `json:"chunks,omitempty"`
}

// NewID returns a fresh opaque identifier for threads and messages.
func NewID() string {
	return uuid.NewString()
}

// ClockHM formats t as a zero-padded 24 hour HH:MM display time.
func ClockHM(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// NewUserMessage creates a user message stamped with now.
func NewUserMessage(text string, now time.Time) Message {
	return Message{
		ID:   NewID(),
		Role: RoleUser,
		Text: text,
		Time: ClockHM(now),
	}
}

// NewBotMessage creates a bot message stamped with now.
func NewBotMessage(text string, now time.Time) Message {
	return Message{
		ID:   NewID(),
		Role: RoleBot,
		Text: text,
		Time: ClockHM(now),
	}
}

// NewReplyMessage creates a bot message from a service reply, carrying its
// intent and reference chunks.
func NewReplyMessage(r *Reply, now time.Time) Message {
	msg := NewBotMessage(r.Answer, now)
	msg.Intent = r.Intent
	if len(r.Chunks) > 0 {
		msg.Chunks = append([]string(nil), r.Chunks...)
	}
	return msg
}

// Greeting synthesizes the bot message every new thread starts with.
func Greeting(now time.Time) Message {
	return NewBotMessage(GreetingText, now)
}

// IsGreetingOnly reports whether msgs holds nothing but a single bot message.
func IsGreetingOnly(msgs []Message) bool {
	return len(msgs) == 1 && msgs[0].Role == RoleBot
}
