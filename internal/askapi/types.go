// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package askapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jeranaias/toonchat/internal/model"
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// Health is the body of GET /health.
type Health struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// OK reports whether the service declared itself healthy.
func (h *Health) OK() bool {
	return strings.EqualFold(h.Status, "ok")
}

// answerFields are tried in order when reading an answer.
var answerFields = []string{"answer", "result", "message"}

// parseReply normalizes a successful response body. It never fails; a body
// without a usable answer yields the empty-answer placeholder.
func parseReply(body []byte) *model.Reply {
	reply := &model.Reply{Answer: model.EmptyAnswerText}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return reply
	}

	for _, name := range answerFields {
		if text, ok := coerceString(fields[name]); ok {
			reply.Answer = text
			break
		}
	}

	if raw, ok := fields["intent"]; ok {
		var intent string
		if json.Unmarshal(raw, &intent) == nil {
			reply.Intent = model.Intent(strings.TrimSpace(intent))
		}
	}

	if raw, ok := fields["chunks"]; ok {
		var chunks []json.RawMessage
		if json.Unmarshal(raw, &chunks) == nil {
			for _, c := range chunks {
				if text, ok := coerceString(c); ok {
					reply.Chunks = append(reply.Chunks, text)
				}
			}
		}
	}
	return reply
}

// coerceString renders a JSON value as display text. Absent, null and
// empty-string values report false, so {"answer":"","result":"x"} reads
// as "x" rather than an empty answer.
func coerceString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", false
		}
		return buf.String(), true
	default:
		// numbers and booleans
		return string(raw), true
	}
}
