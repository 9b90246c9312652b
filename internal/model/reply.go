// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "unicode/utf8"

// =============================================================================
// INTENT
// =============================================================================

// Intent is the classification label the service attaches to a question.
type Intent string

const (
	IntentLaw            Intent = "법률"
	IntentInfo           Intent = "정보"
	IntentStatus         Intent = "현황"
	IntentRecommendation Intent = "추천"
)

var intentBadges = map[Intent]string{
	IntentLaw:            "📚 법률 응답",
	IntentStatus:         "📊 현황 응답",
	IntentRecommendation: "🎯 추천 응답",
	IntentInfo:           "📘 웹툰 정보 응답",
}

// Known reports whether the intent is one of the labels the service emits.
func (i Intent) Known() bool {
	_, ok := intentBadges[i]
	return ok
}

// Badge returns the label shown above an answer, or "" for unknown intents.
func (i Intent) Badge() string {
	return intentBadges[i]
}

// =============================================================================
// REPLY
// =============================================================================

// ChunkPreviewLimit is the number of characters of a reference chunk shown
// before it is cut.
const ChunkPreviewLimit = 300

// Reply is a normalized answer from the ask service.
type Reply struct {
	Answer string   `json:"answer"`
	Intent Intent   `json:"intent,omitempty"`
	Chunks []string `json:"chunks,omitempty"`
}

// PreviewChunk cuts a reference chunk to limit characters and marks the cut
// with an ellipsis.
func PreviewChunk(chunk string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(chunk) <= limit {
		return chunk
	}
	runes := []rune(chunk)
	return string(runes[:limit]) + "…"
}
