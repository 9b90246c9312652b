// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TitleMaxChars is the number of characters kept from the first user message.
const TitleMaxChars = 18

// SummarizeTitle derives a thread title from the first user message.
// It returns false when there is no user message with visible text.
func SummarizeTitle(msgs []Message) (string, bool) {
	for _, m := range msgs {
		if m.Role != RoleUser {
			continue
		}
		text := strings.TrimSpace(norm.NFC.String(m.Text))
		if text == "" {
			return "", false
		}
		runes := []rune(text)
		if len(runes) > TitleMaxChars {
			return string(runes[:TitleMaxChars]) + "…", true
		}
		return text, true
	}
	return "", false
}
