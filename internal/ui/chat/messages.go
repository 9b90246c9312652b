// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/toonchat/internal/model"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// ReplyMsg carries a settled request back to the UI loop.
type ReplyMsg struct {
	ThreadID string
	Message  model.Message
	Err      error
}

// StoreChangedMsg reports that the thread record changed on disk.
type StoreChangedMsg struct{}

// waitForChange blocks until the watcher reports a change.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return StoreChangedMsg{}
	}
}
