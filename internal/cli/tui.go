// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/toonchat/internal/ui/chat"
	"github.com/jeranaias/toonchat/internal/ui/styles"
)

// RunTUI starts the full-screen chat.
func RunTUI(ctx context.Context, a *App, args Args) error {
	if err := RequiresTTY("start the TUI"); err != nil {
		return err
	}

	opts := chat.Options{
		ThreadID:     args.Thread,
		ShowChunks:   a.Config.UI.ShowChunks,
		ChunkLimit:   a.Config.UI.ChunkLimit,
		SidebarWidth: a.Config.UI.SidebarWidth,
		Logger:       a.Log.With().Str("component", "tui").Logger(),
	}

	// Another toonchat process writing the same file shows up in the list.
	w, err := a.Watch()
	if err != nil {
		a.Log.Warn().Err(err).Msg("store watcher unavailable")
	} else if w != nil {
		opts.Changes = w.Changes()
	}

	m, err := chat.New(ctx, a.Store, a.Ctrl, styles.NewTheme(a.Config.UI.Theme), opts)
	if err != nil {
		return NewCommandError("tui", "start", "could not open a thread", err)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return NewCommandError("tui", "run", "terminal error", err)
	}
	return nil
}
