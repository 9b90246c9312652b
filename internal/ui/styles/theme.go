// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the toonchat TUI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar         lipgloss.Style
	SidebarHeader   lipgloss.Style
	ThreadItem      lipgloss.Style
	ThreadSelected  lipgloss.Style
	ThreadMeta      lipgloss.Style
	ThreadAwaiting  lipgloss.Style
	SidebarShortcut lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserAvatar lipgloss.Style
	BotAvatar  lipgloss.Style
	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
	Failure    lipgloss.Style
	Time       lipgloss.Style
	Chunk      lipgloss.Style

	// ==========================================================================
	// COMPOSER AND STATUS STYLES
	// ==========================================================================

	Composer     lipgloss.Style
	Spinner      lipgloss.Style
	Typing       lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Prompt       lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: profile,
	}

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		Background(SidebarBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarHeader = lipgloss.NewStyle().Foreground(Brand).Bold(true).MarginBottom(1)
	t.ThreadItem = lipgloss.NewStyle().Foreground(TextSecondary)
	t.ThreadSelected = lipgloss.NewStyle().Foreground(TextPrimary).Background(BrandDeep).Bold(true)
	t.ThreadMeta = lipgloss.NewStyle().Foreground(TextMuted)
	t.ThreadAwaiting = lipgloss.NewStyle().Foreground(Brand)
	t.SidebarShortcut = lipgloss.NewStyle().Foreground(TextMuted)

	// Messages
	t.UserAvatar = lipgloss.NewStyle().Foreground(Surface).Background(BadgeInfo).Bold(true).Padding(0, 1)
	t.BotAvatar = lipgloss.NewStyle().Foreground(Surface).Background(Brand).Bold(true).Padding(0, 1)
	t.UserBubble = lipgloss.NewStyle().Foreground(UserBubbleFg).Background(UserBubbleBg).Padding(0, 1)
	t.BotBubble = lipgloss.NewStyle().Foreground(BotBubbleFg).Background(BotBubbleBg).Padding(0, 1)
	t.Failure = lipgloss.NewStyle().Foreground(FailureFg).Background(BotBubbleBg).Padding(0, 1)
	t.Time = lipgloss.NewStyle().Foreground(TextMuted)
	t.Chunk = lipgloss.NewStyle().Foreground(TextMuted).Italic(true).PaddingLeft(2)

	// Composer and status
	t.Composer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)
	t.Spinner = lipgloss.NewStyle().Foreground(Brand)
	t.Typing = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.StatusBar = lipgloss.NewStyle().Foreground(TextSecondary)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Brand).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
	t.Prompt = lipgloss.NewStyle().Foreground(Brand).Bold(true)

	return t
}

// Badge renders an intent badge label in its color.
func (t *Theme) Badge(label string, color lipgloss.AdaptiveColor) string {
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(label)
}
