// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/ui/styles"
)

// init configures lipgloss for piped output and NO_COLOR.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Brand)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(12)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.WarningColor)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Brand).
			Bold(true)

	UserStyle = lipgloss.NewStyle().
			Foreground(styles.BadgeInfo).
			Bold(true)

	BotStyle = lipgloss.NewStyle().
			Foreground(styles.Brand).
			Bold(true)
)

// =============================================================================
// RENDER HELPERS
// =============================================================================

// RenderSeparator renders a horizontal rule.
func RenderSeparator(width int) string {
	if width <= 0 {
		width = 40
	}
	return DimStyle.Render(strings.Repeat("─", width))
}

// RenderStatus renders a bracketed status tag.
func RenderStatus(ok bool) string {
	if ok {
		return SuccessStyle.Render("[OK]")
	}
	return ErrorStyle.Render("[FAIL]")
}

// RenderLabel renders a fixed-width field label.
func RenderLabel(label string) string {
	return LabelStyle.Render(label)
}

// RenderSpeaker renders the speaker column of a transcript line.
func RenderSpeaker(role model.Role) string {
	if role == model.RoleUser {
		return UserStyle.Render(role.DisplayName())
	}
	return BotStyle.Render(role.DisplayName())
}

// RenderBadge renders an intent badge, or "" when the intent has none.
func RenderBadge(i model.Intent) string {
	if !i.Known() {
		// Labels added on the server after this build are shown raw.
		if i == "" {
			return ""
		}
		return DimStyle.Render("[" + string(i) + "]")
	}
	return lipgloss.NewStyle().Foreground(styles.BadgeColor(i)).Render(i.Badge())
}
