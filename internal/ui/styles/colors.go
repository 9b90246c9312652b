// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the toonchat TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toonchat/internal/model"
)

// =============================================================================
// BRAND COLORS
// =============================================================================

// Brand - Primary accent, selection and focus
var Brand = lipgloss.AdaptiveColor{Light: "#10A37F", Dark: "#19C37D"}

// BrandDeep - Darker brand tone for selected backgrounds
var BrandDeep = lipgloss.AdaptiveColor{Light: "#D1F5E8", Dark: "#0B4F3C"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#212121"}

// SidebarBg - Thread list background
var SidebarBg = lipgloss.AdaptiveColor{Light: "#F7F7F8", Dark: "#171717"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#3F3F46"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#ECECEC"}

// TextSecondary - Labels, thread titles that are not selected
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#B4B4B4"}

// TextMuted - Times, hints, reference chunks
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#7A7A7A"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#E8F0FE", Dark: "#2F2F2F"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E3A8A", Dark: "#ECECEC"}

// Bot message bubble
var BotBubbleBg = lipgloss.AdaptiveColor{Light: "#F4F4F5", Dark: "#262626"}
var BotBubbleFg = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#E5E5E5"}

// Failure notices (bot messages that start with the failure prefix)
var FailureFg = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}

// =============================================================================
// INTENT BADGE COLORS
// =============================================================================

var (
	BadgeLaw            = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	BadgeInfo           = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}
	BadgeStatus         = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	BadgeRecommendation = lipgloss.AdaptiveColor{Light: "#DB2777", Dark: "#F472B6"}
)

// BadgeColor returns the color of an intent badge. Unknown intents use the
// muted text color.
func BadgeColor(i model.Intent) lipgloss.AdaptiveColor {
	switch i {
	case model.IntentLaw:
		return BadgeLaw
	case model.IntentInfo:
		return BadgeInfo
	case model.IntentStatus:
		return BadgeStatus
	case model.IntentRecommendation:
		return BadgeRecommendation
	default:
		return TextMuted
	}
}

// =============================================================================
// STATUS COLORS
// =============================================================================

var (
	SuccessColor = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#22C55E"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}
)

// StatusIndicators are ASCII shapes shown next to status colors so the
// state reads without color.
var StatusIndicators = struct {
	Success string
	Error   string
	Warning string
}{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
}

// RenderSuccess renders a success message with its indicator.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(SuccessColor).Bold(true).
		Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with its indicator.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(ErrorColor).Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with its indicator.
func RenderWarning(message string) string {
	return lipgloss.NewStyle().Foreground(WarningColor).Bold(true).
		Render(StatusIndicators.Warning + " " + message)
}
