// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the toonchat TUI.

All colors use Lip Gloss AdaptiveColor so the same palette works on light and
dark terminals. The theme mode can be forced from the configuration ("dark",
"light") or left to terminal detection ("auto").

# Color System (colors.go)

  - Brand - sidebar selection, focus rings and the spinner
  - UserBubble* / BotBubble* - message bubble tones
  - Badge colors per answer intent (law, info, status, recommendation)
  - Text and surface tones for secondary content

# Theme (theme.go)

	theme := styles.NewTheme("auto")
	s := theme.UserBubble.Render(text)
*/
package styles
