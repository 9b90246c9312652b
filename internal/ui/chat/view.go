// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/ui/styles"
	"github.com/jeranaias/toonchat/internal/util"
)

// View renders the chat screen.
func (m Model) View() string {
	if m.width == 0 {
		return "불러오는 중…"
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderTyping(),
		m.renderComposer(),
		m.renderStatus(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar() string {
	inner := m.opts.SidebarWidth - 2
	var b strings.Builder

	b.WriteString(m.theme.SidebarHeader.Render("toonchat"))
	b.WriteString("\n")
	b.WriteString(m.theme.SidebarShortcut.Render(util.TruncateWidth("+ 새 대화 (C-n)", inner)))
	b.WriteString("\n\n")

	for _, th := range m.threads {
		title := util.PadRight(util.TruncateWidth(th.Title, inner), inner)
		if th.ID == m.current {
			b.WriteString(m.theme.ThreadSelected.Render(title))
		} else {
			b.WriteString(m.theme.ThreadItem.Render(title))
		}
		b.WriteString("\n")

		if m.pending[th.ID] {
			b.WriteString(m.theme.ThreadAwaiting.Render("  응답 대기 중…"))
		} else {
			b.WriteString(m.theme.ThreadMeta.Render("  " + th.Updated().Format("01-02 15:04")))
		}
		b.WriteString("\n")
	}

	return m.theme.Sidebar.
		Width(m.opts.SidebarWidth).
		Height(max(m.height, 1)).
		Render(b.String())
}

// =============================================================================
// MESSAGE LOG
// =============================================================================

func (m Model) renderHeader() string {
	title := m.currentTitle()
	if m.mode == modeRename {
		return m.rename.View()
	}
	return m.theme.Prompt.Render(util.TruncateWidth(title, max(m.viewport.Width, 10)))
}

// renderMessages lays out the active thread for a log of the given width.
func (m Model) renderMessages(width int) string {
	bubbleWidth := max(width-4, 10)
	var b strings.Builder

	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessageHeader(msg))
		b.WriteString("\n")
		b.WriteString(m.bubbleStyle(msg).Width(bubbleWidth).Render(msg.Text))
		b.WriteString("\n")

		if m.opts.ShowChunks && msg.Role == model.RoleBot {
			for _, c := range msg.Chunks {
				c = strings.Join(strings.Fields(c), " ")
				line := "· " + model.PreviewChunk(c, m.opts.ChunkLimit)
				b.WriteString(m.theme.Chunk.Width(bubbleWidth).Render(line))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func (m Model) renderMessageHeader(msg model.Message) string {
	avatar := m.theme.UserAvatar.Render(msg.Role.Avatar())
	if msg.Role == model.RoleBot {
		avatar = m.theme.BotAvatar.Render(msg.Role.Avatar())
	}

	parts := []string{avatar, msg.Role.DisplayName(), m.theme.Time.Render(msg.Time)}
	if badge := msg.Intent.Badge(); badge != "" {
		parts = append(parts, m.theme.Badge(badge, styles.BadgeColor(msg.Intent)))
	}
	return strings.Join(parts, " ")
}

func (m Model) bubbleStyle(msg model.Message) lipgloss.Style {
	switch {
	case msg.Role == model.RoleUser:
		return m.theme.UserBubble
	case strings.HasPrefix(msg.Text, model.FailurePrefix):
		return m.theme.Failure
	default:
		return m.theme.BotBubble
	}
}

// =============================================================================
// COMPOSER AND STATUS
// =============================================================================

func (m Model) renderTyping() string {
	if !m.typingVisible() {
		return ""
	}
	return m.spinner.View() + " " + m.theme.Typing.Render("답변을 작성하고 있습니다…")
}

func (m Model) renderComposer() string {
	return m.theme.Composer.Render(m.input.View())
}

func (m Model) renderStatus() string {
	if m.status != "" {
		// Transport errors can span lines; the bar has one.
		return m.theme.StatusBar.Render(util.FirstLine(m.status))
	}

	help := m.keyMap.ShortHelp()
	parts := make([]string, 0, len(help))
	for _, k := range help {
		h := k.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	line := strings.Join(parts, "  ")
	return lipgloss.NewStyle().MaxWidth(max(m.viewport.Width, 10)).Render(line)
}
