// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/session"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case StoreChangedMsg:
		m.reload()
		return m, waitForChange(m.opts.Changes)

	case spinner.TickMsg:
		if len(m.pending) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	mainWidth := max(m.width-m.opts.SidebarWidth-1, 20)
	// header + typing line + composer (3 lines + border) + status bar
	vpHeight := max(m.height-1-1-5-1, 3)

	m.viewport.Width = mainWidth
	m.viewport.Height = vpHeight
	m.input.SetWidth(mainWidth - 2)
	m.rename.Width = mainWidth - 8
	m.refreshViewport()
	return m, nil
}

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	delete(m.pending, msg.ThreadID)
	delete(m.hidden, msg.ThreadID)

	switch {
	case errors.Is(msg.Err, session.ErrThreadGone):
		m.status = "삭제된 대화의 응답은 저장하지 않았습니다"
	case msg.Err != nil:
		m.err = msg.Err
		m.status = "저장 실패: " + msg.Err.Error()
		m.log.Error().Err(msg.Err).Str("thread", msg.ThreadID).Msg("failed to store reply")
	default:
		m.err = nil
	}

	m.reload()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	switch m.mode {
	case modeRename:
		return m.handleRenameKey(msg)
	case modeConfirmDelete:
		return m.handleDeleteKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Send):
		return m.send()

	case key.Matches(msg, m.keyMap.NewThread):
		return m.newThread()

	case key.Matches(msg, m.keyMap.Rename):
		m.mode = modeRename
		m.rename.SetValue(m.currentTitle())
		m.rename.CursorEnd()
		m.input.Blur()
		cmd := m.rename.Focus()
		return m, cmd

	case key.Matches(msg, m.keyMap.Delete):
		m.mode = modeConfirmDelete
		m.status = "이 대화를 삭제할까요? (y/n)"
		return m, nil

	case key.Matches(msg, m.keyMap.NextThread):
		return m.cycle(1)

	case key.Matches(msg, m.keyMap.PrevThread):
		return m.cycle(-1)

	case key.Matches(msg, m.keyMap.Copy):
		return m.copyLastReply()

	case key.Matches(msg, m.keyMap.Stop):
		if m.pending[m.current] {
			m.hidden[m.current] = true
			m.status = "표시를 중지했습니다. 응답이 도착하면 대화에 추가됩니다"
		}
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		title := m.rename.Value()
		m.leaveMode()
		if err := m.store.RenameThread(m.ctx, m.current, title); err != nil {
			m.status = "이름 변경 실패: " + err.Error()
			return m, nil
		}
		m.status = ""
		m.reload()
		return m, nil
	case tea.KeyEsc:
		m.leaveMode()
		return m, nil
	}

	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.leaveMode()
	if !strings.EqualFold(msg.String(), "y") {
		m.status = ""
		return m, nil
	}
	return m.deleteCurrent()
}

func (m *Model) leaveMode() {
	m.mode = modeCompose
	m.rename.Blur()
	m.rename.Reset()
	m.input.Focus()
}

// =============================================================================
// ACTIONS
// =============================================================================

// send submits the composer text. The reply is resolved in a command so the
// loop keeps running; it arrives as a ReplyMsg for the request-time thread.
func (m Model) send() (tea.Model, tea.Cmd) {
	turn, err := m.ctrl.Submit(m.ctx, m.current, m.input.Value())
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		return m, nil
	case errors.Is(err, session.ErrBusy):
		m.status = "이전 질문의 답변을 기다리는 중입니다"
		return m, nil
	case err != nil:
		m.status = "전송 실패: " + err.Error()
		return m, nil
	}

	// One tick chain drives the spinner for every pending thread.
	var tick tea.Cmd
	if len(m.pending) == 0 {
		tick = m.spinner.Tick
	}

	m.input.Reset()
	m.status = ""
	m.pending[turn.ThreadID] = true
	delete(m.hidden, turn.ThreadID)
	m.reload()

	return m, tea.Batch(m.resolve(turn), tick)
}

func (m Model) resolve(turn *session.Turn) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		msg, err := ctrl.Resolve(ctx, turn)
		return ReplyMsg{ThreadID: turn.ThreadID, Message: msg, Err: err}
	}
}

func (m Model) newThread() (tea.Model, tea.Cmd) {
	id, err := m.store.CreateThread(m.ctx)
	if err != nil {
		m.status = "새 대화 생성 실패: " + err.Error()
		return m, nil
	}
	m.switchTo(id)
	return m, nil
}

// deleteCurrent removes the active thread and selects the thread that took
// its place in the list, or a fresh thread when none remain.
func (m Model) deleteCurrent() (tea.Model, tea.Cmd) {
	idx := m.threadIndex(m.current)
	if err := m.store.DeleteThread(m.ctx, m.current); err != nil {
		m.status = "삭제 실패: " + err.Error()
		return m, nil
	}
	delete(m.hidden, m.current)

	remaining := m.store.ListThreads(m.ctx)
	if len(remaining) == 0 {
		return m.newThread()
	}
	if idx < 0 || idx >= len(remaining) {
		idx = len(remaining) - 1
	}
	m.status = "대화를 삭제했습니다"
	m.switchTo(remaining[idx].ID)
	return m, nil
}

func (m Model) cycle(step int) (tea.Model, tea.Cmd) {
	if len(m.threads) < 2 {
		return m, nil
	}
	idx := m.threadIndex(m.current)
	if idx < 0 {
		idx = 0
	} else {
		idx = (idx + step + len(m.threads)) % len(m.threads)
	}
	m.switchTo(m.threads[idx].ID)
	return m, nil
}

func (m *Model) switchTo(id string) {
	m.current = id
	m.input.Reset()
	m.reload()
}

func (m Model) copyLastReply() (tea.Model, tea.Cmd) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.Role != model.RoleBot {
			continue
		}
		if err := m.opts.Copy(msg.Text); err != nil {
			m.status = "복사 실패: " + err.Error()
			return m, nil
		}
		m.status = "답변을 복사했습니다"
		return m, nil
	}
	m.status = "복사할 답변이 없습니다"
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (m Model) threadIndex(id string) int {
	for i, th := range m.threads {
		if th.ID == id {
			return i
		}
	}
	return -1
}

func (m Model) currentTitle() string {
	if i := m.threadIndex(m.current); i >= 0 {
		return m.threads[i].Title
	}
	return model.DefaultTitle
}
