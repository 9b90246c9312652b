// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat screen for toonchat.
//
// The screen has a thread sidebar, the message log of the active thread and
// a composer. Questions go through a session.Controller; its Resolve call
// runs inside a tea.Cmd so the screen stays responsive while a thread is
// awaiting its reply, and the reply is applied to the thread it was asked
// in even if the user has switched away.
//
// # Key Bindings
//
//   - Enter: send, Alt+Enter: newline
//   - Ctrl+N: new thread, Ctrl+R: rename, Ctrl+D: delete
//   - Tab / Shift+Tab: next / previous thread
//   - Ctrl+Y: copy the last bot message
//   - Esc: hide the typing indicator, Ctrl+C: quit
package chat
