// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives a single chat exchange from user input to a
// persisted reply.
//
// # Key Types
//
//   - Controller: per-thread Idle/Awaiting state machine
//   - Turn: a submitted question waiting for its reply
//   - Asker: the remote question answering service
//
// # Usage
//
//	ctrl := session.NewController(store, client, session.Options{})
//	turn, err := ctrl.Submit(ctx, threadID, input)
//	if err != nil {
//	    return err // ErrEmptyInput or ErrBusy
//	}
//	msg, err := ctrl.Resolve(ctx, turn)
//
// Submit and Resolve are split so an interface can render the user message
// before the request settles. A reply is always written to the thread the
// question was asked in, even if the user switched threads meanwhile.
package session
