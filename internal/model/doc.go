// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for threads and messages.
//
// This package defines the domain types shared by the store, the ask client
// and the user interfaces.
//
// # Key Types
//
//   - Message: single chat line with role, text and an HH:MM display time
//   - Thread: persisted conversation (title, update time, messages)
//   - ThreadSummary: projection used for thread lists
//   - Reply: normalized answer returned by the remote service
//   - Intent: backend classification label shown as a badge
//
// # Usage
//
//	msgs := []model.Message{model.Greeting(time.Now())}
//	msgs = append(msgs, model.NewUserMessage("웹툰 추천해줘", time.Now()))
//	title, ok := model.SummarizeTitle(msgs)
package model
