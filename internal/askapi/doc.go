// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package askapi provides the HTTP client for the webtoon question-answering
// service.
//
// The service exposes two endpoints:
//
//	POST /ask     {"question": "...", "session_id": "..."}
//	              -> {"answer": "...", "intent": "추천", "chunks": ["..."]}
//	GET  /health  -> {"status": "ok", "time": "..."}
//
// Answers are read from "answer", then "result", then "message"; a reply
// with none of them becomes a fixed placeholder. Failures are returned as
// *ClientError and turned into display text with FormatError.
//
// # Usage
//
//	client := askapi.NewClientWithConfig(&askapi.ClientConfig{BaseURL: "http://127.0.0.1:8083"})
//	reply, err := client.Ask(ctx, "요즘 인기 웹툰 알려줘", threadID)
//	if err != nil {
//	    text := model.FailurePrefix + askapi.FormatError(err)
//	}
package askapi
