// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides thread persistence for toonchat.
//
// All threads live in one JSON record stored under a single key, the same
// shape the web client keeps in localStorage:
//
//	{"<thread id>": {"title": "...", "updatedAt": 1700000000000, "msgs": [...]}}
//
// ThreadStore owns that record and exposes the thread operations; a Backend
// only moves the serialized bytes.
//
// # Backends
//
//   - FileBackend: one JSON file per key, replaced atomically (default)
//   - MemoryBackend: process-local map, used by tests
//   - SQLiteBackend: key/value table in a local SQLite database
//   - RedisBackend: plain string key in Redis
//   - DynamoBackend: one item per key in a DynamoDB table
//
// # Usage
//
//	backend, err := storage.Open(ctx, storage.Settings{Driver: "file", Path: dir})
//	store := storage.NewThreadStore(backend, storage.Options{})
//	id, err := store.CreateThread(ctx)
//	msgs := store.LoadMessages(ctx, id)
//
// # Corrupted data
//
// A record that cannot be decoded is treated as empty. Reads degrade to an
// empty list or a greeting, and the next write starts a fresh record.
package storage
