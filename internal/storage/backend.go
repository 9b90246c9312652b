// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"strings"
)

// Backend stores opaque blobs by key.
type Backend interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// Get returns the blob stored under key, or ErrNoData.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the blob stored under key.
	Set(ctx context.Context, key string, data []byte) error

	// Close releases connections and handles.
	Close() error
}

// Settings selects and configures a backend.
type Settings struct {
	Driver string // file, memory, sqlite, redis, dynamodb

	// file: directory holding <key>.json; sqlite: database file path
	Path string

	RedisURL    string
	RedisPrefix string

	DynamoTable    string
	DynamoRegion   string
	DynamoEndpoint string
}

// Open builds the backend named by s.Driver.
func Open(ctx context.Context, s Settings) (Backend, error) {
	switch strings.ToLower(s.Driver) {
	case "", "file":
		return NewFileBackend(s.Path)
	case "memory":
		return NewMemoryBackend(), nil
	case "sqlite":
		return OpenSQLiteBackend(s.Path)
	case "redis":
		return OpenRedisBackend(ctx, s.RedisURL, s.RedisPrefix)
	case "dynamodb":
		return OpenDynamoBackend(ctx, s.DynamoRegion, s.DynamoEndpoint, s.DynamoTable)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, s.Driver)
	}
}
