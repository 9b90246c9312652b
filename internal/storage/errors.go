// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoData is returned by a Backend when nothing is stored under a key.
	ErrNoData = errors.New("no data stored")

	// ErrThreadNotFound is returned when a thread id is not in the record.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrEmptyThread is returned when saving a thread without messages.
	ErrEmptyThread = errors.New("thread must contain at least one message")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// StoreError wraps a backend failure with the operation that hit it.
type StoreError struct {
	Op      string // store operation, e.g. "save"
	Backend string // backend name
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("storage %s (%s): %v", e.Op, e.Backend, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
