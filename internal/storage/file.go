// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/toonchat/internal/util"
)

// FileBackend stores each key as <Dir>/<key>.json.
type FileBackend struct {
	Dir string
}

// NewFileBackend creates the directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("file backend: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("file backend: create %s: %w", dir, err)
	}
	return &FileBackend{Dir: dir}, nil
}

func (f *FileBackend) Name() string { return "file" }

// Path returns the file a key is stored in.
func (f *FileBackend) Path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoData
		}
		return nil, err
	}
	return data, nil
}

func (f *FileBackend) Set(_ context.Context, key string, data []byte) error {
	return util.AtomicWriteFile(f.Path(key), data, 0600)
}

func (f *FileBackend) Close() error { return nil }
