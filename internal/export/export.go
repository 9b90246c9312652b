// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/toonchat/internal/model"
)

// ErrNilThread is returned when asked to export nothing.
var ErrNilThread = errors.New("thread is nil")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for thread exporters.
type Exporter interface {
	// Export converts a thread to the target format and returns the content.
	Export(th *model.Thread) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Formats lists the accepted format names.
var Formats = []string{"md", "json", "txt"}

// New returns the exporter for a format name.
func New(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "txt", "text":
		return NewTextExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use %s)", format, strings.Join(Formats, ", "))
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory ExportToFile writes into.
	// Default: current working directory
	OutputDir string

	// IncludeMetadata includes the header (thread id, update time, counts).
	IncludeMetadata bool

	// IncludeTimestamps includes per-message display times.
	IncludeTimestamps bool

	// IncludeChunks lists the reference chunks under bot answers.
	IncludeChunks bool

	// ChunkLimit cuts each chunk to this many characters (0 = no cut).
	ChunkLimit int

	// Now stamps the export; nil uses time.Now.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		IncludeChunks:     true,
		ChunkLimit:        model.ChunkPreviewLimit,
	}
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a thread into opts.OutputDir and returns the path of
// the written file. The name is built from the title and the export time.
func ExportToFile(th *model.Thread, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if th == nil {
		return "", ErrNilThread
	}

	content, err := exporter.Export(th)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("thread_%s_%s%s",
		sanitizeFilename(th.Title),
		opts.now().Format("20060102_150405"),
		exporter.FileExtension(),
	)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	runes := []rune(strings.TrimSuffix(s, "…"))
	if len(runes) > 50 {
		runes = runes[:50]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "thread"
	}
	return string(result)
}

// chunkLines returns the chunks of msg to list, cut to the configured limit.
func chunkLines(msg model.Message, opts *Options) []string {
	if !opts.IncludeChunks || msg.Role != model.RoleBot || len(msg.Chunks) == 0 {
		return nil
	}
	out := make([]string, 0, len(msg.Chunks))
	for _, c := range msg.Chunks {
		c = strings.Join(strings.Fields(c), " ")
		out = append(out, model.PreviewChunk(c, opts.ChunkLimit))
	}
	return out
}
