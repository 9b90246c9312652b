// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/util"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter exports threads as a plain transcript.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a new plain text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts a thread to plain text. Continuation lines of a message
// are indented under its header line.
func (e *TextExporter) Export(th *model.Thread) ([]byte, error) {
	if th == nil {
		return nil, ErrNilThread
	}

	var sb strings.Builder
	sb.WriteString(th.Title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", max(util.StringWidth(th.Title), 4)))
	sb.WriteString("\n")
	if e.options.IncludeMetadata {
		fmt.Fprintf(&sb, "thread %s, updated %s, %d messages\n",
			th.ID, th.Updated().Format(time.RFC3339), len(th.Messages))
	}
	sb.WriteString("\n")

	for _, msg := range th.Messages {
		var header strings.Builder
		if e.options.IncludeTimestamps && msg.Time != "" {
			fmt.Fprintf(&header, "[%s] ", msg.Time)
		}
		header.WriteString(msg.Role.DisplayName())
		if badge := msg.Intent.Badge(); badge != "" {
			fmt.Fprintf(&header, " (%s)", badge)
		}
		header.WriteString(": ")

		lines := strings.Split(strings.TrimSpace(msg.Text), "\n")
		sb.WriteString(header.String())
		sb.WriteString(lines[0])
		sb.WriteString("\n")
		for _, l := range lines[1:] {
			sb.WriteString("    ")
			sb.WriteString(l)
			sb.WriteString("\n")
		}
		for _, c := range chunkLines(msg, e.options) {
			sb.WriteString("    - ")
			sb.WriteString(c)
			sb.WriteString("\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
