// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/toonchat/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports threads to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a thread to Markdown format.
func (e *MarkdownExporter) Export(th *model.Thread) ([]byte, error) {
	if th == nil {
		return nil, ErrNilThread
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(th.Title))
		fmt.Fprintf(&sb, "thread: %s\n", th.ID)
		fmt.Fprintf(&sb, "updated: %s\n", th.Updated().Format(time.RFC3339))
		fmt.Fprintf(&sb, "messages: %d\n", len(th.Messages))
		fmt.Fprintf(&sb, "exported: %s\n", e.options.now().Format(time.RFC3339))
		sb.WriteString("generator: toonchat\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(th.Title))

	for i, msg := range th.Messages {
		label := msg.Role.DisplayName()
		if e.options.IncludeTimestamps && msg.Time != "" {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, msg.Time)
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		if badge := msg.Intent.Badge(); badge != "" {
			fmt.Fprintf(&sb, "> %s\n\n", badge)
		}

		sb.WriteString(strings.TrimSpace(msg.Text))
		sb.WriteString("\n\n")

		if chunks := chunkLines(msg, e.options); len(chunks) > 0 {
			fmt.Fprintf(&sb, "<details>\n<summary>참고 자료 (%d)</summary>\n\n", len(chunks))
			for _, c := range chunks {
				fmt.Fprintf(&sb, "- %s\n", c)
			}
			sb.WriteString("\n</details>\n\n")
		}

		if i < len(th.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break a heading.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes a frontmatter value when it holds special characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return "\"" + s + "\""
	}
	return s
}
