// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/toonchat/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports threads to JSON. The document always carries every
// message with its intent and chunks; only the metadata fields follow the
// options.
type JSONExporter struct {
	options *Options
}

type jsonThread struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	UpdatedAt int64           `json:"updatedAt"`
	Updated   string          `json:"updated,omitempty"`
	Exported  string          `json:"exported,omitempty"`
	Messages  []model.Message `json:"msgs"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a thread to indented JSON.
func (e *JSONExporter) Export(th *model.Thread) ([]byte, error) {
	if th == nil {
		return nil, ErrNilThread
	}

	doc := jsonThread{
		ID:        th.ID,
		Title:     th.Title,
		UpdatedAt: th.UpdatedAt,
		Messages:  th.Messages,
	}
	if doc.Messages == nil {
		doc.Messages = []model.Message{}
	}
	if e.options.IncludeMetadata {
		doc.Updated = th.Updated().Format(time.RFC3339)
		doc.Exported = e.options.now().Format(time.RFC3339)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
