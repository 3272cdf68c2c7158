// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/realty-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports conversations to JSON. Bot messages carry the
// service's response body unchanged under "response".
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	return &JSONExporter{options: opts.withDefaults()}
}

type jsonTranscript struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	Messages  []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	ID        string          `json:"id"`
	Kind      model.Kind      `json:"kind"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
	Text      string          `json:"text,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
}

// Export converts a conversation to JSON format.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if conv.IsEmpty() {
		return nil, ErrEmptyConversation
	}

	out := jsonTranscript{
		ID:        conv.ID,
		Title:     conv.Title(),
		CreatedAt: conv.CreatedAt,
	}
	for _, msg := range conv.Messages() {
		jm := jsonMessage{ID: msg.ID, Kind: msg.Kind}
		if e.options.IncludeTimestamps {
			ts := msg.Timestamp
			jm.Timestamp = &ts
		}
		if msg.Kind == model.KindBot && msg.Bot != nil {
			raw, err := botJSON(msg.Bot)
			if err != nil {
				return nil, err
			}
			jm.Response = raw
		} else {
			jm.Text = msg.Text
		}
		out.Messages = append(out.Messages, jm)
	}

	return json.MarshalIndent(out, "", "  ")
}

// botJSON returns the undecoded body when it is valid JSON, else re-encodes.
func botJSON(b *model.BotContent) (json.RawMessage, error) {
	if len(b.Raw) > 0 && json.Valid(b.Raw) {
		return b.Raw, nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return raw, nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
