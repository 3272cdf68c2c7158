// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/realty-tui/internal/chart"
	"github.com/jeranaias/realty-tui/internal/table"
)

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind identifies who produced a message.
type Kind string

const (
	KindUser  Kind = "user"
	KindBot   Kind = "bot"
	KindError Kind = "error"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// DisplayName returns a human-readable name for the kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindUser:
		return "You"
	case KindBot:
		return "Analyst"
	case KindError:
		return "Error"
	default:
		return string(k)
	}
}

// =============================================================================
// BOT CONTENT
// =============================================================================

// BotContent is an analysis response body, kept as the service sent it.
type BotContent struct {
	Summary    string         `json:"summary,omitempty"`
	Chart      *chart.Payload `json:"chart_data,omitempty"`
	Table      []table.Row    `json:"table_data,omitempty"`
	Localities []string       `json:"localities,omitempty"`

	// Error is set when the service answered 2xx but could not analyse the
	// query (for example an unknown locality).
	Error string `json:"error,omitempty"`

	// Raw is the undecoded body.
	Raw json.RawMessage `json:"-"`
}

// botContentWire is the response body with every field left undecoded so
// that one malformed field does not fail the others.
type botContentWire struct {
	Summary    json.RawMessage `json:"summary"`
	Chart      json.RawMessage `json:"chart_data"`
	Table      json.RawMessage `json:"table_data"`
	Localities json.RawMessage `json:"localities"`
	Error      json.RawMessage `json:"error"`
}

// UnmarshalJSON decodes a response body. It fails only when the body is not
// a JSON object; a field of the wrong shape is logged and left empty.
func (b *BotContent) UnmarshalJSON(data []byte) error {
	var wire botContentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*b = BotContent{
		Summary:    decodeField[string]("summary", wire.Summary),
		Error:      decodeField[string]("error", wire.Error),
		Localities: decodeField[[]string]("localities", wire.Localities),
		Table:      decodeField[[]table.Row]("table_data", wire.Table),
	}
	if len(wire.Chart) > 0 && !bytes.Equal(wire.Chart, []byte("null")) {
		p := decodeField[chart.Payload]("chart_data", wire.Chart)
		b.Chart = &p
	}
	return nil
}

// decodeField decodes raw into a T, or returns the zero T when raw is
// missing or has the wrong shape.
func decodeField[T any](name string, raw json.RawMessage) T {
	var v T
	if len(raw) == 0 {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Debug("response field ignored", "field", name, "err", err)
		var zero T
		return zero
	}
	return v
}

// MarshalJSON writes the body as the service sent it when it was kept,
// otherwise the decoded fields.
func (b BotContent) MarshalJSON() ([]byte, error) {
	if len(b.Raw) > 0 && json.Valid(b.Raw) {
		return b.Raw, nil
	}
	type plain BotContent
	return json.Marshal(plain(b))
}

// ChartConfig maps the chart payload, or returns nil when there is none.
func (b *BotContent) ChartConfig() *chart.Config {
	if b == nil {
		return nil
	}
	return chart.Map(b.Chart)
}

// HasTable reports whether there are rows to render.
func (b *BotContent) HasTable() bool {
	return b != nil && len(b.Table) > 0
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry of a conversation. Messages are not modified after
// they are appended.
type Message struct {
	ID        string      `json:"id"`
	Kind      Kind        `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`
	Text      string      `json:"text,omitempty"`
	Bot       *BotContent `json:"bot,omitempty"`
}

// NewUserMessage creates a user message.
func NewUserMessage(text string) Message {
	return newMessage(KindUser, text, nil)
}

// NewBotMessage creates a bot message carrying content.
func NewBotMessage(content *BotContent) Message {
	if content == nil {
		content = &BotContent{}
	}
	return newMessage(KindBot, content.Summary, content)
}

// NewErrorMessage creates an error message.
func NewErrorMessage(text string) Message {
	return newMessage(KindError, text, nil)
}

func newMessage(kind Kind, text string, bot *BotContent) Message {
	return Message{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: time.Now(),
		Text:      text,
		Bot:       bot,
	}
}

// Preview returns a truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
