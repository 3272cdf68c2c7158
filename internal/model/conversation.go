// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FallbackErrorText is shown when a failed request carries no server message.
const FallbackErrorText = "An error occurred while processing your query."

// UserFacingError is implemented by errors that carry text meant for the
// conversation.
type UserFacingError interface {
	error
	UserMessage() string
}

// ErrorText returns the conversation text for a failed request.
func ErrorText(err error) string {
	var uf UserFacingError
	if errors.As(err, &uf) {
		if msg := uf.UserMessage(); msg != "" {
			return msg
		}
	}
	return FallbackErrorText
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the in-memory state of one chat: the message history, the
// input draft and whether a request is in flight. It is owned by a single
// event loop and is not safe for concurrent use.
type Conversation struct {
	ID        string
	CreatedAt time.Time

	messages []Message
	draft    string
	loading  bool
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		messages:  make([]Message, 0),
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Append adds msg to the end of the history.
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
}

// SetLoading sets the in-flight flag.
func (c *Conversation) SetLoading(loading bool) {
	c.loading = loading
}

// SetDraft replaces the input draft.
func (c *Conversation) SetDraft(draft string) {
	c.draft = draft
}

// Submit starts a request for the current draft. It returns the draft as
// typed and true, having appended the user message, set loading and cleared
// the draft. It returns false and changes nothing when the draft is blank or
// a request is already in flight.
func (c *Conversation) Submit() (string, bool) {
	if c.loading {
		return "", false
	}
	if strings.TrimSpace(c.draft) == "" {
		return "", false
	}
	query := c.draft

	c.Append(NewUserMessage(query))
	c.loading = true
	c.draft = ""
	return query, true
}

// ParseInput classifies a line typed at a chat prompt. A line whose first
// non-blank character is "/" is a slash command and is returned trimmed.
// A leading "//" sends the line as a query with one slash removed.
func ParseInput(line string) (text string, command bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return line, false
	}
	if strings.HasPrefix(trimmed, "//") {
		i := strings.Index(line, "/")
		return line[:i] + line[i+1:], false
	}
	return trimmed, true
}

// Resolve settles the in-flight request: content becomes a bot message, or
// err becomes an error message. Loading is cleared either way.
func (c *Conversation) Resolve(content *BotContent, err error) Message {
	var msg Message
	if err != nil {
		msg = NewErrorMessage(ErrorText(err))
	} else {
		msg = NewBotMessage(content)
	}
	c.Append(msg)
	c.loading = false
	return msg
}

// Clear drops the history and draft. A request in flight stays in flight.
func (c *Conversation) Clear() {
	c.messages = make([]Message, 0)
	c.draft = ""
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a copy of the history in arrival order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// Draft returns the input draft.
func (c *Conversation) Draft() string {
	return c.draft
}

// Loading reports whether a request is in flight.
func (c *Conversation) Loading() bool {
	return c.loading
}

// Last returns the most recent message.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// LastBot returns the most recent bot message.
func (c *Conversation) LastBot() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Kind == KindBot {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// LastChart returns the most recent bot message that has a chart to draw.
func (c *Conversation) LastChart() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		m := c.messages[i]
		if m.Kind == KindBot && m.Bot.ChartConfig() != nil {
			return m, true
		}
	}
	return Message{}, false
}

// Title returns a title derived from the first user message.
func (c *Conversation) Title() string {
	for _, m := range c.messages {
		if m.Kind == KindUser {
			return m.Preview(50)
		}
	}
	return "New Conversation"
}
