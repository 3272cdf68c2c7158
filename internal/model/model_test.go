// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverError struct{ msg string }

func (e serverError) Error() string       { return "request failed: " + e.msg }
func (e serverError) UserMessage() string { return e.msg }

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_AppendsOneUserMessagePerQuery(t *testing.T) {
	conv := NewConversation()
	queries := []string{"Give me analysis of Wakad", "Compare Aundh and Akurdi", "Show price growth"}

	for _, q := range queries {
		conv.SetDraft(q)
		got, ok := conv.Submit()
		require.True(t, ok)
		assert.Equal(t, q, got)
		assert.True(t, conv.Loading())
		assert.Equal(t, "", conv.Draft(), "draft is cleared immediately")
		conv.Resolve(&BotContent{Summary: "ok"}, nil)
	}

	var users []string
	for _, m := range conv.Messages() {
		if m.Kind == KindUser {
			users = append(users, m.Text)
		}
	}
	assert.Equal(t, queries, users)
}

func TestSubmit_BlankDraftIsNoop(t *testing.T) {
	for _, draft := range []string{"", " ", "\t\n  "} {
		t.Run(fmt.Sprintf("%q", draft), func(t *testing.T) {
			conv := NewConversation()
			conv.SetDraft(draft)
			_, ok := conv.Submit()
			assert.False(t, ok)
			assert.True(t, conv.IsEmpty())
			assert.False(t, conv.Loading())
		})
	}
}

func TestSubmit_RefusedWhileLoading(t *testing.T) {
	conv := NewConversation()
	conv.SetDraft("first")
	_, ok := conv.Submit()
	require.True(t, ok)

	conv.SetDraft("second")
	_, ok = conv.Submit()
	assert.False(t, ok)
	assert.Equal(t, 1, conv.Len())
	assert.Equal(t, "second", conv.Draft(), "refused draft is kept")
}

func TestSubmit_KeepsDraftAsTyped(t *testing.T) {
	conv := NewConversation()
	conv.SetDraft("  Give me analysis of Wakad  ")
	q, ok := conv.Submit()
	require.True(t, ok)
	assert.Equal(t, "  Give me analysis of Wakad  ", q)
	assert.Equal(t, "  Give me analysis of Wakad  ", conv.Messages()[0].Text)
	assert.Equal(t, "", conv.Draft())
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		line    string
		text    string
		command bool
	}{
		{"Compare Aundh and Wakad", "Compare Aundh and Wakad", false},
		{"/help", "/help", true},
		{"  /sample 2  ", "/sample 2", true},
		{"//etc is a path", "/etc is a path", false},
		{"  //x", "  /x", false},
		{"price per sq/ft", "price per sq/ft", false},
	}
	for _, tc := range tests {
		text, command := ParseInput(tc.line)
		assert.Equal(t, tc.text, text, tc.line)
		assert.Equal(t, tc.command, command, tc.line)
	}
}

// =============================================================================
// RESOLVE TESTS
// =============================================================================

func TestResolve_Success(t *testing.T) {
	conv := NewConversation()
	conv.SetDraft("q")
	conv.Submit()

	msg := conv.Resolve(&BotContent{Summary: "S"}, nil)
	assert.Equal(t, KindBot, msg.Kind)
	assert.Equal(t, "S", msg.Text)
	assert.Nil(t, msg.Bot.ChartConfig())
	assert.False(t, msg.Bot.HasTable())
	assert.False(t, conv.Loading())
	assert.Equal(t, 2, conv.Len())
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", serverError{"bad query"}, "bad query"},
		{"wrapped server message", fmt.Errorf("analyze: %w", serverError{"bad query"}), "bad query"},
		{"empty server message", serverError{""}, FallbackErrorText},
		{"plain error", errors.New("connection refused"), FallbackErrorText},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conv := NewConversation()
			conv.SetDraft("q")
			conv.Submit()

			msg := conv.Resolve(nil, tc.err)
			assert.Equal(t, KindError, msg.Kind)
			assert.Equal(t, tc.want, msg.Text)
			assert.False(t, conv.Loading())

			// conversation keeps working after a failure
			conv.SetDraft("again")
			_, ok := conv.Submit()
			assert.True(t, ok)
		})
	}
}

func TestResolve_NilContent(t *testing.T) {
	conv := NewConversation()
	msg := conv.Resolve(nil, nil)
	assert.Equal(t, KindBot, msg.Kind)
	require.NotNil(t, msg.Bot)
}

// =============================================================================
// ACCESSOR TESTS
// =============================================================================

func TestMessages_ReturnsCopy(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("a"))
	msgs := conv.Messages()
	msgs[0].Text = "changed"
	assert.Equal(t, "a", conv.Messages()[0].Text)
}

func TestLastChart(t *testing.T) {
	conv := NewConversation()
	_, ok := conv.LastChart()
	assert.False(t, ok)

	var withChart BotContent
	require.NoError(t, json.Unmarshal([]byte(`{"summary":"x","chart_data":{"type":"price_trend","data":[{"year":2020,"avg_flat_rate":1}]}}`), &withChart))
	conv.Append(NewBotMessage(&withChart))
	conv.Append(NewBotMessage(&BotContent{Summary: "no chart"}))
	conv.Append(NewErrorMessage("boom"))

	msg, ok := conv.LastChart()
	require.True(t, ok)
	assert.Equal(t, "x", msg.Text)

	last, ok := conv.LastBot()
	require.True(t, ok)
	assert.Equal(t, "no chart", last.Text)
}

func TestClearAndTitle(t *testing.T) {
	conv := NewConversation()
	assert.Equal(t, "New Conversation", conv.Title())
	conv.Append(NewUserMessage("Give me analysis of Wakad"))
	assert.Equal(t, "Give me analysis of Wakad", conv.Title())

	conv.SetDraft("draft")
	conv.Clear()
	assert.True(t, conv.IsEmpty())
	assert.Equal(t, "", conv.Draft())
}

func TestMessage_Preview(t *testing.T) {
	m := NewUserMessage("Compare Ambegaon Budruk and Aundh")
	assert.Equal(t, "Compare...", m.Preview(10))
	assert.Equal(t, m.Text, m.Preview(100))
}

func TestBotContent_ToleratesMalformedFields(t *testing.T) {
	var bc BotContent
	require.NoError(t, json.Unmarshal([]byte(`{"summary":"S","table_data":{"year":2020},"localities":"Wakad"}`), &bc))
	assert.Equal(t, "S", bc.Summary)
	assert.False(t, bc.HasTable())
	assert.Nil(t, bc.Localities)

	assert.Error(t, json.Unmarshal([]byte(`["not","an","object"]`), &bc))
}

func TestBotContent_EncodesRawBody(t *testing.T) {
	body := `{"summary":"S","table_data":[{"year":2020,"total_units":5678.5}]}`
	var bc BotContent
	require.NoError(t, json.Unmarshal([]byte(body), &bc))
	bc.Raw = json.RawMessage(body)

	out, err := json.Marshal(&bc)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out))

	bc.Raw = nil
	out, err = json.Marshal(bc)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(out), "decoded rows keep their numbers")
}

func TestBotContent_DecodesServiceBody(t *testing.T) {
	body := `{"summary":"S","chart_data":{},"table_data":[{"year":2020,"total_sales":"₹1"}],"error":"No data"}`
	var bc BotContent
	require.NoError(t, json.Unmarshal([]byte(body), &bc))
	assert.Equal(t, "S", bc.Summary)
	assert.Nil(t, bc.ChartConfig())
	assert.True(t, bc.HasTable())
	assert.Equal(t, "No data", bc.Error)
}
