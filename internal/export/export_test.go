// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/realty-tui/internal/chart"
	"github.com/jeranaias/realty-tui/internal/model"
)

const wakadBody = `{"summary":"Wakad prices rose steadily.","chart_data":{"type":"price_trend","data":[{"year":2020,"avg_flat_rate":5000,"avg_office_rate":6000,"avg_shop_rate":7000},{"year":2021,"avg_flat_rate":5200,"avg_office_rate":6100,"avg_shop_rate":7300}]},"table_data":[{"locality":"Wakad","year":2020,"total_sales":"₹1,000","total_sold":12}]}`

func sampleConversation(t *testing.T) *model.Conversation {
	t.Helper()
	conv := model.NewConversation()
	conv.SetDraft("Give me analysis of Wakad")
	_, ok := conv.Submit()
	require.True(t, ok)

	var content model.BotContent
	require.NoError(t, json.Unmarshal([]byte(wakadBody), &content))
	content.Raw = json.RawMessage(wakadBody)
	conv.Resolve(&content, nil)

	conv.SetDraft("Compare Atlantis")
	conv.Submit()
	conv.Resolve(nil, assert.AnError)
	return conv
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(&Options{IncludeTimestamps: false}).Export(sampleConversation(t))
	require.NoError(t, err)

	md := string(out)
	assert.Contains(t, md, "# Give me analysis of Wakad")
	assert.Contains(t, md, "### You\n")
	assert.Contains(t, md, "**Summary:**")
	assert.Contains(t, md, "Wakad prices rose steadily.")
	assert.Contains(t, md, "**Chart:** Price Trends Over Years (line;")
	assert.Contains(t, md, "| Locality | Year | Total Sales |")
	assert.Contains(t, md, "| Wakad | 2020 | ₹1,000 |")
	assert.Contains(t, md, "> **Error:** "+model.FallbackErrorText)
}

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleConversation(t))
	require.NoError(t, err)

	var transcript struct {
		Title    string `json:"title"`
		Messages []struct {
			Kind     string          `json:"kind"`
			Text     string          `json:"text"`
			Response json.RawMessage `json:"response"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(out, &transcript))
	assert.Equal(t, "Give me analysis of Wakad", transcript.Title)
	require.Len(t, transcript.Messages, 4)
	assert.Equal(t, "user", transcript.Messages[0].Kind)
	assert.Equal(t, "bot", transcript.Messages[1].Kind)
	assert.JSONEq(t, wakadBody, string(transcript.Messages[1].Response))
	assert.Equal(t, "error", transcript.Messages[3].Kind)
}

func TestExporters_EmptyConversation(t *testing.T) {
	for _, e := range []Exporter{NewMarkdownExporter(nil), NewJSONExporter(nil)} {
		_, err := e.Export(model.NewConversation())
		assert.ErrorIs(t, err, ErrEmptyConversation)

		_, err = e.Export(nil)
		assert.Error(t, err)
	}
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportMarkdown(sampleConversation(t), &Options{OutputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "conversation_Give_me_analysis_of_Wakad_"))
	assert.Equal(t, ".md", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Wakad prices rose steadily.")
}

func TestSaveTranscript(t *testing.T) {
	dir := t.TempDir()
	conv := sampleConversation(t)

	path, err := SaveTranscript(conv, "", &Options{OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ".md", filepath.Ext(path))

	path, err = SaveTranscript(conv, "JSON", &Options{OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(path))

	_, err = SaveTranscript(conv, "html", &Options{OutputDir: dir})
	assert.Error(t, err)

	_, err = SaveTranscript(model.NewConversation(), "md", &Options{OutputDir: dir})
	assert.ErrorIs(t, err, ErrEmptyConversation)
}

// =============================================================================
// CHART EXPORT TESTS
// =============================================================================

func TestChartPNG(t *testing.T) {
	conv := sampleConversation(t)
	msg, ok := conv.LastChart()
	require.True(t, ok)

	dir := t.TempDir()
	explicit := filepath.Join(dir, "wakad")
	path, err := ChartPNG(msg, explicit, &Options{ChartWidth: 640, ChartHeight: 320})
	require.NoError(t, err)
	assert.Equal(t, explicit+".png", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	generated, err := ChartPNG(msg, "", &Options{OutputDir: dir})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(generated), "price_trends_over_years_"))

	intoDir, err := ChartPNG(msg, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(intoDir))
}

func TestChartPNG_NoChart(t *testing.T) {
	_, err := ChartPNG(model.NewBotMessage(&model.BotContent{Summary: "S"}), "", &Options{OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, chart.ErrNoChart)
}

// =============================================================================
// FORMAT TESTS
// =============================================================================

func TestFormatResponse_JSON(t *testing.T) {
	out, err := FormatResponse([]byte(`{"summary":"S","table_data":[]}`), FormatJSON, false)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"summary\": \"S\",\n  \"table_data\": []\n}", out)

	_, err = FormatResponse([]byte(`{"summary":`), FormatJSON, false)
	assert.Error(t, err)
}

func TestFormatResponse_YAMLKeepsOrder(t *testing.T) {
	out, err := FormatResponse([]byte(`{"summary":"S","chart_data":{"type":"demand_comparison","data":{"Wakad":[],"Aundh":[]}},"year":"2020","n":null}`), FormatYAML, false)
	require.NoError(t, err)

	assert.Contains(t, out, "summary: S\n")
	assert.Contains(t, out, "type: demand_comparison")
	assert.Contains(t, out, `year: "2020"`, "numeric-looking strings stay quoted")
	assert.Contains(t, out, "n: null")
	assert.Less(t, strings.Index(out, "summary"), strings.Index(out, "chart_data"))
	assert.Less(t, strings.Index(out, "Wakad"), strings.Index(out, "Aundh"))
}

func TestFormatResponse_Color(t *testing.T) {
	out, err := FormatResponse([]byte(`{"summary":"S"}`), FormatJSON, true)
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[", "highlighted output carries ANSI escapes")
	assert.Contains(t, out, "summary")
}

func TestFormatResponse_Unsupported(t *testing.T) {
	_, err := FormatResponse([]byte(`{}`), "xml", false)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))
	assert.Equal(t, "conversation", sanitizeFilename(""))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("x", 80))), 50)
}
