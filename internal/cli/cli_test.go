// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/realty-tui/internal/analysis"
	"github.com/jeranaias/realty-tui/internal/config"
)

const wakadBody = `{"summary":"Wakad prices grew steadily.","chart_data":{"type":"price_trend","data":[{"year":2020,"avg_flat_rate":5000,"avg_office_rate":6000,"avg_shop_rate":7000},{"year":2021,"avg_flat_rate":5500,"avg_office_rate":6100,"avg_shop_rate":7200}]},"table_data":[{"locality":"Wakad","year":2020,"total_sales":1200}]}`

// newTestService serves the three endpoints of the analysis service.
func newTestService(t *testing.T, analyze http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze/", analyze)
	mux.HandleFunc("/api/localities/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"localities":["Akurdi","Aundh","Wakad"]}`))
	})
	mux.HandleFunc("/api/health/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","message":"ready"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func testConfig(url string) *config.Config {
	cfg := config.Default()
	cfg.Backend.URL = url
	cfg.Export.Dir = ""
	return cfg
}

func plainOptions(cfg *config.Config) renderOptions {
	return renderOptions{
		Width:       200,
		ShowChart:   cfg.UI.ShowChart,
		ShowTable:   cfg.UI.ShowTable,
		ChartHeight: cfg.UI.ChartHeight,
	}
}

// =============================================================================
// PARSING TESTS
// =============================================================================

func TestParseArgs_DefaultIsTUI(t *testing.T) {
	cmd, args := ParseArgs(nil)
	assert.Equal(t, CmdTUI, cmd)
	assert.False(t, args.JSON)
}

func TestParseArgs_GlobalFlagsAnywhere(t *testing.T) {
	cmd, args := ParseArgs([]string{"status", "--json", "--backend", "http://x:1", "-q"})
	assert.Equal(t, CmdStatus, cmd)
	assert.True(t, args.JSON)
	assert.True(t, args.Quiet)
	assert.Equal(t, "http://x:1", args.Backend)

	_, args = ParseArgs([]string{"--backend=http://y:2", "-v", "localities"})
	assert.Equal(t, "http://y:2", args.Backend)
	assert.True(t, args.Verbose)
}

func TestParseArgs_Ask(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "Give", "me", "analysis", "of", "Wakad", "--output", "YAML", "--png", "out.png"})
	require.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "Give me analysis of Wakad", args.Query)
	assert.Equal(t, "yaml", args.Output)
	assert.Equal(t, "out.png", args.PNG)

	_, args = ParseArgs([]string{"ask", "-o", "json", "Analyze Aundh"})
	assert.Equal(t, "json", args.Output)
	assert.Equal(t, "Analyze Aundh", args.Query)

	_, args = ParseArgs([]string{"ask", "--no-chart", "Analyze", "Aundh", "--no-table"})
	assert.True(t, args.NoChart)
	assert.True(t, args.NoTable)
	assert.Equal(t, "Analyze Aundh", args.Query)
}

func TestParseArgs_Config(t *testing.T) {
	cmd, args := ParseArgs([]string{"config", "set", "ui.theme", "dark"})
	require.Equal(t, CmdConfig, cmd)
	assert.Equal(t, "set", args.Subcommand)
	assert.Equal(t, "ui.theme", args.ConfigKey)
	assert.Equal(t, "dark", args.ConfigVal)
}

func TestParseArgs_Aliases(t *testing.T) {
	tests := map[string]Command{
		"s":          CmdStatus,
		"health":     CmdStatus,
		"locs":       CmdLocalities,
		"repl":       CmdChat,
		"--version":  CmdVersion,
		"-h":         CmdHelp,
		"frobnicate": CmdUnknown,
	}
	for in, want := range tests {
		cmd, _ := ParseArgs([]string{in})
		assert.Equal(t, want, cmd, in)
	}
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"set", "--dry-run", "key", "--out=file.txt", "--", "--literal"}, "dry-run")
	assert.Equal(t, "set", p.Subcommand())
	assert.True(t, p.BoolFlag("dry-run"))
	assert.Equal(t, "file.txt", p.Flag("out"))
	assert.Equal(t, "key", p.Positional(1))
	assert.Equal(t, "--literal", p.Positional(2))
	assert.Equal(t, "fallback", p.FlagOrDefault("missing", "fallback"))
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", ErrMissingArgument("query", askExample), ExitUsageError},
		{"not found", NewNotFoundError("config key", "x"), ExitNotFoundError},
		{"connection", analysisError("ask", "analyze", &analysis.ClientError{Type: analysis.ErrTypeConnection}), ExitNetworkError},
		{"timeout", analysisError("ask", "analyze", &analysis.ClientError{Type: analysis.ErrTypeTimeout}), ExitTimeoutError},
		{"status", analysisError("ask", "analyze", &analysis.ClientError{Type: analysis.ErrTypeStatus, StatusCode: 400}), ExitServiceError},
		{"invalid", analysisError("ask", "analyze", &analysis.ClientError{Type: analysis.ErrTypeInvalidResponse}), ExitInvalidResponse},
		{"config", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}), ExitConfigError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestAnalysisError_UsesServerMessage(t *testing.T) {
	err := analysisError("ask", "analyze", &analysis.ClientError{
		Type: analysis.ErrTypeStatus, StatusCode: 400, ServerMessage: "Unknown locality",
	})
	assert.Equal(t, "ask analyze failed: Unknown locality", err.Error())

	err = analysisError("ask", "analyze", &analysis.ClientError{Type: analysis.ErrTypeConnection})
	assert.Contains(t, err.Error(), analysis.FallbackMessage)
}

func TestWriteErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	writeErrorJSON(&buf, NewValidationError("output", "xml", "invalid format"))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "validation_error", out["error_type"])
	assert.Equal(t, float64(ExitUsageError), out["exit_code"])
}

// =============================================================================
// ASK TESTS
// =============================================================================

func TestRunAsk_Text(t *testing.T) {
	srv := newTestService(t, respond(http.StatusOK, wakadBody))
	cfg := testConfig(srv.URL)

	var out, errOut bytes.Buffer
	err := runAsk(context.Background(), &out, &errOut, cfg, Args{}, "Give me analysis of Wakad", plainOptions(cfg))
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Summary:")
	assert.Contains(t, s, "Wakad prices grew steadily.")
	assert.Contains(t, s, "Detailed Data:")
	assert.Contains(t, s, "Locality")
	assert.Contains(t, s, "2020")
}

func TestRunAsk_NoChartNoTable(t *testing.T) {
	srv := newTestService(t, respond(http.StatusOK, wakadBody))
	cfg := testConfig(srv.URL)

	var out bytes.Buffer
	err := runAsk(context.Background(), &out, &bytes.Buffer{}, cfg, Args{NoChart: true, NoTable: true}, "Wakad", plainOptions(cfg))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Wakad prices grew steadily.")
	assert.NotContains(t, out.String(), "Detailed Data:")
	assert.NotContains(t, out.String(), "Price Trends")
}

func TestRunAsk_EmptyQuery(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	err := runAsk(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, cfg, Args{}, "   ", plainOptions(cfg))
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestRunAsk_BadOutputFormat(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	err := runAsk(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, cfg, Args{Output: "xml"}, "q", plainOptions(cfg))
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestRunAsk_JSONAndYAML(t *testing.T) {
	srv := newTestService(t, respond(http.StatusOK, wakadBody))
	cfg := testConfig(srv.URL)

	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), &out, &bytes.Buffer{}, cfg, Args{Output: "json"}, "Wakad", plainOptions(cfg)))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "Wakad prices grew steadily.", decoded["summary"])

	out.Reset()
	require.NoError(t, runAsk(context.Background(), &out, &bytes.Buffer{}, cfg, Args{Output: "yaml"}, "Wakad", plainOptions(cfg)))
	y := out.String()
	assert.Contains(t, y, "summary: Wakad prices grew steadily.")
	assert.Less(t, strings.Index(y, "summary:"), strings.Index(y, "chart_data:"), "key order kept")
}

func TestRunAsk_JSONEnvelope(t *testing.T) {
	srv := newTestService(t, respond(http.StatusOK, wakadBody))
	cfg := testConfig(srv.URL)

	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), &out, &bytes.Buffer{}, cfg, Args{JSON: true}, "Wakad", plainOptions(cfg)))

	var resp struct {
		Success bool                   `json:"success"`
		Command string                 `json:"command"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ask", resp.Command)
	assert.Equal(t, "Wakad prices grew steadily.", resp.Data["summary"])
}

func TestRunAsk_JSONEnvelopeKeepsBody(t *testing.T) {
	srv := newTestService(t, respond(http.StatusOK, wakadBody))
	cfg := testConfig(srv.URL)

	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), &out, &bytes.Buffer{}, cfg, Args{JSON: true}, "Wakad", plainOptions(cfg)))

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.JSONEq(t, wakadBody, string(resp.Data))
}

func TestRunAsk_ServiceError(t *testing.T) {
	srv := newTestService(t, respond(http.StatusBadRequest, `{"error":"No data found for Atlantis"}`))
	cfg := testConfig(srv.URL)

	err := runAsk(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, cfg, Args{}, "Analyze Atlantis", plainOptions(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found for Atlantis")
	assert.Equal(t, ExitServiceError, GetExitCode(err))
}

func TestRunAsk_PNG(t *testing.T) {
	srv := newTestService(t, respond(http.StatusOK, wakadBody))
	cfg := testConfig(srv.URL)
	path := filepath.Join(t.TempDir(), "wakad.png")

	var errOut bytes.Buffer
	require.NoError(t, runAsk(context.Background(), &bytes.Buffer{}, &errOut, cfg, Args{PNG: path}, "Wakad", plainOptions(cfg)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	assert.Contains(t, errOut.String(), "Chart saved to")
}

func TestRunAsk_PNGWithoutChart(t *testing.T) {
	srv := newTestService(t, respond(http.StatusOK, `{"summary":"Nothing to plot"}`))
	cfg := testConfig(srv.URL)

	err := runAsk(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, cfg,
		Args{PNG: filepath.Join(t.TempDir(), "x.png")}, "q", plainOptions(cfg))
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

// =============================================================================
// STATUS AND LOCALITIES TESTS
// =============================================================================

func TestRunLocalities(t *testing.T) {
	srv := newTestService(t, respond(http.StatusOK, wakadBody))
	cfg := testConfig(srv.URL)

	var out bytes.Buffer
	require.NoError(t, runLocalities(context.Background(), &out, cfg, Args{Quiet: true}))
	assert.Equal(t, "Akurdi\nAundh\nWakad\n", out.String())

	out.Reset()
	require.NoError(t, runLocalities(context.Background(), &out, cfg, Args{JSON: true}))
	var resp struct {
		Data LocalitiesData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Count)
}

func TestRunStatus(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := newTestService(t, respond(http.StatusOK, wakadBody))
	cfg := testConfig(srv.URL)

	var out bytes.Buffer
	require.NoError(t, runStatus(context.Background(), &out, cfg, Args{JSON: true}))
	var resp struct {
		Data StatusData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.Data.Reachable)
	assert.Equal(t, "ok", resp.Data.Status)
	assert.Equal(t, "none", resp.Data.Timeout)
}

func TestRunStatus_Unreachable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var out bytes.Buffer
	err := runStatus(context.Background(), &out, testConfig(url), Args{})
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Contains(t, out.String(), "unreachable")
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestRunConfig_SetThenGet(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("REALTY_BACKEND_URL", "")
	t.Setenv("BACKEND_URL", "")
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)

	var out bytes.Buffer
	require.NoError(t, runConfig(&out, Args{Subcommand: "set", ConfigKey: "ui.chart_height", ConfigVal: "16"}))
	assert.Contains(t, out.String(), "ui.chart_height = 16")

	_, err := os.Stat(filepath.Join(home, ".realty", "config.toml"))
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, runConfig(&out, Args{Subcommand: "get", ConfigKey: "ui.chart_height"}))
	assert.Equal(t, "16\n", out.String())
}

func TestRunConfig_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)

	err := runConfig(&bytes.Buffer{}, Args{Subcommand: "get", ConfigKey: "nope.nothing"})
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))

	err = runConfig(&bytes.Buffer{}, Args{Subcommand: "set", ConfigKey: "ui.theme"})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = runConfig(&bytes.Buffer{}, Args{Subcommand: "frob"})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// CHAT SESSION TESTS
// =============================================================================

func TestChatSession_AskAndCommands(t *testing.T) {
	srv := newTestService(t, respond(http.StatusOK, wakadBody))
	cfg := testConfig(srv.URL)

	var out, errOut bytes.Buffer
	s := newChatSession(cfg, &out, &errOut, true, plainOptions(cfg))
	ctx := context.Background()

	assert.True(t, s.handleLine(ctx, "Give me analysis of Wakad"))
	assert.Equal(t, 2, s.Conv.Len())
	assert.Contains(t, out.String(), "Analyst")
	assert.Contains(t, out.String(), "Wakad prices grew steadily.")
	assert.False(t, s.Conv.Loading())

	out.Reset()
	assert.True(t, s.handleLine(ctx, "/raw"))
	assert.Contains(t, out.String(), `"summary": "Wakad prices grew steadily."`)

	assert.True(t, s.handleLine(ctx, "/sample 2"))
	assert.Equal(t, analysis.SampleQueries[1], s.pending)

	assert.True(t, s.handleLine(ctx, "/clear"))
	assert.True(t, s.Conv.IsEmpty())

	assert.True(t, s.handleLine(ctx, "/bogus"))
	assert.Contains(t, errOut.String(), "unknown command /bogus")

	assert.False(t, s.handleLine(ctx, "/quit"))
	assert.False(t, s.handleLine(ctx, "exit"))
}

func TestChatSession_DoubleSlashIsQuery(t *testing.T) {
	var got string
	srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req analysis.AnalyzeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		got = req.Query
		_, _ = w.Write([]byte(wakadBody))
	})
	cfg := testConfig(srv.URL)

	var out, errOut bytes.Buffer
	s := newChatSession(cfg, &out, &errOut, true, plainOptions(cfg))

	assert.True(t, s.handleLine(context.Background(), "//sq ft rates in Wakad"))
	assert.Equal(t, "/sq ft rates in Wakad", got)
	assert.Equal(t, 2, s.Conv.Len())
	assert.Empty(t, errOut.String())

	out.Reset()
	s.handleLine(context.Background(), "/help")
	assert.Contains(t, out.String(), "//text")
}

func TestChatSession_Save(t *testing.T) {
	srv := newTestService(t, respond(http.StatusOK, wakadBody))
	cfg := testConfig(srv.URL)
	cfg.Export.Dir = t.TempDir()

	var out, errOut bytes.Buffer
	s := newChatSession(cfg, &out, &errOut, true, plainOptions(cfg))
	ctx := context.Background()

	s.handleLine(ctx, "/save")
	assert.Contains(t, errOut.String(), "nothing to save yet")

	s.handleLine(ctx, "Give me analysis of Wakad")
	s.handleLine(ctx, "/save md")
	assert.Contains(t, out.String(), "Transcript saved to")

	matches, err := filepath.Glob(filepath.Join(cfg.Export.Dir, "conversation_*.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestChatSession_ErrorMessage(t *testing.T) {
	srv := newTestService(t, respond(http.StatusInternalServerError, `{}`))
	cfg := testConfig(srv.URL)

	var out bytes.Buffer
	s := newChatSession(cfg, &out, &bytes.Buffer{}, true, plainOptions(cfg))
	s.handleLine(context.Background(), "Analyze Wakad")

	last, ok := s.Conv.Last()
	require.True(t, ok)
	assert.Equal(t, analysis.FallbackMessage, last.Text)
	assert.Contains(t, out.String(), analysis.FallbackMessage)
}

func TestChatSession_ExportWithoutChart(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	var errOut bytes.Buffer
	s := newChatSession(cfg, &bytes.Buffer{}, &errOut, true, plainOptions(cfg))
	s.handleLine(context.Background(), "/export")
	assert.Contains(t, errOut.String(), "no chart to export yet")
}

func TestWrapText(t *testing.T) {
	out := WrapText("one two three four five six", 14)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 12)
	}
	assert.Equal(t, "short", WrapText("short", 40))
}
