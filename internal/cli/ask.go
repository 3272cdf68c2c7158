// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/realty-tui/internal/chart"
	"github.com/jeranaias/realty-tui/internal/config"
	"github.com/jeranaias/realty-tui/internal/export"
	"github.com/jeranaias/realty-tui/internal/model"
)

// Output formats accepted by ask.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

const askExample = `realty ask "Give me analysis of Wakad"`

// HandleAsk sends one query and prints the response. With no query on the
// command line the query is read from a piped stdin.
func HandleAsk(args Args) error {
	query := args.Query
	if strings.TrimSpace(query) == "" && !IsTTY() {
		b, err := io.ReadAll(io.LimitReader(os.Stdin, 64*1024))
		if err != nil {
			return NewCommandError("ask", "read stdin", "", err)
		}
		query = string(b)
	}

	cfg := config.Global()
	return runAsk(context.Background(), os.Stdout, os.Stderr, cfg, args, query, renderOptionsFor(cfg))
}

func runAsk(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, args Args, query string, o renderOptions) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrMissingArgument("query", askExample)
	}

	format := args.Output
	if format == "" {
		format = outputText
	}
	if format == "yml" {
		format = outputYAML
	}
	if format != outputText && format != outputJSON && format != outputYAML {
		return ErrInvalidFormat("output", args.Output, "text, json or yaml")
	}

	o.ShowChart = o.ShowChart && !args.NoChart
	o.ShowTable = o.ShowTable && !args.NoTable

	client := newClient(cfg)
	content, err := client.Analyze(ctx, query)
	if err != nil {
		return analysisError("ask", "analyze", err)
	}

	switch {
	case args.JSON:
		if err := NewJSONResponse("ask", content).Write(stdout); err != nil {
			return err
		}
	case format == outputText:
		writeResponse(stdout, content, o)
	default:
		out, err := export.FormatResponse(content.Raw, format, o.Color)
		if err != nil {
			return NewCommandError("ask", "format", "", err)
		}
		fmt.Fprintln(stdout, strings.TrimRight(out, "\n"))
	}

	if args.PNG != "" {
		return savePNG(stderr, cfg, model.NewBotMessage(content), args.PNG, args.Quiet)
	}
	return nil
}

// savePNG writes the chart of msg and reports the path on stderr.
func savePNG(stderr io.Writer, cfg *config.Config, msg model.Message, path string, quiet bool) error {
	written, err := export.ChartPNG(msg, path, &export.Options{
		OutputDir:   cfg.Export.Dir,
		ChartWidth:  cfg.Export.Width,
		ChartHeight: cfg.Export.Height,
	})
	if errors.Is(err, chart.ErrNoChart) {
		return NewNotFoundError("chart", "the response has no chart data")
	}
	if err != nil {
		return NewCommandError("export", "png", "", err)
	}
	if !quiet {
		fmt.Fprintln(stderr, SuccessStyle.Render("Chart saved to "+written))
	}
	return nil
}
