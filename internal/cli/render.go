// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/realty-tui/internal/analysis"
	"github.com/jeranaias/realty-tui/internal/chart"
	"github.com/jeranaias/realty-tui/internal/config"
	"github.com/jeranaias/realty-tui/internal/model"
	"github.com/jeranaias/realty-tui/internal/table"
)

// renderOptions controls how a response is printed in line mode.
type renderOptions struct {
	Width       int
	Color       bool
	ShowChart   bool
	ShowTable   bool
	ChartHeight int
	Wrap        int // summary wrap width; 0 follows Width
}

func renderOptionsFor(cfg *config.Config) renderOptions {
	return renderOptions{
		Width:       GetTerminalWidth(),
		Color:       ColorsEnabled(),
		ShowChart:   cfg.UI.ShowChart,
		ShowTable:   cfg.UI.ShowTable,
		ChartHeight: cfg.UI.ChartHeight,
		Wrap:        cfg.UI.WordWrap,
	}
}

// newClient builds a client from the backend settings.
func newClient(cfg *config.Config) *analysis.Client {
	return analysis.NewClientWithConfig(&analysis.ClientConfig{
		BaseURL:       cfg.Backend.URL,
		Timeout:       cfg.Backend.Timeout.Std(),
		HealthTimeout: cfg.Backend.HealthTimeout.Std(),
	})
}

// writeResponse prints the summary, chart and table of a response. Sections
// with nothing to show are left out.
func writeResponse(w io.Writer, content *model.BotContent, o renderOptions) {
	var sections []string

	if content != nil && strings.TrimSpace(content.Summary) != "" {
		sections = append(sections, SectionStyle.Render("Summary:")+"\n"+renderSummary(content.Summary, o))
	}
	if content != nil && content.Error != "" {
		sections = append(sections, WarningStyle.Render("[!] "+content.Error))
	}
	if o.ShowChart {
		if out := chart.Render(content.ChartConfig(), o.Width, o.ChartHeight); out != "" {
			sections = append(sections, out)
		}
	}
	if o.ShowTable && content.HasTable() {
		sections = append(sections, SectionStyle.Render("Detailed Data:")+"\n"+table.Render(content.Table, o.Width))
	}
	if len(sections) == 0 {
		sections = append(sections, DimStyle.Render("(empty response)"))
	}

	fmt.Fprintln(w, strings.Join(sections, "\n\n"))
}

// renderSummary formats markdown for a color terminal and wraps plain text
// otherwise.
func renderSummary(text string, o renderOptions) string {
	width := o.Width
	if o.Wrap > 0 && o.Wrap < width {
		width = o.Wrap
	}
	if !o.Color {
		return WrapText(text, width)
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return WrapText(text, width)
	}
	out, err := r.Render(text)
	if err != nil {
		return WrapText(text, width)
	}
	return strings.Trim(out, "\n")
}
