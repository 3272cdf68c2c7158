// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/realty-tui/internal/util"
)

// =============================================================================
// TERMINAL RENDERER
// =============================================================================

const (
	// MinHeight is the smallest plot height in rows.
	MinHeight = 6

	// MinWidth is the smallest total chart width in columns.
	MinWidth = 30

	markerRune = '●'
	traceRune  = '·'
	barRune    = '█'
	axisRune   = '│'
	floorRune  = '─'
	cornerRune = '└'
)

type cell struct {
	r     rune
	color string
}

// Render draws cfg as text for a terminal of the given width.
// height is the number of plot rows, excluding title, legend and x labels.
// Returns "" for an empty config.
func Render(cfg *Config, width, height int) string {
	if cfg.IsEmpty() {
		return ""
	}
	if width < MinWidth {
		width = MinWidth
	}
	if height < MinHeight {
		height = MinHeight
	}

	lo, hi := bounds(cfg)
	ticks := []float64{hi, lo + (hi-lo)/2, lo}
	tickLabels := make([]string, len(ticks))
	axisWidth := 0
	for i, t := range ticks {
		tickLabels[i] = util.FormatNumber(t)
		if w := runewidth.StringWidth(tickLabels[i]); w > axisWidth {
			axisWidth = w
		}
	}

	plotWidth := width - axisWidth - 2
	if plotWidth < len(cfg.Labels) {
		plotWidth = len(cfg.Labels)
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, plotWidth)
	}

	var xs []int
	if cfg.Style == StyleBar {
		xs = drawBars(grid, cfg, lo, hi)
	} else {
		xs = drawLines(grid, cfg, lo, hi)
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(cfg.Title))
	sb.WriteString("\n")
	sb.WriteString(legend(cfg.Series, width))
	sb.WriteString("\n")
	if cfg.YAxisTitle != "" {
		sb.WriteString(lipgloss.NewStyle().Faint(true).Render(cfg.YAxisTitle))
		sb.WriteString("\n")
	}

	tickRows := map[int]string{0: tickLabels[0], height / 2: tickLabels[1], height - 1: tickLabels[2]}
	for row := 0; row < height; row++ {
		label := tickRows[row]
		sb.WriteString(strings.Repeat(" ", axisWidth-runewidth.StringWidth(label)))
		sb.WriteString(label)
		sb.WriteString(" ")
		sb.WriteRune(axisRune)
		sb.WriteString(renderRow(grid[row]))
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat(" ", axisWidth+1))
	sb.WriteRune(cornerRune)
	sb.WriteString(strings.Repeat(string(floorRune), plotWidth))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", axisWidth+2))
	sb.WriteString(xLabelRow(cfg.Labels, xs, plotWidth))

	return sb.String()
}

// bounds returns the value range to plot, ignoring NaN.
func bounds(cfg *Config) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range cfg.Series {
		for _, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if cfg.BeginAtZero && lo > 0 {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// rowFor maps a value to a grid row; row 0 is the top.
func rowFor(v, lo, hi float64, height int) int {
	frac := (v - lo) / (hi - lo)
	row := height - 1 - int(math.Round(frac*float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

// columns spreads n points across width, returning their x positions.
func columns(n, width int) []int {
	xs := make([]int, n)
	if n == 1 {
		xs[0] = width / 2
		return xs
	}
	for i := range xs {
		xs[i] = i * (width - 1) / (n - 1)
	}
	return xs
}

func drawLines(grid [][]cell, cfg *Config, lo, hi float64) []int {
	height, width := len(grid), len(grid[0])
	xs := columns(len(cfg.Labels), width)

	for _, s := range cfg.Series {
		color := s.Color.Hex()
		prevX, prevRow := -1, -1
		for i, x := range xs {
			if i >= len(s.Values) || math.IsNaN(s.Values[i]) {
				prevX = -1
				continue
			}
			row := rowFor(s.Values[i], lo, hi, height)
			if prevX >= 0 {
				for cx := prevX + 1; cx < x; cx++ {
					t := float64(cx-prevX) / float64(x-prevX)
					cr := int(math.Round(float64(prevRow) + t*float64(row-prevRow)))
					if grid[cr][cx].r == 0 {
						grid[cr][cx] = cell{r: traceRune, color: color}
					}
				}
			}
			grid[row][x] = cell{r: markerRune, color: color}
			prevX, prevRow = x, row
		}
	}
	return xs
}

func drawBars(grid [][]cell, cfg *Config, lo, hi float64) []int {
	height, width := len(grid), len(grid[0])
	n := len(cfg.Labels)
	groupWidth := width / n
	barWidth := (groupWidth - 1) / len(cfg.Series)
	if barWidth < 1 {
		barWidth = 1
	}

	xs := make([]int, n)
	for i := 0; i < n; i++ {
		start := i * groupWidth
		xs[i] = start + groupWidth/2
		for si, s := range cfg.Series {
			if i >= len(s.Values) || math.IsNaN(s.Values[i]) {
				continue
			}
			top := rowFor(s.Values[i], lo, hi, height)
			color := s.Color.Hex()
			for b := 0; b < barWidth; b++ {
				x := start + si*barWidth + b
				if x >= width {
					break
				}
				for row := top; row < height; row++ {
					grid[row][x] = cell{r: barRune, color: color}
				}
			}
		}
	}
	return xs
}

// renderRow styles runs of same-colored cells together.
func renderRow(cells []cell) string {
	var sb strings.Builder
	var run strings.Builder
	runColor := ""

	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runColor == "" {
			sb.WriteString(run.String())
		} else {
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor)).Render(run.String()))
		}
		run.Reset()
	}

	for _, c := range cells {
		if c.color != runColor {
			flush()
			runColor = c.color
		}
		if c.r == 0 {
			run.WriteRune(' ')
		} else {
			run.WriteRune(c.r)
		}
	}
	flush()
	return sb.String()
}

// xLabelRow centers each label under its column, dropping labels that would
// overlap the previous one.
func xLabelRow(labels []string, xs []int, width int) string {
	row := []rune(strings.Repeat(" ", width))
	next := 0
	for i, label := range labels {
		w := runewidth.StringWidth(label)
		start := xs[i] - w/2
		if start < next {
			continue
		}
		if start+w > width {
			start = width - w
		}
		if start < next || start < 0 {
			continue
		}
		copy(row[start:], []rune(label))
		next = start + w + 1
	}
	return strings.TrimRight(string(row), " ")
}

func legend(series []Series, width int) string {
	var parts []string
	used := 0
	for _, s := range series {
		label := string(markerRune) + " " + s.Label
		w := runewidth.StringWidth(label) + 2
		if used > 0 && used+w > width {
			parts = append(parts, "\n")
			used = 0
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color.Hex())).Render(label)+"  ")
		used += w
	}
	return strings.TrimRight(strings.Join(parts, ""), " ")
}
