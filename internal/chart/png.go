// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jeranaias/realty-tui/internal/util"
)

// ErrNoChart is returned when a config has nothing to draw.
var ErrNoChart = errors.New("chart: nothing to render")

// barGroupWidth is the share of one x slot taken by a bar group.
const barGroupWidth = 0.8

// RenderPNG rasterises cfg as a PNG image of width x height pixels.
func RenderPNG(cfg *Config, w io.Writer, width, height int) error {
	if cfg.IsEmpty() {
		return ErrNoChart
	}

	lo, hi := bounds(cfg)
	n := len(cfg.Labels)

	var series []gochart.Series
	for i, s := range cfg.Series {
		var cs gochart.ContinuousSeries
		if cfg.Style == StyleBar {
			cs = barSeries(s, i, len(cfg.Series), lo)
		} else {
			cs = lineSeries(s)
		}
		if len(cs.XValues) == 0 {
			continue
		}
		series = append(series, cs)
	}
	if len(series) == 0 {
		return ErrNoChart
	}

	xTicks := make([]gochart.Tick, n)
	for i, label := range cfg.Labels {
		xTicks[i] = gochart.Tick{Value: float64(i), Label: label}
	}

	ch := gochart.Chart{
		Title:      cfg.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  cfg.XAxisTitle,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: xTicks,
		},
		YAxis: gochart.YAxis{
			Name:  cfg.YAxisTitle,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
			Ticks: yTicks(lo, hi, 5),
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

func lineSeries(s Series) gochart.ContinuousSeries {
	col := toDrawing(s.Color)
	cs := gochart.ContinuousSeries{
		Name: s.Label,
		Style: gochart.Style{
			StrokeColor: col,
			StrokeWidth: 2,
			DotColor:    col,
			DotWidth:    3,
		},
	}
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		cs.XValues = append(cs.XValues, float64(i))
		cs.YValues = append(cs.YValues, v)
	}
	return cs
}

// barSeries traces the outline of one series' bars and fills the area under
// it; between bars the outline sits on the baseline so only the bars fill.
func barSeries(s Series, index, count int, base float64) gochart.ContinuousSeries {
	col := toDrawing(s.Color)
	cs := gochart.ContinuousSeries{
		Name: s.Label,
		Style: gochart.Style{
			StrokeColor: col,
			StrokeWidth: 1,
			FillColor:   col.WithAlpha(200),
		},
	}

	barWidth := barGroupWidth / float64(count)
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		left := float64(i) - barGroupWidth/2 + float64(index)*barWidth
		right := left + barWidth
		cs.XValues = append(cs.XValues, left, left, right, right)
		cs.YValues = append(cs.YValues, base, v, v, base)
	}
	return cs
}

func yTicks(lo, hi float64, count int) []gochart.Tick {
	ticks := make([]gochart.Tick, count)
	step := (hi - lo) / float64(count-1)
	for i := range ticks {
		v := lo + step*float64(i)
		ticks[i] = gochart.Tick{Value: v, Label: util.FormatNumber(math.Round(v))}
	}
	return ticks
}

func toDrawing(c Color) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: 255}
}
