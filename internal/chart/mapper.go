// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chart

import (
	"fmt"
	"math"
	"strconv"
)

// =============================================================================
// CHART CONFIG
// =============================================================================

// Style selects how series are drawn.
type Style int

const (
	StyleLine Style = iota
	StyleBar
)

// String returns the style name.
func (s Style) String() string {
	if s == StyleBar {
		return "bar"
	}
	return "line"
}

// Color is an RGB series color.
type Color struct {
	R, G, B uint8
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Series is one plotted line or bar group member.
// Values align with Config.Labels; NaN marks a missing value.
type Series struct {
	Label  string
	Values []float64
	Color  Color
}

// Config is a renderable chart description.
type Config struct {
	Style       Style
	Title       string
	Labels      []string
	Series      []Series
	XAxisTitle  string
	YAxisTitle  string
	BeginAtZero bool
}

// IsEmpty reports whether there is nothing to plot.
func (c *Config) IsEmpty() bool {
	return c == nil || len(c.Series) == 0 || len(c.Labels) == 0
}

// =============================================================================
// PALETTE
// =============================================================================

var (
	Teal = Color{75, 192, 192}
	Pink = Color{255, 99, 132}
	Gold = Color{255, 205, 86}
	Blue = Color{54, 162, 235}
)

// comparisonPalette is cycled by locality index.
var comparisonPalette = []Color{Teal, Pink, Gold, Blue}

// PaletteColor returns the comparison color for series index i.
func PaletteColor(i int) Color {
	return comparisonPalette[i%len(comparisonPalette)]
}

// =============================================================================
// MAPPER
// =============================================================================

// Map translates a chart payload into a renderable config.
// Returns nil when there is nothing to draw.
func Map(p *Payload) *Config {
	if !p.HasData() {
		return nil
	}

	switch d := p.Data.(type) {
	case *PriceTrend:
		return mapPriceTrend(d.Records)
	case *DemandTrend:
		return mapDemandTrend(d.Records)
	case *PriceComparison:
		return mapComparison(d.Localities, StyleLine)
	case *DemandComparison:
		return mapComparison(d.Localities, StyleBar)
	default:
		return nil
	}
}

func mapPriceTrend(records []YearRecord) *Config {
	return &Config{
		Style:      StyleLine,
		Title:      "Price Trends Over Years",
		Labels:     yearLabels(records),
		XAxisTitle: "Year",
		YAxisTitle: "Rate (₹/sqft)",
		Series: []Series{
			{Label: "Flat Avg Rate (₹/sqft)", Values: pluck(records, func(r YearRecord) *float64 { return r.AvgFlatRate }), Color: Teal},
			{Label: "Office Avg Rate (₹/sqft)", Values: pluck(records, func(r YearRecord) *float64 { return r.AvgOfficeRate }), Color: Pink},
			{Label: "Shop Avg Rate (₹/sqft)", Values: pluck(records, func(r YearRecord) *float64 { return r.AvgShopRate }), Color: Gold},
		},
	}
}

func mapDemandTrend(records []YearRecord) *Config {
	return &Config{
		Style:       StyleBar,
		Title:       "Demand Trends Over Years",
		Labels:      yearLabels(records),
		XAxisTitle:  "Year",
		YAxisTitle:  "Units Sold",
		BeginAtZero: true,
		Series: []Series{
			{Label: "Total Units Sold", Values: pluck(records, func(r YearRecord) *float64 { return r.TotalSold }), Color: Blue},
			{Label: "Flats Sold", Values: pluck(records, func(r YearRecord) *float64 { return r.FlatSold }), Color: Teal},
			{Label: "Offices Sold", Values: pluck(records, func(r YearRecord) *float64 { return r.OfficeSold }), Color: Pink},
			{Label: "Shops Sold", Values: pluck(records, func(r YearRecord) *float64 { return r.ShopSold }), Color: Gold},
		},
	}
}

// mapComparison builds one series per locality. The x axis comes from the
// first locality; later localities are plotted by position.
func mapComparison(locs *Localities, style Style) *Config {
	cfg := &Config{
		Style:      style,
		Labels:     []string{},
		Series:     []Series{},
		XAxisTitle: "Year",
	}

	metric := func(r YearRecord) *float64 { return r.AvgFlatRate }
	suffix := " - Flat Rate"
	cfg.Title = "Price Comparison Across Localities"
	cfg.YAxisTitle = "Rate (₹/sqft)"
	if style == StyleBar {
		metric = func(r YearRecord) *float64 { return r.TotalSold }
		suffix = " - Total Sold"
		cfg.Title = "Demand Comparison Across Localities"
		cfg.YAxisTitle = "Units Sold"
		cfg.BeginAtZero = true
	}

	if locs == nil || locs.Len() == 0 {
		return cfg
	}

	cfg.Labels = yearLabels(locs.Oldest().Value)

	i := 0
	for pair := locs.Oldest(); pair != nil; pair = pair.Next() {
		cfg.Series = append(cfg.Series, Series{
			Label:  pair.Key + suffix,
			Values: pluck(pair.Value, metric),
			Color:  PaletteColor(i),
		})
		i++
	}
	return cfg
}

func yearLabels(records []YearRecord) []string {
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = strconv.Itoa(r.Year)
	}
	return labels
}

func pluck(records []YearRecord, field func(YearRecord) *float64) []float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		if v := field(r); v != nil {
			values[i] = *v
		} else {
			values[i] = math.NaN()
		}
	}
	return values
}
