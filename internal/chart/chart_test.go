// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chart

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) *Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return &p
}

// =============================================================================
// PAYLOAD TESTS
// =============================================================================

func TestPayload_DecodesVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Kind
	}{
		{"price trend", `{"type":"price_trend","data":[{"year":2020}]}`, KindPriceTrend},
		{"demand trend", `{"type":"demand_trend","data":[]}`, KindDemandTrend},
		{"price comparison", `{"type":"price_comparison","data":{"Wakad":[]}}`, KindPriceComparison},
		{"demand comparison", `{"type":"demand_comparison","data":{}}`, KindDemandComparison},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := decode(t, tc.raw)
			require.True(t, p.HasData())
			assert.Equal(t, tc.want, p.Data.Kind())
		})
	}
}

func TestPayload_DegradesToNothing(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"missing data", `{"type":"price_trend"}`},
		{"null data", `{"type":"price_trend","data":null}`},
		{"unknown type", `{"type":"pie","data":[]}`},
		{"trend given a map", `{"type":"demand_trend","data":{"a":1}}`},
		{"comparison given a list", `{"type":"price_comparison","data":[]}`},
		{"not an object", `"price_trend"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := decode(t, tc.raw)
			assert.False(t, p.HasData())
			assert.Nil(t, Map(p))
		})
	}
}

func TestPayload_NullMetricsStayMissing(t *testing.T) {
	p := decode(t, `{"type":"price_trend","data":[{"year":2021,"avg_flat_rate":null,"avg_office_rate":10}]}`)
	trend := p.Data.(*PriceTrend)
	require.Len(t, trend.Records, 1)
	assert.Nil(t, trend.Records[0].AvgFlatRate)
	require.NotNil(t, trend.Records[0].AvgOfficeRate)
	assert.Equal(t, 10.0, *trend.Records[0].AvgOfficeRate)
}

func TestPayload_ComparisonKeepsKeyOrder(t *testing.T) {
	p := decode(t, `{"type":"demand_comparison","data":{"Wakad":[],"Aundh":[],"Akurdi":[]}}`)
	locs := p.Data.(*DemandComparison).Localities

	var keys []string
	for pair := locs.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"Wakad", "Aundh", "Akurdi"}, keys)
}

func TestPayload_MarshalRoundTripKeepsType(t *testing.T) {
	p := decode(t, `{"type":"price_comparison","data":{"Zeta":[{"year":2020,"avg_flat_rate":1}],"Alpha":[]}}`)
	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type":"price_comparison"`)
	assert.Less(t, strings.Index(string(out), "Zeta"), strings.Index(string(out), "Alpha"))

	empty, err := json.Marshal(Payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(empty))
}

// =============================================================================
// MAPPER TESTS
// =============================================================================

func TestMap_NilPayload(t *testing.T) {
	assert.Nil(t, Map(nil))
	assert.Nil(t, Map(&Payload{}))
}

func TestMap_PriceTrendSingleYear(t *testing.T) {
	p := decode(t, `{"type":"price_trend","data":[{"year":2020,"avg_flat_rate":5000,"avg_office_rate":6000,"avg_shop_rate":7000}]}`)
	cfg := Map(p)
	require.NotNil(t, cfg)

	assert.Equal(t, StyleLine, cfg.Style)
	assert.Equal(t, []string{"2020"}, cfg.Labels)
	require.Len(t, cfg.Series, 3)
	for _, s := range cfg.Series {
		assert.Len(t, s.Values, 1)
	}
	assert.Equal(t, 5000.0, cfg.Series[0].Values[0])
	assert.Equal(t, 6000.0, cfg.Series[1].Values[0])
	assert.Equal(t, 7000.0, cfg.Series[2].Values[0])
	assert.False(t, cfg.BeginAtZero)
	assert.Equal(t, "Flat Avg Rate (₹/sqft)", cfg.Series[0].Label)
	assert.Equal(t, Teal, cfg.Series[0].Color)
}

func TestMap_DemandTrend(t *testing.T) {
	p := decode(t, `{"type":"demand_trend","data":[
		{"year":2019,"total_sold":10,"flat_sold":6,"office_sold":3,"shop_sold":1},
		{"year":2020,"total_sold":12,"flat_sold":7,"office_sold":4}
	]}`)
	cfg := Map(p)
	require.NotNil(t, cfg)

	assert.Equal(t, StyleBar, cfg.Style)
	assert.True(t, cfg.BeginAtZero)
	assert.Equal(t, "Demand Trends Over Years", cfg.Title)
	assert.Equal(t, []string{"2019", "2020"}, cfg.Labels)
	require.Len(t, cfg.Series, 4)
	assert.Equal(t, "Total Units Sold", cfg.Series[0].Label)
	assert.Equal(t, Blue, cfg.Series[0].Color)
	assert.True(t, math.IsNaN(cfg.Series[3].Values[1]), "missing shop_sold must be NaN")
}

func TestMap_DemandComparisonEmpty(t *testing.T) {
	cfg := Map(decode(t, `{"type":"demand_comparison","data":{}}`))
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.Series)
	assert.Empty(t, cfg.Labels)
	assert.True(t, cfg.IsEmpty())
}

func TestMap_ComparisonSeriesAndPalette(t *testing.T) {
	p := decode(t, `{"type":"price_comparison","data":{
		"A":[{"year":2020,"avg_flat_rate":1},{"year":2021,"avg_flat_rate":2}],
		"B":[{"year":2020,"avg_flat_rate":3}],
		"C":[],
		"D":[],
		"E":[]
	}}`)
	cfg := Map(p)
	require.NotNil(t, cfg)

	assert.Equal(t, StyleLine, cfg.Style)
	assert.Equal(t, "Price Comparison Across Localities", cfg.Title)
	assert.Equal(t, []string{"2020", "2021"}, cfg.Labels, "x axis comes from the first locality")
	require.Len(t, cfg.Series, 5)
	assert.Equal(t, "A - Flat Rate", cfg.Series[0].Label)
	assert.Equal(t, "B - Flat Rate", cfg.Series[1].Label)

	want := []Color{Teal, Pink, Gold, Blue, Teal}
	for i, s := range cfg.Series {
		assert.Equal(t, want[i], s.Color, "series %d", i)
	}
}

func TestMap_DemandComparisonLabels(t *testing.T) {
	cfg := Map(decode(t, `{"type":"demand_comparison","data":{"Aundh":[{"year":2022,"total_sold":40}]}}`))
	require.NotNil(t, cfg)
	assert.Equal(t, StyleBar, cfg.Style)
	assert.True(t, cfg.BeginAtZero)
	assert.Equal(t, "Aundh - Total Sold", cfg.Series[0].Label)
	assert.Equal(t, []float64{40}, cfg.Series[0].Values)
}

func TestColor_Hex(t *testing.T) {
	assert.Equal(t, "#4bc0c0", Teal.Hex())
	assert.Equal(t, "#ff6384", Pink.Hex())
}

// =============================================================================
// RENDER TESTS
// =============================================================================

func sampleTrend(t *testing.T, kind Kind) *Config {
	t.Helper()
	return Map(decode(t, `{"type":"`+string(kind)+`","data":[
		{"year":2018,"avg_flat_rate":4000,"avg_office_rate":5000,"avg_shop_rate":6000,"total_sold":100,"flat_sold":60,"office_sold":30,"shop_sold":10},
		{"year":2019,"avg_flat_rate":4200,"avg_office_rate":5100,"avg_shop_rate":null,"total_sold":120,"flat_sold":70,"office_sold":35,"shop_sold":15},
		{"year":2020,"avg_flat_rate":4500,"avg_office_rate":5300,"avg_shop_rate":6400,"total_sold":90,"flat_sold":50,"office_sold":30,"shop_sold":10}
	]}`))
}

func TestRender_Line(t *testing.T) {
	out := Render(sampleTrend(t, KindPriceTrend), 60, 8)
	assert.Contains(t, out, "Price Trends Over Years")
	assert.Contains(t, out, "2018")
	assert.Contains(t, out, "2020")
	assert.Contains(t, out, string(markerRune))
	assert.Contains(t, out, "Flat Avg Rate")
}

func TestRender_Bar(t *testing.T) {
	out := Render(sampleTrend(t, KindDemandTrend), 60, 8)
	assert.Contains(t, out, "Demand Trends Over Years")
	assert.Contains(t, out, string(barRune))
	assert.Contains(t, out, "0", "bar charts start at zero")
}

func TestRender_EmptyConfig(t *testing.T) {
	assert.Equal(t, "", Render(nil, 80, 10))
	assert.Equal(t, "", Render(&Config{Labels: []string{}}, 80, 10))
}

func TestRender_TinySizesClamp(t *testing.T) {
	out := Render(sampleTrend(t, KindPriceTrend), 1, 1)
	assert.NotEmpty(t, out)
}

func TestRenderPNG(t *testing.T) {
	for _, kind := range []Kind{KindPriceTrend, KindDemandTrend} {
		t.Run(kind.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderPNG(sampleTrend(t, kind), &buf, 800, 400))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "output must be a PNG")
		})
	}
}

func TestRenderPNG_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderPNG(nil, &buf, 800, 400), ErrNoChart)

	allMissing := &Config{Labels: []string{"2020"}, Series: []Series{{Label: "x", Values: []float64{math.NaN()}}}}
	assert.ErrorIs(t, RenderPNG(allMissing, &buf, 800, 400), ErrNoChart)
}
