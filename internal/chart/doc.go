// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chart maps analysis chart payloads to chart configs and draws them.
//
// A Payload decodes the service's {type, data} object into one of four
// variants (PriceTrend, DemandTrend, PriceComparison, DemandComparison).
// Map turns a variant into a Config with series, colors and axis titles.
// Render draws a Config as colored text; RenderPNG rasterises it with go-chart.
//
//	var p chart.Payload
//	_ = json.Unmarshal(raw, &p)
//	if cfg := chart.Map(&p); cfg != nil {
//	    fmt.Println(chart.Render(cfg, 80, 12))
//	}
package chart
