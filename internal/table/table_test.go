// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package table

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(t *testing.T, raw string) []Row {
	t.Helper()
	var out []Row
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestCell_Decode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		present bool
	}{
		{"string", `{"total_sales":"₹1,234"}`, "₹1,234", true},
		{"not available", `{"total_sales":"N/A"}`, "N/A", true},
		{"integer", `{"total_sales":1234567}`, "1,234,567", true},
		{"float", `{"total_sales":12.5}`, "12.50", true},
		{"null", `{"total_sales":null}`, "", false},
		{"empty string", `{"total_sales":""}`, "", false},
		{"object", `{"total_sales":{"a":1}}`, "", true},
		{"missing", `{}`, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := rows(t, "["+tc.raw+"]")[0]
			assert.Equal(t, tc.want, r.TotalSales.Text)
			assert.Equal(t, tc.present, r.TotalSales.Present)
		})
	}
}

func TestCell_YearIsNotGrouped(t *testing.T) {
	r := rows(t, `[{"year":2020}]`)
	assert.Equal(t, "2020", Cells(r)[0][0])
}

func TestHasLocality_FirstRowDecides(t *testing.T) {
	withFirst := rows(t, `[{"locality":"Wakad","year":2020},{"year":2021}]`)
	assert.True(t, HasLocality(withFirst))
	cells := Cells(withFirst)
	assert.Equal(t, "Wakad", cells[0][0])
	assert.Equal(t, "", cells[1][0], "later rows without locality get an empty cell")

	withoutFirst := rows(t, `[{"year":2020},{"locality":"Aundh","year":2021}]`)
	assert.False(t, HasLocality(withoutFirst))
	assert.Equal(t, "Year", Headers(withoutFirst)[0])

	assert.False(t, HasLocality(nil))
}

func TestHasLocality_NullOrEmptyFirstRow(t *testing.T) {
	assert.False(t, HasLocality(rows(t, `[{"locality":null,"year":2020}]`)))
	assert.False(t, HasLocality(rows(t, `[{"locality":"","year":2020}]`)))
	assert.Equal(t, "Year", Headers(rows(t, `[{"locality":null}]`))[0])
}

func TestRow_EncodesAsReceived(t *testing.T) {
	raw := `[{"year":2020,"total_sold":1234,"total_units":5678.5,"total_sales":"₹1,234","locality":null}]`
	out, err := json.Marshal(rows(t, raw))
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	out, err = json.Marshal(Row{Year: Cell{Number: 2021, IsNumber: true, Present: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":2021}`, string(out))
}

func TestHeaders(t *testing.T) {
	r := rows(t, `[{"locality":"Wakad"}]`)
	assert.Equal(t, []string{
		"Locality", "Year", "Total Sales", "Units Sold", "Flat Avg Rate",
		"Office Avg Rate", "Shop Avg Rate", "Total Units", "Carpet Area",
	}, Headers(r))
	assert.Len(t, Headers(rows(t, `[{}]`)), 8)
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, "", Render(nil, 80))
	assert.Equal(t, "", Render([]Row{}, 80))
}

func TestRender_OneLinePerRow(t *testing.T) {
	r := rows(t, `[
		{"locality":"Wakad","year":2020,"total_sales":"₹1,000","total_sold":12,"carpet_area":"1,200 sqft"},
		{"locality":"Aundh","year":2021,"total_sales":"N/A","total_sold":7}
	]`)
	out := Render(r, 200)
	assert.Contains(t, out, "Locality")
	assert.Contains(t, out, "Wakad")
	assert.Contains(t, out, "Aundh")
	assert.Contains(t, out, "1,200 sqft")

	var dataLines int
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Wakad") || strings.Contains(line, "Aundh") {
			dataLines++
		}
	}
	assert.Equal(t, 2, dataLines)
}

func TestRender_FitsWidth(t *testing.T) {
	r := rows(t, `[{"locality":"Ambegaon Budruk","year":2020,"total_sales":"₹123,456,789","total_sold":1200,
		"flat_avg_rate":"₹5,000","office_avg_rate":"₹6,000","shop_avg_rate":"₹7,000","total_units":400,"carpet_area":"90,000 sqft"}]`)
	out := Render(r, 100)
	assert.LessOrEqual(t, lipgloss.Width(out), 100)
}

func TestCell_MarshalJSON(t *testing.T) {
	r := rows(t, `[{"year":2020,"total_sales":"₹1"}]`)[0]
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"total_sales":"₹1"`)
	assert.Contains(t, string(b), `"locality":null`)
}
