// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package table renders the analysis service's table_data rows.
package table

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/jeranaias/realty-tui/internal/util"
)

// =============================================================================
// CELLS
// =============================================================================

// Cell is one table value. The service sends either preformatted strings
// ("₹1,234", "N/A") or plain numbers; both are kept as display text.
type Cell struct {
	Text    string
	Present bool

	// Raw is the value as the service sent it.
	Raw json.RawMessage

	// Number holds the value when the service sent a JSON number.
	Number   float64
	IsNumber bool
}

// UnmarshalJSON accepts a string, a number, a bool or null.
// Null, "" and false count as absent. Anything else non-scalar decodes to
// an empty present cell.
func (c *Cell) UnmarshalJSON(b []byte) error {
	*c = Cell{}

	b = bytes.TrimSpace(b)
	c.Raw = append(json.RawMessage(nil), b...)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte("false")) {
		return nil
	}
	c.Present = true

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			c.Text = s
		}
		c.Present = c.Text != ""
	case 't':
		c.Text = string(b)
	case '{', '[':
		// not a scalar; render as empty
	default:
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			c.Number, c.IsNumber = f, true
			c.Text = util.FormatNumber(f)
		}
	}
	return nil
}

// MarshalJSON writes the value as it was received. Cells built in code are
// written as their number, their text, or null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch {
	case len(c.Raw) > 0:
		return c.Raw, nil
	case c.IsNumber:
		return json.Marshal(c.Number)
	case !c.Present:
		return []byte("null"), nil
	}
	return json.Marshal(c.Text)
}

// sent reports whether the field appeared in the decoded row.
func (c Cell) sent() bool {
	return len(c.Raw) > 0 || c.Present
}

// Plain returns the cell with numbers written without grouping separators.
func (c Cell) Plain() Cell {
	if c.IsNumber {
		c.Text = strconv.FormatFloat(c.Number, 'f', -1, 64)
	}
	return c
}

// String returns the display text.
func (c Cell) String() string {
	return c.Text
}

// =============================================================================
// ROWS
// =============================================================================

// Row is one table_data entry. Missing fields render as empty.
type Row struct {
	Locality      Cell `json:"locality"`
	Year          Cell `json:"year"`
	TotalSales    Cell `json:"total_sales"`
	TotalSold     Cell `json:"total_sold"`
	FlatAvgRate   Cell `json:"flat_avg_rate"`
	OfficeAvgRate Cell `json:"office_avg_rate"`
	ShopAvgRate   Cell `json:"shop_avg_rate"`
	TotalUnits    Cell `json:"total_units"`
	CarpetArea    Cell `json:"carpet_area"`
}

// rowJSON mirrors Row with fields the service did not send left out.
type rowJSON struct {
	Locality      *Cell `json:"locality,omitempty"`
	Year          *Cell `json:"year,omitempty"`
	TotalSales    *Cell `json:"total_sales,omitempty"`
	TotalSold     *Cell `json:"total_sold,omitempty"`
	FlatAvgRate   *Cell `json:"flat_avg_rate,omitempty"`
	OfficeAvgRate *Cell `json:"office_avg_rate,omitempty"`
	ShopAvgRate   *Cell `json:"shop_avg_rate,omitempty"`
	TotalUnits    *Cell `json:"total_units,omitempty"`
	CarpetArea    *Cell `json:"carpet_area,omitempty"`
}

// MarshalJSON writes only the fields that were sent.
func (r Row) MarshalJSON() ([]byte, error) {
	field := func(c Cell) *Cell {
		if !c.sent() {
			return nil
		}
		return &c
	}
	return json.Marshal(rowJSON{
		Locality:      field(r.Locality),
		Year:          field(r.Year),
		TotalSales:    field(r.TotalSales),
		TotalSold:     field(r.TotalSold),
		FlatAvgRate:   field(r.FlatAvgRate),
		OfficeAvgRate: field(r.OfficeAvgRate),
		ShopAvgRate:   field(r.ShopAvgRate),
		TotalUnits:    field(r.TotalUnits),
		CarpetArea:    field(r.CarpetArea),
	})
}

// Column is a rendered column.
type Column struct {
	Header string
	Value  func(Row) Cell
}

var localityColumn = Column{"Locality", func(r Row) Cell { return r.Locality }}

var baseColumns = []Column{
	{"Year", func(r Row) Cell { return r.Year.Plain() }},
	{"Total Sales", func(r Row) Cell { return r.TotalSales }},
	{"Units Sold", func(r Row) Cell { return r.TotalSold }},
	{"Flat Avg Rate", func(r Row) Cell { return r.FlatAvgRate }},
	{"Office Avg Rate", func(r Row) Cell { return r.OfficeAvgRate }},
	{"Shop Avg Rate", func(r Row) Cell { return r.ShopAvgRate }},
	{"Total Units", func(r Row) Cell { return r.TotalUnits }},
	{"Carpet Area", func(r Row) Cell { return r.CarpetArea }},
}

// HasLocality reports whether the Locality column is shown.
// Only the first row is inspected; later rows without a locality get an
// empty cell.
func HasLocality(rows []Row) bool {
	return len(rows) > 0 && rows[0].Locality.Present
}

// Columns returns the columns to render for rows, in display order.
func Columns(rows []Row) []Column {
	if HasLocality(rows) {
		return append([]Column{localityColumn}, baseColumns...)
	}
	cols := make([]Column, len(baseColumns))
	copy(cols, baseColumns)
	return cols
}

// Headers returns the column headings for rows.
func Headers(rows []Row) []string {
	cols := Columns(rows)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	return headers
}

// Cells returns the display text of every row, column by column.
func Cells(rows []Row) [][]string {
	cols := Columns(rows)
	out := make([][]string, len(rows))
	for i, r := range rows {
		line := make([]string, len(cols))
		for j, c := range cols {
			line[j] = c.Value(r).Text
		}
		out[i] = line
	}
	return out
}

// =============================================================================
// RENDERING
// =============================================================================

// maxCellWidth caps a single cell before the table is fitted to the width.
const maxCellWidth = 24

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#4B5563"})
)

// Render draws rows as a bordered table no wider than width.
// Returns "" when there are no rows.
func Render(rows []Row, width int) string {
	if len(rows) == 0 {
		return ""
	}

	cells := Cells(rows)
	for _, line := range cells {
		for j := range line {
			line[j] = util.Truncate(line[j], maxCellWidth)
		}
	}

	t := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(Headers(rows)...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	out := t.String()
	if width > 0 && lipgloss.Width(out) > width {
		out = t.Width(width).String()
	}
	return out
}
