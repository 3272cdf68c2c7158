// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// =============================================================================
// CHART KINDS
// =============================================================================

// Kind is the chart type discriminator sent by the analysis service.
type Kind string

const (
	KindPriceTrend       Kind = "price_trend"
	KindDemandTrend      Kind = "demand_trend"
	KindPriceComparison  Kind = "price_comparison"
	KindDemandComparison Kind = "demand_comparison"
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	return string(k)
}

// =============================================================================
// RECORDS
// =============================================================================

// YearRecord is one year of metrics for a locality.
// Metrics are pointers because the service sends null for years with no data.
type YearRecord struct {
	Year          int      `json:"year"`
	AvgFlatRate   *float64 `json:"avg_flat_rate,omitempty"`
	AvgOfficeRate *float64 `json:"avg_office_rate,omitempty"`
	AvgShopRate   *float64 `json:"avg_shop_rate,omitempty"`
	TotalSold     *float64 `json:"total_sold,omitempty"`
	FlatSold      *float64 `json:"flat_sold,omitempty"`
	OfficeSold    *float64 `json:"office_sold,omitempty"`
	ShopSold      *float64 `json:"shop_sold,omitempty"`
}

// Localities maps locality name to its yearly records, in the order the
// service listed them.
type Localities = orderedmap.OrderedMap[string, []YearRecord]

// NewLocalities returns an empty ordered locality map.
func NewLocalities() *Localities {
	return orderedmap.New[string, []YearRecord]()
}

// =============================================================================
// TAGGED UNION
// =============================================================================

// Data is implemented by the four chart payload variants only.
type Data interface {
	Kind() Kind
	isData()
}

// PriceTrend is a single locality's rates over time.
type PriceTrend struct {
	Records []YearRecord
}

// DemandTrend is a single locality's units sold over time.
type DemandTrend struct {
	Records []YearRecord
}

// PriceComparison holds per-locality rate histories.
type PriceComparison struct {
	Localities *Localities
}

// DemandComparison holds per-locality sales histories.
type DemandComparison struct {
	Localities *Localities
}

func (PriceTrend) Kind() Kind       { return KindPriceTrend }
func (DemandTrend) Kind() Kind      { return KindDemandTrend }
func (PriceComparison) Kind() Kind  { return KindPriceComparison }
func (DemandComparison) Kind() Kind { return KindDemandComparison }

func (PriceTrend) isData()       {}
func (DemandTrend) isData()      {}
func (PriceComparison) isData()  {}
func (DemandComparison) isData() {}

// Payload is the chart_data field of an analysis response.
// Data is nil when the service sent no chart, an unknown type, or a data
// field of the wrong shape.
type Payload struct {
	Data Data
}

// HasData reports whether the payload carries a renderable variant.
func (p *Payload) HasData() bool {
	return p != nil && p.Data != nil
}

type wirePayload struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// UnmarshalJSON decodes the wire form into the matching variant.
// Shape errors are logged and leave Data nil rather than failing the
// surrounding response.
func (p *Payload) UnmarshalJSON(b []byte) error {
	p.Data = nil

	var wire wirePayload
	if err := json.Unmarshal(b, &wire); err != nil {
		slog.Debug("chart payload is not an object", "err", err)
		return nil
	}
	raw := bytes.TrimSpace(wire.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	data, err := decodeData(wire.Type, raw)
	if err != nil {
		slog.Debug("chart payload ignored", "type", wire.Type, "err", err)
		return nil
	}
	p.Data = data
	return nil
}

// MarshalJSON encodes the variant back into its wire form.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.Data == nil {
		return []byte("{}"), nil
	}

	var data any
	switch d := p.Data.(type) {
	case *PriceTrend:
		data = d.Records
	case *DemandTrend:
		data = d.Records
	case *PriceComparison:
		data = d.Localities
	case *DemandComparison:
		data = d.Localities
	default:
		return nil, fmt.Errorf("chart: unsupported payload %T", p.Data)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wirePayload{Type: p.Data.Kind(), Data: raw})
}

func decodeData(kind Kind, raw []byte) (Data, error) {
	switch kind {
	case KindPriceTrend, KindDemandTrend:
		var records []YearRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, err
		}
		if kind == KindPriceTrend {
			return &PriceTrend{Records: records}, nil
		}
		return &DemandTrend{Records: records}, nil

	case KindPriceComparison, KindDemandComparison:
		locs := NewLocalities()
		if err := json.Unmarshal(raw, locs); err != nil {
			return nil, err
		}
		if kind == KindPriceComparison {
			return &PriceComparison{Localities: locs}, nil
		}
		return &DemandComparison{Localities: locs}, nil

	default:
		return nil, fmt.Errorf("unknown chart type %q", kind)
	}
}
