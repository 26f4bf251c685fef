// Package filter holds the dashboard filter state and the reducer that is
// its only writer.
package filter

import (
	"sort"
	"strings"

	"outlet-insights-go/internal/types"
)

// State is the global filter record of one dashboard session.
//
// Invariants kept by Reducer: Months is never empty, and CompareMonths
// implies len(Months) >= 2.
type State struct {
	Version       int      `json:"-"`
	Categories    []string `json:"outlet_categories"`
	Regions       []string `json:"regions"`
	Types         []string `json:"outlet_types"`
	Outlets       []string `json:"outlets"`
	SearchText    string   `json:"search_text"`
	Months        []string `json:"months"`
	CompareMonths bool     `json:"compare_months"`
}

// Defaults is the session-start state.
func Defaults(defaultPeriod string) State {
	return State{
		Categories: []string{},
		Regions:    []string{},
		Types:      []string{},
		Outlets:    []string{},
		Months:     []string{defaultPeriod},
	}
}

// Clone deep-copies the slices.
func (s State) Clone() State {
	s.Categories = clone(s.Categories)
	s.Regions = clone(s.Regions)
	s.Types = clone(s.Types)
	s.Outlets = clone(s.Outlets)
	s.Months = clone(s.Months)
	return s
}

// ForMonth narrows the state to a single period.
func (s State) ForMonth(month string) State {
	out := s.Clone()
	out.Months = []string{month}
	out.CompareMonths = false
	return out
}

// Comparing reports an active month comparison.
func (s State) Comparing() bool {
	return s.CompareMonths && len(s.Months) >= 2
}

// Shortfall selects which side of target tab-3 gap bars show.
type Shortfall string

const (
	ShortfallAny   Shortfall = "any"
	ShortfallBelow Shortfall = "below"
	ShortfallAbove Shortfall = "above"
)

func ParseShortfall(s string) Shortfall {
	switch Shortfall(strings.ToLower(strings.TrimSpace(s))) {
	case ShortfallBelow:
		return ShortfallBelow
	case ShortfallAbove:
		return ShortfallAbove
	}
	return ShortfallAny
}

// Tab3Local is the tab-3 filter scope. It survives global filter changes
// and resets only on an explicit clear.
type Tab3Local struct {
	Categories       []string  `json:"outlet_categories"`
	SalesCenterCodes []string  `json:"sales_center_codes"`
	Shortfall        Shortfall `json:"shortfall_side"`
	KPIFocus         string    `json:"kpi_focus,omitempty"`
}

func DefaultTab3() Tab3Local {
	return Tab3Local{Categories: []string{}, SalesCenterCodes: []string{}, Shortfall: ShortfallAny}
}

func (t Tab3Local) Clone() Tab3Local {
	t.Categories = clone(t.Categories)
	t.SalesCenterCodes = clone(t.SalesCenterCodes)
	return t
}

// Combine merges two selections: the intersection when both are set,
// otherwise whichever is set.
func Combine(a, b []string) []string {
	switch {
	case len(a) > 0 && len(b) > 0:
		in := map[string]bool{}
		for _, v := range b {
			in[v] = true
		}
		out := []string{}
		for _, v := range a {
			if in[v] {
				out = append(out, v)
			}
		}
		return out
	case len(a) > 0:
		return clone(a)
	default:
		return clone(b)
	}
}

// Tab3Categories is the category scope tab 3 reads: global and local
// combined, limited to the gap categories.
func Tab3Categories(global State, local Tab3Local) []string {
	combined := Combine(global.Categories, local.Categories)
	if len(combined) == 0 {
		return clone(types.GapCategories)
	}
	gap := map[string]bool{}
	for _, c := range types.GapCategories {
		gap[c] = true
	}
	out := []string{}
	for _, c := range combined {
		if gap[c] {
			out = append(out, c)
		}
	}
	return out
}

// AxisState is the tab-2 scatter axis and legend selection.
type AxisState struct {
	X      string          `json:"x_axis"`
	Y      string          `json:"y_axis"`
	Legend types.LegendDim `json:"legend"`
}

func DefaultAxis() AxisState {
	return AxisState{X: "revenue", Y: "csi_sales", Legend: types.LegendCategory}
}

// set canonicalizes a selection: trimmed, de-duplicated, sorted, never nil.
func set(values []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ordered de-duplicates preserving order.
func ordered(values []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func clone(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s...)
}
