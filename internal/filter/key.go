package filter

import (
	"fmt"

	"outlet-insights-go/internal/types"
)

// Key identifies the chart point that drove the current filter state.
// Implementations are comparable, so two keys are the same point exactly
// when they are ==.
type Key interface {
	fmt.Stringer
	Chart() types.ChartID
	key()
}

// MixKey is a q2 category-mix bar.
type MixKey struct{ Category, Region string }

func (k MixKey) String() string {
	return fmt.Sprintf("q2|category=%s|region=%s", k.Category, k.Region)
}
func (MixKey) Chart() types.ChartID { return types.ChartCategoryMix }
func (MixKey) key() {}

// RegionKey is a q3 region bar.
type RegionKey struct{ Region string }

func (k RegionKey) String() string { return "q3|region=" + k.Region }
func (RegionKey) Chart() types.ChartID { return types.ChartRegionPerf }
func (RegionKey) key() {}

// OutletKey is a q4 or q5 ranked outlet bar.
type OutletKey struct {
	Board  types.ChartID
	Region string
	Outlet string
}

func (k OutletKey) String() string { return fmt.Sprintf("%s|region=%s|outlet=%s", k.Board, k.Region, k.Outlet) }
func (k OutletKey) Chart() types.ChartID { return k.Board }
func (OutletKey) key() {}

// CategoryKey is a q6 category count bar.
type CategoryKey struct{ Category string }

func (k CategoryKey) String() string { return "q6|category=" + k.Category }
func (CategoryKey) Chart() types.ChartID { return types.ChartCategoryCount }
func (CategoryKey) key() {}

// ScatterKey is a t2 point, keyed by region and the legend dimension.
type ScatterKey struct {
	Region string
	Legend types.LegendDim
	Value  string
}

func (k ScatterKey) String() string {
	if k.Legend == types.LegendType {
		return fmt.Sprintf("t2|r=%s|type=%s", k.Region, k.Value)
	}
	return fmt.Sprintf("t2|r=%s|cat=%s", k.Region, k.Value)
}
func (ScatterKey) Chart() types.ChartID { return types.ChartKPIScatter }
func (ScatterKey) key() {}

// GapKey is a t3g1 gap bar.
type GapKey struct{ Category string }

func (k GapKey) String() string { return "t3g1|category=" + k.Category }
func (GapKey) Chart() types.ChartID { return types.ChartKPIGap }
func (GapKey) key() {}

// Point carries the attributes of a clicked chart element.
type Point struct {
	Region   string          `json:"region,omitempty"`
	Category string          `json:"category,omitempty"`
	Type     string          `json:"type,omitempty"`
	Outlet   string          `json:"outlet,omitempty"`
	Legend   types.LegendDim `json:"legend,omitempty"`
}

// KeyFor derives the selection key of a click. ok is false for charts
// that do not react to clicks and for points missing the attributes the
// chart's key needs.
func KeyFor(chart types.ChartID, p Point) (Key, bool) {
	switch chart {
	case types.ChartCategoryMix:
		if p.Category == "" || p.Region == "" {
			return nil, false
		}
		return MixKey{Category: p.Category, Region: p.Region}, true
	case types.ChartRegionPerf:
		if p.Region == "" {
			return nil, false
		}
		return RegionKey{Region: p.Region}, true
	case types.ChartTopOutlets, types.ChartBottomOutlets:
		if p.Region == "" || p.Outlet == "" {
			return nil, false
		}
		return OutletKey{Board: chart, Region: p.Region, Outlet: p.Outlet}, true
	case types.ChartCategoryCount:
		if p.Category == "" {
			return nil, false
		}
		return CategoryKey{Category: p.Category}, true
	case types.ChartKPIScatter:
		if p.Region == "" {
			return nil, false
		}
		if p.Legend == types.LegendType {
			if p.Type == "" {
				return nil, false
			}
			return ScatterKey{Region: p.Region, Legend: types.LegendType, Value: p.Type}, true
		}
		if p.Category == "" {
			return nil, false
		}
		return ScatterKey{Region: p.Region, Legend: types.LegendCategory, Value: p.Category}, true
	case types.ChartKPIGap:
		if p.Category == "" {
			return nil, false
		}
		return GapKey{Category: p.Category}, true
	}
	return nil, false
}
