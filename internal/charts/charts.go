// Package charts resolves, for every dashboard chart, the exact rows the
// chart is showing under the current filters.
package charts

import (
	"errors"
	"fmt"
	"strings"

	"outlet-insights-go/internal/dataset"
	"outlet-insights-go/internal/filter"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/stats"
	"outlet-insights-go/internal/types"
)

var ErrUnknownChart = errors.New("unknown chart")

// ColumnsError reports a table lacking the columns a chart needs.
type ColumnsError struct {
	Chart   types.ChartID
	Missing []string
}

func (e *ColumnsError) Error() string {
	return "required columns: " + strings.Join(e.Missing, ", ")
}

// Input is what a resolver reads: the combined tables of the chart's tab
// and the session's filter model.
type Input struct {
	Tables  dataset.Tables
	Filters filter.State
	Tab3    filter.Tab3Local
	Axis    filter.AxisState
}

// Scatter granularities.
const (
	ModeOutlet = "outlet"
	ModeRegion = "region"
)

// Metadata describes how a chart maps its columns onto the plot.
type Metadata struct {
	X            string                 `json:"x,omitempty"`
	Y            string                 `json:"y,omitempty"`
	Color        string                 `json:"color,omitempty"`
	Mode         string                 `json:"mode,omitempty"`
	Stats        map[string]stats.Stats `json:"stats,omitempty"`
	CorrelationR *stats.Num             `json:"correlation_r,omitempty"`
}

// Frame is one chart's resolved data.
type Frame struct {
	Chart types.ChartID
	Label string
	// Data is what the chart draws.
	Data *frame.Table
	// Detail is the row-level table Data was derived from.
	Detail *frame.Table
	// Alt is the other granularity of a mode-switching scatter.
	Alt *frame.Table
	// Gap holds the gap bars scoped like the radar.
	Gap  *frame.Table
	Meta *Metadata
	// Note is set when the chart degraded to empty.
	Note string
}

// Empty reports a frame with nothing to draw.
func (f Frame) Empty() bool { return f.Data.Len() == 0 }

type resolveFunc func(Input) (Frame, error)

// Spec is one entry of the chart catalogue.
type Spec struct {
	ID        types.ChartID
	Tab       types.Tab
	Label     string
	Clickable bool
	resolve   resolveFunc
}

var catalogue = []Spec{
	{ID: types.ChartPerfQuality, Tab: types.Tab1, Label: "Performance vs quality", resolve: perfQuality},
	{ID: types.ChartCategoryMix, Tab: types.Tab1, Label: "Outlet category mix by region", Clickable: true, resolve: categoryMix},
	{ID: types.ChartRegionPerf, Tab: types.Tab1, Label: "Region performance", Clickable: true, resolve: regionPerformance},
	{ID: types.ChartTopOutlets, Tab: types.Tab1, Label: "Top 20 outlets by total score", Clickable: true, resolve: ranked(true)},
	{ID: types.ChartBottomOutlets, Tab: types.Tab1, Label: "Bottom 20 outlets by total score", Clickable: true, resolve: ranked(false)},
	{ID: types.ChartCategoryCount, Tab: types.Tab1, Label: "Outlet count by category", Clickable: true, resolve: categoryCount},
	{ID: types.ChartKPIScatter, Tab: types.Tab2, Label: "KPI scatter", Clickable: true, resolve: kpiScatter},
	{ID: types.ChartKPIByCategory, Tab: types.Tab2, Label: "Average KPI achievement by category", resolve: kpiByCategory},
	{ID: types.ChartKPIGap, Tab: types.Tab3, Label: "KPI gap to target", Clickable: true, resolve: kpiGap},
	{ID: types.ChartRadar, Tab: types.Tab3, Label: "Capability radar by outlet type", resolve: radar},
}

// Catalogue lists every chart in dashboard order.
func Catalogue() []Spec {
	return append([]Spec(nil), catalogue...)
}

func Lookup(id types.ChartID) (Spec, error) {
	for _, s := range catalogue {
		if s.ID == id {
			return s, nil
		}
	}
	return Spec{}, fmt.Errorf("%w: %q", ErrUnknownChart, id)
}

// Resolve derives the chart's frame. A column mismatch is returned as a
// *ColumnsError.
func (s Spec) Resolve(in Input) (Frame, error) {
	fr, err := s.resolve(in)
	if err != nil {
		return Frame{Chart: s.ID, Label: s.Label}, err
	}
	fr.Chart, fr.Label = s.ID, s.Label
	if fr.Data == nil {
		fr.Data = frame.New()
	}
	if fr.Detail == nil {
		fr.Detail = frame.New()
	}
	return fr, nil
}

// Render is Resolve for display: a column mismatch degrades to an empty
// frame annotated with the missing columns.
func (s Spec) Render(in Input) Frame {
	fr, err := s.Resolve(in)
	if err != nil {
		fr.Data, fr.Detail = frame.New(), frame.New()
		fr.Note = err.Error()
	}
	return fr
}

func requireColumns(id types.ChartID, t *frame.Table, cols ...string) error {
	if missing := t.Missing(cols...); len(missing) > 0 {
		return &ColumnsError{Chart: id, Missing: missing}
	}
	return nil
}

// describeAxes attaches axis statistics and the x/y correlation.
func (m *Metadata) describeAxes(data *frame.Table) {
	if m.X == "" || m.Y == "" {
		return
	}
	m.Stats = stats.Describe(data.Select(m.X, m.Y))
	if r, ok := pearson(data, m.X, m.Y); ok {
		n := stats.Num(r)
		m.CorrelationR = &n
	}
}
