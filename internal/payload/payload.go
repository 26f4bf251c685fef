// Package payload assembles what the insight prompts see: one entry per
// selected chart with its live rows and statistics.
package payload

import (
	"errors"
	"fmt"

	"outlet-insights-go/internal/charts"
	"outlet-insights-go/internal/filter"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/logger"
	"outlet-insights-go/internal/selection"
	"outlet-insights-go/internal/stats"
	"outlet-insights-go/internal/types"
)

var (
	ErrNothingSelected = errors.New("no chart selected")
	ErrNoData          = errors.New("no data available for the selected charts")
)

type GroupStats = map[string]map[string]map[string]stats.Extent

// ContextStats covers the whole multi-month detail table behind a chart.
type ContextStats struct {
	LargeComputedStats map[string]stats.Stats `json:"large_computed_stats"`
	LargeGroupStats    GroupStats             `json:"large_group_stats,omitempty"`
}

// MonthMix is the per-month category share breakdown attached to the
// category mix chart.
type MonthMix struct {
	ByMonth       []map[string]any `json:"by_month"`
	ByMonthRegion []map[string]any `json:"by_month_region"`
}

// Chart is one entry of the payload.
type Chart struct {
	GraphID       types.ChartID          `json:"graph_id"`
	GraphLabel    string                 `json:"graph_label"`
	Month         string                 `json:"month,omitempty"`
	Filters       filter.State           `json:"filters"`
	Tab3Filters   *filter.Tab3Local      `json:"tab3_filters,omitempty"`
	Columns       []string               `json:"columns"`
	NRows         int                    `json:"n_rows"`
	Rows          []map[string]any       `json:"rows"`
	ComputedStats map[string]stats.Stats `json:"computed_stats,omitempty"`
	GroupStats    GroupStats             `json:"group_stats,omitempty"`
	ContextStats  *ContextStats          `json:"context_stats,omitempty"`
	MonthMix      *MonthMix              `json:"month_mix,omitempty"`
	Meta          *charts.Metadata       `json:"meta,omitempty"`

	// Data is every row of the chart, uncapped.
	Data *frame.Table `json:"-"`
	// Full is the filtered detail table behind Data, uncapped.
	Full *frame.Table `json:"-"`
	// FromSnapshot marks an entry built from the selection snapshot.
	FromSnapshot bool `json:"-"`
}

// Analytical is the table chunked summarization works over: the full
// detail when there is one, else the chart rows.
func (c Chart) Analytical() *frame.Table {
	if c.Full != nil && c.Full.Len() > 0 {
		return c.Full
	}
	return c.Data
}

// Metadata is the axis state shared by every entry.
type Metadata struct {
	XAxis  string `json:"x_axis"`
	YAxis  string `json:"y_axis"`
	Legend string `json:"legend"`
}

type Payload struct {
	Charts   []Chart  `json:"charts"`
	Metadata Metadata `json:"metadata"`
}

// LiveFunc recomputes a chart under the given filters.
type LiveFunc func(id types.ChartID, f filter.State) (charts.Frame, error)

// Request is everything one assembly reads.
type Request struct {
	Selected []types.ChartID
	Store    *selection.Store
	Filters  filter.State
	Tab3     filter.Tab3Local
	Axis     filter.AxisState
}

type Assembler struct {
	Live    LiveFunc
	MaxRows int
}

func NewAssembler(live LiveFunc, maxRows int) *Assembler {
	return &Assembler{Live: live, MaxRows: maxRows}
}

// Assemble builds the payload. With month comparison active every chart
// contributes one entry per month and no pooled entry. A chart that fails
// to build is skipped.
func (a *Assembler) Assemble(req Request) (*Payload, error) {
	if len(req.Selected) == 0 {
		return nil, ErrNothingSelected
	}
	log := logger.Component("payload")
	out := &Payload{Metadata: Metadata{XAxis: req.Axis.X, YAxis: req.Axis.Y, Legend: string(req.Axis.Legend)}}

	for _, id := range req.Selected {
		spec, err := charts.Lookup(id)
		if err != nil {
			log.WithError(err).WithField("chart", id).Warn("skipping chart")
			continue
		}
		var entries []Chart
		if req.Filters.Comparing() {
			entries = a.perMonth(spec, req)
		} else if c, err := a.pooled(spec, req); err != nil {
			log.WithError(err).WithField("chart", id).Warn("skipping chart")
		} else {
			entries = []Chart{c}
		}
		out.Charts = append(out.Charts, entries...)
	}
	if len(out.Charts) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

func (a *Assembler) pooled(spec charts.Spec, req Request) (Chart, error) {
	fr, snap, err := a.frameFor(spec.ID, req.Filters, req.Store, "")
	if err != nil {
		return Chart{}, err
	}
	c := a.entry(spec, req, req.Filters, fr)
	c.FromSnapshot = snap
	if len(req.Filters.Months) > 1 && fr.Detail.Len() > 0 {
		c.ContextStats = &ContextStats{
			LargeComputedStats: stats.Describe(fr.Detail),
			LargeGroupStats:    stats.GroupStats(fr.Detail),
		}
	}
	return c, nil
}

func (a *Assembler) perMonth(spec charts.Spec, req Request) []Chart {
	var out []Chart
	for _, m := range req.Filters.Months {
		f := req.Filters.ForMonth(m)
		fr, snap, err := a.frameFor(spec.ID, f, req.Store, m)
		if err != nil {
			logger.Component("payload").WithError(err).WithField("chart", spec.ID).WithField("month", m).Debug("no rows for month")
			continue
		}
		c := a.entry(spec, req, f, fr)
		c.Month = m
		c.FromSnapshot = snap
		out = append(out, c)
	}
	return out
}

// frameFor prefers the live recomputation and falls back to the selection
// snapshot when it fails or comes back empty. month narrows the snapshot
// to one period.
func (a *Assembler) frameFor(id types.ChartID, f filter.State, store *selection.Store, month string) (charts.Frame, bool, error) {
	var liveErr error
	if a.Live != nil {
		fr, err := a.Live(id, f)
		if err == nil && !fr.Empty() {
			return fr, false, nil
		}
		liveErr = err
	}
	if store != nil {
		if e, ok := store.Get(id); ok {
			fr := charts.Frame{Chart: id, Data: e.Data.Table(), Detail: e.Full.Table(), Meta: e.Meta}
			if month != "" {
				fr.Data = onlyMonth(fr.Data, month)
				fr.Detail = onlyMonth(fr.Detail, month)
			}
			if !fr.Empty() {
				return fr, true, nil
			}
		}
	}
	if liveErr != nil {
		return charts.Frame{}, false, fmt.Errorf("resolve %s: %w", id, liveErr)
	}
	return charts.Frame{}, false, fmt.Errorf("resolve %s: %w", id, ErrNoData)
}

func (a *Assembler) entry(spec charts.Spec, req Request, f filter.State, fr charts.Frame) Chart {
	rows := fr.Data
	if a.MaxRows > 0 {
		rows = fr.Data.Head(a.MaxRows)
	}
	c := Chart{
		GraphID:       spec.ID,
		GraphLabel:    spec.Label,
		Filters:       f.Clone(),
		Columns:       append([]string{}, fr.Data.Columns...),
		NRows:         fr.Data.Len(),
		Rows:          stats.Records(rows.Rows),
		ComputedStats: stats.Describe(fr.Data),
		GroupStats:    stats.GroupStats(fr.Data),
		Meta:          fr.Meta,
		Data:          fr.Data,
		Full:          fr.Detail,
	}
	if spec.Tab == types.Tab3 {
		t3 := req.Tab3.Clone()
		c.Tab3Filters = &t3
	}
	if spec.ID == types.ChartCategoryMix && fr.Detail.Has(types.ColMonth) {
		c.MonthMix = &MonthMix{
			ByMonth:       stats.Records(charts.CategoryMixByMonth(fr.Detail).Rows),
			ByMonthRegion: stats.Records(charts.CategoryMixByMonthRegion(fr.Detail).Rows),
		}
	}
	return c
}

// onlyMonth keeps one period's rows. A table without period labels cannot
// be split and yields no rows.
func onlyMonth(t *frame.Table, month string) *frame.Table {
	if !t.Has(types.ColMonth) {
		return frame.New(t.Columns...)
	}
	return t.Filter(func(r frame.Row) bool { return frame.String(r[types.ColMonth]) == month })
}

// DistinctCharts lists the chart ids in the payload in first-seen order.
func (p *Payload) DistinctCharts() []types.ChartID {
	var out []types.ChartID
	seen := map[types.ChartID]bool{}
	for _, c := range p.Charts {
		if !seen[c.GraphID] {
			seen[c.GraphID] = true
			out = append(out, c.GraphID)
		}
	}
	return out
}
