// Package selection tracks which charts a session has picked for insight
// generation, with a bounded snapshot of each chart's data.
package selection

import (
	"encoding/json"

	"outlet-insights-go/internal/charts"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/stats"
	"outlet-insights-go/internal/types"
)

// PackedFrame is a table capped for transport. NRows is the row count of
// the source table, which may exceed len(Records).
type PackedFrame struct {
	Columns []string
	Records []frame.Row
	NRows   int
}

// Pack copies at most maxRows rows of t. maxRows <= 0 keeps every row.
func Pack(t *frame.Table, maxRows int) *PackedFrame {
	if t == nil {
		return nil
	}
	var head *frame.Table
	if maxRows > 0 {
		head = t.Head(maxRows)
	} else {
		head = t.Clone()
	}
	return &PackedFrame{Columns: head.Columns, Records: head.Rows, NRows: t.Len()}
}

// Table rebuilds the packed rows as a table.
func (p *PackedFrame) Table() *frame.Table {
	if p == nil {
		return frame.New()
	}
	return frame.FromRows(p.Columns, p.Records)
}

func (p *PackedFrame) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Columns []string         `json:"columns"`
		Records []map[string]any `json:"records"`
		NRows   int              `json:"n_rows"`
	}{p.Columns, stats.Records(p.Records), p.NRows})
}

// Entry is the snapshot taken when a chart is selected. The alternate
// scatter granularity and the radar's gap bars share the full frame, so
// only their chart-level rows are kept.
type Entry struct {
	Chart    types.ChartID    `json:"chart"`
	Full     *PackedFrame     `json:"full"`
	Data     *PackedFrame     `json:"chart_data"`
	Meta     *charts.Metadata `json:"meta,omitempty"`
	AltChart *PackedFrame     `json:"alt_chart,omitempty"`
	GapChart *PackedFrame     `json:"gap_chart,omitempty"`
}

// NewEntry snapshots a resolved frame.
func NewEntry(fr charts.Frame, maxRows int) Entry {
	e := Entry{
		Chart: fr.Chart,
		Full:  Pack(fr.Detail, maxRows),
		Data:  Pack(fr.Data, maxRows),
		Meta:  fr.Meta,
	}
	if fr.Alt != nil {
		e.AltChart = Pack(fr.Alt, maxRows)
	}
	if fr.Gap != nil {
		e.GapChart = Pack(fr.Gap, maxRows)
	}
	return e
}

// Store is the ordered set of selected charts. It is not safe for
// concurrent use; the owning session serializes access.
type Store struct {
	order   []types.ChartID
	entries map[types.ChartID]Entry
}

func NewStore() *Store {
	return &Store{entries: map[types.ChartID]Entry{}}
}

// Toggle selects the chart with the given snapshot, or deselects it when
// it is already selected. It reports whether the chart is now selected.
func (s *Store) Toggle(e Entry) bool {
	if _, ok := s.entries[e.Chart]; ok {
		delete(s.entries, e.Chart)
		for i, id := range s.order {
			if id == e.Chart {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}
	s.entries[e.Chart] = e
	s.order = append(s.order, e.Chart)
	return true
}

// Refresh replaces the snapshot of an already selected chart.
func (s *Store) Refresh(e Entry) {
	if _, ok := s.entries[e.Chart]; ok {
		s.entries[e.Chart] = e
	}
}

func (s *Store) Clear() {
	s.order = nil
	s.entries = map[types.ChartID]Entry{}
}

// IDs returns the selected charts in selection order.
func (s *Store) IDs() []types.ChartID {
	return append([]types.ChartID(nil), s.order...)
}

func (s *Store) Get(id types.ChartID) (Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

func (s *Store) Selected(id types.ChartID) bool {
	_, ok := s.entries[id]
	return ok
}

func (s *Store) Len() int { return len(s.order) }
