// Package stats summarizes tables for the insight prompts: column-wise
// descriptive statistics and per-group extents.
package stats

import (
	"math"
	"sort"
	"time"

	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

// Stats is the description of one column. Keys depend on the column kind:
//
//	numeric:     min p25 median p75 max mean std count missing
//	boolean:     true_count false_count missing
//	datetime:    min max
//	categorical: non_null_count missing
//
// Categorical columns never disclose their most frequent value.
type Stats map[string]any

// Describe returns per-column statistics for every column of t.
func Describe(t *frame.Table) map[string]Stats {
	out := make(map[string]Stats)
	if t == nil {
		return out
	}
	for _, col := range t.Columns {
		switch t.Kind(col) {
		case frame.KindNumeric:
			out[col] = numeric(t, col)
		case frame.KindBoolean:
			out[col] = boolean(t, col)
		case frame.KindDatetime:
			out[col] = datetime(t, col)
		default:
			out[col] = categorical(t, col)
		}
	}
	return out
}

func numeric(t *frame.Table, col string) Stats {
	vals := t.Floats(col)
	sort.Float64s(vals)
	return Stats{
		"min":     Num(quantile(vals, 0)),
		"p25":     Num(quantile(vals, 0.25)),
		"median":  Num(quantile(vals, 0.5)),
		"p75":     Num(quantile(vals, 0.75)),
		"max":     Num(quantile(vals, 1)),
		"mean":    Num(mean(vals)),
		"std":     Num(sampleStd(vals)),
		"count":   len(vals),
		"missing": t.Len() - len(vals),
	}
}

func boolean(t *frame.Table, col string) Stats {
	var yes, no, missing int
	for _, v := range t.Column(col) {
		switch b := v.(type) {
		case bool:
			if b {
				yes++
			} else {
				no++
			}
		default:
			missing++
		}
	}
	return Stats{"true_count": yes, "false_count": no, "missing": missing}
}

func datetime(t *frame.Table, col string) Stats {
	var lo, hi time.Time
	for _, v := range t.Column(col) {
		ts, ok := v.(time.Time)
		if !ok {
			continue
		}
		if lo.IsZero() || ts.Before(lo) {
			lo = ts
		}
		if hi.IsZero() || ts.After(hi) {
			hi = ts
		}
	}
	return Stats{"min": lo.Format(time.RFC3339), "max": hi.Format(time.RFC3339)}
}

func categorical(t *frame.Table, col string) Stats {
	n := 0
	for _, v := range t.Column(col) {
		if !frame.Blank(v) {
			n++
		}
	}
	return Stats{"non_null_count": n, "missing": t.Len() - n}
}

// quantile uses linear interpolation between closest ranks over sorted
// values. Empty input yields NaN.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStd uses n-1 in the denominator; fewer than two values is NaN.
func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	m := mean(vals)
	ss := 0.0
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// Extent is a numeric column's spread within one group.
type Extent struct {
	Min   Num `json:"min"`
	Max   Num `json:"max"`
	Mean  Num `json:"mean"`
	Range Num `json:"range"`
	Count int `json:"count"`
}

// GroupExtents computes per-group extents of the numeric columns (all
// numeric columns except the group column when cols is empty). Rows with a
// blank group value are skipped. An absent group column yields nil.
func GroupExtents(t *frame.Table, groupCol string, cols ...string) map[string]map[string]Extent {
	if !t.Has(groupCol) {
		return nil
	}
	if len(cols) == 0 {
		for _, c := range t.NumericColumns() {
			if c != groupCol {
				cols = append(cols, c)
			}
		}
	}
	groups := map[string][]frame.Row{}
	for _, r := range t.Rows {
		if frame.Blank(r[groupCol]) {
			continue
		}
		k := frame.String(r[groupCol])
		groups[k] = append(groups[k], r)
	}
	out := make(map[string]map[string]Extent, len(groups))
	for k, rows := range groups {
		sub := frame.FromRows(t.Columns, rows)
		per := make(map[string]Extent, len(cols))
		for _, c := range cols {
			vals := sub.Floats(c)
			if len(vals) == 0 {
				continue
			}
			sort.Float64s(vals)
			lo, hi := vals[0], vals[len(vals)-1]
			per[c] = Extent{Min: Num(lo), Max: Num(hi), Mean: Num(mean(vals)), Range: Num(hi - lo), Count: len(vals)}
		}
		out[k] = per
	}
	return out
}

// GroupDimensions are the grouping columns reported whenever present.
var GroupDimensions = []string{types.ColMonth, types.ColCategory, types.ColType}

// GroupStats computes GroupExtents for every grouping dimension present in
// t, keyed by the dimension column. The category dimension also accepts
// its "Category" alias. nil when no dimension is present.
func GroupStats(t *frame.Table) map[string]map[string]map[string]Extent {
	var out map[string]map[string]map[string]Extent
	for _, dim := range GroupDimensions {
		col := dim
		if dim == types.ColCategory && !t.Has(col) && t.Has(types.ColCategoryAlias) {
			col = types.ColCategoryAlias
		}
		ext := GroupExtents(t, col)
		if ext == nil {
			continue
		}
		if out == nil {
			out = map[string]map[string]map[string]Extent{}
		}
		out[col] = ext
	}
	return out
}
