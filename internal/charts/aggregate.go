package charts

import (
	"math"
	"strings"

	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/stats"
)

const (
	colCount = "count"
	colPct   = "pct"
	colGap   = "gap"
	colValue = "value"
)

// GapColumn holds KPI% - 100 in the gap chart rows.
const GapColumn = colGap

type group struct {
	keys []string
	rows []frame.Row
}

// groupBy buckets rows by the values of cols in first-seen order. Rows
// with a blank key are skipped.
func groupBy(t *frame.Table, cols ...string) []group {
	var out []group
	idx := map[string]int{}
	for _, r := range t.Rows {
		keys := make([]string, len(cols))
		blank := false
		for i, c := range cols {
			if frame.Blank(r[c]) {
				blank = true
				break
			}
			keys[i] = frame.String(r[c])
		}
		if blank {
			continue
		}
		k := strings.Join(keys, "\x1f")
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, group{keys: keys})
		}
		out[i].rows = append(out[i].rows, r)
	}
	return out
}

func meanOf(rows []frame.Row, col string) (float64, bool) {
	sum, n := 0.0, 0
	for _, r := range rows {
		if f, ok := frame.Float(r[col]); ok && !math.IsInf(f, 0) {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// countBy counts rows per key combination.
func countBy(t *frame.Table, keys ...string) *frame.Table {
	out := frame.New(append(append([]string{}, keys...), colCount)...)
	for _, g := range groupBy(t, keys...) {
		r := frame.Row{colCount: float64(len(g.rows))}
		for i, k := range keys {
			r[k] = g.keys[i]
		}
		out.AddRow(r)
	}
	return out
}

// withShare adds each row's percentage of the count total within its
// group of rows sharing the within columns, rounded to 2 places.
func withShare(t *frame.Table, within ...string) *frame.Table {
	totals := map[string]float64{}
	key := func(r frame.Row) string {
		parts := make([]string, len(within))
		for i, c := range within {
			parts[i] = frame.String(r[c])
		}
		return strings.Join(parts, "\x1f")
	}
	for _, r := range t.Rows {
		n, _ := frame.Float(r[colCount])
		totals[key(r)] += n
	}
	out := t.WithColumn(colPct, nil)
	for _, r := range out.Rows {
		n, _ := frame.Float(r[colCount])
		if total := totals[key(r)]; total > 0 {
			r[colPct], _ = stats.Round2(n / total * 100)
		}
	}
	return out
}

// meansBy averages cols per key combination and adds the group size.
// Columns absent from t are left out.
func meansBy(t *frame.Table, keys []string, cols []string) *frame.Table {
	var present []string
	for _, c := range cols {
		if t.Has(c) {
			present = append(present, c)
		}
	}
	out := frame.New(append(append(append([]string{}, keys...), present...), colCount)...)
	for _, g := range groupBy(t, keys...) {
		r := frame.Row{colCount: float64(len(g.rows))}
		for i, k := range keys {
			r[k] = g.keys[i]
		}
		for _, c := range present {
			if m, ok := meanOf(g.rows, c); ok {
				r[c] = m
			}
		}
		out.AddRow(r)
	}
	return out
}

// sortByKeys orders rows by the string values of cols.
func sortByKeys(t *frame.Table, cols ...string) *frame.Table {
	return t.SortStable(func(a, b frame.Row) bool {
		for _, c := range cols {
			x, y := frame.String(a[c]), frame.String(b[c])
			if x != y {
				return x < y
			}
		}
		return false
	})
}

// pearson is the correlation of two columns over rows where both are set.
func pearson(t *frame.Table, x, y string) (float64, bool) {
	var xs, ys []float64
	for _, r := range t.Rows {
		a, okA := frame.Float(r[x])
		b, okB := frame.Float(r[y])
		if okA && okB && !math.IsInf(a, 0) && !math.IsInf(b, 0) {
			xs = append(xs, a)
			ys = append(ys, b)
		}
	}
	n := float64(len(xs))
	if n < 2 {
		return 0, false
	}
	var sx, sy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
	}
	mx, my := sx/n, sy/n
	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0, false
	}
	return cov / math.Sqrt(vx*vy), true
}

// orderBy sorts rows by the position of col's value in rank, unknown
// values last.
func orderBy(t *frame.Table, col string, rank []string) *frame.Table {
	pos := map[string]int{}
	for i, c := range rank {
		pos[c] = i
	}
	at := func(r frame.Row) int {
		if p, ok := pos[frame.String(r[col])]; ok {
			return p
		}
		return len(rank)
	}
	return t.SortStable(func(a, b frame.Row) bool { return at(a) < at(b) })
}
