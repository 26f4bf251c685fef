// Package frame is the small tabular core shared by the dataset combinator,
// the chart resolvers and the payload assembler.
//
// Values held in a Row are float64, string, bool, time.Time or nil. nil
// (and NaN) is a blank cell. Every operation returns a new Table; inputs
// are never mutated.
package frame

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

type Row map[string]any

type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"records"`
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// FromRows builds a table, filling every declared column in every row.
func FromRows(columns []string, rows []Row) *Table {
	t := New(columns...)
	for _, r := range rows {
		t.AddRow(r)
	}
	return t
}

// Len is nil-safe.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// AddRow appends a copy of r, adding any unseen keys as new columns in
// sorted order so the column list stays deterministic.
func (t *Table) AddRow(r Row) {
	var extra []string
	for k := range r {
		if !t.Has(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	t.Columns = append(t.Columns, extra...)
	cp := make(Row, len(t.Columns))
	for _, c := range t.Columns {
		cp[c] = normalize(r[c])
	}
	t.Rows = append(t.Rows, cp)
}

func (t *Table) Has(col string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Missing lists the requested columns the table does not carry.
func (t *Table) Missing(cols ...string) []string {
	var out []string
	for _, c := range cols {
		if !t.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (t *Table) Clone() *Table {
	if t == nil {
		return New()
	}
	out := &Table{Columns: append([]string(nil), t.Columns...), Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, cloneRow(r))
	}
	return out
}

// Filter keeps rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	if t == nil {
		return New()
	}
	out := New(t.Columns...)
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, cloneRow(r))
		}
	}
	return out
}

// Column returns the values of col in row order (nil when absent).
func (t *Table) Column(col string) []any {
	out := make([]any, 0, t.Len())
	if t == nil {
		return out
	}
	for _, r := range t.Rows {
		out = append(out, r[col])
	}
	return out
}

// Floats returns the finite numeric values of col, skipping blanks.
func (t *Table) Floats(col string) []float64 {
	var out []float64
	if t == nil {
		return out
	}
	for _, r := range t.Rows {
		if f, ok := Float(r[col]); ok && !math.IsInf(f, 0) {
			out = append(out, f)
		}
	}
	return out
}

// Strings returns the distinct non-blank values of col in first-seen order.
func (t *Table) Strings(col string) []string {
	var out []string
	if t == nil {
		return out
	}
	seen := map[string]bool{}
	for _, r := range t.Rows {
		if Blank(r[col]) {
			continue
		}
		s := String(r[col])
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// AllBlank reports whether every cell of col is blank.
func (t *Table) AllBlank(col string) bool {
	if t == nil {
		return true
	}
	for _, r := range t.Rows {
		if !Blank(r[col]) {
			return false
		}
	}
	return true
}

// IsBlank reports a table with no rows or with nothing but blank cells.
func (t *Table) IsBlank() bool {
	if t.Len() == 0 {
		return true
	}
	for _, c := range t.Columns {
		if !t.AllBlank(c) {
			return false
		}
	}
	return true
}

// WithColumn returns a copy carrying col set to v on every row.
func (t *Table) WithColumn(col string, v any) *Table {
	out := t.Clone()
	if !out.Has(col) {
		out.Columns = append(out.Columns, col)
	}
	for _, r := range out.Rows {
		r[col] = normalize(v)
	}
	return out
}

// Rename returns a copy with columns renamed per mapping. A rename onto a
// column that already exists is skipped.
func (t *Table) Rename(mapping map[string]string) *Table {
	out := t.Clone()
	for from, to := range mapping {
		if !out.Has(from) || out.Has(to) {
			continue
		}
		for i, c := range out.Columns {
			if c == from {
				out.Columns[i] = to
			}
		}
		for _, r := range out.Rows {
			r[to] = r[from]
			delete(r, from)
		}
	}
	return out
}

// Select keeps only the named columns that exist, in the given order.
func (t *Table) Select(cols ...string) *Table {
	var keep []string
	for _, c := range cols {
		if t.Has(c) {
			keep = append(keep, c)
		}
	}
	out := New(keep...)
	if t == nil {
		return out
	}
	for _, r := range t.Rows {
		cp := make(Row, len(keep))
		for _, c := range keep {
			cp[c] = r[c]
		}
		out.Rows = append(out.Rows, cp)
	}
	return out
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	out := t.Clone()
	if n >= 0 && n < len(out.Rows) {
		out.Rows = out.Rows[:n]
	}
	return out
}

// Chunks splits the table into consecutive row blocks of at most size rows.
func (t *Table) Chunks(size int) []*Table {
	if size <= 0 || t.Len() == 0 {
		return nil
	}
	var out []*Table
	for start := 0; start < len(t.Rows); start += size {
		end := start + size
		if end > len(t.Rows) {
			end = len(t.Rows)
		}
		c := New(t.Columns...)
		for _, r := range t.Rows[start:end] {
			c.Rows = append(c.Rows, cloneRow(r))
		}
		out = append(out, c)
	}
	return out
}

// SortStable returns a copy ordered by less.
func (t *Table) SortStable(less func(a, b Row) bool) *Table {
	out := t.Clone()
	sort.SliceStable(out.Rows, func(i, j int) bool { return less(out.Rows[i], out.Rows[j]) })
	return out
}

// Blank reports nil and NaN cells.
func Blank(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return true
	}
	return false
}

// Float reads a numeric cell.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// String renders a cell for grouping and matching.
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		if s == math.Trunc(s) && math.Abs(s) < 1e15 {
			return fmt.Sprintf("%.0f", s)
		}
		return fmt.Sprintf("%g", s)
	case time.Time:
		return s.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// ContainsFold is a case-insensitive substring match on a cell.
func ContainsFold(v any, needle string) bool {
	return strings.Contains(strings.ToLower(String(v)), strings.ToLower(needle))
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}

func cloneRow(r Row) Row {
	cp := make(Row, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}
