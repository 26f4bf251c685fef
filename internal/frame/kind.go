package frame

import (
	"math"
	"time"
)

type Kind int

const (
	KindBlank Kind = iota
	KindNumeric
	KindBoolean
	KindDatetime
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	case KindDatetime:
		return "datetime"
	case KindCategorical:
		return "categorical"
	}
	return "blank"
}

// Kind infers the column kind from its non-blank cells. A column mixing
// kinds is categorical.
func (t *Table) Kind(col string) Kind {
	kind := KindBlank
	if t == nil {
		return kind
	}
	for _, r := range t.Rows {
		v := r[col]
		if Blank(v) {
			continue
		}
		var k Kind
		switch v.(type) {
		case float64, float32, int, int32, int64:
			k = KindNumeric
		case bool:
			k = KindBoolean
		case time.Time:
			k = KindDatetime
		default:
			k = KindCategorical
		}
		if kind == KindBlank {
			kind = k
		} else if kind != k {
			return KindCategorical
		}
	}
	return kind
}

// NumericColumns lists columns inferred as numeric, in column order.
func (t *Table) NumericColumns() []string {
	var out []string
	if t == nil {
		return out
	}
	for _, c := range t.Columns {
		if t.Kind(c) == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// SanitizeInfinite replaces ±Inf with a blank and then fills the blanks of
// numeric columns with 0 so a single unbounded value cannot poison a mean.
// Columns that are entirely blank stay blank.
func (t *Table) SanitizeInfinite() *Table {
	out := t.Clone()
	for _, r := range out.Rows {
		for k, v := range r {
			if f, ok := v.(float64); ok && math.IsInf(f, 0) {
				r[k] = nil
			}
		}
	}
	for _, c := range out.Columns {
		if out.Kind(c) != KindNumeric {
			continue
		}
		for _, r := range out.Rows {
			if Blank(r[c]) {
				r[c] = 0.0
			}
		}
	}
	return out
}
