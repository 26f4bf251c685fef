package stats

import (
	"encoding/json"
	"math"

	"outlet-insights-go/internal/frame"
)

// Num is a statistic. It serializes rounded to 2 decimals and any
// non-finite value serializes as null.
type Num float64

func (n Num) MarshalJSON() ([]byte, error) {
	r, ok := Round2(float64(n))
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(r)
}

// Value is the rounded value, or nil when not finite.
func (n Num) Value() *float64 {
	r, ok := Round2(float64(n))
	if !ok {
		return nil
	}
	return &r
}

// Round2 rounds half away from zero to 2 decimals and reports whether f
// was finite.
func Round2(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Round(f*100) / 100, true
}

// Records renders rows for serialization: float cells become Num, so they
// round to 2 decimals and NaN turns into null.
func Records(rows []frame.Row) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		m := make(map[string]any, len(r))
		for k, v := range r {
			if f, ok := v.(float64); ok {
				m[k] = Num(f)
				continue
			}
			m[k] = v
		}
		out = append(out, m)
	}
	return out
}
