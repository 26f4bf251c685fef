package dataset

import (
	"strconv"
	"strings"

	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

// identifierColumns keep their text form even when they look numeric.
var identifierColumns = map[string]bool{
	types.ColOutletName:      true,
	types.ColSalesCenterCode: true,
	types.ColType:            true,
	types.ColCategory:        true,
	types.ColRegion:          true,
	types.ColMonth:           true,
}

// Normalize maps upstream spellings onto the canonical schema and parses
// numeric text in measure columns. It runs once per table at combination
// time so resolvers can rely on fixed column names.
func Normalize(t *frame.Table) *frame.Table {
	if t == nil {
		return frame.New()
	}
	out := t.Rename(types.Aliases)
	for _, c := range out.Columns {
		switch {
		case identifierColumns[c]:
			for _, r := range out.Rows {
				if v := r[c]; !frame.Blank(v) {
					if _, isText := v.(string); !isText {
						r[c] = frame.String(v)
					}
				}
			}
		case isMeasure(c):
			for _, r := range out.Rows {
				r[c] = parseMeasure(r[c])
			}
		}
	}
	return out
}

func isMeasure(col string) bool {
	switch {
	case strings.HasPrefix(col, "rate_"),
		strings.HasSuffix(col, "_pct"),
		col == types.ColTotalScore,
		col == types.ColAvgPct,
		col == "count",
		col == "gap":
		return true
	}
	return false
}

func parseMeasure(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return v
	}
	return f
}
