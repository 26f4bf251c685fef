package charts

import (
	"strings"

	"outlet-insights-go/internal/filter"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

// Apply narrows t by the global filters in a fixed order: region, category,
// outlet type, outlet, then the outlet-name search. A filter whose column
// is absent, or whose value is empty, does not restrict.
func Apply(t *frame.Table, f filter.State) *frame.Table {
	out := t.Clone()
	out = member(out, types.ColRegion, f.Regions)
	out = member(out, types.ColCategory, f.Categories)
	out = member(out, types.ColType, f.Types)
	out = member(out, types.ColOutletName, f.Outlets)
	return search(out, f.SearchText)
}

func member(t *frame.Table, col string, values []string) *frame.Table {
	if len(values) == 0 || !t.Has(col) {
		return t
	}
	in := make(map[string]bool, len(values))
	for _, v := range values {
		in[v] = true
	}
	return t.Filter(func(r frame.Row) bool { return in[frame.String(r[col])] })
}

func search(t *frame.Table, text string) *frame.Table {
	text = strings.TrimSpace(text)
	if text == "" || !t.Has(types.ColOutletName) {
		return t
	}
	return t.Filter(func(r frame.Row) bool { return frame.ContainsFold(r[types.ColOutletName], text) })
}

// tab3Scope applies the global filters with cats in place of the global
// categories, then the sales-center selection. No categories match nothing.
func tab3Scope(t *frame.Table, in Input, cats []string) *frame.Table {
	if len(cats) == 0 {
		return frame.New(t.Columns...)
	}
	f := in.Filters.Clone()
	f.Categories = cats
	out := Apply(t, f)
	return member(out, types.ColSalesCenterCode, in.Tab3.SalesCenterCodes)
}
