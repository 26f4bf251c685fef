package charts

import (
	"outlet-insights-go/internal/filter"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

// focusKPIs narrows the catalogue to the tab-3 KPI focus when one is set.
func focusKPIs(local filter.Tab3Local) []types.KPI {
	if k, ok := types.LookupKPI(local.KPIFocus); ok && local.KPIFocus != "" {
		return []types.KPI{k}
	}
	return types.KPIs
}

func keepSide(side filter.Shortfall, gap float64) bool {
	switch side {
	case filter.ShortfallBelow:
		return gap < 0
	case filter.ShortfallAbove:
		return gap >= 0
	}
	return true
}

// kpiGap is mean(KPI%) - 100 per KPI per gap category. A category with no
// rows after filtering contributes no bars.
func kpiGap(in Input) (Frame, error) {
	return kpiGapOver(in, filter.Tab3Categories(in.Filters, in.Tab3))
}

// kpiGapOver computes the gap bars for the given categories.
func kpiGapOver(in Input, cats []string) (Frame, error) {
	detail := in.Tables.Get(types.TableDetail)
	if len(presentKPIs(detail, types.KPIs)) == 0 {
		return gapFromSummary(in, cats)
	}
	if err := requireColumns(types.ChartKPIGap, detail, types.ColCategory); err != nil {
		return Frame{}, err
	}
	scoped := tab3Scope(detail, in, cats)
	kpis := presentKPIs(scoped, focusKPIs(in.Tab3))

	data := frame.New(types.ColCategory, types.ColKPI, colGap)
	for _, g := range groupBy(orderBy(scoped, types.ColCategory, cats), types.ColCategory) {
		if !contains(cats, g.keys[0]) {
			continue
		}
		for _, k := range kpis {
			m, ok := meanOf(g.rows, k.Column())
			if !ok || !keepSide(in.Tab3.Shortfall, m-100) {
				continue
			}
			data.AddRow(frame.Row{types.ColCategory: g.keys[0], types.ColKPI: k.Name, colGap: m - 100})
		}
	}
	return Frame{
		Data:   data,
		Detail: scoped,
		Meta:   &Metadata{X: colGap, Y: types.ColKPI, Color: types.ColCategory},
	}, nil
}

// gapFromSummary derives the gap bars from the pre-aggregated category
// table when the detail rows carry no KPI columns.
func gapFromSummary(in Input, cats []string) (Frame, error) {
	summary := in.Tables.Get(types.TableGap)
	if err := requireColumns(types.ChartKPIGap, summary, types.ColCategory, types.ColKPI, types.ColAvgPct); err != nil {
		return Frame{}, err
	}
	kpis := focusKPIs(in.Tab3)
	wanted := map[string]bool{}
	for _, k := range kpis {
		wanted[k.Name] = true
	}

	scoped := summary.Filter(func(r frame.Row) bool {
		k, ok := types.LookupKPI(frame.String(r[types.ColKPI]))
		return ok && wanted[k.Name] && contains(cats, frame.String(r[types.ColCategory]))
	})
	// pooled months average per category and KPI
	canon := scoped.Clone()
	for _, r := range canon.Rows {
		k, _ := types.LookupKPI(frame.String(r[types.ColKPI]))
		r[types.ColKPI] = k.Name
	}
	means := meansBy(orderBy(canon, types.ColCategory, cats), []string{types.ColCategory, types.ColKPI}, []string{types.ColAvgPct})

	data := frame.New(types.ColCategory, types.ColKPI, colGap)
	for _, r := range means.Rows {
		m, ok := frame.Float(r[types.ColAvgPct])
		if !ok || !keepSide(in.Tab3.Shortfall, m-100) {
			continue
		}
		data.AddRow(frame.Row{types.ColCategory: r[types.ColCategory], types.ColKPI: r[types.ColKPI], colGap: m - 100})
	}
	return Frame{
		Data:   data,
		Detail: scoped,
		Meta:   &Metadata{X: colGap, Y: types.ColKPI, Color: types.ColCategory},
	}, nil
}

// radar averages every KPI per outlet type over the tab-3 scope: the one
// selected category, or the pooled gap categories. KPIs outside a type's
// functional scope are 0 so every radar has the full axis set.
func radar(in Input) (Frame, error) {
	detail := in.Tables.Get(types.TableDetail)
	source := detail
	if len(presentKPIs(detail, types.KPIs)) == 0 {
		source = in.Tables.Get(types.TableRadarPrefilt)
	}
	if err := requireColumns(types.ChartRadar, source, types.ColType); err != nil {
		return Frame{}, err
	}
	if len(presentKPIs(source, types.KPIs)) == 0 {
		return Frame{}, &ColumnsError{Chart: types.ChartRadar, Missing: types.KPIColumns()}
	}

	cats := filter.Tab3Categories(in.Filters, in.Tab3)
	if len(cats) > 1 {
		cats = types.GapCategories
	}
	var scoped *frame.Table
	if source == detail {
		scoped = tab3Scope(detail, in, cats)
	} else {
		// the pre-aggregated table is already per type; only the type
		// filter applies
		scoped = member(source.Clone(), types.ColType, in.Filters.Types)
	}

	data := frame.New(types.ColType, types.ColKPI, colValue)
	for _, g := range groupBy(sortByKeys(scoped, types.ColType), types.ColType) {
		for _, k := range types.KPIs {
			v := 0.0
			if k.InScope(g.keys[0]) {
				v, _ = meanOf(g.rows, k.Column())
			}
			data.AddRow(frame.Row{types.ColType: g.keys[0], types.ColKPI: k.Name, colValue: v})
		}
	}

	fr := Frame{
		Data:   data,
		Detail: scoped,
		Meta:   &Metadata{X: types.ColKPI, Y: colValue, Color: types.ColType},
	}
	if gap, err := kpiGapOver(in, cats); err == nil {
		fr.Gap = gap.Data
	}
	return fr, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
