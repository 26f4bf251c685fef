package charts

import (
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

// kpiScatter plots two KPIs chosen by the axis state, colored by the
// legend dimension, with the same region drill as the tab-1 scatter.
func kpiScatter(in Input) (Frame, error) {
	detail := in.Tables.Get(types.TableDetail)
	x, okX := types.LookupKPI(in.Axis.X)
	y, okY := types.LookupKPI(in.Axis.Y)
	if !okX || !okY {
		var missing []string
		if !okX {
			missing = append(missing, in.Axis.X)
		}
		if !okY {
			missing = append(missing, in.Axis.Y)
		}
		return Frame{}, &ColumnsError{Chart: types.ChartKPIScatter, Missing: missing}
	}
	legend := in.Axis.Legend.Column()
	if err := requireColumns(types.ChartKPIScatter, detail, types.ColRegion, legend, x.Column(), y.Column()); err != nil {
		return Frame{}, err
	}

	filtered := Apply(detail, in.Filters)
	outlets := outletPoints(filtered, x.Column(), y.Column(), legend)
	regions := sortByKeys(meansBy(filtered, []string{types.ColRegion, legend}, []string{x.Column(), y.Column()}), types.ColRegion, legend)

	meta := &Metadata{X: x.Column(), Y: y.Column(), Color: legend}
	fr := Frame{Detail: filtered, Meta: meta}
	if len(in.Filters.Regions) == 1 {
		fr.Data, fr.Alt, meta.Mode = outlets, regions, ModeOutlet
	} else {
		fr.Data, fr.Alt, meta.Mode = regions, outlets, ModeRegion
	}
	meta.describeAxes(fr.Data)
	return fr, nil
}

// kpiByCategory is the mean achievement of every KPI per category, long
// form: one row per category and KPI.
func kpiByCategory(in Input) (Frame, error) {
	detail := in.Tables.Get(types.TableDetail)
	kpis := presentKPIs(detail, types.KPIs)
	if len(kpis) == 0 {
		return Frame{}, &ColumnsError{Chart: types.ChartKPIByCategory, Missing: types.KPIColumns()}
	}
	if err := requireColumns(types.ChartKPIByCategory, detail, types.ColCategory); err != nil {
		return Frame{}, err
	}
	filtered := Apply(detail, in.Filters)
	data := frame.New(types.ColCategory, types.ColKPI, types.ColAvgPct)
	for _, g := range groupBy(orderBy(filtered, types.ColCategory, types.Categories), types.ColCategory) {
		for _, k := range kpis {
			if m, ok := meanOf(g.rows, k.Column()); ok {
				data.AddRow(frame.Row{types.ColCategory: g.keys[0], types.ColKPI: k.Name, types.ColAvgPct: m})
			}
		}
	}
	return Frame{
		Data:   data,
		Detail: filtered,
		Meta:   &Metadata{X: types.ColKPI, Y: types.ColAvgPct, Color: types.ColCategory},
	}, nil
}

// presentKPIs keeps the KPIs whose column t carries.
func presentKPIs(t *frame.Table, kpis []types.KPI) []types.KPI {
	var out []types.KPI
	for _, k := range kpis {
		if t.Has(k.Column()) {
			out = append(out, k)
		}
	}
	return out
}
