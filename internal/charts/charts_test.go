package charts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"outlet-insights-go/internal/dataset"
	"outlet-insights-go/internal/filter"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

// tab1Tables is March (5 A, 2 B, 1 C, 2 D) and May (2 A, 3 B, 3 C, 4 D).
func tab1Tables() dataset.Tables {
	d := frame.New(types.ColMonth, types.ColRegion, types.ColCategory, types.ColType,
		types.ColOutletName, types.ColPerformance, types.ColQuality, types.ColTotalScore)
	add := func(month string, counts map[string]int) {
		i := 0
		for _, cat := range types.Categories {
			for n := 0; n < counts[cat]; n++ {
				rgn := "North"
				if i%2 == 1 {
					rgn = "South"
				}
				d.AddRow(frame.Row{
					types.ColMonth:       month,
					types.ColRegion:      rgn,
					types.ColCategory:    cat,
					types.ColType:        "3S",
					types.ColOutletName:  fmt.Sprintf("%s-%d", cat, n),
					types.ColPerformance: float64(50 + i),
					types.ColQuality:     float64(40 + 2*i),
					types.ColTotalScore:  float64(60 + i),
				})
				i++
			}
		}
	}
	add("March", map[string]int{"A": 5, "B": 2, "C": 1, "D": 2})
	add("May", map[string]int{"A": 2, "B": 3, "C": 3, "D": 4})
	return dataset.Tables{types.TableDetail: d}
}

func input(tables dataset.Tables, mut func(*filter.State)) Input {
	f := filter.Defaults("March")
	f.Months = []string{"March", "May"}
	if mut != nil {
		mut(&f)
	}
	return Input{Tables: tables, Filters: f, Tab3: filter.DefaultTab3(), Axis: filter.DefaultAxis()}
}

func resolve(t *testing.T, id types.ChartID, in Input) Frame {
	t.Helper()
	spec, err := Lookup(id)
	require.NoError(t, err)
	fr, err := spec.Resolve(in)
	require.NoError(t, err)
	return fr
}

func TestCategoryMixByMonthShares(t *testing.T) {
	mix := CategoryMixByMonth(tab1Tables().Get(types.TableDetail))
	require.Equal(t, 8, mix.Len())

	march, may := mix.Rows[0], mix.Rows[4]
	assert.Equal(t, "March", march[types.ColMonth])
	assert.Equal(t, "A", march[types.ColCategory])
	assert.Equal(t, 50.0, march[colPct])
	assert.Equal(t, "May", may[types.ColMonth])
	assert.Equal(t, "A", may[types.ColCategory])
	assert.Equal(t, 16.67, may[colPct])
	assert.Greater(t, march[colPct].(float64), may[colPct].(float64))

	byRegion := CategoryMixByMonthRegion(tab1Tables().Get(types.TableDetail))
	total := map[string]float64{}
	for _, r := range byRegion.Rows {
		total[frame.String(r[types.ColMonth])+"/"+frame.String(r[types.ColRegion])] += r[colPct].(float64)
	}
	for k, v := range total {
		assert.InDelta(t, 100, v, 0.05, k)
	}
}

func TestCategoryMixIgnoresCategoryAndRegionFilters(t *testing.T) {
	base := resolve(t, types.ChartCategoryMix, input(tab1Tables(), nil))
	narrowed := resolve(t, types.ChartCategoryMix, input(tab1Tables(), func(f *filter.State) {
		f.Categories = []string{"A"}
		f.Regions = []string{"South"}
	}))
	assert.Equal(t, base.Data, narrowed.Data)
	assert.Equal(t, 22, narrowed.Detail.Len())
}

func TestResolversAreDeterministic(t *testing.T) {
	tables := tab1Tables()
	in := input(tables, func(f *filter.State) { f.Types = []string{"3S"} })
	for _, spec := range Catalogue() {
		if spec.Tab != types.Tab1 {
			continue
		}
		a := spec.Render(in)
		b := spec.Render(in)
		assert.Equal(t, a, b, spec.ID)
	}
	assert.Equal(t, tab1Tables(), tables, "resolvers must not mutate their input")
}

func TestPerfQualityModeSwitch(t *testing.T) {
	agg := resolve(t, types.ChartPerfQuality, input(tab1Tables(), nil))
	assert.Equal(t, ModeRegion, agg.Meta.Mode)
	assert.Equal(t, 2, agg.Data.Len())
	assert.Equal(t, 22, agg.Alt.Len())
	require.NotNil(t, agg.Meta.CorrelationR)

	drill := resolve(t, types.ChartPerfQuality, input(tab1Tables(), func(f *filter.State) { f.Regions = []string{"North"} }))
	assert.Equal(t, ModeOutlet, drill.Meta.Mode)
	assert.Equal(t, 11, drill.Data.Len())
	assert.Equal(t, []string{"North"}, drill.Data.Strings(types.ColRegion))

	two := resolve(t, types.ChartPerfQuality, input(tab1Tables(), func(f *filter.State) { f.Regions = []string{"North", "South"} }))
	assert.Equal(t, ModeRegion, two.Meta.Mode)
}

func TestRankedBoardsDedupeAndCap(t *testing.T) {
	d := frame.New(types.ColRegion, types.ColOutletName, types.ColTotalScore, types.ColMonth)
	for i := 0; i < 25; i++ {
		d.AddRow(frame.Row{types.ColRegion: "North", types.ColOutletName: fmt.Sprintf("o%02d", i), types.ColTotalScore: float64(i), types.ColMonth: "March"})
	}
	d.AddRow(frame.Row{types.ColRegion: "North", types.ColOutletName: "o24", types.ColTotalScore: 10.5, types.ColMonth: "May"})
	tables := dataset.Tables{types.TableDetail: d}

	top := resolve(t, types.ChartTopOutlets, input(tables, nil))
	require.Equal(t, RankLimit, top.Data.Len())
	assert.Equal(t, "o24", top.Data.Rows[0][types.ColOutletName])
	assert.Equal(t, 24.0, top.Data.Rows[0][types.ColTotalScore])
	assert.Len(t, top.Data.Strings(types.ColOutletName), RankLimit)

	bottom := resolve(t, types.ChartBottomOutlets, input(tables, nil))
	assert.Equal(t, "o00", bottom.Data.Rows[0][types.ColOutletName])
	assert.Len(t, bottom.Data.Strings(types.ColOutletName), RankLimit)

	searched := resolve(t, types.ChartTopOutlets, input(tables, func(f *filter.State) { f.SearchText = "O2" }))
	assert.Equal(t, []string{"o24", "o23", "o22", "o21", "o20"}, searched.Data.Strings(types.ColOutletName))
}

func TestCategoryCountUsesFilteredDetail(t *testing.T) {
	fr := resolve(t, types.ChartCategoryCount, input(tab1Tables(), func(f *filter.State) { f.Categories = []string{"B", "D"} }))
	require.Equal(t, 2, fr.Data.Len())
	assert.Equal(t, frame.Row{types.ColCategory: "B", colCount: 5.0}, fr.Data.Rows[0])
	assert.Equal(t, frame.Row{types.ColCategory: "D", colCount: 6.0}, fr.Data.Rows[1])
}

func TestMissingColumnsDegrade(t *testing.T) {
	spec, err := Lookup(types.ChartCategoryMix)
	require.NoError(t, err)

	_, err = spec.Resolve(input(dataset.Tables{}, nil))
	var cols *ColumnsError
	require.True(t, errors.As(err, &cols))
	assert.Equal(t, []string{types.ColRegion, types.ColCategory}, cols.Missing)

	fr := spec.Render(input(dataset.Tables{}, nil))
	assert.True(t, fr.Empty())
	assert.Equal(t, "required columns: rgn, outlet_category", fr.Note)

	_, err = Lookup("q9")
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func kpiTables() dataset.Tables {
	d := frame.New(types.ColRegion, types.ColCategory, types.ColType, types.ColOutletName,
		types.ColSalesCenterCode, "revenue_pct", "spare_parts_pct", "csi_sales_pct")
	rows := []frame.Row{
		{types.ColCategory: "B", types.ColType: "1S", types.ColSalesCenterCode: "S1", "revenue_pct": 90.0, "spare_parts_pct": 80.0, "csi_sales_pct": 110.0},
		{types.ColCategory: "B", types.ColType: "2S", types.ColSalesCenterCode: "S2", "revenue_pct": 70.0, "spare_parts_pct": 100.0, "csi_sales_pct": 95.0},
		{types.ColCategory: "C", types.ColType: "1S", types.ColSalesCenterCode: "S1", "revenue_pct": 120.0, "spare_parts_pct": 60.0, "csi_sales_pct": 100.0},
		{types.ColCategory: "A", types.ColType: "1S", types.ColSalesCenterCode: "S1", "revenue_pct": 150.0, "spare_parts_pct": 150.0, "csi_sales_pct": 150.0},
	}
	for i, r := range rows {
		r[types.ColRegion] = "North"
		r[types.ColOutletName] = fmt.Sprintf("k%d", i)
		d.AddRow(r)
	}
	return dataset.Tables{types.TableDetail: d}
}

func gapOf(fr Frame, cat, kpi string) (float64, bool) {
	for _, r := range fr.Data.Rows {
		if r[types.ColCategory] == cat && r[types.ColKPI] == kpi {
			return r[colGap].(float64), true
		}
	}
	return 0, false
}

func TestKPIGapOverGapCategories(t *testing.T) {
	fr := resolve(t, types.ChartKPIGap, input(kpiTables(), nil))
	assert.Equal(t, []string{"B", "C"}, fr.Data.Strings(types.ColCategory), "A is out of scope, D has no rows")

	g, ok := gapOf(fr, "B", "revenue")
	require.True(t, ok)
	assert.Equal(t, -20.0, g)
	g, _ = gapOf(fr, "C", "revenue")
	assert.Equal(t, 20.0, g)

	in := input(kpiTables(), nil)
	in.Tab3.Shortfall = filter.ShortfallBelow
	in.Tab3.KPIFocus = "spare_parts"
	below := resolve(t, types.ChartKPIGap, in)
	require.Equal(t, 2, below.Data.Len())
	for _, r := range below.Data.Rows {
		assert.Equal(t, "spare_parts", r[types.ColKPI])
		assert.Less(t, r[colGap].(float64), 0.0)
	}

	in = input(kpiTables(), nil)
	in.Tab3.SalesCenterCodes = []string{"S2"}
	scoped := resolve(t, types.ChartKPIGap, in)
	assert.Equal(t, []string{"B"}, scoped.Data.Strings(types.ColCategory))
}

func TestKPIGapFallsBackToSummaryTable(t *testing.T) {
	summary := frame.FromRows([]string{types.ColMonth, types.ColCategory, types.ColKPI, types.ColAvgPct}, []frame.Row{
		{types.ColMonth: "March", types.ColCategory: "B", types.ColKPI: "revenue_pct", types.ColAvgPct: 90.0},
		{types.ColMonth: "May", types.ColCategory: "B", types.ColKPI: "revenue", types.ColAvgPct: 80.0},
		{types.ColMonth: "March", types.ColCategory: "A", types.ColKPI: "revenue", types.ColAvgPct: 130.0},
	})
	tables := dataset.Tables{
		types.TableDetail: frame.New(types.ColCategory, types.ColRegion),
		types.TableGap:    summary,
	}
	fr := resolve(t, types.ChartKPIGap, input(tables, nil))
	require.Equal(t, 1, fr.Data.Len())
	assert.Equal(t, frame.Row{types.ColCategory: "B", types.ColKPI: "revenue", colGap: -15.0}, fr.Data.Rows[0])
}

func TestRadarForcesOutOfScopeKPIsToZero(t *testing.T) {
	fr := resolve(t, types.ChartRadar, input(kpiTables(), nil))
	require.Equal(t, 2*len(types.KPIs), fr.Data.Len())

	value := func(typ, kpi string) float64 {
		for _, r := range fr.Data.Rows {
			if r[types.ColType] == typ && r[types.ColKPI] == kpi {
				return r[colValue].(float64)
			}
		}
		t.Fatalf("no %s/%s point", typ, kpi)
		return 0
	}
	assert.Equal(t, 105.0, value("1S", "revenue"))
	assert.Equal(t, 0.0, value("1S", "spare_parts"), "service KPI on a sales-only outlet")
	assert.Equal(t, 100.0, value("2S", "spare_parts"))
	assert.Equal(t, 0.0, value("2S", "csi_sales"))
	assert.NotNil(t, fr.Gap)

	in := input(kpiTables(), nil)
	in.Tab3.Categories = []string{"C"}
	single := resolve(t, types.ChartRadar, in)
	assert.Equal(t, []string{"1S"}, single.Data.Strings(types.ColType))
	assert.Equal(t, 120.0, func() float64 {
		for _, r := range single.Data.Rows {
			if r[types.ColKPI] == "revenue" {
				return r[colValue].(float64)
			}
		}
		return 0
	}())
}

func TestRadarGapBarsPoolLikeTheRadar(t *testing.T) {
	tables := kpiTables()
	tables[types.TableDetail].AddRow(frame.Row{
		types.ColRegion: "North", types.ColCategory: "D", types.ColType: "2S", types.ColOutletName: "k9",
		types.ColSalesCenterCode: "S3", "revenue_pct": 40.0, "spare_parts_pct": 50.0, "csi_sales_pct": 60.0,
	})
	in := input(tables, nil)
	in.Tab3.Categories = []string{"B", "C"}

	gap := resolve(t, types.ChartKPIGap, in)
	assert.Equal(t, []string{"B", "C"}, gap.Data.Strings(types.ColCategory))

	rad := resolve(t, types.ChartRadar, in)
	require.NotNil(t, rad.Gap)
	assert.Equal(t, []string{"B", "C", "D"}, rad.Gap.Strings(types.ColCategory))

	in.Tab3.Categories = []string{"C"}
	rad = resolve(t, types.ChartRadar, in)
	assert.Equal(t, []string{"C"}, rad.Gap.Strings(types.ColCategory))
}

func TestKPIScatterFollowsAxisState(t *testing.T) {
	in := input(kpiTables(), nil)
	in.Axis = filter.AxisState{X: "revenue", Y: "spare_parts", Legend: types.LegendType}
	fr := resolve(t, types.ChartKPIScatter, in)
	assert.Equal(t, "revenue_pct", fr.Meta.X)
	assert.Equal(t, "spare_parts_pct", fr.Meta.Y)
	assert.Equal(t, types.ColType, fr.Meta.Color)
	assert.Equal(t, ModeRegion, fr.Meta.Mode)
	assert.Equal(t, []string{"1S", "2S"}, fr.Data.Strings(types.ColType))

	in.Axis.X = "horsepower"
	_, err := mustSpec(t, types.ChartKPIScatter).Resolve(in)
	var cols *ColumnsError
	assert.True(t, errors.As(err, &cols))
}

func TestKPIByCategoryMeans(t *testing.T) {
	fr := resolve(t, types.ChartKPIByCategory, input(kpiTables(), func(f *filter.State) { f.Categories = []string{"B"} }))
	require.Equal(t, 3, fr.Data.Len())
	assert.Equal(t, frame.Row{types.ColCategory: "B", types.ColKPI: "revenue", types.ColAvgPct: 80.0}, fr.Data.Rows[0])
}

func mustSpec(t *testing.T, id types.ChartID) Spec {
	t.Helper()
	s, err := Lookup(id)
	require.NoError(t, err)
	return s
}
