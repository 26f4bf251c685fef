package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"outlet-insights-go/internal/charts"
	"outlet-insights-go/internal/dataset"
	"outlet-insights-go/internal/filter"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/selection"
	"outlet-insights-go/internal/types"
)

func detail(n int, cats ...string) *frame.Table {
	t := frame.New("rgn", "Category", "sales_outlet", "rate_performance", "rate_quality", "total_score")
	for i := 0; i < n; i++ {
		t.AddRow(frame.Row{
			"rgn":              []string{"North", "South"}[i%2],
			"Category":         cats[i%len(cats)],
			"sales_outlet":     fmt.Sprintf("o%d", i),
			"rate_performance": float64(40 + i),
			"rate_quality":     float64(70 - i),
			"total_score":      float64(55 + i),
		})
	}
	return t
}

func store() dataset.Store {
	return dataset.Store{types.Tab1: {
		"March": {types.TableDetail: detail(10, "A", "B")},
		"May":   {types.TableDetail: detail(12, "C", "D", "A")},
	}}
}

func liveFrom(st dataset.Store) LiveFunc {
	return func(id types.ChartID, f filter.State) (charts.Frame, error) {
		spec, err := charts.Lookup(id)
		if err != nil {
			return charts.Frame{}, err
		}
		in := charts.Input{Tables: dataset.Combine(st, f.Months, spec.Tab), Filters: f, Tab3: filter.DefaultTab3(), Axis: filter.DefaultAxis()}
		return spec.Resolve(in)
	}
}

func request(months []string, compare bool, ids ...types.ChartID) Request {
	f := filter.Defaults("March")
	f.Months = months
	f.CompareMonths = compare
	return Request{Selected: ids, Store: selection.NewStore(), Filters: f, Tab3: filter.DefaultTab3(), Axis: filter.DefaultAxis()}
}

func TestAssembleNothingSelected(t *testing.T) {
	_, err := NewAssembler(liveFrom(store()), 100).Assemble(request([]string{"March"}, false))
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestCompareEmitsOneEntryPerMonth(t *testing.T) {
	p, err := NewAssembler(liveFrom(store()), 100).Assemble(request([]string{"March", "May"}, true, types.ChartRegionPerf))
	require.NoError(t, err)
	require.Len(t, p.Charts, 2)

	for i, month := range []string{"March", "May"} {
		c := p.Charts[i]
		assert.Equal(t, types.ChartRegionPerf, c.GraphID)
		assert.Equal(t, month, c.Month)
		assert.Equal(t, []string{month}, c.Filters.Months)
		assert.False(t, c.Filters.CompareMonths)
		assert.Nil(t, c.ContextStats)
	}
	assert.Equal(t, []types.ChartID{types.ChartRegionPerf}, p.DistinctCharts())
}

func TestPooledEntryCarriesContextStats(t *testing.T) {
	p, err := NewAssembler(liveFrom(store()), 100).Assemble(request([]string{"March", "May"}, false, types.ChartRegionPerf, types.ChartCategoryMix))
	require.NoError(t, err)
	require.Len(t, p.Charts, 2)

	region := p.Charts[0]
	assert.Empty(t, region.Month)
	require.NotNil(t, region.ContextStats)
	assert.Contains(t, region.ContextStats.LargeGroupStats, types.ColMonth)
	assert.Nil(t, region.MonthMix)
	// two region bars over 22 detail rows
	assert.Equal(t, 2, region.NRows)
	require.NotNil(t, region.Full)
	assert.Equal(t, 22, region.Full.Len())
	assert.Same(t, region.Full, region.Analytical())

	mix := p.Charts[1]
	require.NotNil(t, mix.MonthMix)
	assert.NotEmpty(t, mix.MonthMix.ByMonth)
	assert.NotEmpty(t, mix.MonthMix.ByMonthRegion)

	single, err := NewAssembler(liveFrom(store()), 100).Assemble(request([]string{"March"}, false, types.ChartRegionPerf))
	require.NoError(t, err)
	assert.Nil(t, single.Charts[0].ContextStats)
}

func TestRowsCappedButCountKept(t *testing.T) {
	st := dataset.Store{types.Tab1: {"March": {types.TableDetail: detail(40, "A")}}}
	p, err := NewAssembler(liveFrom(st), 5).Assemble(request([]string{"March"}, false, types.ChartTopOutlets))
	require.NoError(t, err)
	c := p.Charts[0]
	assert.Equal(t, charts.RankLimit, c.NRows)
	assert.Len(t, c.Rows, 5)
	assert.Equal(t, charts.RankLimit, c.Data.Len())
}

func TestSnapshotFallback(t *testing.T) {
	failing := func(types.ChartID, filter.State) (charts.Frame, error) {
		return charts.Frame{}, errors.New("warehouse gone")
	}
	req := request([]string{"March"}, false, types.ChartRegionPerf)
	snap, err := liveFrom(store())(types.ChartRegionPerf, req.Filters)
	require.NoError(t, err)
	req.Store.Toggle(selection.NewEntry(snap, 100))

	p, err := NewAssembler(failing, 100).Assemble(req)
	require.NoError(t, err)
	require.Len(t, p.Charts, 1)
	assert.True(t, p.Charts[0].FromSnapshot)
	assert.Equal(t, snap.Data.Len(), p.Charts[0].NRows)
}

func TestNoDataAnywhere(t *testing.T) {
	_, err := NewAssembler(liveFrom(dataset.Store{}), 100).Assemble(request([]string{"March"}, false, types.ChartRegionPerf, types.ChartCategoryCount))
	assert.ErrorIs(t, err, ErrNoData)

	_, err = NewAssembler(liveFrom(store()), 100).Assemble(request([]string{"March"}, false, "nope"))
	assert.ErrorIs(t, err, ErrNoData, "unknown charts are skipped")
}

func TestWireFormat(t *testing.T) {
	p, err := NewAssembler(liveFrom(store()), 100).Assemble(request([]string{"March"}, false, types.ChartPerfQuality))
	require.NoError(t, err)
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var got struct {
		Charts   []map[string]json.RawMessage `json:"charts"`
		Metadata map[string]string            `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Charts, 1)
	for _, k := range []string{"graph_id", "graph_label", "filters", "columns", "n_rows", "rows", "computed_stats", "meta"} {
		assert.Contains(t, got.Charts[0], k)
	}
	assert.NotContains(t, got.Charts[0], "Data")
	assert.Equal(t, map[string]string{"x_axis": "revenue", "y_axis": "csi_sales", "legend": "category"}, got.Metadata)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(got.Charts[0]["meta"], &meta))
	assert.Contains(t, meta, "correlation_r")
	assert.Equal(t, "rate_performance", meta["x"])
}
