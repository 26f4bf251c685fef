package selection

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"outlet-insights-go/internal/charts"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

func rows(n int) *frame.Table {
	t := frame.New("i")
	for i := 0; i < n; i++ {
		t.AddRow(frame.Row{"i": float64(i)})
	}
	return t
}

func TestToggleKeepsSelectionOrder(t *testing.T) {
	s := NewStore()
	assert.True(t, s.Toggle(Entry{Chart: types.ChartRegionPerf}))
	assert.True(t, s.Toggle(Entry{Chart: types.ChartCategoryMix}))
	assert.True(t, s.Toggle(Entry{Chart: types.ChartRadar}))
	assert.Equal(t, []types.ChartID{types.ChartRegionPerf, types.ChartCategoryMix, types.ChartRadar}, s.IDs())

	assert.False(t, s.Toggle(Entry{Chart: types.ChartCategoryMix}))
	assert.Equal(t, []types.ChartID{types.ChartRegionPerf, types.ChartRadar}, s.IDs())
	_, ok := s.Get(types.ChartCategoryMix)
	assert.False(t, ok)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.IDs())
}

func TestIDsIsACopy(t *testing.T) {
	s := NewStore()
	s.Toggle(Entry{Chart: types.ChartRegionPerf})
	ids := s.IDs()
	ids[0] = "zz"
	assert.Equal(t, []types.ChartID{types.ChartRegionPerf}, s.IDs())
}

func TestPackCapsRecordsNotCount(t *testing.T) {
	p := Pack(rows(10), 3)
	assert.Len(t, p.Records, 3)
	assert.Equal(t, 10, p.NRows)
	assert.Equal(t, 3, p.Table().Len())

	all := Pack(rows(10), 0)
	assert.Len(t, all.Records, 10)
}

func TestNewEntryAndJSON(t *testing.T) {
	data := frame.FromRows([]string{"rgn", "score"}, []frame.Row{{"rgn": "North", "score": 71.456}, {"rgn": "South", "score": math.NaN()}})
	fr := charts.Frame{Chart: types.ChartRegionPerf, Data: data, Detail: rows(4), Alt: rows(2), Meta: &charts.Metadata{X: "rgn", Y: "score"}}
	e := NewEntry(fr, 100)
	require.NotNil(t, e.AltChart)
	assert.Nil(t, e.GapChart)

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	chart := got["chart_data"].(map[string]any)
	recs := chart["records"].([]any)
	assert.Equal(t, 71.46, recs[0].(map[string]any)["score"])
	assert.Nil(t, recs[1].(map[string]any)["score"])
	assert.Equal(t, 2.0, chart["n_rows"])
}
