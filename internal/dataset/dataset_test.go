package dataset

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

func outlets(n int, cat string) []frame.Row {
	rows := make([]frame.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, frame.Row{
			"rgn":          "North",
			"Category":     cat,
			"sales_outlet": cat + string(rune('a'+i)),
			"total_score":  float64(60 + i),
			"rate_quality": nil,
		})
	}
	return rows
}

func sampleStore() Store {
	march := frame.FromRows([]string{"rgn", "Category", "sales_outlet", "total_score", "rate_quality"},
		append(outlets(2, "A"), outlets(1, "B")...))
	may := frame.FromRows([]string{"rgn", "Category", "sales_outlet", "total_score", "rate_quality"},
		append(outlets(1, "A"), frame.Row{"rgn": "South", "Category": "D", "sales_outlet": "Dz", "total_score": math.Inf(1), "rate_quality": 55.0}))
	return Store{types.Tab1: {
		"March": {types.TableDetail: march},
		"May":   {types.TableDetail: may, "q9": frame.New("x")},
	}}
}

func TestCombineLabelsAndNormalizes(t *testing.T) {
	got := Combine(sampleStore(), []string{"March", "May"}, types.Tab1)
	detail := got.Get(types.TableDetail)

	require.Equal(t, 5, detail.Len())
	assert.True(t, detail.Has(types.ColOutletName))
	assert.True(t, detail.Has(types.ColCategory))
	assert.False(t, detail.Has("sales_outlet"))
	assert.Equal(t, []string{"March", "May"}, detail.Strings(types.ColMonth))

	// the infinite score is zeroed, not carried into means
	last := detail.Rows[4]
	assert.Equal(t, 0.0, last[types.ColTotalScore])
	// rate_quality was blank in March only; May keeps its value
	assert.Nil(t, detail.Rows[0][types.ColQuality])
	assert.Equal(t, 55.0, last[types.ColQuality])

	// a blank table still yields an (empty) entry
	assert.Equal(t, 0, got.Get("q9").Len())
}

func TestCombineSkipsAbsentAndRepeatedPeriods(t *testing.T) {
	store := sampleStore()
	one := Combine(store, []string{"March"}, types.Tab1).Get(types.TableDetail)
	again := Combine(store, []string{"March", "July", "March"}, types.Tab1).Get(types.TableDetail)
	assert.Equal(t, one, again)
}

func TestCombineExtractionConsistency(t *testing.T) {
	store := sampleStore()
	single := Combine(store, []string{"March"}, types.Tab1).Get(types.TableDetail)
	pooled := Combine(store, []string{"March", "May"}, types.Tab1).Get(types.TableDetail)

	marchOnly := pooled.Filter(func(r frame.Row) bool { return r[types.ColMonth] == "March" })
	require.Equal(t, single.Len(), marchOnly.Len())
	for i := range single.Rows {
		for _, c := range single.Columns {
			assert.Equal(t, single.Rows[i][c], marchOnly.Rows[i][c], "row %d col %s", i, c)
		}
	}
}

func TestCombineDoesNotMutateStore(t *testing.T) {
	store := sampleStore()
	_ = Combine(store, []string{"March", "May"}, types.Tab1)
	src := store[types.Tab1]["May"][types.TableDetail]
	assert.True(t, src.Has("sales_outlet"))
	assert.True(t, math.IsInf(src.Rows[1]["total_score"].(float64), 1))
}

func TestNormalizeParsesMeasuresOnly(t *testing.T) {
	tb := frame.FromRows([]string{"sales_center_code", "revenue_pct", "rate_performance", "outlet_type"}, []frame.Row{
		{"sales_center_code": "0042", "revenue_pct": "87.5%", "rate_performance": "1,204.5", "outlet_type": "1S"},
		{"sales_center_code": 17.0, "revenue_pct": "", "rate_performance": "n/a", "outlet_type": "3S"},
	})
	got := Normalize(tb)
	assert.Equal(t, "0042", got.Rows[0]["sales_center_code"])
	assert.Equal(t, "17", got.Rows[1]["sales_center_code"])
	assert.Equal(t, 87.5, got.Rows[0]["revenue_pct"])
	assert.Equal(t, 1204.5, got.Rows[0]["rate_performance"])
	assert.Nil(t, got.Rows[1]["revenue_pct"])
	assert.Equal(t, "n/a", got.Rows[1]["rate_performance"])
}

type flakySource struct{ fail map[types.Tab]bool }

func (f flakySource) Fetch(_ context.Context, tab types.Tab, period string) (Tables, error) {
	if f.fail[tab] {
		return nil, errors.New("warehouse down")
	}
	return Tables{types.TableDetail: frame.FromRows([]string{"rgn"}, []frame.Row{{"rgn": period}})}, nil
}

func TestLoadDegradesFailedFetches(t *testing.T) {
	store := Load(context.Background(), flakySource{fail: map[types.Tab]bool{types.Tab2: true}}, []string{"March"})
	assert.Equal(t, 1, store[types.Tab1]["March"].Get(types.TableDetail).Len())
	assert.Empty(t, store[types.Tab2]["March"])
	assert.Equal(t, 0, Combine(store, []string{"March"}, types.Tab2).Get(types.TableDetail).Len())
}

func TestCacheReturnsMemoizedTables(t *testing.T) {
	c, err := NewCache(sampleStore(), 4)
	require.NoError(t, err)
	a := c.Combined(types.Tab1, []string{"March", "May"})
	b := c.Combined(types.Tab1, []string{"March", "May"})
	assert.Equal(t, 1, c.Len())
	assert.Same(t, a.Get(types.TableDetail), b.Get(types.TableDetail))

	_ = c.Combined(types.Tab1, []string{"May", "March"})
	assert.Equal(t, 2, c.Len(), "order is part of the key")
}

func TestWorkbookSourceFetch(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	_, err := f.NewSheet("tab1.q1")
	require.NoError(t, err)
	_, err = f.NewSheet("tab2.q1")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("tab1.q1", "A1", &[]any{"rgn", "outlet_category", "sales_outlet", "total_score"}))
	require.NoError(t, f.SetSheetRow("tab1.q1", "A2", &[]any{"North", "A", "Alpha", "81.5"}))
	require.NoError(t, f.SetSheetRow("tab1.q1", "A3", &[]any{"South", "B", "Beta"}))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "March.xlsx")))
	require.NoError(t, f.Close())

	src := NewWorkbookSource(dir)
	tables, err := src.Fetch(context.Background(), types.Tab1, "March")
	require.NoError(t, err)
	require.Contains(t, tables, types.TableDetail)
	detail := tables[types.TableDetail]
	require.Equal(t, 2, detail.Len())
	assert.Equal(t, "Alpha", detail.Rows[0]["sales_outlet"])
	assert.Nil(t, detail.Rows[1]["total_score"])

	combined := Combine(Store{types.Tab1: {"March": tables}}, []string{"March"}, types.Tab1)
	assert.Equal(t, 81.5, combined.Get(types.TableDetail).Rows[0][types.ColTotalScore])

	missing, err := src.Fetch(context.Background(), types.Tab1, "June")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestCellValue(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "12.50", cellValue([]byte("12.50")))
	assert.Equal(t, 3.0, cellValue(int64(3)))
	assert.Equal(t, now, cellValue(now))
	assert.Nil(t, cellValue(nil))
}

func TestTemplatesCoverEveryTab(t *testing.T) {
	for _, tab := range types.Tabs {
		assert.Contains(t, Templates[tab], types.TableDetail, "tab %s", tab)
	}
	assert.Contains(t, Templates[types.Tab3], types.TableRadarPrefilt)
}
