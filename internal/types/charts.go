package types

// ChartID identifies one chart on the dashboard.
type ChartID string

const (
	ChartPerfQuality   ChartID = "q1"
	ChartCategoryMix   ChartID = "q2"
	ChartRegionPerf    ChartID = "q3"
	ChartTopOutlets    ChartID = "q4"
	ChartBottomOutlets ChartID = "q5"
	ChartCategoryCount ChartID = "q6"
	ChartKPIScatter    ChartID = "t2"
	ChartKPIByCategory ChartID = "t2kpi"
	ChartKPIGap        ChartID = "t3g1"
	ChartRadar         ChartID = "t3radar"
)

// LegendDim is the dimension coloring the tab-2 scatter.
type LegendDim string

const (
	LegendCategory LegendDim = "category"
	LegendType     LegendDim = "type"
)

// Column is the grouping column backing the legend.
func (d LegendDim) Column() string {
	if d == LegendType {
		return ColType
	}
	return ColCategory
}
