package types

// Tab is a dashboard tab; it doubles as the dataset namespace a tab reads.
type Tab string

const (
	Tab1 Tab = "tab1"
	Tab2 Tab = "tab2"
	Tab3 Tab = "tab3"
)

var Tabs = []Tab{Tab1, Tab2, Tab3}

// Canonical column names after schema normalization.
const (
	ColMonth           = "Month"
	ColRegion          = "rgn"
	ColCategory        = "outlet_category"
	ColCategoryAlias   = "Category"
	ColType            = "outlet_type"
	ColOutletName      = "outlet_name"
	ColSalesCenterCode = "sales_center_code"
	ColPerformance     = "rate_performance"
	ColQuality         = "rate_quality"
	ColTotalScore      = "total_score"
	ColKPI             = "kpi"
	ColAvgPct          = "avg_pct"
)

// Upstream table names.
const (
	TableDetail       = "q1"
	TableGap          = "q2"
	TableRadarPrefilt = "radar-chart-before-filtering-q2"
)

// Aliases maps upstream column spellings onto the canonical schema.
var Aliases = map[string]string{
	"sales_outlet":      ColOutletName,
	ColCategoryAlias:    ColCategory,
	"region":            ColRegion,
	"type":              ColType,
	"sales_center":      ColSalesCenterCode,
	"sales_centre_code": ColSalesCenterCode,
}

// Categories is the closed outlet category set.
var Categories = []string{"A", "B", "C", "D"}

// GapCategories are the categories tab 3 reports on.
var GapCategories = []string{"B", "C", "D"}
