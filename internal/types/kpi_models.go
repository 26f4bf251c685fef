package types

import "strings"

type KPIGroup string

const (
	GroupPerformance KPIGroup = "performance"
	GroupQuality     KPIGroup = "quality"
)

// Scope is the functional area a KPI or an outlet type covers.
type Scope int

const (
	ScopeSales Scope = 1 << iota
	ScopeService
	ScopeBoth = ScopeSales | ScopeService
)

type KPI struct {
	Name  string   `json:"name"`
	Label string   `json:"label"`
	Group KPIGroup `json:"group"`
	Scope Scope    `json:"-"`
}

// Column is the percentage-of-target column carrying the KPI.
func (k KPI) Column() string { return k.Name + "_pct" }

// KPIs is the fixed catalogue, performance group first. Radar axes follow
// this order.
var KPIs = []KPI{
	{Name: "revenue", Label: "Revenue", Group: GroupPerformance, Scope: ScopeBoth},
	{Name: "new_car_reg", Label: "New car registrations", Group: GroupPerformance, Scope: ScopeSales},
	{Name: "used_car", Label: "Used car sales", Group: GroupPerformance, Scope: ScopeSales},
	{Name: "spare_parts", Label: "Spare parts", Group: GroupPerformance, Scope: ScopeService},
	{Name: "service_revenue", Label: "Service revenue", Group: GroupPerformance, Scope: ScopeService},
	{Name: "insurance", Label: "Insurance", Group: GroupPerformance, Scope: ScopeSales},
	{Name: "finance", Label: "Finance penetration", Group: GroupPerformance, Scope: ScopeSales},
	{Name: "csi_sales", Label: "CSI sales", Group: GroupQuality, Scope: ScopeSales},
	{Name: "csi_service", Label: "CSI service", Group: GroupQuality, Scope: ScopeService},
	{Name: "nps", Label: "NPS", Group: GroupQuality, Scope: ScopeBoth},
	{Name: "first_time_fix", Label: "First time fix", Group: GroupQuality, Scope: ScopeService},
	{Name: "on_time_delivery", Label: "On-time delivery", Group: GroupQuality, Scope: ScopeSales},
	{Name: "complaint_resolution", Label: "Complaint resolution", Group: GroupQuality, Scope: ScopeBoth},
	{Name: "training_compliance", Label: "Training compliance", Group: GroupQuality, Scope: ScopeBoth},
}

// LookupKPI finds a KPI by name or by its _pct column.
func LookupKPI(name string) (KPI, bool) {
	name = strings.TrimSuffix(strings.TrimSpace(name), "_pct")
	for _, k := range KPIs {
		if k.Name == name {
			return k, true
		}
	}
	return KPI{}, false
}

// KPIColumns lists every KPI column in catalogue order.
func KPIColumns() []string {
	out := make([]string, 0, len(KPIs))
	for _, k := range KPIs {
		out = append(out, k.Column())
	}
	return out
}

// TypeScope maps an outlet type code to its functional scope. Unknown codes
// cover both areas.
func TypeScope(outletType string) Scope {
	switch strings.ToUpper(strings.TrimSpace(outletType)) {
	case "1S":
		return ScopeSales
	case "2S":
		return ScopeService
	}
	return ScopeBoth
}

// InScope reports whether an outlet type is responsible for a KPI.
func (k KPI) InScope(outletType string) bool {
	return TypeScope(outletType)&k.Scope != 0
}
