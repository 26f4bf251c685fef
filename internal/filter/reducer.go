package filter

import (
	"outlet-insights-go/internal/types"
)

// Event is one UI interaction fed to the reducer.
type Event interface{ event() }

// Reset restores every global filter to its default.
type Reset struct{}

// Control names a global multi-select or the search box.
type Control string

const (
	ControlCategories Control = "outlet_categories"
	ControlRegions    Control = "regions"
	ControlTypes      Control = "outlet_types"
	ControlOutlets    Control = "outlets"
	ControlSearch     Control = "search_text"
)

// ControlChange overwrites one control verbatim. Text is read for the
// search control, Values for the rest.
type ControlChange struct {
	Control Control
	Values  []string
	Text    string
}

// MonthsChange replaces the month selection.
type MonthsChange struct{ Months []string }

// CompareToggle switches per-month comparison.
type CompareToggle struct{ On bool }

// Click is a click on a chart element.
type Click struct {
	Chart types.ChartID
	Point Point
}

// AxisChange updates the tab-2 scatter axes. Empty fields are kept.
type AxisChange struct {
	X, Y   string
	Legend types.LegendDim
}

// Tab3Change updates the tab-3 local filters. nil fields are kept.
type Tab3Change struct {
	Categories       []string
	SalesCenterCodes []string
	Shortfall        *Shortfall
	KPIFocus         *string
}

// Tab3Clear resets the tab-3 local filters.
type Tab3Clear struct{}

func (Reset) event()         {}
func (ControlChange) event() {}
func (MonthsChange) event()  {}
func (CompareToggle) event() {}
func (Click) event()         {}
func (AxisChange) event()    {}
func (Tab3Change) event()    {}
func (Tab3Clear) event()     {}

// Model is everything the reducer owns for one session.
type Model struct {
	Filters State
	Active  Key
	Tab3    Tab3Local
	Axis    AxisState
}

// Controls are the values echoed back to the UI controls after a
// transition.
type Controls struct {
	Categories     []string  `json:"outlet_categories"`
	Regions        []string  `json:"regions"`
	Types          []string  `json:"outlet_types"`
	Outlets        []string  `json:"outlets"`
	SearchText     string    `json:"search_text"`
	Months         []string  `json:"months"`
	CompareMonths  bool      `json:"compare_months"`
	CompareEnabled bool      `json:"compare_enabled"`
	ActiveKey      string    `json:"active_selection,omitempty"`
	Tab3           Tab3Local `json:"tab3"`
	Axis           AxisState `json:"axis"`
}

// Result is the outcome of one transition.
type Result struct {
	Model    Model
	Changed  bool
	Controls Controls
}

// Reducer is the single writer of the filter model.
type Reducer struct {
	DefaultPeriod string
}

func NewReducer(defaultPeriod string) Reducer {
	return Reducer{DefaultPeriod: defaultPeriod}
}

// Initial is the session-start model.
func (rd Reducer) Initial() Model {
	return Model{
		Filters: Defaults(rd.DefaultPeriod),
		Tab3:    DefaultTab3(),
		Axis:    DefaultAxis(),
	}
}

// Reduce applies ev to m and returns the next model. m is not modified.
// Unknown events and clicks that do not map to a key are no-ops.
func (rd Reducer) Reduce(m Model, ev Event) Result {
	next := m
	next.Filters = m.Filters.Clone()
	next.Tab3 = m.Tab3.Clone()

	switch e := ev.(type) {
	case Reset:
		next.Filters = rd.resetKeepingVersion(m.Filters)
		next.Active = nil
	case ControlChange:
		if !applyControl(&next.Filters, e) {
			return unchanged(m)
		}
	case MonthsChange:
		next.Filters.Months = ordered(e.Months)
	case CompareToggle:
		next.Filters.CompareMonths = e.On
	case Click:
		if e.Chart == types.ChartKPIScatter && e.Point.Legend == "" {
			e.Point.Legend = m.Axis.Legend
		}
		key, ok := KeyFor(e.Chart, e.Point)
		if !ok {
			return unchanged(m)
		}
		if m.Active != nil && m.Active == key {
			rd.toggleOff(&next, key)
			next.Active = nil
		} else {
			rd.apply(&next, key)
			next.Active = key
		}
	case AxisChange:
		if e.X != "" {
			next.Axis.X = e.X
		}
		if e.Y != "" {
			next.Axis.Y = e.Y
		}
		if e.Legend == types.LegendCategory || e.Legend == types.LegendType {
			next.Axis.Legend = e.Legend
		}
	case Tab3Change:
		if e.Categories != nil {
			next.Tab3.Categories = set(e.Categories)
		}
		if e.SalesCenterCodes != nil {
			next.Tab3.SalesCenterCodes = set(e.SalesCenterCodes)
		}
		if e.Shortfall != nil {
			next.Tab3.Shortfall = ParseShortfall(string(*e.Shortfall))
		}
		if e.KPIFocus != nil {
			next.Tab3.KPIFocus = *e.KPIFocus
		}
	case Tab3Clear:
		next.Tab3 = DefaultTab3()
		if _, ok := m.Active.(GapKey); ok {
			next.Active = nil
		}
	default:
		return unchanged(m)
	}

	rd.enforce(&next.Filters)
	next.Filters.Version = m.Filters.Version + 1
	return Result{Model: next, Changed: true, Controls: ControlsOf(next)}
}

func (rd Reducer) resetKeepingVersion(s State) State {
	d := Defaults(rd.DefaultPeriod)
	d.Version = s.Version
	return d
}

// enforce keeps the state invariants after every transition.
func (rd Reducer) enforce(s *State) {
	if len(s.Months) == 0 {
		s.Months = []string{rd.DefaultPeriod}
	}
	if len(s.Months) < 2 {
		s.CompareMonths = false
	}
}

func applyControl(s *State, e ControlChange) bool {
	switch e.Control {
	case ControlCategories:
		s.Categories = set(e.Values)
	case ControlRegions:
		s.Regions = set(e.Values)
	case ControlTypes:
		s.Types = set(e.Values)
	case ControlOutlets:
		s.Outlets = set(e.Values)
	case ControlSearch:
		s.SearchText = e.Text
	default:
		return false
	}
	return true
}

// apply narrows the filters to a clicked point. The category mix resets
// the other filters first; every other chart adds to what is set.
func (rd Reducer) apply(m *Model, key Key) {
	f := &m.Filters
	switch k := key.(type) {
	case MixKey:
		months, compare := f.Months, f.CompareMonths
		*f = rd.resetKeepingVersion(*f)
		f.Months, f.CompareMonths = months, compare
		f.Categories = []string{k.Category}
		f.Regions = []string{k.Region}
	case RegionKey:
		f.Regions = []string{k.Region}
	case OutletKey:
		f.Regions = []string{k.Region}
		f.SearchText = k.Outlet
	case CategoryKey:
		f.Categories = []string{k.Category}
	case ScatterKey:
		f.Regions = []string{k.Region}
		if k.Legend == types.LegendType {
			f.Types = []string{k.Value}
		} else {
			f.Categories = []string{k.Value}
		}
	case GapKey:
		m.Tab3.Categories = []string{k.Category}
	}
}

// toggleOff undoes a repeated click. The ranked outlet boards clear every
// global filter but the months.
func (rd Reducer) toggleOff(m *Model, key Key) {
	f := &m.Filters
	switch k := key.(type) {
	case MixKey:
		f.Categories = []string{}
		f.Regions = []string{}
	case RegionKey:
		f.Regions = []string{}
	case OutletKey:
		months, compare := f.Months, f.CompareMonths
		*f = rd.resetKeepingVersion(*f)
		f.Months, f.CompareMonths = months, compare
	case CategoryKey:
		f.Categories = []string{}
	case ScatterKey:
		f.Regions = []string{}
		if k.Legend == types.LegendType {
			f.Types = []string{}
		} else {
			f.Categories = []string{}
		}
	case GapKey:
		m.Tab3.Categories = []string{}
	}
}

func unchanged(m Model) Result {
	return Result{Model: m, Controls: ControlsOf(m)}
}

// ControlsOf renders the control echo of a model.
func ControlsOf(m Model) Controls {
	f := m.Filters.Clone()
	c := Controls{
		Categories:     f.Categories,
		Regions:        f.Regions,
		Types:          f.Types,
		Outlets:        f.Outlets,
		SearchText:     f.SearchText,
		Months:         f.Months,
		CompareMonths:  f.CompareMonths,
		CompareEnabled: len(f.Months) >= 2,
		Tab3:           m.Tab3.Clone(),
		Axis:           m.Axis,
	}
	if m.Active != nil {
		c.ActiveKey = m.Active.String()
	}
	return c
}
