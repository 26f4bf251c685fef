package main

import (
	"outlet-insights-go/internal/filter"
	"outlet-insights-go/internal/types"
)

// eventRequest is the JSON body of POST /sessions/{id}/events. Type picks
// which of the other fields are read.
type eventRequest struct {
	Type string `json:"type"`

	Control string   `json:"control"`
	Values  []string `json:"values"`
	Text    string   `json:"text"`

	Months []string `json:"months"`
	On     bool     `json:"on"`

	Chart types.ChartID `json:"chart"`
	Point filter.Point  `json:"point"`

	X      string          `json:"x_axis"`
	Y      string          `json:"y_axis"`
	Legend types.LegendDim `json:"legend"`

	Categories       []string `json:"categories"`
	SalesCenterCodes []string `json:"sales_center_codes"`
	Shortfall        *string  `json:"shortfall"`
	KPIFocus         *string  `json:"kpi_focus"`
}

func (e eventRequest) event() (filter.Event, bool) {
	switch e.Type {
	case "reset":
		return filter.Reset{}, true
	case "control":
		return filter.ControlChange{Control: filter.Control(e.Control), Values: e.Values, Text: e.Text}, true
	case "months":
		return filter.MonthsChange{Months: e.Months}, true
	case "compare":
		return filter.CompareToggle{On: e.On}, true
	case "click":
		return filter.Click{Chart: e.Chart, Point: e.Point}, true
	case "axis":
		return filter.AxisChange{X: e.X, Y: e.Y, Legend: e.Legend}, true
	case "tab3":
		ev := filter.Tab3Change{Categories: e.Categories, SalesCenterCodes: e.SalesCenterCodes, KPIFocus: e.KPIFocus}
		if e.Shortfall != nil {
			sf := filter.ParseShortfall(*e.Shortfall)
			ev.Shortfall = &sf
		}
		return ev, true
	case "tab3_clear":
		return filter.Tab3Clear{}, true
	}
	return nil, false
}
