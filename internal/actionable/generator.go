// Package actionable turns KPI gap rows into rule-based action cards that
// sit next to the generated insights.
package actionable

import (
	"fmt"
	"sort"

	"outlet-insights-go/internal/charts"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

// CriticalGap is the gap at or below which a category gets a card.
const CriticalGap = -15.0

type ActionCard struct {
	Category string  `json:"outlet_category,omitempty"`
	KPI      string  `json:"kpi,omitempty"`
	Gap      float64 `json:"gap"`
	Insight  string  `json:"insight"`
	Action   string  `json:"action"`
	Impact   string  `json:"impact"`
}

// FromGaps returns one card per category for its worst KPI when that gap
// is critical, worst category first. Without a critical gap it returns a
// single monitoring card; a table that is not a gap table yields nothing.
func FromGaps(t *frame.Table) []ActionCard {
	if t.Missing(types.ColCategory, types.ColKPI, charts.GapColumn) != nil || t.Len() == 0 {
		return nil
	}
	worst := map[string]frame.Row{}
	var order []string
	for _, r := range t.Rows {
		cat := frame.String(r[types.ColCategory])
		gap, ok := frame.Float(r[charts.GapColumn])
		if cat == "" || !ok {
			continue
		}
		cur, seen := worst[cat]
		if !seen {
			order = append(order, cat)
		}
		if prev, _ := frame.Float(cur[charts.GapColumn]); !seen || gap < prev {
			worst[cat] = r
		}
	}

	var cards []ActionCard
	for _, cat := range order {
		r := worst[cat]
		gap, _ := frame.Float(r[charts.GapColumn])
		if gap > CriticalGap {
			continue
		}
		cards = append(cards, card(cat, frame.String(r[types.ColKPI]), gap))
	}
	if len(cards) == 0 {
		return []ActionCard{{
			Insight: fmt.Sprintf("No KPI gap at or below %.0f points", CriticalGap),
			Action:  "Monitor and review again after the next period",
			Impact:  "Low immediate intervention",
		}}
	}
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Gap < cards[j].Gap })
	return cards
}

func card(cat, kpi string, gap float64) ActionCard {
	label := kpi
	group := types.GroupPerformance
	if k, ok := types.LookupKPI(kpi); ok {
		label, group = k.Label, k.Group
	}
	c := ActionCard{
		Category: cat,
		KPI:      kpi,
		Gap:      gap,
		Insight:  fmt.Sprintf("Category %s outlets are %.1f points below target on %s", cat, -gap, label),
	}
	if group == types.GroupQuality {
		c.Action = "Run a process audit and targeted staff coaching for the affected outlets"
		c.Impact = "Lift customer experience scores and move outlets toward category A"
	} else {
		c.Action = "Set a monthly recovery target and review the sales pipeline with outlet managers"
		c.Impact = "Close the revenue gap to target"
	}
	return c
}
