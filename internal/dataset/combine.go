package dataset

import (
	"sort"

	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

// Tables is one period's named tables for a tab.
type Tables map[string]*frame.Table

// Store holds every loaded table: tab -> period -> table name -> table.
type Store map[types.Tab]map[string]Tables

// Periods lists the periods loaded for a tab, sorted.
func (s Store) Periods(tab types.Tab) []string {
	var out []string
	for p := range s[tab] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Combine unions the selected periods of one tab into a single labeled table
// per table name. Periods are visited in the given order; a repeated or
// absent period contributes nothing.
func Combine(store Store, selected []string, tab types.Tab) Tables {
	out := Tables{}
	seen := map[string]bool{}
	for _, period := range selected {
		if seen[period] {
			continue
		}
		seen[period] = true
		tables, ok := store[tab][period]
		if !ok {
			continue
		}
		for _, name := range sortedNames(tables) {
			t := Normalize(tables[name]).SanitizeInfinite()
			if t.IsBlank() {
				if _, ok := out[name]; !ok {
					out[name] = frame.New(t.Columns...).WithColumn(types.ColMonth, period)
				}
				continue
			}
			out[name] = frame.Append(out[name], t.WithColumn(types.ColMonth, period))
		}
	}
	return out
}

// Get is nil-safe and returns an empty table for an unknown name.
func (t Tables) Get(name string) *frame.Table {
	if tb, ok := t[name]; ok && tb != nil {
		return tb
	}
	return frame.New()
}

func sortedNames(t Tables) []string {
	names := make([]string, 0, len(t))
	for n := range t {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
