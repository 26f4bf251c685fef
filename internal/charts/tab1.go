package charts

import (
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/types"
)

// RankLimit caps the top and bottom outlet boards.
const RankLimit = 20

// perfQuality switches granularity on the region selection: one region
// drills into its outlets, anything else shows one point per region.
func perfQuality(in Input) (Frame, error) {
	detail := in.Tables.Get(types.TableDetail)
	if err := requireColumns(types.ChartPerfQuality, detail, types.ColRegion, types.ColPerformance, types.ColQuality); err != nil {
		return Frame{}, err
	}
	filtered := Apply(detail, in.Filters)
	outlets := outletPoints(filtered, types.ColPerformance, types.ColQuality, types.ColCategory)
	regions := sortByKeys(meansBy(filtered, []string{types.ColRegion}, []string{types.ColPerformance, types.ColQuality}), types.ColRegion)

	meta := &Metadata{X: types.ColPerformance, Y: types.ColQuality}
	fr := Frame{Detail: filtered, Meta: meta}
	if len(in.Filters.Regions) == 1 {
		fr.Data, fr.Alt = outlets, regions
		meta.Mode, meta.Color = ModeOutlet, types.ColCategory
	} else {
		fr.Data, fr.Alt = regions, outlets
		meta.Mode, meta.Color = ModeRegion, types.ColRegion
	}
	meta.describeAxes(fr.Data)
	return fr, nil
}

// outletPoints keeps one row per outlet observation with both axes set.
func outletPoints(t *frame.Table, x, y, color string) *frame.Table {
	pts := t.Filter(func(r frame.Row) bool {
		_, okX := frame.Float(r[x])
		_, okY := frame.Float(r[y])
		return okX && okY
	})
	return pts.Select(types.ColOutletName, types.ColRegion, color, types.ColMonth, x, y)
}

// categoryMix always reads the unfiltered detail table so shares stay
// comparable across filter states.
func categoryMix(in Input) (Frame, error) {
	detail := in.Tables.Get(types.TableDetail)
	if err := requireColumns(types.ChartCategoryMix, detail, types.ColRegion, types.ColCategory); err != nil {
		return Frame{}, err
	}
	counts := sortByKeys(countBy(detail, types.ColRegion, types.ColCategory), types.ColRegion, types.ColCategory)
	return Frame{
		Data:   withShare(counts, types.ColRegion),
		Detail: detail.Clone(),
		Meta:   &Metadata{X: types.ColRegion, Y: colPct, Color: types.ColCategory},
	}, nil
}

func regionPerformance(in Input) (Frame, error) {
	detail := in.Tables.Get(types.TableDetail)
	if err := requireColumns(types.ChartRegionPerf, detail, types.ColRegion, types.ColTotalScore); err != nil {
		return Frame{}, err
	}
	filtered := Apply(detail, in.Filters)
	data := meansBy(filtered, []string{types.ColRegion}, []string{types.ColTotalScore, types.ColPerformance, types.ColQuality})
	return Frame{
		Data:   sortByKeys(data, types.ColRegion),
		Detail: filtered,
		Meta:   &Metadata{X: types.ColRegion, Y: types.ColTotalScore},
	}, nil
}

// ranked builds the top (descending) or bottom (ascending) outlet board:
// one row per outlet name, best observation first, capped at RankLimit.
func ranked(top bool) resolveFunc {
	id := types.ChartBottomOutlets
	if top {
		id = types.ChartTopOutlets
	}
	return func(in Input) (Frame, error) {
		detail := in.Tables.Get(types.TableDetail)
		if err := requireColumns(id, detail, types.ColOutletName, types.ColTotalScore); err != nil {
			return Frame{}, err
		}
		filtered := Apply(detail, in.Filters)
		scored := filtered.Filter(func(r frame.Row) bool {
			_, ok := frame.Float(r[types.ColTotalScore])
			return ok && !frame.Blank(r[types.ColOutletName])
		})
		sorted := scored.SortStable(func(a, b frame.Row) bool {
			x, _ := frame.Float(a[types.ColTotalScore])
			y, _ := frame.Float(b[types.ColTotalScore])
			if x != y {
				if top {
					return x > y
				}
				return x < y
			}
			return frame.String(a[types.ColOutletName]) < frame.String(b[types.ColOutletName])
		})
		seen := map[string]bool{}
		board := sorted.Filter(func(r frame.Row) bool {
			name := frame.String(r[types.ColOutletName])
			if seen[name] {
				return false
			}
			seen[name] = true
			return true
		}).Head(RankLimit)

		return Frame{
			Data:   board.Select(types.ColOutletName, types.ColRegion, types.ColCategory, types.ColType, types.ColMonth, types.ColTotalScore),
			Detail: filtered,
			Meta:   &Metadata{X: types.ColTotalScore, Y: types.ColOutletName, Color: types.ColRegion},
		}, nil
	}
}

// categoryCount reads the filtered detail table.
func categoryCount(in Input) (Frame, error) {
	detail := in.Tables.Get(types.TableDetail)
	if err := requireColumns(types.ChartCategoryCount, detail, types.ColCategory); err != nil {
		return Frame{}, err
	}
	filtered := Apply(detail, in.Filters)
	return Frame{
		Data:   orderBy(countBy(filtered, types.ColCategory), types.ColCategory, types.Categories),
		Detail: filtered,
		Meta:   &Metadata{X: types.ColCategory, Y: colCount},
	}, nil
}

// CategoryMixByMonth is the share of each category among a month's outlets.
func CategoryMixByMonth(detail *frame.Table) *frame.Table {
	if detail.Missing(types.ColMonth, types.ColCategory) != nil {
		return frame.New(types.ColMonth, types.ColCategory, colCount, colPct)
	}
	counts := orderBy(countBy(detail, types.ColMonth, types.ColCategory), types.ColCategory, types.Categories)
	return withShare(stableByFirstSeen(counts, detail, types.ColMonth), types.ColMonth)
}

// CategoryMixByMonthRegion is the same share within each month and region.
func CategoryMixByMonthRegion(detail *frame.Table) *frame.Table {
	if detail.Missing(types.ColMonth, types.ColRegion, types.ColCategory) != nil {
		return frame.New(types.ColMonth, types.ColRegion, types.ColCategory, colCount, colPct)
	}
	counts := sortByKeys(countBy(detail, types.ColMonth, types.ColRegion, types.ColCategory), types.ColRegion, types.ColCategory)
	return withShare(stableByFirstSeen(counts, detail, types.ColMonth), types.ColMonth, types.ColRegion)
}

// stableByFirstSeen orders t by the first appearance of col's values in
// ref, keeping the existing order within a value.
func stableByFirstSeen(t, ref *frame.Table, col string) *frame.Table {
	return orderBy(t, col, ref.Strings(col))
}
