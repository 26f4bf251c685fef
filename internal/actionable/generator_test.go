package actionable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"outlet-insights-go/internal/frame"
)

func gaps(rows ...frame.Row) *frame.Table {
	return frame.FromRows([]string{"outlet_category", "kpi", "gap"}, rows)
}

func TestFromGapsPicksWorstPerCategory(t *testing.T) {
	cards := FromGaps(gaps(
		frame.Row{"outlet_category": "B", "kpi": "revenue", "gap": -20.0},
		frame.Row{"outlet_category": "B", "kpi": "nps", "gap": -5.0},
		frame.Row{"outlet_category": "C", "kpi": "csi_service", "gap": -32.5},
		frame.Row{"outlet_category": "D", "kpi": "finance", "gap": -3.0},
	))
	require.Len(t, cards, 2)
	assert.Equal(t, "C", cards[0].Category)
	assert.Equal(t, "csi_service", cards[0].KPI)
	assert.Contains(t, cards[0].Insight, "32.5 points below target on CSI service")
	assert.Contains(t, cards[0].Action, "coaching")
	assert.Equal(t, "B", cards[1].Category)
	assert.Equal(t, -20.0, cards[1].Gap)
}

func TestFromGapsWithoutCriticalGap(t *testing.T) {
	cards := FromGaps(gaps(frame.Row{"outlet_category": "B", "kpi": "revenue", "gap": 4.0}))
	require.Len(t, cards, 1)
	assert.Empty(t, cards[0].Category)
	assert.Contains(t, cards[0].Action, "Monitor")
}

func TestFromGapsIgnoresOtherTables(t *testing.T) {
	assert.Nil(t, FromGaps(frame.FromRows([]string{"rgn", "total_score"}, []frame.Row{{"rgn": "North", "total_score": 1.0}})))
	assert.Nil(t, FromGaps(gaps()))
}
