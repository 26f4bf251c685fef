package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/payload"
	"outlet-insights-go/internal/stats"
	"outlet-insights-go/internal/types"
)

const analystBrief = `You are a dealer network analyst reviewing outlet KPI dashboards.
Outlet categories: A = high performance and high quality, B and C = mixed, D = low on both.
KPI values are percent of target; gap = KPI% - 100.
Write concise markdown: a short "### Key findings" list, then "### Recommended actions".
Only state numbers that appear in the data or statistics below. Round numbers to 2 decimals.`

// chartPrompt is the template shared by single, per-chart and per-chunk
// prompts. note is prepended to the data block when set.
func chartPrompt(charts []payload.Chart, meta *payload.Metadata, note string) string {
	var b strings.Builder
	b.WriteString(analystBrief)
	b.WriteString("\n\n")
	if note != "" {
		b.WriteString(note)
		b.WriteString("\n\n")
	}
	if meta != nil {
		fmt.Fprintf(&b, "Axis state: x=%s, y=%s, legend=%s.\n\n", meta.XAxis, meta.YAxis, meta.Legend)
	}
	b.WriteString("Chart data (JSON):\n")
	b.WriteString(mustJSON(map[string]any{"charts": charts}))
	return b.String()
}

func chunkNote(c payload.Chart, i, n, from, to, total int) string {
	return fmt.Sprintf("This is a PARTIAL view: chunk %d of %d of chart %s (%s), rows %d-%d of %d. "+
		"Summarize only what this chunk shows in at most 5 bullets; a final pass will combine the chunks.",
		i, n, c.GraphID, c.GraphLabel, from, to, total)
}

// reducePrompt merges chunk summaries with the statistics of the full
// dataset, which take precedence over anything the chunks claim.
func reducePrompt(c payload.Chart, full *frame.Table, summaries []string) string {
	var b strings.Builder
	b.WriteString(analystBrief)
	fmt.Fprintf(&b, "\n\nChart %s (%s) has %d underlying rows and was summarized in %d chunks.\n", c.GraphID, c.GraphLabel, full.Len(), len(summaries))
	if c.Month != "" {
		fmt.Fprintf(&b, "All rows belong to month %s.\n", c.Month)
	}
	b.WriteString("Combine the chunk summaries into one answer. When a chunk disagrees with the full-dataset statistics, trust the statistics.\n\n")
	for i, s := range summaries {
		fmt.Fprintf(&b, "Chunk %d summary:\n%s\n\n", i+1, strings.TrimSpace(s))
	}
	b.WriteString("Full-dataset statistics (JSON):\n")
	facts := authoritative(c)
	if full != c.Data {
		facts["full_rows"] = full.Len()
		facts["full_computed_stats"] = stats.Describe(full)
	}
	b.WriteString(mustJSON(facts))
	return b.String()
}

// synthesisPrompt joins per-chart reductions into one cross-chart answer.
func synthesisPrompt(parts []Section, meta payload.Metadata) string {
	var b strings.Builder
	b.WriteString(analystBrief)
	b.WriteString("\n\nBelow are analyses of several dashboard charts. Write one combined answer that relates them to each other.\n")
	fmt.Fprintf(&b, "Axis state: x=%s, y=%s, legend=%s.\n\n", meta.XAxis, meta.YAxis, meta.Legend)
	for _, p := range parts {
		fmt.Fprintf(&b, "#### %s\n%s\n\n", p.Title, strings.TrimSpace(p.Markdown))
	}
	return b.String()
}

func authoritative(c payload.Chart) map[string]any {
	out := map[string]any{
		"graph_id":       c.GraphID,
		"filters":        c.Filters,
		"columns":        c.Columns,
		"n_rows":         c.NRows,
		"computed_stats": c.ComputedStats,
	}
	if len(c.GroupStats) > 0 {
		out["group_stats"] = c.GroupStats
	}
	if c.ContextStats != nil {
		out["context_stats"] = c.ContextStats
	}
	if c.MonthMix != nil {
		out["month_mix"] = c.MonthMix
	}
	if c.Meta != nil {
		out["meta"] = c.Meta
	}
	return out
}

// chunkEntry is c carrying only one chunk of rows and no statistics.
func chunkEntry(c payload.Chart, columns []string, rows []map[string]any) payload.Chart {
	out := c
	out.Columns = columns
	out.Rows = rows
	out.NRows = len(rows)
	out.ComputedStats = nil
	out.GroupStats = nil
	out.ContextStats = nil
	out.MonthMix = nil
	return out
}

func usesAxes(id types.ChartID) bool {
	return id == types.ChartKPIScatter
}

func title(c payload.Chart) string {
	if c.Month != "" {
		return fmt.Sprintf("%s (%s)", c.GraphLabel, c.Month)
	}
	return c.GraphLabel
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%q", err.Error())
	}
	return string(b)
}
