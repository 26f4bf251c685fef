// Package insight turns an assembled payload into markdown insights by
// choosing a prompting strategy and driving the LLM client through it.
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"outlet-insights-go/internal/actionable"
	"outlet-insights-go/internal/llm"
	"outlet-insights-go/internal/logger"
	"outlet-insights-go/internal/payload"
	"outlet-insights-go/internal/stats"
	"outlet-insights-go/internal/types"
)

type Mode string

const (
	ModeCombined   Mode = "combined"
	ModeIndividual Mode = "individual"
)

// ParseMode defaults to combined.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeCombined:
		return ModeCombined, nil
	case ModeIndividual:
		return ModeIndividual, nil
	}
	return "", fmt.Errorf("unknown insight mode %q", s)
}

type Strategy string

const (
	StrategySingle    Strategy = "single"
	StrategyPerChart  Strategy = "per_chart"
	StrategyMapReduce Strategy = "map_reduce"
)

// NoContent is shown when the model answered with nothing.
const NoContent = "_The model returned no content for this request._"

type Options struct {
	ChunkThreshold int
	ChunkSize      int
	Reflow         bool
}

func DefaultOptions() Options {
	return Options{ChunkThreshold: 300, ChunkSize: 150, Reflow: true}
}

// Request is one generation.
type Request struct {
	Mode      Mode
	Payload   *payload.Payload
	Comparing bool
	// Selected is how many charts the user picked, which can exceed the
	// charts that made it into the payload.
	Selected int
}

type Section struct {
	GraphID  types.ChartID `json:"graph_id,omitempty"`
	Title    string        `json:"title"`
	Markdown string        `json:"markdown"`
}

// Result is returned by the insights endpoint.
type Result struct {
	Mode       Mode                    `json:"mode"`
	Strategy   Strategy                `json:"strategy"`
	Markdown   string                  `json:"markdown"`
	Sections   []Section               `json:"sections,omitempty"`
	Actions    []actionable.ActionCard `json:"actions,omitempty"`
	Calls      int                     `json:"llm_calls"`
	Empty      bool                    `json:"empty,omitempty"`
	DurationMs int64                   `json:"duration_ms"`
	Error      string                  `json:"error,omitempty"`
}

type Orchestrator struct {
	client llm.Client
	opts   Options
}

func NewOrchestrator(client llm.Client, opts Options) *Orchestrator {
	def := DefaultOptions()
	if opts.ChunkThreshold <= 0 {
		opts.ChunkThreshold = def.ChunkThreshold
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	return &Orchestrator{client: client, opts: opts}
}

// Choose picks the strategy in precedence order: per-chart prompts for
// individual mode over several charts, map-reduce when any entry is over
// the chunk threshold, otherwise one prompt.
func (o *Orchestrator) Choose(req Request) Strategy {
	distinct := len(req.Payload.DistinctCharts())
	selected := req.Selected
	if selected == 0 {
		selected = distinct
	}
	if req.Mode == ModeIndividual && selected > 1 && (!req.Comparing || distinct > 1) {
		return StrategyPerChart
	}
	for _, c := range req.Payload.Charts {
		if o.oversized(c) {
			return StrategyMapReduce
		}
	}
	return StrategySingle
}

// Generate runs the chosen strategy. Any LLM error aborts the whole
// request; the returned Result then carries only the error.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res := Result{Mode: req.Mode}
	if req.Payload == nil || len(req.Payload.Charts) == 0 {
		res.Error = payload.ErrNoData.Error()
		return res, payload.ErrNoData
	}
	res.Strategy = o.Choose(req)
	log := logger.Component("insight").WithField("strategy", res.Strategy).WithField("charts", len(req.Payload.Charts))

	run := &runner{client: o.client, ctx: ctx}
	var err error
	switch res.Strategy {
	case StrategyPerChart:
		res.Sections, err = o.perChart(run, req.Payload)
	case StrategyMapReduce:
		res.Sections, err = o.mapReduce(run, req.Payload)
	default:
		var text string
		text, err = run.generate(chartPrompt(req.Payload.Charts, &req.Payload.Metadata, ""))
		res.Sections = []Section{{Title: "Insights", Markdown: text}}
	}
	res.Calls = run.calls
	res.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		log.WithError(err).Warn("insight generation failed")
		return Result{Mode: req.Mode, Strategy: res.Strategy, Calls: run.calls, DurationMs: res.DurationMs, Error: err.Error()}, err
	}

	res.Markdown, res.Empty = o.render(res.Sections)
	res.Actions = actions(req.Payload)
	log.WithField("llm_calls", res.Calls).WithField("duration_ms", res.DurationMs).Info("insights generated")
	return res, nil
}

func (o *Orchestrator) render(sections []Section) (string, bool) {
	var parts []string
	for i := range sections {
		sections[i].Markdown = Polish(sections[i].Markdown, o.opts.Reflow)
		if sections[i].Markdown == "" {
			continue
		}
		if len(sections) > 1 {
			parts = append(parts, "## "+sections[i].Title+"\n\n"+sections[i].Markdown)
		} else {
			parts = append(parts, sections[i].Markdown)
		}
	}
	if len(parts) == 0 {
		return NoContent, true
	}
	return strings.Join(parts, "\n\n"), false
}

// perChart prompts once per distinct chart. Month entries of the same chart
// share a prompt, and the axis state only goes to charts that plot it.
func (o *Orchestrator) perChart(run *runner, p *payload.Payload) ([]Section, error) {
	var out []Section
	for _, id := range p.DistinctCharts() {
		var group []payload.Chart
		for _, c := range p.Charts {
			if c.GraphID == id {
				group = append(group, c)
			}
		}
		var meta *payload.Metadata
		if usesAxes(id) {
			meta = &p.Metadata
		}
		text, err := run.generate(chartPrompt(group, meta, ""))
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", id, err)
		}
		out = append(out, Section{GraphID: id, Title: group[0].GraphLabel, Markdown: text})
	}
	return out, nil
}

// mapReduce reduces every oversized entry through chunk summaries and
// prompts the rest directly. More than one reduction gets a final
// cross-chart synthesis.
func (o *Orchestrator) mapReduce(run *runner, p *payload.Payload) ([]Section, error) {
	var parts []Section
	for _, c := range p.Charts {
		var meta *payload.Metadata
		if usesAxes(c.GraphID) {
			meta = &p.Metadata
		}
		var (
			text string
			err  error
		)
		if o.oversized(c) {
			text, err = o.reduceChart(run, c, meta)
		} else {
			text, err = run.generate(chartPrompt([]payload.Chart{c}, meta, ""))
		}
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", c.GraphID, err)
		}
		parts = append(parts, Section{GraphID: c.GraphID, Title: title(c), Markdown: text})
	}
	if len(parts) == 1 {
		return parts, nil
	}
	text, err := run.generate(synthesisPrompt(parts, p.Metadata))
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}
	return []Section{{Title: "Insights", Markdown: text}}, nil
}

// oversized reports whether the entry's analytical rows exceed the chunk
// threshold.
func (o *Orchestrator) oversized(c payload.Chart) bool {
	t := c.Analytical()
	return t != nil && t.Len() > o.opts.ChunkThreshold
}

// reduceChart summarizes the full analytical rows chunk by chunk, then
// merges the summaries against the chart's statistics.
func (o *Orchestrator) reduceChart(run *runner, c payload.Chart, meta *payload.Metadata) (string, error) {
	full := c.Analytical()
	chunks := full.Chunks(o.opts.ChunkSize)
	summaries := make([]string, 0, len(chunks))
	from := 1
	for i, ch := range chunks {
		to := from + ch.Len() - 1
		entry := chunkEntry(c, ch.Columns, stats.Records(ch.Rows))
		text, err := run.generate(chartPrompt([]payload.Chart{entry}, meta, chunkNote(c, i+1, len(chunks), from, to, full.Len())))
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if strings.TrimSpace(text) != "" {
			summaries = append(summaries, text)
		}
		from = to + 1
	}
	if len(summaries) == 0 {
		return "", nil
	}
	return run.generate(reducePrompt(c, full, summaries))
}

// actions collects rule-based cards from the gap chart entries.
func actions(p *payload.Payload) []actionable.ActionCard {
	var out []actionable.ActionCard
	for _, c := range p.Charts {
		if c.GraphID == types.ChartKPIGap && c.Data != nil {
			out = append(out, actionable.FromGaps(c.Data)...)
		}
	}
	return out
}

// runner counts calls and stops at the first failure.
type runner struct {
	client llm.Client
	ctx    context.Context
	calls  int
}

func (r *runner) generate(prompt string) (string, error) {
	if r.client == nil {
		return "", llm.ErrNotConfigured
	}
	if err := r.ctx.Err(); err != nil {
		return "", err
	}
	r.calls++
	return r.client.Generate(r.ctx, prompt)
}
