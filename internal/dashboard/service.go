// Package dashboard ties the pieces together per user session: the filter
// reducer, chart resolution, the selection store and insight generation.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"outlet-insights-go/internal/charts"
	"outlet-insights-go/internal/dataset"
	"outlet-insights-go/internal/filter"
	"outlet-insights-go/internal/insight"
	"outlet-insights-go/internal/logger"
	"outlet-insights-go/internal/payload"
	"outlet-insights-go/internal/selection"
	"outlet-insights-go/internal/types"
)

var ErrSessionNotFound = errors.New("session not found")

type Options struct {
	DefaultPeriod   string
	SessionCapacity int
	// PackMaxRows caps selection snapshots and prompt rows.
	PackMaxRows int
}

type Service struct {
	cache    *dataset.Cache
	reducer  filter.Reducer
	sessions *lru.Cache[string, *Session]
	insights *insight.Orchestrator
	maxRows  int
}

func NewService(cache *dataset.Cache, insights *insight.Orchestrator, opts Options) (*Service, error) {
	capacity := opts.SessionCapacity
	if capacity <= 0 {
		capacity = 256
	}
	sessions, err := lru.New[string, *Session](capacity)
	if err != nil {
		return nil, fmt.Errorf("session registry: %w", err)
	}
	return &Service{
		cache:    cache,
		reducer:  filter.NewReducer(opts.DefaultPeriod),
		sessions: sessions,
		insights: insights,
		maxRows:  opts.PackMaxRows,
	}, nil
}

// NewSession starts a session at the default filter model.
func (s *Service) NewSession() View {
	sess := newSession(uuid.NewString(), s.reducer.Initial())
	s.sessions.Add(sess.ID, sess)
	logger.Component("dashboard").WithSession(sess.ID).Info("session created")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view()
}

func (s *Service) lookup(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *Service) Session(id string) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// DispatchResult reports whether the event changed anything.
type DispatchResult struct {
	View
	Changed bool `json:"changed"`
}

// Dispatch runs one event through the reducer. Snapshots of selected
// charts are re-taken under the new filters.
func (s *Service) Dispatch(id string, ev filter.Event) (DispatchResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return DispatchResult{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	res := s.reducer.Reduce(sess.model, ev)
	if !res.Changed {
		return DispatchResult{View: sess.view()}, nil
	}
	sess.model = res.Model
	for _, chart := range sess.selection.IDs() {
		spec, err := charts.Lookup(chart)
		if err != nil {
			continue
		}
		sess.selection.Refresh(selection.NewEntry(spec.Render(s.input(spec, sess.model, sess.model.Filters)), s.maxRows))
	}
	logger.Component("dashboard").WithSession(id).
		WithField("version", sess.model.Filters.Version).
		WithField("event", fmt.Sprintf("%T", ev)).
		Debug("event applied")
	return DispatchResult{View: sess.view(), Changed: true}, nil
}

// ChartView is a chart as the client draws it.
type ChartView struct {
	Chart    types.ChartID          `json:"chart"`
	Label    string                 `json:"label"`
	Note     string                 `json:"note,omitempty"`
	Data     *selection.PackedFrame `json:"data"`
	Alt      *selection.PackedFrame `json:"alt,omitempty"`
	Gap      *selection.PackedFrame `json:"gap,omitempty"`
	Meta     *charts.Metadata       `json:"meta,omitempty"`
	Selected bool                   `json:"selected"`
}

// Chart resolves one chart under the session's current model. Column
// mismatches come back as an empty chart with a note.
func (s *Service) Chart(id string, chart types.ChartID) (ChartView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return ChartView{}, err
	}
	spec, err := charts.Lookup(chart)
	if err != nil {
		return ChartView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	fr := spec.Render(s.input(spec, sess.model, sess.model.Filters))
	v := ChartView{
		Chart:    fr.Chart,
		Label:    fr.Label,
		Note:     fr.Note,
		Data:     selection.Pack(fr.Data, 0),
		Meta:     fr.Meta,
		Selected: sess.selection.Selected(chart),
	}
	if fr.Alt != nil {
		v.Alt = selection.Pack(fr.Alt, 0)
	}
	if fr.Gap != nil {
		v.Gap = selection.Pack(fr.Gap, 0)
	}
	return v, nil
}

// ToggleSelection adds the chart to the selection with a fresh snapshot,
// or removes it.
func (s *Service) ToggleSelection(id string, chart types.ChartID) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	spec, err := charts.Lookup(chart)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	fr := spec.Render(s.input(spec, sess.model, sess.model.Filters))
	sess.selection.Toggle(selection.NewEntry(fr, s.maxRows))
	return sess.view(), nil
}

func (s *Service) ClearSelection(id string) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.selection.Clear()
	return sess.view(), nil
}

// Generate assembles the payload under the session lock, then runs the
// LLM calls without holding it.
func (s *Service) Generate(ctx context.Context, id string, mode insight.Mode) (insight.Result, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return insight.Result{}, err
	}
	log := logger.Component("dashboard").WithSession(id).WithField("mode", mode)

	sess.mu.Lock()
	m := sess.model
	selected := sess.selection.IDs()
	live := func(chart types.ChartID, f filter.State) (charts.Frame, error) {
		spec, err := charts.Lookup(chart)
		if err != nil {
			return charts.Frame{}, err
		}
		return spec.Resolve(s.input(spec, m, f))
	}
	p, err := payload.NewAssembler(live, s.maxRows).Assemble(payload.Request{
		Selected: selected,
		Store:    sess.selection,
		Filters:  m.Filters,
		Tab3:     m.Tab3,
		Axis:     m.Axis,
	})
	sess.mu.Unlock()
	if err != nil {
		log.WithError(err).Info("nothing to generate")
		return insight.Result{Mode: mode, Error: err.Error()}, err
	}

	return s.insights.Generate(ctx, insight.Request{
		Mode:      mode,
		Payload:   p,
		Comparing: m.Filters.Comparing(),
		Selected:  len(selected),
	})
}

func (s *Service) input(spec charts.Spec, m filter.Model, f filter.State) charts.Input {
	return charts.Input{
		Tables:  s.cache.Combined(spec.Tab, f.Months),
		Filters: f,
		Tab3:    m.Tab3,
		Axis:    m.Axis,
	}
}
