package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"outlet-insights-go/internal/charts"
	"outlet-insights-go/internal/config"
	"outlet-insights-go/internal/dashboard"
	"outlet-insights-go/internal/insight"
	"outlet-insights-go/internal/llm"
	"outlet-insights-go/internal/logger"
	"outlet-insights-go/internal/payload"
	"outlet-insights-go/internal/types"
)

type server struct {
	svc     *dashboard.Service
	periods []string
	offline bool
}

func newServer(svc *dashboard.Service, cfg config.Config) *server {
	return &server{svc: svc, periods: cfg.Periods, offline: cfg.Offline}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /charts", s.catalogue)
	mux.HandleFunc("POST /sessions", s.createSession)
	mux.HandleFunc("GET /sessions/{id}", s.getSession)
	mux.HandleFunc("POST /sessions/{id}/events", s.dispatch)
	mux.HandleFunc("GET /sessions/{id}/charts/{chart}", s.chart)
	mux.HandleFunc("POST /sessions/{id}/selection/{chart}", s.toggleSelection)
	mux.HandleFunc("DELETE /sessions/{id}/selection", s.clearSelection)
	mux.HandleFunc("POST /sessions/{id}/insights", s.insights)
	return mux
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	logger.New().WithRequest(r).Debug("health check")
	fmt.Fprint(w, "ok")
}

func (s *server) catalogue(w http.ResponseWriter, r *http.Request) {
	type chartInfo struct {
		ID        types.ChartID `json:"id"`
		Tab       types.Tab     `json:"tab"`
		Label     string        `json:"label"`
		Clickable bool          `json:"clickable"`
	}
	var out []chartInfo
	for _, c := range charts.Catalogue() {
		out = append(out, chartInfo{ID: c.ID, Tab: c.Tab, Label: c.Label, Clickable: c.Clickable})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"charts": out, "periods": s.periods, "offline": s.offline})
}

func (s *server) createSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusCreated, s.svc.NewSession())
}

func (s *server) getSession(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Session(r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *server) dispatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid event body", http.StatusBadRequest)
		return
	}
	ev, ok := req.event()
	if !ok {
		// an unrecognized trigger leaves the session as it is
		v, err := s.svc.Session(id)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, dashboard.DispatchResult{View: v})
		return
	}
	res, err := s.svc.Dispatch(id, ev)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *server) chart(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Chart(r.PathValue("id"), types.ChartID(r.PathValue("chart")))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *server) toggleSelection(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.ToggleSelection(r.PathValue("id"), types.ChartID(r.PathValue("chart")))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *server) clearSelection(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.ClearSelection(r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

func (s *server) insights(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithSession(r.PathValue("id")).WithField("handler", "insights")
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid insights body", http.StatusBadRequest)
		return
	}
	mode, err := insight.ParseMode(body.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := s.svc.Generate(r.Context(), r.PathValue("id"), mode)
	reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("insights finished")
	if errors.Is(err, dashboard.ErrSessionNotFound) {
		fail(w, r, err)
		return
	}
	if err != nil {
		reqLog.WithError(err).Warn("insights returned error")
		writeJSON(w, r, statusOf(err), res)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrSessionNotFound), errors.Is(err, charts.ErrUnknownChart):
		return http.StatusNotFound
	case errors.Is(err, payload.ErrNothingSelected):
		return http.StatusBadRequest
	case errors.Is(err, payload.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusBadGateway {
		status = http.StatusInternalServerError
	}
	logger.New().WithRequest(r).WithError(err).WithField("status", status).Warn("request failed")
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.New().WithRequest(r).WithError(err).Error("failed to write response")
	}
}
