package dashboard

import (
	"sync"
	"time"

	"outlet-insights-go/internal/filter"
	"outlet-insights-go/internal/selection"
	"outlet-insights-go/internal/types"
)

// Session is one user's dashboard: its filter model and chart selection.
// Events on a session run one at a time.
type Session struct {
	ID      string
	Created time.Time

	mu        sync.Mutex
	model     filter.Model
	selection *selection.Store
}

func newSession(id string, m filter.Model) *Session {
	return &Session{ID: id, Created: time.Now().UTC(), model: m, selection: selection.NewStore()}
}

// View is the session state returned to clients.
type View struct {
	ID       string          `json:"session_id"`
	Controls filter.Controls `json:"controls"`
	Selected []types.ChartID `json:"selected"`
	Version  int             `json:"version"`
}

// view must be called with mu held.
func (s *Session) view() View {
	ids := s.selection.IDs()
	if ids == nil {
		ids = []types.ChartID{}
	}
	return View{
		ID:       s.ID,
		Controls: filter.ControlsOf(s.model),
		Selected: ids,
		Version:  s.model.Filters.Version,
	}
}
