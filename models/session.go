package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"edahub/domain/filter"
	"edahub/domain/plot"

	"github.com/google/uuid"
)

// MaxConditions bounds the condition stepper of the explorer
const MaxConditions = 5

// Session is the explicit per-session state handed to an app on every run
// and handed back, possibly changed, when the run completes.
type Session struct {
	ID          uuid.UUID     `json:"id" db:"session_id"`
	Explorer    ExplorerState `json:"explorer" db:"state"`
	Version     int           `json:"version" db:"version"`
	LastUpdated time.Time     `json:"last_updated" db:"last_updated"`
}

// NewSession creates an empty session
func NewSession(id uuid.UUID) *Session {
	return &Session{
		ID:          id,
		Explorer:    NewExplorerState(),
		Version:     1,
		LastUpdated: time.Now(),
	}
}

// Clone returns a deep copy so that stores never hand out shared state
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Explorer = s.Explorer.Clone()
	return &out
}

// Touch bumps the version after a run changed the state
func (s *Session) Touch() {
	s.Version++
	s.LastUpdated = time.Now()
}

// ExplorerState holds the widget selections of the dataframe explorer
type ExplorerState struct {
	Dataset string `json:"dataset,omitempty"`

	// ColumnsChosen distinguishes "never chosen" (all columns) from an
	// explicitly empty selection
	ColumnsChosen bool     `json:"columns_chosen,omitempty"`
	Columns       []string `json:"columns,omitempty"`

	ConditionCount int         `json:"condition_count"`
	Filter         filter.Spec `json:"filter"`
	// Applied is the last filter that evaluated cleanly against the dataset
	Applied filter.Spec `json:"applied"`

	Panels PanelRegistry `json:"panels"`
}

// NewExplorerState returns the state of a fresh explorer
func NewExplorerState() ExplorerState {
	return ExplorerState{Panels: NewPanelRegistry()}
}

// Clone deep-copies the slices and maps of the state
func (e ExplorerState) Clone() ExplorerState {
	out := e
	out.Columns = append([]string(nil), e.Columns...)
	out.Filter = e.Filter.Clone()
	out.Applied = e.Applied.Clone()
	out.Panels = e.Panels.clone()
	return out
}

// ResetDataset forgets everything tied to the previous upload. The panel
// count survives because panels are never removed within a session.
func (e ExplorerState) ResetDataset(name string) ExplorerState {
	e.Dataset = name
	e.ColumnsChosen = false
	e.Columns = nil
	e.ConditionCount = 0
	e.Filter = filter.Spec{}
	e.Applied = filter.Spec{}
	e.Panels = PanelRegistry{Count: e.Panels.PanelCount()}
	return e
}

// Value implements driver.Valuer for the JSONB state column
func (e ExplorerState) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner for the JSONB state column
func (e *ExplorerState) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*e = NewExplorerState()
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into explorer state", value)
	}
	if len(raw) == 0 {
		*e = NewExplorerState()
		return nil
	}
	var out ExplorerState
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*e = out
	return nil
}

// PanelRegistry remembers how many plot panels a session has added and
// the configuration of each one. Panels are never removed.
type PanelRegistry struct {
	Count  int                      `json:"count"`
	Panels map[int]plot.PanelConfig `json:"panels,omitempty"`
}

// NewPanelRegistry starts with a single panel
func NewPanelRegistry() PanelRegistry {
	return PanelRegistry{Count: 1}
}

// PanelCount is at least 1, also for a registry that was never initialised
func (r PanelRegistry) PanelCount() int {
	if r.Count < 1 {
		return 1
	}
	return r.Count
}

// AddPanel returns the registry with one more panel
func (r PanelRegistry) AddPanel() PanelRegistry {
	out := r.clone()
	out.Count = r.PanelCount() + 1
	return out
}

// Panel returns the remembered configuration of panel i, or the default
func (r PanelRegistry) Panel(i int) plot.PanelConfig {
	if cfg, ok := r.Panels[i]; ok {
		return cfg
	}
	return plot.DefaultPanel()
}

// WithPanel returns the registry remembering cfg for panel i
func (r PanelRegistry) WithPanel(i int, cfg plot.PanelConfig) PanelRegistry {
	out := r.clone()
	if i < 0 || i >= out.PanelCount() {
		return out
	}
	if out.Panels == nil {
		out.Panels = make(map[int]plot.PanelConfig)
	}
	out.Panels[i] = cfg
	return out
}

func (r PanelRegistry) clone() PanelRegistry {
	out := PanelRegistry{Count: r.Count}
	if r.Panels != nil {
		out.Panels = make(map[int]plot.PanelConfig, len(r.Panels))
		for k, v := range r.Panels {
			out.Panels[k] = v
		}
	}
	return out
}
