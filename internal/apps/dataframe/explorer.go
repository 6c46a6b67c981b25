// Package dataframe is the upload, slice, summarize and plot explorer.
package dataframe

import (
	"bytes"
	"context"
	stderrors "errors"
	"log"

	"edahub/adapters/excel"
	"edahub/domain/filter"
	"edahub/domain/plot"
	"edahub/domain/summary"
	"edahub/domain/table"
	"edahub/internal/errors"
	"edahub/internal/hub"
	"edahub/internal/session"
	"edahub/models"
)

const (
	// Title is the heading of the explorer page
	Title = "DataFrame Handling & Visualization App"

	templateName = "dataframe.html"
)

// Explorer runs one interaction of the dataframe app
type Explorer struct {
	tables *session.TableCache
}

// New creates an explorer reading uploads from tables
func New(tables *session.TableCache) *Explorer {
	return &Explorer{tables: tables}
}

// Factory registers the explorer with the hub
func Factory(tables *session.TableCache) hub.Factory {
	return func() hub.App { return New(tables) }
}

// Run loads any upload, applies the submitted widgets, derives the sliced
// view, summarizes it and draws every panel in order. A panel that cannot
// be drawn stops the run; the panels before it are still returned. An
// upload that cannot be read leaves the session as it was and the page
// shows the previous dataset.
func (e *Explorer) Run(ctx context.Context, s *models.Session, in hub.Input) (*models.Session, *hub.Page, error) {
	next := s.Clone()
	view := &View{
		MaxConditions: models.MaxConditions,
		Operators:     filter.Operators,
		Connectors:    []filter.Connector{filter.And, filter.Or},
		Kinds:         plot.Kinds,
	}
	page := &hub.Page{Title: Title, Template: templateName, Data: view}

	if in.Upload != nil {
		if err := e.load(next, in.Upload); err != nil {
			// the view is built from a scratch copy so the stored state stays untouched
			e.render(ctx, s.Clone(), hub.Input{}, view)
			return s, page, err
		}
	}

	if err := e.render(ctx, next, in, view); err != nil {
		return next, page, err
	}
	return next, page, nil
}

func (e *Explorer) render(ctx context.Context, next *models.Session, in hub.Input, view *View) error {
	// uploads live in memory only, so after a restart the dataset is gone
	ds, ok := e.tables.Get(next.ID)
	if !ok {
		if next.Explorer.Dataset != "" {
			next.Explorer = next.Explorer.ResetDataset("")
		}
		return nil
	}
	base := ds.Table
	view.Dataset = ds.Name
	view.Full = preview(base, PreviewRows)
	view.AllColumns = base.Names()

	if in.Submitted && in.Upload == nil {
		next.Explorer = readWidgets(next.Explorer, in.Form, base)
	}
	state := &next.Explorer

	pred, err := e.predicate(state, base, view)
	if err != nil {
		return err
	}
	view.Expression = pred.String()

	rows, err := filter.Apply(base, pred)
	if err != nil {
		return errors.Wrap(err, "failed to filter rows")
	}
	columns := base.Names()
	if state.ColumnsChosen {
		columns = keepKnown(base, state.Columns)
	}
	view.Selected = make(map[string]bool, len(columns))
	for _, c := range columns {
		view.Selected[c] = true
	}
	sliced, err := rows.Select(columns)
	if err != nil {
		return errors.Wrap(err, "failed to select columns")
	}
	view.Sliced = preview(sliced, PreviewRows)
	view.Summary = summary.Summarize(sliced)

	return e.drawPanels(ctx, state, base, sliced, view)
}

func (e *Explorer) load(next *models.Session, up *hub.Upload) error {
	t, err := excel.NewDataReader(up.Name).ReadTable(bytes.NewReader(up.Data))
	if err != nil {
		return errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "could not read %s", up.Name))
	}
	e.tables.Put(next.ID, up.Name, t)
	next.Explorer = next.Explorer.ResetDataset(up.Name)
	log.Printf("[Explorer] session %s loaded %s (%d rows, %d columns)", next.ID, up.Name, t.Nrow(), t.Ncol())
	return nil
}

// predicate builds the current filter. An invalid filter is reported in the
// view and the last filter that worked is used instead.
func (e *Explorer) predicate(state *models.ExplorerState, base *table.Table, view *View) (filter.Predicate, error) {
	view.ConditionCount = state.ConditionCount
	for i, c := range state.Filter.Conditions {
		cv := ConditionView{Index: i, Condition: c, Connector: filter.And, Selected: make(map[string]bool)}
		if i > 0 && i-1 < len(state.Filter.Connectors) {
			cv.Connector = state.Filter.Connectors[i-1]
		}
		if base.Has(c.Column) {
			cv.Choices = base.Distinct(c.Column)
		}
		for _, v := range c.Values {
			cv.Selected[v] = true
		}
		view.Conditions = append(view.Conditions, cv)
	}

	pred, err := state.Filter.Build(base)
	var invalid *filter.InvalidFilterError
	switch {
	case stderrors.As(err, &invalid):
		view.FilterError = invalid.Error()
		if pred, err = state.Applied.Build(base); err != nil {
			return filter.Build(base, nil, nil)
		}
		return pred, nil
	case err != nil:
		return nil, errors.Wrap(err, "failed to build filter")
	}
	state.Applied = state.Filter.Clone()
	return pred, nil
}

func (e *Explorer) drawPanels(ctx context.Context, state *models.ExplorerState, base, sliced *table.Table, view *View) error {
	panels := state.Panels
	defer func() { state.Panels = panels }()

	for i := 0; i < panels.PanelCount(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		cfg := panels.Panel(i)
		src := sliced
		if cfg.Source == plot.SourceFull {
			src = base
		}
		cfg = withDefaults(cfg, src)
		panels = panels.WithPanel(i, cfg)

		pv := PanelView{Index: i, Config: cfg, Columns: src.Names()}
		img, err := plot.Render(src, cfg)
		if err != nil {
			view.Panels = append(view.Panels, pv)
			return errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "plot %d could not be drawn", i+1))
		}
		pv.Image = img
		view.Panels = append(view.Panels, pv)
	}
	return nil
}

// withDefaults fills unselected roles the way the selectors preselect them:
// the first numeric column where the kind needs numbers, else the first column.
// A role naming a column t no longer has counts as unselected.
func withDefaults(cfg plot.PanelConfig, t *table.Table) plot.PanelConfig {
	if cfg.Source == "" {
		cfg.Source = plot.SourceFiltered
	}
	if cfg.Kind == "" {
		cfg.Kind = plot.Histogram
	}
	for _, role := range []*plot.Column{&cfg.X, &cfg.Y, &cfg.Hue} {
		if role.Set && !t.Has(role.Name) {
			*role = plot.NoColumn
		}
	}
	if t.Ncol() == 0 {
		return cfg
	}
	pick := func(skip string) plot.Column {
		if cfg.Kind != plot.Count {
			for _, c := range t.Columns(table.KindNumeric) {
				if c != skip {
					return plot.Col(c)
				}
			}
		}
		for _, c := range t.Names() {
			if c != skip {
				return plot.Col(c)
			}
		}
		return plot.Col(t.Names()[0])
	}
	if !cfg.X.Set {
		cfg.X = pick("")
	}
	if cfg.Kind.NeedsY() && !cfg.Y.Set {
		cfg.Y = pick(cfg.X.Name)
	}
	return cfg
}
