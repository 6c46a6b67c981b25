package dataframe

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"edahub/domain/filter"
	"edahub/domain/plot"
	"edahub/domain/table"
	"edahub/models"
)

// Form field names posted by the explorer view
const (
	fieldColumnsPresent = "columns_present"
	fieldColumns        = "columns"
	fieldCondCount      = "cond_count"
	fieldAction         = "action"

	actionAddPanel = "add_panel"
)

func condField(i int, name string) string  { return fmt.Sprintf("cond_%d_%s", i, name) }
func connField(i int) string               { return fmt.Sprintf("conn_%d", i) }
func panelField(i int, name string) string { return fmt.Sprintf("panel_%d_%s", i, name) }

// readWidgets applies a submitted form to the explorer state. Widgets that
// were not posted keep their previous value.
func readWidgets(state models.ExplorerState, form url.Values, t *table.Table) models.ExplorerState {
	if form.Get(fieldColumnsPresent) != "" {
		state.ColumnsChosen = true
		state.Columns = keepKnown(t, form[fieldColumns])
	}

	if raw := form.Get(fieldCondCount); raw != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			state.ConditionCount = clamp(n, 0, models.MaxConditions)
		}
		state.Filter = readConditions(form, t, state.ConditionCount)
	}

	panels := state.Panels
	for i := 0; i < panels.PanelCount(); i++ {
		if !form.Has(panelField(i, "kind")) {
			continue
		}
		panels = panels.WithPanel(i, readPanel(form, i, panels.Panel(i)))
	}
	if form.Get(fieldAction) == actionAddPanel {
		panels = panels.AddPanel()
	}
	state.Panels = panels

	return state
}

func readConditions(form url.Values, t *table.Table, count int) filter.Spec {
	var spec filter.Spec
	for i := 0; i < count; i++ {
		c := filter.Condition{Column: form.Get(condField(i, "col")), Operator: filter.OpEq}
		if c.Column == "" && t.Ncol() > 0 {
			c.Column = t.Names()[0]
		}
		if op, err := filter.ParseOperator(form.Get(condField(i, "op"))); err == nil {
			c.Operator = op
		}
		if c.Operator == filter.OpEq {
			for _, v := range form[condField(i, "val")] {
				if v != "" {
					c.Values = append(c.Values, v)
				}
			}
		} else {
			c.Value = strings.TrimSpace(form.Get(condField(i, "val")))
		}
		spec.Conditions = append(spec.Conditions, c)

		if i > 0 {
			conn, err := filter.ParseConnector(form.Get(connField(i)))
			if err != nil {
				conn = filter.And
			}
			spec.Connectors = append(spec.Connectors, conn)
		}
	}
	return spec
}

func readPanel(form url.Values, i int, prev plot.PanelConfig) plot.PanelConfig {
	cfg := prev
	cfg.Source = plot.ParseSource(form.Get(panelField(i, "source")))
	if kind, err := plot.ParseKind(form.Get(panelField(i, "kind"))); err == nil {
		cfg.Kind = kind
	}
	cfg.X = plot.ParseColumn(form.Get(panelField(i, "x")))
	cfg.Y = plot.ParseColumn(form.Get(panelField(i, "y")))
	cfg.Hue = plot.ParseColumn(form.Get(panelField(i, "hue")))
	return cfg
}

// keepKnown drops names the table does not have, keeping the table's order
func keepKnown(t *table.Table, names []string) []string {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := make([]string, 0, len(names))
	for _, n := range t.Names() {
		if want[n] {
			out = append(out, n)
		}
	}
	return out
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
