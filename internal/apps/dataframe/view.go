package dataframe

import (
	"edahub/domain/filter"
	"edahub/domain/plot"
	"edahub/domain/summary"
	"edahub/domain/table"
)

// PreviewRows caps how many rows a table preview shows
const PreviewRows = 200

// TablePreview is a table rendered for display
type TablePreview struct {
	Headers []string
	Rows    [][]string
	Total   int
}

// Truncated reports whether rows were left out of the preview
func (p TablePreview) Truncated() bool {
	return p.Total > len(p.Rows)
}

func preview(t *table.Table, limit int) TablePreview {
	body := t.Records()
	if len(body) > limit {
		body = body[:limit]
	}
	return TablePreview{Headers: t.Names(), Rows: body, Total: t.Nrow()}
}

// ConditionView is one row of the condition builder
type ConditionView struct {
	Index     int
	Condition filter.Condition
	Connector filter.Connector
	// Choices are the distinct values offered when the operator is "="
	Choices  []string
	Selected map[string]bool
}

// PanelView is one plot panel with its settings and, once drawn, its image
type PanelView struct {
	Index   int
	Config  plot.PanelConfig
	Columns []string
	Image   []byte
}

// View is the data the explorer template renders
type View struct {
	Dataset string
	Full    TablePreview

	AllColumns []string
	Selected   map[string]bool

	ConditionCount int
	MaxConditions  int
	Conditions     []ConditionView
	Operators      []filter.Operator
	Connectors     []filter.Connector
	Expression     string
	FilterError    string

	Sliced  TablePreview
	Summary summary.Summary

	Kinds  []plot.Kind
	Panels []PanelView
}
