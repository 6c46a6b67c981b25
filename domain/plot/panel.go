package plot

import (
	"fmt"
	"strings"
)

// Kind is a chart type offered by a panel
type Kind string

const (
	Histogram Kind = "histogram"
	Count     Kind = "count"
	Box       Kind = "box"
	Scatter   Kind = "scatter"
	Line      Kind = "line"
)

// Kinds lists the chart types in the order the UI offers them
var Kinds = []Kind{Histogram, Count, Box, Scatter, Line}

// Label is the human readable name of the kind
func (k Kind) Label() string {
	switch k {
	case Histogram:
		return "Histogram"
	case Count:
		return "Countplot"
	case Box:
		return "Boxplot"
	case Scatter:
		return "Scatterplot"
	case Line:
		return "Lineplot"
	}
	return string(k)
}

// NeedsY reports whether the kind plots a second numeric column
func (k Kind) NeedsY() bool {
	return k == Scatter || k == Line
}

// ParseKind accepts either the identifier or the label, case-insensitively
func ParseKind(s string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if needle == string(k) || needle == strings.ToLower(k.Label()) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown plot kind %q", s)
}

// Source selects which table a panel draws from
type Source string

const (
	SourceFull     Source = "full"
	SourceFiltered Source = "filtered"
)

// ParseSource defaults to the filtered table
func ParseSource(s string) Source {
	if Source(strings.ToLower(strings.TrimSpace(s))) == SourceFull {
		return SourceFull
	}
	return SourceFiltered
}

// Column is an optional column role. The zero value means "not selected",
// which is distinct from a column whose name happens to be "None".
type Column struct {
	Name string `json:"name,omitempty"`
	Set  bool   `json:"set,omitempty"`
}

// Col selects the named column
func Col(name string) Column {
	return Column{Name: name, Set: true}
}

// NoColumn is the unselected role
var NoColumn = Column{}

// Form values for optional roles. Real columns are prefixed so that no
// column name can collide with the "none" marker.
const (
	formNone   = "none"
	formPrefix = "col:"
)

// FormValue encodes the role for an HTML option value
func (c Column) FormValue() string {
	if !c.Set {
		return formNone
	}
	return formPrefix + c.Name
}

// ParseColumn decodes an HTML option value produced by FormValue
func ParseColumn(v string) Column {
	if strings.HasPrefix(v, formPrefix) {
		return Col(strings.TrimPrefix(v, formPrefix))
	}
	return NoColumn
}

// PanelConfig is the remembered configuration of one plot panel
type PanelConfig struct {
	Source Source `json:"source"`
	Kind   Kind   `json:"kind"`
	X      Column `json:"x"`
	Y      Column `json:"y"`
	Hue    Column `json:"hue"`
}

// DefaultPanel is what a freshly added panel shows
func DefaultPanel() PanelConfig {
	return PanelConfig{Source: SourceFiltered, Kind: Histogram}
}

// Validate checks that the roles the kind needs are selected
func (c PanelConfig) Validate() error {
	switch c.Kind {
	case Histogram, Count, Box:
		if !c.X.Set {
			return fmt.Errorf("%s needs an x column", c.Kind.Label())
		}
	case Scatter, Line:
		if !c.X.Set || !c.Y.Set {
			return fmt.Errorf("%s needs both x and y columns", c.Kind.Label())
		}
	default:
		return fmt.Errorf("unknown plot kind %q", c.Kind)
	}
	return nil
}
