// Package table holds the immutable in-memory dataset every explorer view is
// derived from. Storage and type inference are delegated to gota; the Table
// wrapper only adds explicit row bookkeeping so that column views keep their
// row count even when no columns remain.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Kind classifies a column for summaries, filters and plots
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// MissingValues are the literals read as missing cells
var MissingValues = []string{"", "NA", "NaN", "N/A", "null", "<nil>"}

// Table is an immutable columnar dataset. All operations return new views.
type Table struct {
	df    dataframe.DataFrame
	names []string
	cols  map[string]series.Series
	nrow  int
}

// newTable indexes the columns of df once; gota hands out copies on every Col call
func newTable(df dataframe.DataFrame, names []string, nrow int) *Table {
	cols := make(map[string]series.Series, len(names))
	for _, name := range names {
		cols[name] = df.Col(name)
	}
	return &Table{df: df, names: append([]string{}, names...), cols: cols, nrow: nrow}
}

// FromRecords builds a table from a header row followed by data rows.
// Ragged rows are padded with missing cells or truncated to the header width.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("table has no header row")
	}

	header := make([]string, len(records[0]))
	seen := make(map[string]bool, len(header))
	for i, h := range records[0] {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = true
		header[i] = name
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	normalized := make([][]string, 0, len(records))
	normalized = append(normalized, header)
	for _, row := range records[1:] {
		cells := make([]string, len(header))
		for j := range cells {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}
		normalized = append(normalized, cells)
	}

	if len(normalized) == 1 {
		return emptyTable(header), nil
	}

	df := dataframe.LoadRecords(normalized,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(MissingValues),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to load records: %w", df.Err)
	}

	return newTable(df, df.Names(), df.Nrow()), nil
}

// emptyTable builds a header-only table; every column is categorical
func emptyTable(header []string) *Table {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return newTable(dataframe.New(cols...), header, 0)
}

// Names returns the column names in table order
func (t *Table) Names() []string {
	return append([]string{}, t.names...)
}

// Has reports whether the table contains the named column
func (t *Table) Has(col string) bool {
	_, ok := t.cols[col]
	return ok
}

// Nrow returns the number of rows
func (t *Table) Nrow() int { return t.nrow }

// Ncol returns the number of columns
func (t *Table) Ncol() int { return len(t.names) }

// Kind returns the inferred kind of a column
func (t *Table) Kind(col string) (Kind, error) {
	s, err := t.column(col)
	if err != nil {
		return "", err
	}
	switch s.Type() {
	case series.Int, series.Float:
		return KindNumeric, nil
	default:
		return KindCategorical, nil
	}
}

// Columns returns the names of all columns of the given kind, in table order
func (t *Table) Columns(kind Kind) []string {
	var out []string
	for _, name := range t.names {
		if k, _ := t.Kind(name); k == kind {
			out = append(out, name)
		}
	}
	return out
}

// IsNA reports whether a cell is missing
func (t *Table) IsNA(row int, col string) bool {
	s, err := t.column(col)
	if err != nil {
		return true
	}
	return s.Elem(row).IsNA()
}

// Text renders a cell the way it is shown to the user and compared by equality filters
func (t *Table) Text(row int, col string) string {
	s, err := t.column(col)
	if err != nil {
		return ""
	}
	e := s.Elem(row)
	if e.IsNA() {
		return "NaN"
	}
	if s.Type() == series.Float {
		return strconv.FormatFloat(e.Float(), 'f', -1, 64)
	}
	return e.String()
}

// Float returns a numeric cell, NaN when missing or non-numeric
func (t *Table) Float(row int, col string) float64 {
	s, err := t.column(col)
	if err != nil {
		return math.NaN()
	}
	e := s.Elem(row)
	if e.IsNA() {
		return math.NaN()
	}
	switch s.Type() {
	case series.Int, series.Float:
		return e.Float()
	default:
		return math.NaN()
	}
}

// Floats returns the non-missing numeric values of a column
func (t *Table) Floats(col string) []float64 {
	values := make([]float64, 0, t.nrow)
	for i := 0; i < t.nrow; i++ {
		v := t.Float(i, col)
		if !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}

// Distinct returns the non-missing display values of a column in first-appearance order
func (t *Table) Distinct(col string) []string {
	seen := make(map[string]bool)
	var out []string
	for i := 0; i < t.nrow; i++ {
		if t.IsNA(i, col) {
			continue
		}
		v := t.Text(i, col)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Select returns a column view. Unknown names are an error; the row count is unchanged.
func (t *Table) Select(cols []string) (*Table, error) {
	for _, c := range cols {
		if !t.Has(c) {
			return nil, fmt.Errorf("unknown column %q", c)
		}
	}
	if len(cols) == 0 {
		return &Table{df: t.df, names: []string{}, cols: map[string]series.Series{}, nrow: t.nrow}, nil
	}
	df := t.df.Select(cols)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to select columns: %w", df.Err)
	}
	return newTable(df, cols, t.nrow), nil
}

// Subset returns a row view holding the given row indexes in order
func (t *Table) Subset(rows []int) (*Table, error) {
	for _, r := range rows {
		if r < 0 || r >= t.nrow {
			return nil, fmt.Errorf("row %d out of range [0,%d)", r, t.nrow)
		}
	}
	if len(t.names) == 0 {
		return &Table{df: t.df, names: []string{}, cols: map[string]series.Series{}, nrow: len(rows)}, nil
	}
	df := t.df.Subset(append([]int{}, rows...))
	if df.Err != nil {
		return nil, fmt.Errorf("failed to subset rows: %w", df.Err)
	}
	return newTable(df, t.names, len(rows)), nil
}

// Records returns the display text of every row, without the header
func (t *Table) Records() [][]string {
	out := make([][]string, t.nrow)
	for i := range out {
		row := make([]string, len(t.names))
		for j, name := range t.names {
			row[j] = t.Text(i, name)
		}
		out[i] = row
	}
	return out
}

func (t *Table) column(col string) (series.Series, error) {
	s, ok := t.cols[col]
	if !ok {
		return series.Series{}, fmt.Errorf("unknown column %q", col)
	}
	if s.Err != nil {
		return series.Series{}, s.Err
	}
	return s, nil
}
