package summary

import (
	"math"
	"testing"

	"edahub/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, records [][]string) *table.Table {
	t.Helper()
	tbl, err := table.FromRecords(records)
	require.NoError(t, err)
	return tbl
}

func TestSummarize_SplitsByKind(t *testing.T) {
	tbl := load(t, [][]string{
		{"city", "age", "score"},
		{"NY", "20", "1.5"},
		{"LA", "30", ""},
		{"NY", "40", "2.5"},
		{"SF", "50", "3.5"},
		{"LA", "60", "4.5"},
		{"NY", "70", "5.5"},
	})

	s := Summarize(tbl)
	assert.Equal(t, 6, s.Rows)

	require.NotNil(t, s.Numeric)
	require.Len(t, s.Numeric.Columns, 2)
	age := s.Numeric.Columns[0]
	assert.Equal(t, "age", age.Column)
	assert.Equal(t, 6, age.Count)
	assert.InDelta(t, 45.0, age.Mean, 1e-9)
	assert.InDelta(t, 18.708287, age.Std, 1e-6)
	assert.Equal(t, 20.0, age.Min)
	assert.InDelta(t, 32.5, age.Q25, 1e-9)
	assert.InDelta(t, 45.0, age.Median, 1e-9)
	assert.InDelta(t, 57.5, age.Q75, 1e-9)
	assert.Equal(t, 70.0, age.Max)

	score := s.Numeric.Columns[1]
	assert.Equal(t, 5, score.Count, "missing cells are not counted")

	require.NotNil(t, s.Categorical)
	require.Len(t, s.Categorical.Columns, 1)
	assert.Equal(t, []ValueCount{
		{Value: "NY", Count: 3},
		{Value: "LA", Count: 2},
		{Value: "SF", Count: 1},
	}, s.Categorical.Columns[0].Counts)
}

func TestSummarize_NoCategoricalColumnsOmitsGroup(t *testing.T) {
	s := Summarize(load(t, [][]string{{"x", "y"}, {"1", "2"}, {"3", "4"}}))
	require.NotNil(t, s.Numeric)
	assert.Nil(t, s.Categorical)
}

func TestSummarize_NoNumericColumnsOmitsGroup(t *testing.T) {
	s := Summarize(load(t, [][]string{{"city"}, {"NY"}, {"LA"}}))
	assert.Nil(t, s.Numeric)
	require.NotNil(t, s.Categorical)
}

func TestSummarize_ZeroRowsIsEmptyNotError(t *testing.T) {
	tbl := load(t, [][]string{{"city", "age"}, {"NY", "10"}, {"LA", "20"}})
	none, err := tbl.Subset([]int{})
	require.NoError(t, err)

	s := Summarize(none)
	assert.Equal(t, 0, s.Rows)
	require.NotNil(t, s.Numeric)
	assert.Equal(t, 0, s.Numeric.Columns[0].Count)
	assert.True(t, math.IsNaN(s.Numeric.Columns[0].Mean))
	require.NotNil(t, s.Categorical)
	assert.Empty(t, s.Categorical.Columns[0].Counts)
}

func TestValueCounts_TiesKeepFirstAppearance(t *testing.T) {
	s := Summarize(load(t, [][]string{{"c"}, {"b"}, {"a"}, {"a"}, {"b"}, {"z"}}))
	assert.Equal(t, []ValueCount{
		{Value: "b", Count: 2},
		{Value: "a", Count: 2},
		{Value: "z", Count: 1},
	}, s.Categorical.Columns[0].Counts)
}

func TestDescribe_SingleValue(t *testing.T) {
	d := Describe("x", []float64{4})
	assert.Equal(t, 1, d.Count)
	assert.Equal(t, 4.0, d.Mean)
	assert.True(t, math.IsNaN(d.Std))
	assert.Equal(t, 4.0, d.Median)
}

func TestDescribe_QuartilesInterpolateUnsortedInput(t *testing.T) {
	data := []float64{7, 1, 4, 10}
	d := Describe("x", data)
	assert.InDelta(t, 3.25, d.Q25, 1e-9)
	assert.InDelta(t, 5.5, d.Median, 1e-9)
	assert.InDelta(t, 7.75, d.Q75, 1e-9)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 10.0, d.Max)

	// the caller's slice keeps its order
	assert.Equal(t, []float64{7, 1, 4, 10}, data)
}
