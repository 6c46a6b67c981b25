package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peopleRecords() [][]string {
	return [][]string{
		{"name", "age", "city", "score"},
		{"Ann", "25", "NY", "7.5"},
		{"Bob", "31", "LA", ""},
		{"Cid", "47", "SF", "9.25"},
		{"Dee", "52", "NY", "6"},
	}
}

func mustTable(t *testing.T, records [][]string) *Table {
	t.Helper()
	tbl, err := FromRecords(records)
	require.NoError(t, err)
	return tbl
}

func TestFromRecords_InfersKinds(t *testing.T) {
	tbl := mustTable(t, peopleRecords())

	assert.Equal(t, []string{"name", "age", "city", "score"}, tbl.Names())
	assert.Equal(t, 4, tbl.Nrow())
	assert.Equal(t, 4, tbl.Ncol())
	assert.Equal(t, []string{"age", "score"}, tbl.Columns(KindNumeric))
	assert.Equal(t, []string{"name", "city"}, tbl.Columns(KindCategorical))

	_, err := tbl.Kind("missing")
	assert.Error(t, err)
}

func TestFromRecords_MissingCells(t *testing.T) {
	tbl := mustTable(t, peopleRecords())

	assert.True(t, tbl.IsNA(1, "score"))
	assert.True(t, math.IsNaN(tbl.Float(1, "score")))
	assert.Equal(t, "NaN", tbl.Text(1, "score"))
	assert.Equal(t, []float64{7.5, 9.25, 6}, tbl.Floats("score"))
}

func TestFromRecords_RaggedRowsArePadded(t *testing.T) {
	tbl := mustTable(t, [][]string{
		{"a", "b"},
		{"1"},
		{"2", "x", "ignored"},
	})

	assert.Equal(t, 2, tbl.Nrow())
	assert.True(t, tbl.IsNA(0, "b"))
	assert.Equal(t, "x", tbl.Text(1, "b"))
}

func TestFromRecords_Errors(t *testing.T) {
	_, err := FromRecords(nil)
	assert.Error(t, err)

	_, err = FromRecords([][]string{{"a", "a"}, {"1", "2"}})
	assert.ErrorContains(t, err, "duplicate column")
}

func TestFromRecords_HeaderOnly(t *testing.T) {
	tbl := mustTable(t, [][]string{{"a", "b"}})
	assert.Equal(t, 0, tbl.Nrow())
	assert.Equal(t, 2, tbl.Ncol())
	assert.Empty(t, tbl.Records())
}

func TestText_FloatFormatting(t *testing.T) {
	tbl := mustTable(t, peopleRecords())
	assert.Equal(t, "7.5", tbl.Text(0, "score"))
	assert.Equal(t, "6", tbl.Text(3, "score"))
	assert.Equal(t, "31", tbl.Text(1, "age"))
}

func TestDistinct_FirstAppearanceOrder(t *testing.T) {
	tbl := mustTable(t, peopleRecords())
	assert.Equal(t, []string{"NY", "LA", "SF"}, tbl.Distinct("city"))
}

func TestSelect_KeepsRowCount(t *testing.T) {
	tbl := mustTable(t, peopleRecords())

	view, err := tbl.Select([]string{"city", "age"})
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "age"}, view.Names())
	assert.Equal(t, tbl.Nrow(), view.Nrow())

	empty, err := tbl.Select(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Ncol())
	assert.Equal(t, tbl.Nrow(), empty.Nrow())

	_, err = tbl.Select([]string{"nope"})
	assert.Error(t, err)

	// source is untouched
	assert.Equal(t, 4, tbl.Ncol())
}

func TestSubset_RowView(t *testing.T) {
	tbl := mustTable(t, peopleRecords())

	view, err := tbl.Subset([]int{3, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Nrow())
	assert.Equal(t, [][]string{
		{"Dee", "52", "NY", "6"},
		{"Ann", "25", "NY", "7.5"},
	}, view.Records())

	none, err := tbl.Subset([]int{})
	require.NoError(t, err)
	assert.Equal(t, 0, none.Nrow())
	assert.Equal(t, tbl.Names(), none.Names())

	_, err = tbl.Subset([]int{9})
	assert.Error(t, err)

	assert.Equal(t, 4, tbl.Nrow())
}

func TestSubset_OnZeroColumnView(t *testing.T) {
	tbl := mustTable(t, peopleRecords())
	empty, err := tbl.Select(nil)
	require.NoError(t, err)

	view, err := empty.Subset([]int{0, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Nrow())
	assert.Equal(t, 0, view.Ncol())
}
