package dataframe

import (
	"context"
	"net/url"
	"testing"

	"edahub/domain/filter"
	"edahub/domain/plot"
	apperrors "edahub/internal/errors"
	"edahub/internal/hub"
	"edahub/internal/session"
	"edahub/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleCSV = `age,city,income
25,NY,50000
35,LA,64000
45,SF,80000
52,NY,91000
30,LA,58000
61,SF,72000
`

type harness struct {
	t        *testing.T
	explorer *Explorer
	session  *models.Session
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:        t,
		explorer: New(session.NewTableCache()),
		session:  models.NewSession(uuid.New()),
	}
}

func (h *harness) run(in hub.Input) (*View, error) {
	h.t.Helper()
	next, page, err := h.explorer.Run(context.Background(), h.session, in)
	require.NotNil(h.t, next)
	require.NotNil(h.t, page)
	assert.Equal(h.t, Title, page.Title)
	h.session = next
	return page.Data.(*View), err
}

func (h *harness) upload() *View {
	h.t.Helper()
	view, err := h.run(hub.Input{Submitted: true, Upload: &hub.Upload{Name: "people.csv", Data: []byte(peopleCSV)}})
	require.NoError(h.t, err)
	return view
}

func (h *harness) submit(form url.Values) (*View, error) {
	h.t.Helper()
	return h.run(hub.Input{Submitted: true, Form: form})
}

func column(view *View, name string) []string {
	idx := -1
	for i, h := range view.Sliced.Headers {
		if h == name {
			idx = i
		}
	}
	out := make([]string, len(view.Sliced.Rows))
	for i, row := range view.Sliced.Rows {
		out[i] = row[idx]
	}
	return out
}

func TestRun_WithoutUpload(t *testing.T) {
	h := newHarness(t)
	view, err := h.run(hub.Input{})
	require.NoError(t, err)
	assert.Empty(t, view.Dataset)
	assert.Empty(t, view.Panels)
}

func TestRun_UploadShowsEverything(t *testing.T) {
	h := newHarness(t)
	view := h.upload()

	assert.Equal(t, "people.csv", view.Dataset)
	assert.Equal(t, 6, view.Full.Total)
	assert.Equal(t, []string{"age", "city", "income"}, view.Sliced.Headers)
	assert.Equal(t, "all rows", view.Expression)
	require.NotNil(t, view.Summary.Numeric)
	require.NotNil(t, view.Summary.Categorical)

	require.Len(t, view.Panels, 1)
	assert.NotEmpty(t, view.Panels[0].Image)
	assert.Equal(t, plot.Col("age"), view.Panels[0].Config.X)
	assert.Equal(t, "people.csv", h.session.Explorer.Dataset)
}

func TestRun_NumericFilterKeepsAllColumns(t *testing.T) {
	h := newHarness(t)
	h.upload()

	view, err := h.submit(url.Values{
		"cond_count": {"1"},
		"cond_0_col": {"age"},
		"cond_0_op":  {">="},
		"cond_0_val": {"30"},
	})
	require.NoError(t, err)
	assert.Empty(t, view.FilterError)
	assert.Equal(t, []string{"age", "city", "income"}, view.Sliced.Headers)
	assert.Equal(t, []string{"35", "45", "52", "30", "61"}, column(view, "age"))
}

func TestRun_MembershipAndNumericConditions(t *testing.T) {
	h := newHarness(t)
	h.upload()

	view, err := h.submit(url.Values{
		"cond_count": {"2"},
		"cond_0_col": {"city"},
		"cond_0_op":  {"="},
		"cond_0_val": {"NY", "LA"},
		"conn_1":     {"AND"},
		"cond_1_col": {"age"},
		"cond_1_op":  {"<"},
		"cond_1_val": {"50"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"NY", "LA", "LA"}, column(view, "city"))
	assert.Equal(t, []string{"25", "35", "30"}, column(view, "age"))
	require.Len(t, view.Conditions, 2)
	assert.True(t, view.Conditions[0].Selected["LA"])
	assert.Equal(t, []string{"NY", "LA", "SF"}, view.Conditions[0].Choices)
}

func TestRun_EmptyConditionsAreIdentity(t *testing.T) {
	h := newHarness(t)
	h.upload()

	view, err := h.submit(url.Values{
		"cond_count": {"3"},
		"conn_1":     {"OR"},
		"conn_2":     {"AND"},
		"cond_1_op":  {">"},
	})
	require.NoError(t, err)
	assert.Equal(t, "all rows", view.Expression)
	assert.Equal(t, 6, view.Sliced.Total)
}

func TestRun_InvalidFilterKeepsLastGoodView(t *testing.T) {
	h := newHarness(t)
	h.upload()

	_, err := h.submit(url.Values{
		"cond_count": {"1"},
		"cond_0_col": {"age"},
		"cond_0_op":  {">"},
		"cond_0_val": {"40"},
	})
	require.NoError(t, err)

	view, err := h.submit(url.Values{
		"cond_count": {"1"},
		"cond_0_col": {"city"},
		"cond_0_op":  {">"},
		"cond_0_val": {"40"},
	})
	require.NoError(t, err)
	assert.Contains(t, view.FilterError, "city")
	assert.Equal(t, []string{"45", "52", "61"}, column(view, "age"))

	// the invalid condition stays in the widgets so it can be corrected
	assert.Equal(t, "city", h.session.Explorer.Filter.Conditions[0].Column)
	assert.Equal(t, "age", h.session.Explorer.Applied.Conditions[0].Column)
}

func TestRun_ColumnSubsetAfterFiltering(t *testing.T) {
	h := newHarness(t)
	h.upload()

	view, err := h.submit(url.Values{
		"columns_present": {"1"},
		"columns":         {"income", "city", "missing"},
		"cond_count":      {"1"},
		"cond_0_col":      {"age"},
		"cond_0_op":       {"<"},
		"cond_0_val":      {"40"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "income"}, view.Sliced.Headers)
	assert.Equal(t, 3, view.Sliced.Total)
	require.NotNil(t, view.Summary.Numeric)
	require.Len(t, view.Summary.Numeric.Columns, 1)
	assert.Equal(t, "income", view.Summary.Numeric.Columns[0].Column)
	assert.True(t, view.Selected["city"])
	assert.False(t, view.Selected["age"])
}

func TestRun_AddPanelPreservesConfigurations(t *testing.T) {
	h := newHarness(t)
	h.upload()

	_, err := h.submit(url.Values{
		"panel_0_source": {"full"},
		"panel_0_kind":   {"scatter"},
		"panel_0_x":      {"col:age"},
		"panel_0_y":      {"col:income"},
		"panel_0_hue":    {"col:city"},
	})
	require.NoError(t, err)

	const n = 3
	var view *View
	for i := 0; i < n; i++ {
		view, err = h.submit(url.Values{"action": {"add_panel"}})
		require.NoError(t, err)
	}

	require.Len(t, view.Panels, n+1)
	assert.Equal(t, n+1, h.session.Explorer.Panels.PanelCount())
	first := view.Panels[0].Config
	assert.Equal(t, plot.Scatter, first.Kind)
	assert.Equal(t, plot.SourceFull, first.Source)
	assert.Equal(t, plot.Col("city"), first.Hue)
	for _, p := range view.Panels {
		assert.NotEmpty(t, p.Image, "panel %d", p.Index)
	}
}

func TestRun_PanelErrorHaltsAfterEarlierPanels(t *testing.T) {
	h := newHarness(t)
	h.upload()
	_, err := h.submit(url.Values{"action": {"add_panel"}})
	require.NoError(t, err)

	view, err := h.submit(url.Values{
		"panel_1_kind": {"scatter"},
		"panel_1_x":    {"col:city"},
		"panel_1_y":    {"col:age"},
		"panel_1_hue":  {"none"},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "plot 2")

	require.Len(t, view.Panels, 2)
	assert.NotEmpty(t, view.Panels[0].Image)
	assert.Empty(t, view.Panels[1].Image)

	// state is still returned so the broken panel can be fixed
	assert.Equal(t, plot.Col("city"), h.session.Explorer.Panels.Panel(1).X)
}

func TestRun_BadUploadLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	h.upload()
	before := h.session

	next, page, err := h.explorer.Run(context.Background(), before, hub.Input{
		Submitted: true,
		Upload:    &hub.Upload{Name: "broken.xlsx", Data: []byte("not a workbook")},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	assert.Same(t, before, next)
	assert.Equal(t, "people.csv", next.Explorer.Dataset)

	// the page still shows the dataset that was loaded before
	view := page.Data.(*View)
	assert.Equal(t, "people.csv", view.Dataset)
	assert.Equal(t, 6, view.Full.Total)
	assert.Equal(t, []string{"age", "city", "income"}, view.Full.Headers)
	require.Len(t, view.Panels, 1)
	assert.NotEmpty(t, view.Panels[0].Image)

	// and the next interaction carries on with it
	h.session = next
	view, err = h.submit(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 6, view.Sliced.Total)
}

func TestRun_DeselectedPlotColumnFallsBack(t *testing.T) {
	h := newHarness(t)
	view := h.upload()
	require.Equal(t, plot.Col("age"), view.Panels[0].Config.X)
	require.Equal(t, plot.Col("age"), h.session.Explorer.Panels.Panel(0).X)

	// the page posts back the x option it rendered, which the subset drops
	view, err := h.submit(url.Values{
		"columns_present": {"1"},
		"columns":         {"city", "income"},
		"panel_0_source":  {"filtered"},
		"panel_0_kind":    {"histogram"},
		"panel_0_x":       {"col:age"},
		"panel_0_hue":     {"col:age"},
	})
	require.NoError(t, err)
	require.Len(t, view.Panels, 1)
	assert.Equal(t, plot.Col("income"), view.Panels[0].Config.X)
	assert.Equal(t, plot.NoColumn, view.Panels[0].Config.Hue)
	assert.Equal(t, []string{"city", "income"}, view.Panels[0].Columns)
	assert.NotEmpty(t, view.Panels[0].Image)
	assert.Equal(t, plot.Col("income"), h.session.Explorer.Panels.Panel(0).X)

	// the full source still has the column, so it stays selectable there
	view, err = h.submit(url.Values{
		"columns_present": {"1"},
		"columns":         {"city", "income"},
		"panel_0_source":  {"full"},
		"panel_0_kind":    {"histogram"},
		"panel_0_x":       {"col:age"},
		"panel_0_hue":     {"none"},
	})
	require.NoError(t, err)
	assert.Equal(t, plot.Col("age"), view.Panels[0].Config.X)
	assert.NotEmpty(t, view.Panels[0].Image)
}

func TestRun_NewUploadResetsWidgets(t *testing.T) {
	h := newHarness(t)
	h.upload()
	_, err := h.submit(url.Values{
		"cond_count": {"1"},
		"cond_0_col": {"age"},
		"cond_0_op":  {">"},
		"cond_0_val": {"40"},
		"action":     {"add_panel"},
	})
	require.NoError(t, err)

	view := h.upload()
	assert.Zero(t, h.session.Explorer.ConditionCount)
	assert.Equal(t, filter.Spec{}, h.session.Explorer.Filter)
	assert.Equal(t, 6, view.Sliced.Total)
	assert.Len(t, view.Panels, 2)
}

func TestRun_LostUploadClearsDataset(t *testing.T) {
	h := newHarness(t)
	h.session.Explorer.Dataset = "people.csv"

	view, err := h.run(hub.Input{})
	require.NoError(t, err)
	assert.Empty(t, view.Dataset)
	assert.Empty(t, h.session.Explorer.Dataset)
}
