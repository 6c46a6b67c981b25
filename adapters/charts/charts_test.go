package charts

import (
	"bytes"
	"math"
	"testing"

	"edahub/domain/pca"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func movieScatter() Scatter {
	s := Scatter{Title: "movies", XName: pca.MovieFeatures[0], YName: pca.MovieFeatures[1], Colors: pca.MovieColors}
	for _, row := range pca.MoviePreferences {
		s.X = append(s.X, row[0])
		s.Y = append(s.Y, row[1])
	}
	return s
}

func TestRenderScatter(t *testing.T) {
	img, err := RenderScatter(movieScatter())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngSignature))
}

func TestRenderScatterWithArrows(t *testing.T) {
	res, err := pca.Fit(pca.MoviePreferences)
	require.NoError(t, err)

	img, err := RenderScatterWithArrows(movieScatter(), Arrows{Arrows: res.Arrows(pca.ScaleByRatio), Head: 0.2})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngSignature))
}

func TestRender_Errors(t *testing.T) {
	_, err := RenderScatter(Scatter{X: []float64{1}, Y: nil})
	assert.Error(t, err)
	_, err = RenderScatter(Scatter{})
	assert.Error(t, err)
}

func TestArrowSeries_BarbsEndBehindTip(t *testing.T) {
	series := arrowSeries("PC1", pca.Arrow{X0: 0, Y0: 0, DX: 3, DY: 0}, 0.5)
	require.Len(t, series, 3)
	for _, s := range series[1:] {
		cs := s.(chart.ContinuousSeries)
		assert.Equal(t, 3.0, cs.XValues[0])
		assert.Less(t, cs.XValues[1], 3.0)
		assert.InDelta(t, 0.5, math.Hypot(cs.XValues[1]-3, cs.YValues[1]), 1e-9)
	}

	assert.Len(t, arrowSeries("flat", pca.Arrow{}, 0.5), 1)
}

func TestColorByName(t *testing.T) {
	assert.Equal(t, namedColors["purple"], ColorByName("purple"))
	assert.Equal(t, chart.ColorAlternateGray, ColorByName("teal"))
}
