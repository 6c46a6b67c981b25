// Package pca projects a small dense dataset onto its principal axes.
package pca

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MoviePreferences is the classroom dataset: action and comedy movies
// watched by six customers.
var MoviePreferences = [][]float64{
	{10, 2},
	{7, 5},
	{2, 8},
	{1, 10},
	{8, 3},
	{5, 5},
}

// MovieFeatures names the columns of MoviePreferences
var MovieFeatures = []string{"Action Movies Watched", "Comedy Movies Watched"}

// MovieColors gives each customer a fixed colour
var MovieColors = []string{"red", "green", "blue", "purple", "orange", "black"}

// Result holds a fitted transform. Components are stored one per row, in
// decreasing order of explained variance.
type Result struct {
	Mean                   []float64
	Components             [][]float64
	ExplainedVariance      []float64
	ExplainedVarianceRatio []float64
	Scores                 [][]float64
}

// Fit computes all principal components of data (rows are observations).
// Each component is oriented so its largest-magnitude loading is positive.
func Fit(data [][]float64) (*Result, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("need at least 2 observations, got %d", len(data))
	}
	cols := len(data[0])
	if cols == 0 {
		return nil, fmt.Errorf("observations have no features")
	}
	flat := make([]float64, 0, len(data)*cols)
	for i, row := range data {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d features, expected %d", i, len(row), cols)
		}
		flat = append(flat, row...)
	}
	x := mat.NewDense(len(data), cols, flat)

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("principal component decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	_, k := vecs.Dims()
	res := &Result{
		Mean:                   make([]float64, cols),
		Components:             make([][]float64, k),
		ExplainedVariance:      make([]float64, k),
		ExplainedVarianceRatio: make([]float64, k),
	}
	for j := 0; j < cols; j++ {
		res.Mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}

	var total float64
	for _, v := range vars {
		total += v
	}
	for c := 0; c < k; c++ {
		comp := mat.Col(nil, c, &vecs)
		orient(comp)
		res.Components[c] = comp
		if c < len(vars) {
			res.ExplainedVariance[c] = vars[c]
			if total > 0 {
				res.ExplainedVarianceRatio[c] = vars[c] / total
			}
		}
	}

	res.Scores = res.Transform(data)
	return res, nil
}

// orient flips v so that its largest-magnitude entry is positive
func orient(v []float64) {
	best := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}
	if v[best] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}

// Transform projects rows onto the fitted components: (x - mean) · Cᵀ
func (r *Result) Transform(data [][]float64) [][]float64 {
	cols := len(r.Mean)
	centered := mat.NewDense(len(data), cols, nil)
	for i, row := range data {
		for j := 0; j < cols; j++ {
			centered.Set(i, j, row[j]-r.Mean[j])
		}
	}
	comps := mat.NewDense(len(r.Components), cols, nil)
	for c, comp := range r.Components {
		comps.SetRow(c, comp)
	}

	var scores mat.Dense
	scores.Mul(centered, comps.T())

	out := make([][]float64, len(data))
	for i := range out {
		out[i] = mat.Row(nil, i, &scores)
	}
	return out
}

// Arrow is a component direction drawn from the data mean
type Arrow struct {
	X0, Y0 float64
	DX, DY float64
}

// ArrowScale chooses what the arrow length is proportional to
type ArrowScale int

const (
	// ScaleByRatio uses 3·√(explained variance ratio)
	ScaleByRatio ArrowScale = iota
	// ScaleByVariance uses 3·√(explained variance)
	ScaleByVariance
)

// Arrows returns one arrow per component for a two-feature fit
func (r *Result) Arrows(scale ArrowScale) []Arrow {
	if len(r.Mean) != 2 {
		return nil
	}
	out := make([]Arrow, len(r.Components))
	for c, comp := range r.Components {
		length := r.ExplainedVarianceRatio[c]
		if scale == ScaleByVariance {
			length = r.ExplainedVariance[c]
		}
		f := 3 * math.Sqrt(length)
		out[c] = Arrow{X0: r.Mean[0], Y0: r.Mean[1], DX: comp[0] * f, DY: comp[1] * f}
	}
	return out
}
