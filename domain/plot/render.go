package plot

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sort"

	"edahub/domain/table"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// HistogramBins is fixed regardless of the data range or row count
const HistogramBins = 20

const (
	imageWidth  = 6 * vg.Inch
	imageHeight = 4 * vg.Inch
)

// Render draws the panel against t and returns a PNG. Columns that do not
// suit the kind are reported as errors; callers let them halt the run.
func Render(t *table.Table, cfg PanelConfig) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, c := range []Column{cfg.X, cfg.Y, cfg.Hue} {
		if c.Set && !t.Has(c.Name) {
			return nil, fmt.Errorf("unknown column %q", c.Name)
		}
	}

	p := gplot.New()
	p.Title.Text = cfg.Kind.Label()
	p.X.Label.Text = cfg.X.Name
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	var err error
	switch cfg.Kind {
	case Histogram:
		err = drawHistogram(p, t, cfg)
	case Count:
		err = drawCount(p, t, cfg)
	case Box:
		err = drawBox(p, t, cfg)
	case Scatter:
		err = drawScatter(p, t, cfg)
	case Line:
		err = drawLine(p, t, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Kind.Label(), err)
	}

	return encodePNG(p)
}

func encodePNG(p *gplot.Plot) ([]byte, error) {
	w, err := p.WriterTo(imageWidth, imageHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type group struct {
	name string
	rows []int
}

// groupRows splits rows by the hue column; rows with a missing hue are dropped
func groupRows(t *table.Table, hue Column) []group {
	if !hue.Set {
		rows := make([]int, t.Nrow())
		for i := range rows {
			rows[i] = i
		}
		return []group{{rows: rows}}
	}
	index := make(map[string]int)
	var groups []group
	for i := 0; i < t.Nrow(); i++ {
		if t.IsNA(i, hue.Name) {
			continue
		}
		v := t.Text(i, hue.Name)
		k, ok := index[v]
		if !ok {
			k = len(groups)
			index[v] = k
			groups = append(groups, group{name: v})
		}
		groups[k].rows = append(groups[k].rows, i)
	}
	return groups
}

func requireNumeric(t *table.Table, col string) error {
	kind, err := t.Kind(col)
	if err != nil {
		return err
	}
	if kind != table.KindNumeric {
		return fmt.Errorf("column %q is %s, a numeric column is required", col, kind)
	}
	return nil
}

func floatsAt(t *table.Table, col string, rows []int) plotter.Values {
	vs := make(plotter.Values, 0, len(rows))
	for _, r := range rows {
		if v := t.Float(r, col); !math.IsNaN(v) {
			vs = append(vs, v)
		}
	}
	return vs
}

func translucent(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 150}
}

func drawHistogram(p *gplot.Plot, t *table.Table, cfg PanelConfig) error {
	if err := requireNumeric(t, cfg.X.Name); err != nil {
		return err
	}
	p.Y.Label.Text = "count"

	groups := groupRows(t, cfg.Hue)
	values := make([]plotter.Values, len(groups))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, g := range groups {
		values[i] = floatsAt(t, cfg.X.Name, g.rows)
		for _, v := range values[i] {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return fmt.Errorf("column %q has no values to bin", cfg.X.Name)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / HistogramBins

	for i, g := range groups {
		bins := make([]plotter.HistogramBin, HistogramBins)
		for b := range bins {
			bins[b].Min = lo + float64(b)*width
			bins[b].Max = lo + float64(b+1)*width
		}
		for _, v := range values[i] {
			b := int((v - lo) / width)
			if b >= HistogramBins {
				b = HistogramBins - 1
			}
			bins[b].Weight++
		}
		h := &plotter.Histogram{
			Bins:      bins,
			Width:     width,
			FillColor: translucent(plotutil.Color(i)),
			LineStyle: plotter.DefaultLineStyle,
		}
		p.Add(h)
		if cfg.Hue.Set {
			p.Legend.Add(g.name, h)
		}
	}
	return nil
}

func drawCount(p *gplot.Plot, t *table.Table, cfg PanelConfig) error {
	p.Y.Label.Text = "count"
	categories := t.Distinct(cfg.X.Name)
	if len(categories) == 0 {
		return fmt.Errorf("column %q has no values to count", cfg.X.Name)
	}
	position := make(map[string]int, len(categories))
	for i, c := range categories {
		position[c] = i
	}

	groups := groupRows(t, cfg.Hue)
	slot := vg.Points(36)
	barWidth := slot / vg.Length(len(groups))
	for gi, g := range groups {
		counts := make(plotter.Values, len(categories))
		for _, r := range g.rows {
			if t.IsNA(r, cfg.X.Name) {
				continue
			}
			counts[position[t.Text(r, cfg.X.Name)]]++
		}
		bars, err := plotter.NewBarChart(counts, barWidth)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(gi)
		bars.LineStyle.Width = 0
		bars.Offset = barWidth*vg.Length(gi) - slot/2 + barWidth/2
		p.Add(bars)
		if cfg.Hue.Set {
			p.Legend.Add(g.name, bars)
		}
	}
	p.NominalX(categories...)
	return nil
}

// drawBox groups the x values by the hue selection. When x is categorical
// and the grouping column numeric the roles are swapped.
func drawBox(p *gplot.Plot, t *table.Table, cfg PanelConfig) error {
	valueCol, groupCol := cfg.X, cfg.Hue
	if groupCol.Set {
		xKind, _ := t.Kind(valueCol.Name)
		gKind, _ := t.Kind(groupCol.Name)
		if xKind == table.KindCategorical && gKind == table.KindNumeric {
			valueCol, groupCol = groupCol, valueCol
		}
	}
	if err := requireNumeric(t, valueCol.Name); err != nil {
		return err
	}
	p.Y.Label.Text = valueCol.Name
	p.X.Label.Text = groupCol.Name

	groups := groupRows(t, groupCol)
	labels := make([]string, len(groups))
	drawn := 0
	for i, g := range groups {
		labels[i] = g.name
		vs := floatsAt(t, valueCol.Name, g.rows)
		if len(vs) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(i), vs)
		if err != nil {
			return err
		}
		box.FillColor = translucent(plotutil.Color(i))
		p.Add(box)
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("column %q has no values to summarize", valueCol.Name)
	}
	if !groupCol.Set {
		labels[0] = valueCol.Name
	}
	p.NominalX(labels...)
	return nil
}

func pairsAt(t *table.Table, xCol, yCol string, rows []int) plotter.XYs {
	xys := make(plotter.XYs, 0, len(rows))
	for _, r := range rows {
		x, y := t.Float(r, xCol), t.Float(r, yCol)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
	}
	return xys
}

func drawScatter(p *gplot.Plot, t *table.Table, cfg PanelConfig) error {
	if err := requireNumeric(t, cfg.X.Name); err != nil {
		return err
	}
	if err := requireNumeric(t, cfg.Y.Name); err != nil {
		return err
	}
	p.Y.Label.Text = cfg.Y.Name

	for i, g := range groupRows(t, cfg.Hue) {
		s, err := plotter.NewScatter(pairsAt(t, cfg.X.Name, cfg.Y.Name, g.rows))
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(2.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		if cfg.Hue.Set {
			p.Legend.Add(g.name, s)
		}
	}
	return nil
}

// meanByX collapses repeated x values to the mean y, sorted by x
func meanByX(xys plotter.XYs) plotter.XYs {
	sums := make(map[float64]float64)
	counts := make(map[float64]int)
	for _, xy := range xys {
		sums[xy.X] += xy.Y
		counts[xy.X]++
	}
	out := make(plotter.XYs, 0, len(sums))
	for x, sum := range sums {
		out = append(out, plotter.XY{X: x, Y: sum / float64(counts[x])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

func drawLine(p *gplot.Plot, t *table.Table, cfg PanelConfig) error {
	if err := requireNumeric(t, cfg.X.Name); err != nil {
		return err
	}
	if err := requireNumeric(t, cfg.Y.Name); err != nil {
		return err
	}
	p.Y.Label.Text = cfg.Y.Name

	for i, g := range groupRows(t, cfg.Hue) {
		l, err := plotter.NewLine(meanByX(pairsAt(t, cfg.X.Name, cfg.Y.Name, g.rows)))
		if err != nil {
			return err
		}
		l.LineStyle.Color = plotutil.Color(i)
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		if cfg.Hue.Set {
			p.Legend.Add(g.name, l)
		}
	}
	return nil
}
