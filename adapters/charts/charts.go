// Package charts renders the PCA demonstration charts with go-chart.
package charts

import (
	"bytes"
	"fmt"
	"math"

	"edahub/domain/pca"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	width  = 640
	height = 480
)

var arrowColor = drawing.ColorFromHex("ff0000")

// namedColors covers the colour names the demonstration datasets use
var namedColors = map[string]drawing.Color{
	"red":    drawing.ColorFromHex("ff0000"),
	"green":  drawing.ColorFromHex("008000"),
	"blue":   drawing.ColorFromHex("0000ff"),
	"purple": drawing.ColorFromHex("800080"),
	"orange": drawing.ColorFromHex("ffa500"),
	"black":  drawing.ColorFromHex("000000"),
}

// ColorByName resolves a colour name, falling back to grey
func ColorByName(name string) drawing.Color {
	if c, ok := namedColors[name]; ok {
		return c
	}
	return chart.ColorAlternateGray
}

// Scatter describes a colour-coded point chart
type Scatter struct {
	Title  string
	XName  string
	YName  string
	X      []float64
	Y      []float64
	Colors []string
}

// Arrows are drawn from their origin over the scatter points
type Arrows struct {
	Arrows []pca.Arrow
	// Head is the length of each arrow head in data units
	Head float64
}

// pointStyle renders points only, coloured one by one
func pointStyle(colors []string) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    6,
		DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
			if index < len(colors) {
				return ColorByName(colors[index])
			}
			return chart.ColorAlternateGray
		},
	}
}

func lineStyle() chart.Style {
	return chart.Style{
		StrokeColor: arrowColor,
		StrokeWidth: 2,
		DotWidth:    chart.Disabled,
	}
}

// RenderScatter draws the points of s as a PNG
func RenderScatter(s Scatter) ([]byte, error) {
	return render(s, nil)
}

// RenderScatterWithArrows draws the points of s with the arrows on top
func RenderScatterWithArrows(s Scatter, a Arrows) ([]byte, error) {
	return render(s, &a)
}

func render(s Scatter, a *Arrows) ([]byte, error) {
	if len(s.X) != len(s.Y) {
		return nil, fmt.Errorf("scatter has %d x values and %d y values", len(s.X), len(s.Y))
	}
	if len(s.X) == 0 {
		return nil, fmt.Errorf("scatter has no points")
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "points",
			Style:   pointStyle(s.Colors),
			XValues: s.X,
			YValues: s.Y,
		},
	}
	if a != nil {
		for i, arrow := range a.Arrows {
			series = append(series, arrowSeries(fmt.Sprintf("PC%d", i+1), arrow, a.Head)...)
		}
	}

	ch := chart.Chart{
		Title:      s.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: s.XName, GridMajorStyle: gridStyle(), GridMinorStyle: gridStyle()},
		YAxis:      chart.YAxis{Name: s.YName, GridMajorStyle: gridStyle(), GridMinorStyle: gridStyle()},
		Series:     series,
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", s.Title, err)
	}
	return buf.Bytes(), nil
}

func gridStyle() chart.Style {
	return chart.Style{StrokeColor: chart.ColorAlternateGray, StrokeWidth: 0.5}
}

// arrowSeries builds the shaft and both barbs of an arrow as line segments
func arrowSeries(name string, a pca.Arrow, head float64) []chart.Series {
	tipX, tipY := a.X0+a.DX, a.Y0+a.DY
	out := []chart.Series{
		chart.ContinuousSeries{
			Name:    name,
			Style:   lineStyle(),
			XValues: []float64{a.X0, tipX},
			YValues: []float64{a.Y0, tipY},
		},
	}
	length := math.Hypot(a.DX, a.DY)
	if length == 0 || head <= 0 {
		return out
	}
	ux, uy := a.DX/length, a.DY/length
	for _, side := range []float64{1, -1} {
		// barbs leave the tip at 30 degrees either side of the shaft
		angle := side * math.Pi / 6
		bx := -(ux*math.Cos(angle) - uy*math.Sin(angle)) * head
		by := -(ux*math.Sin(angle) + uy*math.Cos(angle)) * head
		out = append(out, chart.ContinuousSeries{
			Style:   lineStyle(),
			XValues: []float64{tipX, tipX + bx},
			YValues: []float64{tipY, tipY + by},
		})
	}
	return out
}
