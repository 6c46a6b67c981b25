// Package pca hosts the two revisions of the movie-preference PCA demo.
package pca

import (
	"context"
	"html/template"

	"edahub/adapters/charts"
	"edahub/domain/pca"
	"edahub/internal/errors"
	"edahub/internal/hub"
	"edahub/internal/markdown"
	"edahub/models"
)

const templateName = "pca.html"

// Revision is one version of the demo. The versions differ in wording and
// in how the component arrows are scaled.
type Revision struct {
	Name      string
	Title     string
	Intro     string
	Scale     pca.ArrowScale
	ArrowHead float64
	Sections  Sections
}

// Sections are the headings and captions around the charts
type Sections struct {
	Original, OriginalCaption       string
	Transformed, TransformedCaption string
	Vectors, VectorsCaption         string
	Results                         string
}

// Tutorial is the annotated revision
var Tutorial = Revision{
	Name:  "PCA",
	Title: "Principal Component Analysis (PCA) of Customer Movie Preferences",
	Intro: `
		This app performs Principal Component Analysis (PCA) on a dataset representing customer movie preferences.
		It aims to visualize and understand how customers are clustered based on their viewing habits of Action and Comedy movies.

		**Dataset:**
		- Each data point represents a customer.
		- Two features are analyzed: "Action Movies Watched" and "Comedy Movies Watched".
		- The goal is to reduce the dimensionality of this data and visualize the main trends.

		**How to Interpret the Plots:**
		- **Original Data:** Shows the raw data points with each color representing a different customer.
		- **PCA Transformed Data:** Shows the data projected onto the principal components (PC1 and PC2).
		- **PCA Vectors on Original Data:** Shows the original data with the principal component vectors overlaid, indicating the directions of maximum variance.

		**PCA Results:**
		- Displays the principal component vectors and the explained variance ratio, which indicates how much of the original variance is captured by each principal component.
	`,
	Scale:     pca.ScaleByRatio,
	ArrowHead: 0.2,
	Sections: Sections{
		Original:           "Original Data: Action Movies vs. Comedy Movies",
		OriginalCaption:    "This plot shows the raw data points, where each color represents a different customer.",
		Transformed:        "PCA Transformed Data: PC1 vs. PC2",
		TransformedCaption: "This plot shows the data transformed into the principal component space. PC1 and PC2 represent the directions of maximum variance.",
		Vectors:            "PCA Vectors on Original Data",
		VectorsCaption:     "This plot shows the original data with the principal component vectors overlaid. The vectors indicate the directions of maximum variance.",
		Results:            "PCA Results",
	},
}

// MoviesExample is the shorter classroom revision
var MoviesExample = Revision{
	Name:      "PCAmoviesEX",
	Title:     "PCA Visualization App",
	Intro:     "An interactive example demonstrating Principal Component Analysis (PCA) on customer movie preferences.",
	Scale:     pca.ScaleByVariance,
	ArrowHead: 0.3,
	Sections: Sections{
		Original:    "Original Data",
		Transformed: "PCA Computation",
		Vectors:     "Principal Components on Original Data",
		Results:     "PCA Results",
	},
}

// Chart is one rendered figure with its heading
type Chart struct {
	Heading string
	Caption string
	Image   []byte
}

// View is the data the PCA template renders
type View struct {
	Title    string
	Intro    template.HTML
	Rows     int
	Cols     int
	Features []string
	Data     [][]float64
	Colors   []string

	Charts  []Chart
	Results string

	Mean                   []float64
	Components             [][]float64
	ExplainedVariance      []float64
	ExplainedVarianceRatio []float64
	Scores                 [][]float64
}

// App runs one revision of the demo
type App struct {
	rev Revision
}

// Factory registers a revision with the hub
func Factory(rev Revision) hub.Factory {
	return func() hub.App { return &App{rev: rev} }
}

// Run fits the fixed dataset and draws the three charts. The demo keeps no
// state of its own, so the session is returned unchanged.
func (a *App) Run(ctx context.Context, s *models.Session, _ hub.Input) (*models.Session, *hub.Page, error) {
	data := pca.MoviePreferences
	view := &View{
		Title:    a.rev.Title,
		Intro:    markdown.ToHTML(a.rev.Intro),
		Rows:     len(data),
		Cols:     len(data[0]),
		Features: pca.MovieFeatures,
		Data:     data,
		Colors:   pca.MovieColors,
		Results:  a.rev.Sections.Results,
	}
	page := &hub.Page{Title: a.rev.Title, Template: templateName, Data: view}

	res, err := pca.Fit(data)
	if err != nil {
		return s, page, errors.Wrap(err, "failed to fit PCA")
	}
	view.Mean = res.Mean
	view.Components = res.Components
	view.ExplainedVariance = res.ExplainedVariance
	view.ExplainedVarianceRatio = res.ExplainedVarianceRatio
	view.Scores = res.Scores

	original := charts.Scatter{
		Title:  "Color-Coded Customer Movie Preferences",
		XName:  pca.MovieFeatures[0],
		YName:  pca.MovieFeatures[1],
		X:      columnOf(data, 0),
		Y:      columnOf(data, 1),
		Colors: pca.MovieColors,
	}
	transformed := charts.Scatter{
		Title:  "PCA of Customer Movie Preferences (Color-Coded)",
		XName:  "PC1",
		YName:  "PC2",
		X:      columnOf(res.Scores, 0),
		Y:      columnOf(res.Scores, 1),
		Colors: pca.MovieColors,
	}
	withVectors := original
	withVectors.Title = "Customer Movie Preferences with Principal Components (Color-Coded)"

	sec := a.rev.Sections
	steps := []struct {
		heading, caption string
		draw             func() ([]byte, error)
	}{
		{sec.Original, sec.OriginalCaption, func() ([]byte, error) { return charts.RenderScatter(original) }},
		{sec.Transformed, sec.TransformedCaption, func() ([]byte, error) { return charts.RenderScatter(transformed) }},
		{sec.Vectors, sec.VectorsCaption, func() ([]byte, error) {
			return charts.RenderScatterWithArrows(withVectors, charts.Arrows{Arrows: res.Arrows(a.rev.Scale), Head: a.rev.ArrowHead})
		}},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return s, page, err
		}
		img, err := step.draw()
		if err != nil {
			return s, page, errors.Wrapf(err, "failed to draw %q", step.heading)
		}
		view.Charts = append(view.Charts, Chart{Heading: step.heading, Caption: step.caption, Image: img})
	}

	return s, page, nil
}

func columnOf(rows [][]float64, j int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r[j]
	}
	return out
}
