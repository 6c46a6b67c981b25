// Package apps wires every classroom app into the hub registry.
package apps

import (
	"edahub/internal/apps/dataframe"
	"edahub/internal/apps/pca"
	"edahub/internal/errors"
	"edahub/internal/hub"
	"edahub/internal/session"
)

// Topic names as they appear in URLs
const (
	TopicDataHandling = "topic4"
	TopicPCA          = "topic6"
)

// NewRegistry registers the apps of every topic. New apps are added here.
func NewRegistry(sessions *session.Manager) (*hub.Registry, error) {
	r := hub.NewRegistry()

	r.DescribeTopic(hub.TopicInfo{
		Name:    TopicDataHandling,
		Title:   "Topic 4 - Data Handling & Visualization",
		Welcome: "Upload a dataset to explore, slice, summarize and plot it.",
	})
	r.DescribeTopic(hub.TopicInfo{
		Name:    TopicPCA,
		Title:   "Topic 6 - Principal Component Analysis",
		Welcome: "Walk through PCA on a small dataset of customer movie preferences.",
	})

	registrations := []struct {
		topic, app string
		factory    hub.Factory
	}{
		{TopicDataHandling, "dataframehandling", dataframe.Factory(sessions.Tables())},
		{TopicPCA, pca.Tutorial.Name, pca.Factory(pca.Tutorial)},
		{TopicPCA, pca.MoviesExample.Name, pca.Factory(pca.MoviesExample)},
	}
	for _, reg := range registrations {
		if err := r.Register(reg.topic, reg.app, reg.factory); err != nil {
			return nil, errors.Wrapf(err, "failed to register %s/%s", reg.topic, reg.app)
		}
	}
	return r, nil
}
