// Package hub registers the classroom apps by topic and dispatches one run
// of a selected app.
package hub

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"sync"

	"edahub/internal/errors"
	"edahub/models"
)

// Title is shown at the top of every hub page
const Title = "ISE 291 Term 242 Section F22 Hub"

// Upload is a file posted with an interaction, read fully into memory
type Upload struct {
	Name string
	Data []byte
}

// Input is one user interaction: the submitted widget values and an
// optional uploaded file. Submitted is false for a plain page load.
type Input struct {
	Submitted bool
	Form      url.Values
	Upload    *Upload
}

// Page is what an app produced during a run. Template names the view the
// server renders Data with.
type Page struct {
	Title    string
	Template string
	Data     interface{}
}

// App is one demonstration. A new instance is built for every run and
// receives the session state it may change; the returned state replaces it.
type App interface {
	Run(ctx context.Context, session *models.Session, in Input) (*models.Session, *Page, error)
}

// Factory builds a fresh App
type Factory func() App

// TopicInfo describes a topic in the sidebar
type TopicInfo struct {
	Name    string
	Title   string
	Welcome string
}

type topic struct {
	info TopicInfo
	apps map[string]Factory
}

// Registry maps topic and app names to app factories. It is filled once
// at startup and read concurrently afterwards.
type Registry struct {
	mu     sync.RWMutex
	topics map[string]*topic
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{topics: make(map[string]*topic)}
}

// DescribeTopic sets the sidebar title and welcome text of a topic
func (r *Registry) DescribeTopic(info TopicInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topicLocked(info.Name).info = info
}

// Register adds an app under topic. Registering the same name twice is an error.
func (r *Registry) Register(topicName, app string, factory Factory) error {
	if topicName == "" || app == "" || factory == nil {
		return errors.InvalidInput("topic, app and factory are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.topicLocked(topicName)
	if _, exists := t.apps[app]; exists {
		return errors.ValidationError(fmt.Sprintf("app %s/%s is already registered", topicName, app))
	}
	t.apps[app] = factory
	return nil
}

func (r *Registry) topicLocked(name string) *topic {
	t, ok := r.topics[name]
	if !ok {
		t = &topic{info: TopicInfo{Name: name, Title: name}, apps: make(map[string]Factory)}
		r.topics[name] = t
	}
	return t
}

// ListTopics returns the topic names in sorted order
func (r *Registry) ListTopics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.topics))
	for name := range r.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Topic returns the description of a topic
func (r *Registry) Topic(name string) (TopicInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.topics[name]
	if !ok {
		return TopicInfo{}, errors.NotFound(fmt.Sprintf("topic %q", name))
	}
	return t.info, nil
}

// ListApps returns the app names of a topic in sorted order
func (r *Registry) ListApps(topicName string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.topics[topicName]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("topic %q", topicName))
	}
	names := make([]string, 0, len(t.apps))
	for name := range t.apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Run builds the selected app and runs it once. Errors from the app are
// returned as is, together with whatever page and state it produced.
func (r *Registry) Run(ctx context.Context, topicName, app string, session *models.Session, in Input) (*models.Session, *Page, error) {
	factory, err := r.lookup(topicName, app)
	if err != nil {
		return session, nil, err
	}

	log.Printf("[Hub] running %s/%s for session %s", topicName, app, session.ID)
	return factory().Run(ctx, session, in)
}

func (r *Registry) lookup(topicName, app string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.topics[topicName]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("topic %q", topicName))
	}
	factory, ok := t.apps[app]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("app %q in topic %q", app, topicName))
	}
	return factory, nil
}
