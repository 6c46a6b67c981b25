// Package ui serves the hub over HTTP: the sidebar navigation, the app
// pages and a small JSON API listing topics and apps.
package ui

import (
	"encoding/base64"
	"html/template"
	"io/fs"
	"log"
	"math"
	"net/http"
	"path"
	"strconv"

	"edahub/domain/plot"
	"edahub/internal/config"
	"edahub/internal/errors"
	"edahub/internal/hub"
	"edahub/internal/session"
	"edahub/ui/middleware"

	"github.com/gin-gonic/gin"
)

const layoutFile = "layout.html"

// Server represents the web server for the hub
type Server struct {
	router   *gin.Engine
	registry *hub.Registry
	sessions *session.Manager
	config   *config.Config
	files    fs.FS

	// one template set per page, each a clone of the layout
	templates map[string]*template.Template
}

// NewServer creates a server. files must contain ui/templates and ui/static.
func NewServer(files fs.FS, registry *hub.Registry, sessions *session.Manager, cfg *config.Config) *Server {
	router := gin.Default()
	router.MaxMultipartMemory = cfg.Upload.MaxBytes
	return &Server{
		router:   router,
		registry: registry,
		sessions: sessions,
		config:   cfg,
		files:    files,
	}
}

// Initialize parses the templates and registers middleware and routes
func (s *Server) Initialize() error {
	if err := s.parseTemplates(); err != nil {
		return err
	}
	if err := s.setupMiddleware(); err != nil {
		return err
	}
	s.setupRoutes()
	return nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"fmtFloat": func(v float64) string {
			if math.IsNaN(v) {
				return "NaN"
			}
			return strconv.FormatFloat(v, 'f', 4, 64)
		},
		"pngURI": func(img []byte) template.URL {
			return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img))
		},
		"colValue":  func(name string) string { return plot.Col(name).FormValue() },
		"noneValue": func() string { return plot.NoColumn.FormValue() },
	}
}

func (s *Server) parseTemplates() error {
	templatesFS, err := fs.Sub(s.files, "ui/templates")
	if err != nil {
		return errors.Wrap(err, "templates directory missing")
	}
	layout, err := template.New(layoutFile).Funcs(templateFuncs()).ParseFS(templatesFS, layoutFile)
	if err != nil {
		return errors.Wrap(err, "failed to parse layout")
	}

	pages, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return errors.Wrap(err, "failed to list templates")
	}
	s.templates = make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		if name == layoutFile {
			continue
		}
		set, err := layout.Clone()
		if err != nil {
			return errors.Wrapf(err, "failed to clone layout for %s", name)
		}
		if _, err := set.ParseFS(templatesFS, name); err != nil {
			return errors.Wrapf(err, "failed to parse %s", name)
		}
		s.templates[path.Base(name)] = set
	}
	log.Printf("[UI] parsed %d page templates", len(s.templates))
	return nil
}

func (s *Server) setupMiddleware() error {
	staticFS, err := fs.Sub(s.files, "ui/static")
	if err != nil {
		return errors.Wrap(err, "static directory missing")
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	s.router.Use(middleware.Session(s.config.Session.CookieName, s.config.Session.TTL))
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleWelcome)
	s.router.GET("/apps/:topic/:app", s.handleApp)
	s.router.POST("/apps/:topic/:app", s.handleApp)
	s.router.POST("/session/reset", s.handleReset)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/topics", s.handleListTopics)
		api.GET("/topics/:topic/apps", s.handleListApps)
	}
}

// Handler exposes the router for an http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

// statusFor is the HTTP status of a page or API response that carries err
func statusFor(err error) int {
	return errors.HTTPStatus(err)
}
