package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"edahub/internal/errors"
	"edahub/internal/hub"
	"edahub/ui/middleware"

	"github.com/gin-gonic/gin"
)

const (
	welcomeTemplate = "welcome.html"
	uploadField     = "dataset"
)

// layoutData is what the layout template renders around every page
type layoutData struct {
	HubTitle string
	Topics   []hub.TopicInfo
	Topic    hub.TopicInfo
	Apps     []string
	App      string
	Page     *hub.Page
	Error    string
}

func (s *Server) layoutData(topicName, app string) (*layoutData, error) {
	data := &layoutData{HubTitle: hub.Title, App: app}
	for _, name := range s.registry.ListTopics() {
		info, err := s.registry.Topic(name)
		if err != nil {
			continue
		}
		data.Topics = append(data.Topics, info)
	}
	if topicName == "" {
		return data, nil
	}

	info, err := s.registry.Topic(topicName)
	if err != nil {
		return data, err
	}
	data.Topic = info
	data.Apps, err = s.registry.ListApps(topicName)
	return data, err
}

// handleWelcome shows the hub welcome, or a topic welcome with ?topic=
func (s *Server) handleWelcome(c *gin.Context) {
	data, err := s.layoutData(c.Query("topic"), "")
	if err != nil {
		data.Error = err.Error()
	}
	s.renderTemplate(c, statusFor(err), welcomeTemplate, data)
}

// handleApp runs one interaction of an app against the caller's session
func (s *Server) handleApp(c *gin.Context) {
	ctx := c.Request.Context()
	topicName, app := c.Param("topic"), c.Param("app")

	data, err := s.layoutData(topicName, app)
	if err != nil {
		data.Error = err.Error()
		s.renderTemplate(c, statusFor(err), welcomeTemplate, data)
		return
	}

	id, _ := middleware.SessionID(c)
	state, err := s.sessions.Load(ctx, id)
	if err != nil {
		log.Printf("[UI] %v", err)
		data.Error = err.Error()
		s.renderTemplate(c, statusFor(err), welcomeTemplate, data)
		return
	}

	// a broken upload still shows the page, with the state left as it was
	in, inputErr := s.readInput(c)
	if inputErr != nil {
		in = hub.Input{}
	}

	next, page, runErr := s.registry.Run(ctx, topicName, app, state, in)
	if runErr == nil {
		runErr = inputErr
	}
	if next != nil {
		if err := s.sessions.Save(ctx, next); err != nil {
			log.Printf("[UI] %v", err)
			if runErr == nil {
				runErr = err
			}
		}
	}
	if runErr != nil {
		log.Printf("[UI] %s/%s: %v", topicName, app, runErr)
		data.Error = runErr.Error()
	}

	if page == nil {
		s.renderTemplate(c, statusFor(runErr), welcomeTemplate, data)
		return
	}
	data.Page = page
	s.renderTemplate(c, statusFor(runErr), page.Template, data)
}

// readInput collects the submitted widgets and the optional upload
func (s *Server) readInput(c *gin.Context) (hub.Input, error) {
	if c.Request.Method != http.MethodPost {
		return hub.Input{}, nil
	}
	limit := s.config.Upload.MaxBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	err := c.Request.ParseMultipartForm(limit)
	if stderrors.Is(err, http.ErrNotMultipart) {
		err = c.Request.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return hub.Input{}, errors.InvalidInput("upload exceeds the limit of " + humanBytes(limit))
		}
		return hub.Input{}, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "could not read the submitted form"))
	}

	in := hub.Input{Submitted: true, Form: c.Request.PostForm}
	file, header, err := c.Request.FormFile(uploadField)
	switch {
	case stderrors.Is(err, http.ErrMissingFile), stderrors.Is(err, http.ErrNotMultipart):
		return in, nil
	case err != nil:
		return hub.Input{}, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "could not read the upload"))
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return hub.Input{}, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "could not read the upload"))
	}
	in.Upload = &hub.Upload{Name: header.Filename, Data: raw}
	return in, nil
}

// handleReset forgets the caller's session state and uploads
func (s *Server) handleReset(c *gin.Context) {
	id, _ := middleware.SessionID(c)
	if err := s.sessions.Reset(c.Request.Context(), id); err != nil {
		log.Printf("[UI] %v", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
