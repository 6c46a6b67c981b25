package ui

import (
	"bytes"
	"log"

	"github.com/gin-gonic/gin"
)

// renderTemplate executes the layout of page with the given data
func (s *Server) renderTemplate(c *gin.Context, status int, page string, data interface{}) {
	set, ok := s.templates[page]
	if !ok {
		log.Printf("[UI] unknown template %s", page)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": "unknown template " + page})
		return
	}

	// render to a buffer first so a failing template never sends half a page
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("[UI] template error for %s: %v", page, err)
		log.Printf("[UI] template data type: %T", data)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("[UI] error writing template response: %v", err)
	}
}
