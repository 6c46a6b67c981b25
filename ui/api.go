package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type topicResponse struct {
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Apps  []string `json:"apps"`
}

func (s *Server) handleListTopics(c *gin.Context) {
	names := s.registry.ListTopics()
	out := make([]topicResponse, 0, len(names))
	for _, name := range names {
		info, err := s.registry.Topic(name)
		if err != nil {
			continue
		}
		apps, err := s.registry.ListApps(name)
		if err != nil {
			continue
		}
		out = append(out, topicResponse{Name: info.Name, Title: info.Title, Apps: apps})
	}
	c.JSON(http.StatusOK, gin.H{"topics": out})
}

func (s *Server) handleListApps(c *gin.Context) {
	topic := c.Param("topic")
	apps, err := s.registry.ListApps(topic)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": topic, "apps": apps})
}
