package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionKey = "hub_session_id"

// Session makes sure every request carries a session id. The id lives in
// a cookie; a missing or malformed cookie starts a new session.
func Session(cookieName string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := readSessionCookie(c, cookieName)
		if err != nil {
			id = uuid.New()
			log.Printf("[Session] starting session %s for %s", id, c.ClientIP())
		}

		// refresh the cookie so the browser keeps it as long as the server does
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     cookieName,
			Value:    id.String(),
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		c.Set(sessionKey, id)
		c.Next()
	}
}

func readSessionCookie(c *gin.Context, name string) (uuid.UUID, error) {
	raw, err := c.Cookie(name)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(raw)
}

// SessionID returns the id set by Session
func SessionID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
