package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(seen *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session("sid", time.Hour))
	r.GET("/", func(c *gin.Context) {
		id, ok := SessionID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		*seen = id
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestSession_IssuesCookie(t *testing.T) {
	var seen uuid.UUID
	r := newRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotEqual(t, uuid.Nil, seen)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, seen.String(), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}

func TestSession_KeepsExistingID(t *testing.T) {
	var seen uuid.UUID
	r := newRouter(&seen)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: id.String()})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, seen)
}

func TestSession_ReplacesMalformedCookie(t *testing.T) {
	var seen uuid.UUID
	r := newRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-uuid"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, uuid.Nil, seen)
}

func TestSessionID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := SessionID(c)
	assert.False(t, ok)
}
