package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie carries the client's demo session id
const SessionCookie = "mentorship_session"

const sessionMaxAge = 30 * 24 * 60 * 60

// SessionID returns the client's session id, or "" when the cookie is
// missing or not a uuid
func SessionID(c *gin.Context) string {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

// NewSessionID returns a fresh session id
func NewSessionID() string {
	return uuid.NewString()
}

// SetSessionID hands the session id to the client as an HttpOnly cookie
func SetSessionID(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, sessionMaxAge, "/", "", c.Request.TLS != nil, true)
}

// ClearSessionID expires the session cookie
func ClearSessionID(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
}
