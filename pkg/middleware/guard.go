package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/navarrastar/mentorship-landing/pkg/models"
	"github.com/navarrastar/mentorship-landing/pkg/services"
)

// AuthEntryPoint is where unauthenticated visitors are sent
const AuthEntryPoint = "/auth"

const demoUserKey = "demoUser"

// RequireDemoSession lets a request through only when the client's demo
// session points at a known user. The session is re-read on every request.
func RequireDemoSession(auth services.DemoAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := auth.CurrentUser(c.Request.Context(), SessionID(c))
		if err != nil {
			slog.Error("reading demo session failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not read session"})
			return
		}
		if !session.LoggedIn() {
			c.Header("Location", AuthEntryPoint)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Please log in",
				"redirect": AuthEntryPoint,
			})
			return
		}
		c.Set(demoUserKey, session.User)
		c.Next()
	}
}

// DemoUser returns the user stored by RequireDemoSession
func DemoUser(c *gin.Context) *models.DemoUser {
	v, ok := c.Get(demoUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.DemoUser)
	return user
}
