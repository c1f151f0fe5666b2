package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whispr-app/whispr/internal/application"
	"github.com/whispr-app/whispr/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"
)

// Auth resolves the session principal from the access_token cookie and
// injects the rehydrated user into the Gin context. Every failure mode ends
// in a 401; a store fault is a 500 so it is never mistaken for logged out.
func Auth(sessions *application.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.AbortError[any](c, http.StatusUnauthorized, "not authenticated", nil)
			return
		}
		u, err := sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, application.ErrNotAuthenticated) {
				response.AbortError[any](c, http.StatusUnauthorized, "not authenticated", nil)
				return
			}
			response.AbortError[any](c, http.StatusInternalServerError, "session lookup failed", nil)
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u)
		c.Next()
	}
}
