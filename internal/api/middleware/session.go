package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/denisAlshanov/vidgrab/internal/utils"
)

const (
	SessionCookieName = "vidgrab_session"
	SessionIDKey      = "session_id"

	sessionPrefix = "sess_"
)

// SessionMiddleware gives every browser a session id in a cookie and puts it
// on the request context. Malformed ids are replaced.
func SessionMiddleware(ttl time.Duration) gin.HandlerFunc {
	maxAge := int(ttl / time.Second)

	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || !validSessionID(sessionID) {
			sessionID = utils.GenerateSessionID()
		}

		// Refresh on every request so the cookie lives as long as the
		// server-side session does.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, sessionID, maxAge, "/", "", c.Request.TLS != nil, true)

		c.Set(SessionIDKey, sessionID)
		c.Request = c.Request.WithContext(utils.WithSessionID(c.Request.Context(), sessionID))

		c.Next()
	}
}

// SessionID returns the id set by SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

func validSessionID(id string) bool {
	rest, ok := strings.CutPrefix(id, sessionPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
