package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookieName = "storefront_session"

	// ContextSessionID is the gin context key holding the session id.
	ContextSessionID = "session_id"

	// Session cookies outlive the hosted-payment round trip by a wide
	// margin; carts are not meant to be long-term durable.
	sessionCookieMaxAge = 7 * 24 * 60 * 60
)

// SessionMiddleware assigns every browser a stable session id cookie. The
// cart and the pending-cart snapshot are keyed by it, so it must survive the
// redirect to the hosted payment page and back.
func SessionMiddleware(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   sessionCookieMaxAge,
				HttpOnly: true,
				Secure:   secureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Set(ContextSessionID, sessionID)
		c.Next()
	}
}

// SessionID returns the session id assigned by SessionMiddleware.
func SessionID(c *gin.Context) string {
	sessionID, _ := c.Get(ContextSessionID)
	value, _ := sessionID.(string)
	return value
}
