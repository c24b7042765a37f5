package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"storefront-backend/internal/backend"
)

const (
	authTokenCookieName = "auth_token"

	// ContextPrincipal is the gin context key holding the caller principal.
	ContextPrincipal = "principal"
)

// extractToken pulls the identity token from the Authorization header or,
// failing that, the auth cookie. An empty string means an anonymous caller.
func extractToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		bearerToken := strings.SplitN(authHeader, " ", 2)
		if len(bearerToken) == 2 && strings.EqualFold(bearerToken[0], "Bearer") {
			return strings.TrimSpace(bearerToken[1])
		}
	}

	if cookieToken, err := c.Cookie(authTokenCookieName); err == nil {
		return strings.TrimSpace(cookieToken)
	}
	return ""
}

func parsePrincipal(tokenString, jwtSecret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	principal, _ := claims["sub"].(string)
	if principal == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return principal, nil
}

// IdentityMiddleware resolves the caller identity when a token is present.
// Anonymous requests pass through as guests; a malformed token is rejected
// rather than silently downgraded. The raw token is forwarded on the request
// context so the backend client can attach it to ledger calls.
func IdentityMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		principal, err := parsePrincipal(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Request = c.Request.WithContext(backend.WithCallerToken(c.Request.Context(), tokenString))
		c.Next()
	}
}

// RequireAuth rejects anonymous callers. It must run after
// IdentityMiddleware.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization credentials required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Principal returns the resolved caller principal, or "" for guests.
func Principal(c *gin.Context) string {
	principal, _ := c.Get(ContextPrincipal)
	value, _ := principal.(string)
	return value
}
