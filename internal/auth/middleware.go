package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devtinder/api/internal/config"
)

// CookieName is where the session token lives on the client.
const CookieName = "token"

const contextUserKey = "auth_user_id"

// Middleware verifies the session cookie and stores the caller's user id on
// the request context. Requests without a valid token get a 401.
func Middleware(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized: No token provided"})
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized: Invalid token"})
			return
		}

		c.Set(contextUserKey, userID)
		c.Next()
	}
}

// UserID extracts the authenticated user id set by Middleware.
func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

// SetSessionCookie issues the session cookie alongside a login response.
func SetSessionCookie(c *gin.Context, cfg *config.Config, token string, ttlSeconds int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, ttlSeconds, "/", cfg.Auth.CookieDomain, cfg.Auth.CookieSecure, true)
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(c *gin.Context, cfg *config.Config) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", cfg.Auth.CookieDomain, cfg.Auth.CookieSecure, true)
}
