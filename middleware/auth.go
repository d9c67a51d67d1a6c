package middleware

import (
	"log"
	"net/http"
	"strings"

	"smartattend_backend/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireSession.
const (
	ContextUserID       = "userID"
	ContextSessionToken = "sessionToken"
)

// BearerToken extracts the bearer token from the Authorization header, or ""
// when the header is absent or malformed.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// RequireSession creates a gin middleware that verifies the bearer session
// token on every request and aborts with 401 when it is missing or rejected.
func RequireSession(sessions *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		check, err := sessions.Verify(c.Request.Context(), token)
		if err != nil {
			log.Printf("Session verification error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify session"})
			c.Abort()
			return
		}
		if !check.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": check.Reason})
			c.Abort()
			return
		}

		c.Set(ContextUserID, check.UserID)
		c.Set(ContextSessionToken, token)
		c.Next()
	}
}
