package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserHeader carries the id of the calling user, set by the authenticating proxy
const UserHeader = "X-User-ID"

const userIDKey = "user_id"

// RequireUser rejects requests without a user id header and stores the id on the context
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "Missing " + UserHeader + " header",
			})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the id stored by RequireUser, or ""
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
