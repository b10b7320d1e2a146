package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDHeader carries the authenticated student id, set by the gateway
	// in front of this service.
	UserIDHeader = "X-User-ID"
	userIDKey    = "user_id"
)

// Identity attaches the caller's user id to the request context.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid user identity",
				Details: UserIDHeader + " must be a positive integer",
			})
			return
		}
		c.Set(userIDKey, uint(id))
		c.Next()
	}
}
