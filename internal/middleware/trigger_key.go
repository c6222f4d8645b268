package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerKeyHeader carries the shared secret for run triggers
const TriggerKeyHeader = "X-Trigger-Key"

// RequireTriggerKey rejects requests whose X-Trigger-Key header does not match key.
// An empty key rejects every request.
func RequireTriggerKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(TriggerKeyHeader)
		if key == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
