package middleware

import (
	"net/http"
	"strconv"
	"time"

	"orderdesk/internal/ratelimit"
	"orderdesk/internal/utils"

	"github.com/gin-gonic/gin"
)

// RateLimit throttles by client IP within scope. A nil limiter disables it.
func RateLimit(l ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		d := l.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			retry := int(time.Until(d.ResetAt).Seconds()) + 1
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			utils.LogEvent(GetRequestID(c), "auth", "rate_limited", "scope="+scope+" ip="+c.ClientIP())
			abortJSON(c, http.StatusTooManyRequests, "Too many requests", nil)
			return
		}
		c.Next()
	}
}
