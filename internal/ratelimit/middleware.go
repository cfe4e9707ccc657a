package ratelimit

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireme-ai/internal/apperr"
	"github.com/justsurfingit/hireme-ai/internal/metrics"
)

// Middleware rejects requests over p with 429 before any later handler runs.
// m may be nil.
func Middleware(l *Limiter, p Policy, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := l.Check(c.Request, p)

		if m != nil {
			outcome := "allowed"
			if !d.Allowed {
				outcome = "blocked"
			}
			m.RateLimitDecisions.WithLabelValues(c.FullPath(), outcome).Inc()
		}

		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			_ = c.Error(apperr.RateLimited())
			c.Abort()
			return
		}

		c.Next()
	}
}
