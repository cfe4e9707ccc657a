package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenericMessage is shown for failures whose cause must stay internal.
const GenericMessage = "An unexpected error occurred. Please try again."

// Middleware renders the last error pushed with c.Error as {"error": message}.
// Causes of upstream and internal errors are logged, never returned.
func Middleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, msg := http.StatusInternalServerError, GenericMessage

		var appErr *Error
		if errors.As(err, &appErr) {
			status, msg = appErr.Status(), appErr.Message
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", status),
				zap.Error(err))
		}

		c.AbortWithStatusJSON(status, gin.H{"error": msg})
	}
}

// Recover renders a recovered panic with the same JSON contract. Use it with
// ginzap.CustomRecoveryWithZap, which logs the panic and stack.
func Recover(c *gin.Context, _ any) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": GenericMessage})
}
