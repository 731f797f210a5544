package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Recovery turns a handler panic into a 500 and marks the request span as failed.
// Detached tasks recover on their own in the task runner.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := c.Request.Context()
			err := fmt.Errorf("panic: %v", rec)

			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")

			slog.ErrorContext(ctx, "panic recovered",
				"error", err,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			)

			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.String(http.StatusInternalServerError, "internal server error")
			c.Abort()
		}()
		c.Next()
	}
}
