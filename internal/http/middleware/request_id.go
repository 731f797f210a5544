package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/issuedesk/common/id"
	"basegraph.app/issuedesk/common/logger"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags the request context with a snowflake id that every log line, and every
// task scheduled from the request, inherits.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := id.New()

		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
			RequestID: &requestID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, strconv.FormatInt(requestID, 10))

		c.Next()
	}
}
