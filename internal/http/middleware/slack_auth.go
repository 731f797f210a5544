package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"basegraph.app/issuedesk/internal/slackauth"
)

const DefaultMaxBodyBytes = 1 << 20

// SlackAuth rejects any request whose Slack signature does not verify, before the body is
// parsed. On success the verified bytes are put back as the request body.
func SlackAuth(verifier *slackauth.Verifier, maxBodyBytes int64) gin.HandlerFunc {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		receivedAt := time.Now()

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				slog.WarnContext(ctx, "slack request body too large", "limit", tooLarge.Limit)
				c.AbortWithStatus(http.StatusRequestEntityTooLarge)
				return
			}
			slog.WarnContext(ctx, "failed to read slack request body", "error", err)
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		req := slackauth.NewIncomingRequest(c.Request.Header, body, receivedAt)
		if !verifier.Verify(req) {
			slog.WarnContext(ctx, "slack signature rejected",
				"has_signature", req.Header(slackauth.SignatureHeader) != "",
				"has_timestamp", req.Header(slackauth.TimestampHeader) != "",
				"body_bytes", len(body))
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.String(http.StatusUnauthorized, "invalid signature")
			c.Abort()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		c.Next()
	}
}
