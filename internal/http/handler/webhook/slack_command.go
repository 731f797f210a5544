package webhook

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/issuedesk/internal/http/dto"
	"basegraph.app/issuedesk/internal/service"
)

const unreadableCommandText = "Sorry, that command could not be read."

type SlackCommandHandler struct {
	dispatcher service.CommandDispatcher
}

func NewSlackCommandHandler(dispatcher service.CommandDispatcher) *SlackCommandHandler {
	return &SlackCommandHandler{dispatcher: dispatcher}
}

// HandleCommand answers within Slack's 3s window. Anything slow runs after the response.
func (h *SlackCommandHandler) HandleCommand(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read slash command body", "error", err)
		c.String(http.StatusOK, unreadableCommandText)
		return
	}

	cmd, err := dto.DecodeSlashCommand(body)
	if err != nil {
		slog.WarnContext(ctx, "invalid slash command payload", "error", err)
		c.String(http.StatusOK, unreadableCommandText)
		return
	}

	ack := h.dispatcher.Handle(ctx, cmd)
	c.Data(ack.Status, "text/plain; charset=utf-8", []byte(ack.Body))
}
