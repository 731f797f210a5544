package webhook

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"

	"basegraph.app/issuedesk/internal/http/dto"
	"basegraph.app/issuedesk/internal/model"
	"basegraph.app/issuedesk/internal/service"
)

type SlackInteractionHandler struct {
	submissions service.SubmissionHandler
}

func NewSlackInteractionHandler(submissions service.SubmissionHandler) *SlackInteractionHandler {
	return &SlackInteractionHandler{submissions: submissions}
}

// HandleInteraction always answers 200. Slack shows an error to the user for anything else.
func (h *SlackInteractionHandler) HandleInteraction(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read interaction body", "error", err)
		c.Status(http.StatusOK)
		return
	}

	interaction, err := dto.DecodeInteraction(body)
	if err != nil {
		var fieldErr *dto.FieldError
		if errors.As(err, &fieldErr) && fieldErr.BlockID != "" {
			slog.WarnContext(ctx, "view submission missing field", "field", fieldErr.Field)
			c.JSON(http.StatusOK, slack.NewErrorsViewSubmissionResponse(map[string]string{
				fieldErr.BlockID: fmt.Sprintf("Please enter a %s.", fieldErr.Field),
			}))
			return
		}
		slog.WarnContext(ctx, "invalid interaction payload", "error", err)
		c.Status(http.StatusOK)
		return
	}

	switch i := interaction.(type) {
	case model.ViewSubmission:
		c.JSON(http.StatusOK, h.submissions.Handle(ctx, i))
	default:
		unknown, _ := interaction.(model.UnknownInteraction)
		slog.DebugContext(ctx, "ignoring interaction",
			"type", unknown.Type,
			"callback_id", unknown.CallbackID)
		c.Status(http.StatusOK)
	}
}
