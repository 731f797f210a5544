package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/slack-go/slack"

	"basegraph.app/issuedesk/internal/model"
)

var (
	ErrInvalidPayload = errors.New("invalid slack payload")
	ErrMissingField   = errors.New("missing required field")
)

// FieldError names the modal block a missing value belongs to, so the handler can
// point Slack's inline validation at it.
type FieldError struct {
	BlockID string
	Field   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

// DecodeSlashCommand parses the form-encoded body Slack posts for a slash command.
func DecodeSlashCommand(body []byte) (model.SlashCommand, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return model.SlashCommand{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	cmd := model.SlashCommand{
		TriggerID:   strings.TrimSpace(form.Get("trigger_id")),
		ResponseURL: strings.TrimSpace(form.Get("response_url")),
		Text:        strings.TrimSpace(form.Get("text")),
		Command:     form.Get("command"),
		UserID:      form.Get("user_id"),
		ChannelID:   form.Get("channel_id"),
	}
	// A missing trigger_id only rules out the modal; the answer can still be delivered.
	return cmd, nil
}

// DecodeInteraction parses the form-encoded body Slack posts to the interactivity URL.
// The JSON document lives in the "payload" field.
func DecodeInteraction(body []byte) (model.Interaction, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	raw := form.Get("payload")
	if raw == "" {
		return nil, fmt.Errorf("%w: no payload field", ErrInvalidPayload)
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(raw), &callback); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if callback.Type != slack.InteractionTypeViewSubmission {
		return model.UnknownInteraction{Type: string(callback.Type)}, nil
	}

	// Older payloads omit callback_id; anything explicitly addressed elsewhere is not ours.
	if id := callback.View.CallbackID; id != "" && id != model.CreateIssueCallbackID {
		return model.UnknownInteraction{Type: string(callback.Type), CallbackID: id}, nil
	}

	submission, err := decodeViewSubmission(callback)
	if err != nil {
		return nil, err
	}
	return submission, nil
}

func decodeViewSubmission(callback slack.InteractionCallback) (model.ViewSubmission, error) {
	var values map[string]map[string]slack.BlockAction
	if callback.View.State != nil {
		values = callback.View.State.Values
	}

	title := strings.TrimSpace(stateValue(values, model.TitleBlockID, model.TitleActionID))
	if title == "" {
		return model.ViewSubmission{}, &FieldError{BlockID: model.TitleBlockID, Field: "title"}
	}

	description := stateValue(values, model.DescriptionBlockID, model.DescriptionActionID)
	if strings.TrimSpace(description) == "" {
		return model.ViewSubmission{}, &FieldError{BlockID: model.DescriptionBlockID, Field: "description"}
	}

	submission := model.ViewSubmission{
		Title:       title,
		Description: description,
		Labels:      ParseLabels(stateValue(values, model.LabelsBlockID, model.LabelsActionID)),
		AIRequested: optionSelected(values, model.AIBlockID, model.AIActionID, model.AITipsValue),
		CallbackID:  callback.View.CallbackID,
		UserID:      callback.User.ID,
	}

	// Metadata is informational; a modal without it is still a valid submission.
	if callback.View.PrivateMetadata != "" {
		var meta model.ModalMetadata
		if err := json.Unmarshal([]byte(callback.View.PrivateMetadata), &meta); err == nil {
			submission.Repo = meta.Repo
		}
	}

	return submission, nil
}

// ParseLabels splits a comma separated label list, dropping blanks and duplicates.
func ParseLabels(raw string) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, label := range strings.Split(raw, ",") {
		label = strings.TrimSpace(label)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

func stateValue(values map[string]map[string]slack.BlockAction, blockID, actionID string) string {
	block, ok := values[blockID]
	if !ok {
		return ""
	}
	action, ok := block[actionID]
	if !ok {
		return ""
	}
	return action.Value
}

func optionSelected(values map[string]map[string]slack.BlockAction, blockID, actionID, value string) bool {
	action, ok := values[blockID][actionID]
	if !ok {
		return false
	}
	for _, opt := range action.SelectedOptions {
		if opt.Value == value {
			return true
		}
	}
	return false
}
