package service

import (
	"encoding/json"
	"fmt"

	"github.com/slack-go/slack"

	"basegraph.app/issuedesk/internal/model"
	"basegraph.app/issuedesk/internal/service/issue_tracker"
)

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}

// CreateIssueModal is the form opened by the slash command. trackerName is shown in the
// title ("GitHub", "GitLab"); repo travels in private_metadata.
func CreateIssueModal(trackerName, repo string) slack.ModalViewRequest {
	title := slack.NewPlainTextInputBlockElement(nil, model.TitleActionID)
	title.MinLength = model.TitleMinLength

	description := slack.NewPlainTextInputBlockElement(nil, model.DescriptionActionID)
	description.Multiline = true

	labels := slack.NewPlainTextInputBlockElement(nil, model.LabelsActionID)

	aiTips := slack.NewCheckboxGroupsBlockElement(model.AIActionID,
		slack.NewOptionBlockObject(model.AITipsValue, plainText("Yes, generate remediation tips"), nil),
	)

	metadata, _ := json.Marshal(model.ModalMetadata{Repo: repo})

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      model.CreateIssueCallbackID,
		PrivateMetadata: string(metadata),
		Title:           plainText(fmt.Sprintf("Create %s Issue", trackerName)),
		Submit:          plainText("Create"),
		Close:           plainText("Cancel"),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewInputBlock(model.TitleBlockID, plainText("Title"), nil, title),
			slack.NewInputBlock(model.DescriptionBlockID, plainText("Description"), nil, description),
			slack.NewInputBlock(model.LabelsBlockID, plainText("Labels (comma separated)"), nil, labels).
				WithOptional(true),
			slack.NewInputBlock(model.AIBlockID, plainText("Add AI remediation tips?"), nil, aiTips).
				WithOptional(true),
		}},
	}
}

// IssueCreatedModal replaces the form once the tracker has accepted the issue.
func IssueCreatedModal(issue *issue_tracker.Issue) *slack.ModalViewRequest {
	return resultModal(fmt.Sprintf("Created issue: <%s|#%d>", issue.URL, issue.Number))
}

func IssueFailedModal() *slack.ModalViewRequest {
	return resultModal(":warning: The issue could not be created. Please try again later.")
}

func resultModal(text string) *slack.ModalViewRequest {
	return &slack.ModalViewRequest{
		Type:  slack.VTModal,
		Title: plainText("Done"),
		Close: plainText("Close"),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
		}},
	}
}
