package model

// Modal identifiers shared by the modal builder and the submission decoder.
const (
	CreateIssueCallbackID = "create_issue_modal"

	TitleBlockID        = "title_b"
	TitleActionID       = "title"
	DescriptionBlockID  = "desc_b"
	DescriptionActionID = "desc"
	LabelsBlockID       = "labels_b"
	LabelsActionID      = "labels"
	AIBlockID           = "ai_b"
	AIActionID          = "ai"
	AITipsValue         = "ai_tips"

	TitleMinLength = 5
)

// ModalMetadata is carried in the modal's private_metadata.
type ModalMetadata struct {
	Repo string `json:"repo"`
}
