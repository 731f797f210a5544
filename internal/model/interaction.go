package model

// Interaction is one decoded Slack payload. The concrete type is one of
// SlashCommand, ViewSubmission or UnknownInteraction.
type Interaction interface {
	InteractionType() string
}

const (
	InteractionSlashCommand   = "slash_command"
	InteractionViewSubmission = "view_submission"
)

// SlashCommand is the form posted when a user runs the slash command.
type SlashCommand struct {
	TriggerID   string
	ResponseURL string
	Text        string // trimmed free text after the command, may be empty
	Command     string
	UserID      string
	ChannelID   string
}

func (SlashCommand) InteractionType() string { return InteractionSlashCommand }

// ViewSubmission is a submitted create-issue modal.
type ViewSubmission struct {
	Title       string
	Description string
	Labels      []string
	AIRequested bool

	CallbackID string
	Repo       string // from the modal's private metadata, informational only
	UserID     string
}

func (ViewSubmission) InteractionType() string { return InteractionViewSubmission }

// UnknownInteraction is any payload this service does not act on.
type UnknownInteraction struct {
	Type       string
	CallbackID string
}

func (u UnknownInteraction) InteractionType() string { return u.Type }
