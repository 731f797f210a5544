package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers enrich the request context once and every downstream log line, including those
// written by detached tasks, carries the same request and interaction identifiers.
type LogFields struct {
	RequestID       *int64  // Inbound HTTP request ID
	TaskID          *int64  // Detached task ID
	InteractionType *string // e.g. "slash_command", "view_submission"
	SlackUserID     *string // Slack user that triggered the interaction
	Component       string  // Component name (e.g., "issuedesk.service.command")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.TaskID != nil {
		result.TaskID = new.TaskID
	}
	if new.InteractionType != nil {
		result.InteractionType = new.InteractionType
	}
	if new.SlackUserID != nil {
		result.SlackUserID = new.SlackUserID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
