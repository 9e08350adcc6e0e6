package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers set the request-level fields once and everything downstream inherits them.
type LogFields struct {
	Role      *string // Polling receiver role (LEFT, RIGHT, ALL)
	Target    *string // Queue a packet is routed to
	Event     *string // Event identifier (e.g. "URGENT")
	EventID   *string // Packet event_id
	Component string  // Component name, e.g. "herizon.service.delivery"
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

	if new.Role != nil {
		result.Role = new.Role
	}
	if new.Target != nil {
		result.Target = new.Target
	}
	if new.Event != nil {
		result.Event = new.Event
	}
	if new.EventID != nil {
		result.EventID = new.EventID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{Role: logger.Ptr(role)})
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
