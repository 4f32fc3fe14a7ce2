package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"coopra.org/internal/auth"
	"coopra.org/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the audit request id from context if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit log entry enriched with request and actor context.
// Audit records are append-only: they are emitted to the structured log and
// never rewritten by the service.
func LogEvent(ctx context.Context, event string, fields map[string]string) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	logger := obs.Logger()
	entry := logger.Info().
		Str("type", "audit").
		Str("event", event).
		Time("occurred_at", time.Now().UTC())

	if rid := RequestIDFromContext(ctx); rid != "" {
		entry = entry.Str("request_id", rid)
	}
	if id, ok := auth.IdentityFromContext(ctx); ok {
		entry = entry.Str("actor_id", id.UserID).Str("actor_role", id.Role)
		if id.CooperativeID != "" {
			entry = entry.Str("actor_cooperative_id", id.CooperativeID)
		}
	}
	payload := make(map[string]string, len(fields))
	for k, v := range fields {
		payload[k] = v
	}
	entry.Any("fields", payload).Msg("audit")
	return nil
}
