package logger

import (
	"context"
	"log/slog"
	"time"
)

// Audit event types
const (
	EventSignup               = "signup"
	EventEmailVerified        = "email_verified"
	EventVerificationResent   = "verification_resent"
	EventLogin                = "login"
	EventPasswordResetRequest = "password_reset_requested"
	EventPasswordReset        = "password_reset"
	EventProfileUpdated       = "profile_updated"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	AccountID     string
	Email         string
	IPAddress     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// Log records an audit event. Failures are logged at warn level.
func (al *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.AccountID != "" {
		attrs = append(attrs, slog.String("account_id", event.AccountID))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(event.Email)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// LogSuccess records a successful account action
func (al *AuditLogger) LogSuccess(ctx context.Context, eventType, accountID, email string) {
	al.Log(ctx, AuditEvent{EventType: eventType, AccountID: accountID, Email: email, Success: true})
}

// LogFailure records a failed account action with its reason
func (al *AuditLogger) LogFailure(ctx context.Context, eventType, accountID, email, reason string) {
	al.Log(ctx, AuditEvent{EventType: eventType, AccountID: accountID, Email: email, FailureReason: reason})
}
