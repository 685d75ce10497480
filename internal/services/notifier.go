package services

import (
	"context"
	"log/slog"
	"time"

	pkglogger "github.com/lanceraa/api/pkg/logger"
)

// Notifier delivers one-time secrets to account holders
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, email, resetLink string, expiresAt time.Time) error
}

// LogNotifier writes codes and reset links to the log instead of sending
// email. It keeps the signup flow usable in development and tests without
// an email provider.
type LogNotifier struct {
	logger *slog.Logger
	env    string
}

func NewLogNotifier(logger *slog.Logger, env string) *LogNotifier {
	return &LogNotifier{logger: logger, env: env}
}

func (n *LogNotifier) SendVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	n.logger.InfoContext(ctx, "verification code issued",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		pkglogger.RedactedAttr("code", code, n.env),
		slog.Time("expires_at", expiresAt))
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, email, resetLink string, expiresAt time.Time) error {
	n.logger.InfoContext(ctx, "password reset link issued",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		pkglogger.RedactedAttr("reset_link", resetLink, n.env),
		slog.Time("expires_at", expiresAt))
	return nil
}
