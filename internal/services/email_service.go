package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	pkglogger "github.com/lanceraa/api/pkg/logger"
)

// SESClient is the subset of the SES API used for delivery
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends account emails through AWS SES
type SESNotifier struct {
	client      SESClient
	fromAddress string
	appName     string
	logger      *slog.Logger
}

// NewSESNotifier loads the default AWS credential chain for region
func NewSESNotifier(ctx context.Context, region, fromAddress, appName string, logger *slog.Logger) (*SESNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewSESNotifierWithClient(ses.NewFromConfig(cfg), fromAddress, appName, logger), nil
}

func NewSESNotifierWithClient(client SESClient, fromAddress, appName string, logger *slog.Logger) *SESNotifier {
	return &SESNotifier{
		client:      client,
		fromAddress: fromAddress,
		appName:     appName,
		logger:      logger,
	}
}

func (s *SESNotifier) SendVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	minutes := int(time.Until(expiresAt).Round(time.Minute).Minutes())

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h1>Verify your email address</h1>
    <p>Welcome to %s! Enter this code to finish creating your account:</p>
    <p style="font-size: 28px; letter-spacing: 6px;"><strong>%s</strong></p>
    <p>The code expires in %d minutes.</p>
    <p>If you didn't sign up, you can ignore this email.</p>
</body>
</html>
`, s.appName, code, minutes)

	textBody := fmt.Sprintf(`Verify your email address

Welcome to %s! Enter this code to finish creating your account:

%s

The code expires in %d minutes.

If you didn't sign up, you can ignore this email.
`, s.appName, code, minutes)

	return s.send(ctx, email, "Your verification code", htmlBody, textBody)
}

func (s *SESNotifier) SendPasswordReset(ctx context.Context, email, resetLink string, expiresAt time.Time) error {
	hours := int(time.Until(expiresAt).Round(time.Hour).Hours())

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h1>Reset your password</h1>
    <p>We received a request to reset your %s password.</p>
    <p><a href="%s">Choose a new password</a></p>
    <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
    <p>This link expires in %d hours. If you didn't request a reset, you can ignore this email.</p>
</body>
</html>
`, s.appName, resetLink, resetLink, hours)

	textBody := fmt.Sprintf(`Reset your password

We received a request to reset your %s password. Open this link to choose a new one:

%s

This link expires in %d hours. If you didn't request a reset, you can ignore this email.
`, s.appName, resetLink, hours)

	return s.send(ctx, email, "Reset your password", htmlBody, textBody)
}

func (s *SESNotifier) send(ctx context.Context, email, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.String("subject", subject),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}
