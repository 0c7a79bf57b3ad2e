package auth

import (
	"context"

	"go.uber.org/zap"
)

// Notifier delivers auth notifications. Mail transport is an external
// collaborator; implementations only receive the raw token or link.
type Notifier interface {
	SendPasswordReset(ctx context.Context, user *User, token string) error
	SendEmailVerification(ctx context.Context, user *User, verificationURL string) error
}

// LogNotifier writes notifications to the application log. It stands
// in for a real mail channel in development.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, user *User, token string) error {
	n.log.Info("password reset token issued",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("token", token))
	return nil
}

func (n *LogNotifier) SendEmailVerification(_ context.Context, user *User, verificationURL string) error {
	n.log.Info("email verification link issued",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("url", verificationURL))
	return nil
}
