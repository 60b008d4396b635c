package notifier

import (
	"context"

	"go.uber.org/zap"

	"campus-market.backend/pkg/logger"
)

// LogNotifier writes messages to the structured log instead of sending them.
// It is selected when no email provider key is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) bool {
	logger.Info(ctx, "Notification",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return true
}
