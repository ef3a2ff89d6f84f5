package notify

import (
	"context"

	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

// Message asks for text to be delivered to an address.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier hands messages off for delivery. Notify must not block on
// delivery and never reports delivery failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, msgs ...Message)
}

// LogNotifier writes messages to the log. It is used when no broker is
// configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, msgs ...Message) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "notify"))
	for _, m := range msgs {
		log.Info("notification",
			zap.String("to", m.To),
			zap.String("subject", m.Subject),
			zap.Int("body_len", len(m.Body)),
		)
	}
}
