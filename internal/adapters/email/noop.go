package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs messages instead of delivering them.
type NoopSender struct{}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the message.
// PRE: none
// POST: Returns a synthetic receipt; nothing is delivered
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	now := time.Now()
	slog.Info("email_event", "event", "noop_send", "to", msg.To, "subject", msg.Subject)
	return Receipt{MessageID: fmt.Sprintf("noop-%d", now.UnixNano()), SentAt: now}, nil
}
