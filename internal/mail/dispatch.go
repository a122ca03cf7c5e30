package mail

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/ratemate/ratemate/internal/queue"
	queue_publisher "github.com/ratemate/ratemate/internal/service"
)

// ResetDispatcher routes reset links to the user: through the message
// broker when one is configured (the consumer delivers the mail
// out-of-band), directly through the Mailer otherwise. A failed publish
// also falls back to direct delivery so the forgot-password endpoint
// keeps its contract without a broker.
type ResetDispatcher struct {
	Direct   Mailer
	UseQueue bool
}

// NewResetDispatcher builds a dispatcher around the given Mailer. The
// queue path is enabled only when a broker URL is present in the
// environment.
func NewResetDispatcher(direct Mailer) *ResetDispatcher {
	return &ResetDispatcher{
		Direct:   direct,
		UseQueue: os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "",
	}
}

// SendResetLink dispatches the reset email for one request.
func (d *ResetDispatcher) SendResetLink(ctx context.Context, email, name, resetURL string, expiresAt time.Time) error {
	if d.UseQueue {
		ev := queue.PasswordResetRequestedEvent{
			Email:       email,
			Name:        name,
			ResetURL:    resetURL,
			ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
			RequestedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := queue_publisher.PublishPasswordResetRequested(ctx, ev); err == nil {
			return nil
		}
		log.Printf("mail: publish failed, sending reset mail directly to %s", email)
	}
	return d.Direct.SendPasswordReset(ctx, email, name, resetURL)
}
