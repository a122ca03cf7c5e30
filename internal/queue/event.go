// Package queue defines message payloads exchanged over the message broker.
package queue

// ResetQueueName is the durable queue carrying password-reset mail jobs.
const ResetQueueName = "auth.password_reset"

// PasswordResetRequestedEvent is published when a user asks for a
// password reset. It carries everything the mail worker needs to send
// the reset link without querying the primary database. The raw secret
// travels only inside ResetURL; it is never persisted.
type PasswordResetRequestedEvent struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	ResetURL    string `json:"reset_url"`
	ExpiresAt   string `json:"expires_at"`
	RequestedAt string `json:"requested_at"`
}
