package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address (e.g. "Rackets <noreply@rackets.example.com>")
	Subject string
	HTML    string // HTML body
	Text    string // Plain-text alternative
	ReplyTo string // Reply-to address
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending emails via an external provider.
// Sends are one request per recipient; blast fan-out needs a per-recipient
// success or failure, which a provider batch API cannot report.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
