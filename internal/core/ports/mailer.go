package ports

import "context"

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers digest messages. Implementations own transport concerns
// (SMTP settings, TLS); callers only see delivery success or failure.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
