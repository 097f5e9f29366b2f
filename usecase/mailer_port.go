package usecase

import "context"

// Mail is a rendered notification ready for delivery.
type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer abstracts notification dispatch so use cases stay transport
// agnostic. Implementations may deliver immediately or spool through a
// durable outbox; either way a nil error means the message is on its
// way, not necessarily delivered.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}
