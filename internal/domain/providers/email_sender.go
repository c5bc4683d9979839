package providers

import "context"

// EmailMessage is a rendered email ready to send
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

// EmailSender delivers rendered email
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}
