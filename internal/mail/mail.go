// Package mail sends the transactional emails of the platform: the welcome
// message after signup, password reset links and new applicant alerts for
// employers.
package mail

import (
	"context"
	"log"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// LogSender writes messages to the process log instead of sending them.  It
// is used when no Gmail credentials are configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, m Message) error {
	log.Printf("mail: to=%s subject=%q (%d bytes, not sent: gmail not configured)", m.To, m.Subject, len(m.HTML))
	return nil
}
