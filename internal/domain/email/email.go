// Package email defines the outbound email contract used by newsletter,
// contact and automation.
package email

import "context"

// Message is a single transactional email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	Tags    []string
}

// Sender delivers messages through a provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
