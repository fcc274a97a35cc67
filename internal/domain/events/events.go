// Package events carries the domain events that automation rules react to.
package events

import (
	"context"
	"time"
)

// Trigger names an event type.
type Trigger string

const (
	BlogPublished        Trigger = "blog.published"
	NewsletterSubscribed Trigger = "newsletter.subscribed"
	ContactSubmitted     Trigger = "contact.submitted"
)

// Triggers lists every trigger automation rules may subscribe to.
var Triggers = []Trigger{BlogPublished, NewsletterSubscribed, ContactSubmitted}

// Valid reports whether t is a known trigger.
func (t Trigger) Valid() bool {
	for _, known := range Triggers {
		if t == known {
			return true
		}
	}
	return false
}

// Event describes something that happened. Title, URL, Email and Name feed
// the placeholders of automation templates.
type Event struct {
	Trigger    Trigger
	Title      string
	URL        string
	Email      string
	Name       string
	Data       map[string]string
	OccurredAt time.Time
}

// Vars returns the placeholder values for template rendering.
func (e Event) Vars() map[string]string {
	vars := map[string]string{
		"title": e.Title,
		"url":   e.URL,
		"email": e.Email,
		"name":  e.Name,
	}
	for key, value := range e.Data {
		if _, exists := vars[key]; !exists {
			vars[key] = value
		}
	}
	return vars
}

// Dispatcher receives events. Implementations must not return errors to the emitter;
// failures are their own to log.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

// Nop discards every event.
type Nop struct{}

// Dispatch implements Dispatcher.
func (Nop) Dispatch(context.Context, Event) {}
