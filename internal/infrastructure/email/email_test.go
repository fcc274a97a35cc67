package email

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"eduvista/site/internal/domain/email"
	"eduvista/site/internal/platform/log"
)

func TestBrevoSendPostsPayload(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, brevoEndpoint,
		func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("api-key") != "brevo-key" {
				return httpmock.NewStringResponse(401, `{"code":"unauthorized"}`), nil
			}
			var payload brevoEmail
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				return httpmock.NewStringResponse(400, ""), nil
			}
			if payload.Sender.Email != "hello@eduvista.example" || len(payload.To) != 1 || payload.To[0].Email != "ana@example.com" {
				return httpmock.NewStringResponse(400, `{"code":"bad_payload"}`), nil
			}
			if payload.ReplyTo == nil || payload.ReplyTo.Email != "lead@example.com" || payload.HTMLContent != "<p>Hi</p>" {
				return httpmock.NewStringResponse(400, `{"code":"bad_payload"}`), nil
			}
			return httpmock.NewStringResponse(201, `{"messageId":"<abc@smtp-relay>"}`), nil
		})

	sender, err := NewBrevo(BrevoOptions{
		APIKey:      "brevo-key",
		SenderEmail: "hello@eduvista.example",
		SenderName:  "eduvista",
		HTTPClient:  &http.Client{Transport: transport},
		Logger:      log.Discard(),
	})
	if err != nil {
		t.Fatalf("NewBrevo returned error: %v", err)
	}

	err = sender.Send(context.Background(), email.Message{
		To:      "ana@example.com",
		ToName:  "Ana",
		Subject: "Welcome",
		HTML:    "<p>Hi</p>",
		ReplyTo: "lead@example.com",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if transport.GetTotalCallCount() != 1 {
		t.Fatalf("expected one call, got %d", transport.GetTotalCallCount())
	}
}

func TestBrevoSendReturnsProviderError(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, brevoEndpoint,
		httpmock.NewStringResponder(400, `{"code":"invalid_parameter","message":"to is invalid"}`))

	sender, err := NewBrevo(BrevoOptions{APIKey: "k", SenderEmail: "s@example.com", HTTPClient: &http.Client{Transport: transport}})
	if err != nil {
		t.Fatalf("NewBrevo returned error: %v", err)
	}

	if err := sender.Send(context.Background(), email.Message{To: "bad", Subject: "x", Text: "y"}); err == nil {
		t.Fatalf("expected error for 400 response")
	}
}

func TestBrevoRejectsIncompleteMessages(t *testing.T) {
	t.Parallel()

	sender, err := NewBrevo(BrevoOptions{APIKey: "k", SenderEmail: "s@example.com"})
	if err != nil {
		t.Fatalf("NewBrevo returned error: %v", err)
	}
	if err := sender.Send(context.Background(), email.Message{Subject: "x", Text: "y"}); err == nil {
		t.Fatalf("expected error without recipient")
	}
	if err := sender.Send(context.Background(), email.Message{To: "a@example.com", Subject: "x"}); err == nil {
		t.Fatalf("expected error without body")
	}
}

func TestNewSenderSelectsProvider(t *testing.T) {
	t.Parallel()

	sender, err := NewSender(ProviderOptions{Provider: "log", Logger: log.Discard()})
	if err != nil {
		t.Fatalf("NewSender returned error: %v", err)
	}
	if _, ok := sender.(*LogSender); !ok {
		t.Fatalf("expected LogSender, got %T", sender)
	}

	sender, err = NewSender(ProviderOptions{Provider: "Brevo", Brevo: BrevoOptions{APIKey: "k", SenderEmail: "s@example.com"}})
	if err != nil {
		t.Fatalf("NewSender returned error: %v", err)
	}
	if _, ok := sender.(*Brevo); !ok {
		t.Fatalf("expected Brevo, got %T", sender)
	}

	if _, err := NewSender(ProviderOptions{Provider: "brevo"}); err == nil {
		t.Fatalf("expected error when brevo has no api key")
	}
	if _, err := NewSender(ProviderOptions{Provider: "smtp"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestLogSenderNeverFails(t *testing.T) {
	t.Parallel()

	if err := NewLogSender(nil).Send(context.Background(), email.Message{To: "a@example.com"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
