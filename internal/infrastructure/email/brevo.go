// Package email implements email.Sender for Brevo and for local development.
package email

import (
	"context"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/email"
	"eduvista/site/internal/infrastructure/httpapi"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

var _ email.Sender = (*Brevo)(nil)

// BrevoOptions configures the Brevo transactional email client.
type BrevoOptions struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	Endpoint    string
	HTTPClient  *http.Client
	Logger      *logrus.Logger
}

// Brevo sends transactional email through the Brevo v3 API.
type Brevo struct {
	api      *httpapi.Client
	apiKey   string
	sender   brevoContact
	endpoint string
	logger   *logrus.Logger
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmail struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	ReplyTo     *brevoContact  `json:"replyTo,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent,omitempty"`
	TextContent string         `json:"textContent,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

// NewBrevo constructs a Brevo sender.
func NewBrevo(opts BrevoOptions) (*Brevo, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, eris.New("brevo api key is required")
	}
	if strings.TrimSpace(opts.SenderEmail) == "" {
		return nil, eris.New("brevo sender email is required")
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = brevoEndpoint
	}

	return &Brevo{
		api:      httpapi.New("brevo", opts.HTTPClient),
		apiKey:   opts.APIKey,
		sender:   brevoContact{Email: opts.SenderEmail, Name: opts.SenderName},
		endpoint: endpoint,
		logger:   opts.Logger,
	}, nil
}

// Send implements email.Sender.
func (b *Brevo) Send(ctx context.Context, msg email.Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return eris.New("recipient is required")
	}
	if msg.HTML == "" && msg.Text == "" {
		return eris.New("email body is required")
	}

	payload := brevoEmail{
		Sender:      b.sender,
		To:          []brevoContact{{Email: msg.To, Name: msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
		Tags:        msg.Tags,
	}
	if msg.ReplyTo != "" {
		payload.ReplyTo = &brevoContact{Email: msg.ReplyTo}
	}

	var resp brevoResponse
	_, err := b.api.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		URL:    b.endpoint,
		Header: http.Header{"api-key": []string{b.apiKey}},
		Body:   payload,
	}, &resp)
	if err != nil {
		b.logError(logrus.Fields{"to": msg.To, "subject": msg.Subject}, err, "brevo send failed")
		return eris.Wrap(err, "sending email via brevo")
	}

	if b.logger != nil {
		b.logger.WithFields(logrus.Fields{"to": msg.To, "message_id": resp.MessageID}).Debug("email sent")
	}
	return nil
}

func (b *Brevo) logError(fields logrus.Fields, err error, message string) {
	if b.logger == nil || err == nil {
		return
	}
	b.logger.WithFields(fields).WithField("error", err.Error()).Error(message)
}
