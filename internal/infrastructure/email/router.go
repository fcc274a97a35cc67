package email

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/email"
)

// ProviderOptions selects the outbound provider.
type ProviderOptions struct {
	Provider string
	Brevo    BrevoOptions
	Logger   *logrus.Logger
}

// NewSender returns the configured sender. The log provider is used for
// "log" and as the development fallback when Brevo has no API key.
func NewSender(opts ProviderOptions) (email.Sender, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "brevo":
		if opts.Brevo.Logger == nil {
			opts.Brevo.Logger = opts.Logger
		}
		return NewBrevo(opts.Brevo)
	case "", "log":
		return NewLogSender(opts.Logger), nil
	default:
		return nil, eris.Errorf("unknown email provider: %s", opts.Provider)
	}
}
