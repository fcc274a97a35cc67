package email

import (
	"context"

	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/email"
)

var _ email.Sender = (*LogSender)(nil)

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	logger *logrus.Logger
}

// NewLogSender constructs a LogSender.
func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements email.Sender.
func (l *LogSender) Send(_ context.Context, msg email.Message) error {
	if l.logger == nil {
		return nil
	}
	l.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
		"tags":    msg.Tags,
	}).Info("email delivery skipped (log provider)")
	return nil
}
