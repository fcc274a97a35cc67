package log

import (
	"time"

	"github.com/getsentry/sentry-go"
	sentrylogrus "github.com/getsentry/sentry-go/logrus"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// SentrySettings represents the configuration required to bootstrap Sentry.
type SentrySettings struct {
	DSN         string
	Environment string
	Release     string
}

// InitSentry wires up Sentry exception logging and connects it to the provided logrus logger.
func InitSentry(logger *logrus.Logger, settings SentrySettings) (*sentry.Hub, func(), error) {
	if settings.DSN == "" {
		return nil, func() {}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         settings.DSN,
		Environment: settings.Environment,
		Release:     settings.Release,
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "error initializing sentry client")
	}

	hub := sentry.NewHub(client, sentry.NewScope())

	hook := sentrylogrus.NewLogHookFromClient([]logrus.Level{
		logrus.ErrorLevel,
		logrus.FatalLevel,
		logrus.PanicLevel,
	}, client)
	logger.AddHook(hook)

	flush := func() {
		hub.Flush(2 * time.Second)
	}

	return hub, flush, nil
}

// Reporter records failures to the structured log and, when configured, to Sentry.
type Reporter struct {
	logger *logrus.Logger
	hub    *sentry.Hub
}

// NewReporter builds a Reporter. Both arguments may be nil.
func NewReporter(logger *logrus.Logger, hub *sentry.Hub) *Reporter {
	return &Reporter{logger: logger, hub: hub}
}

// Logger exposes the underlying logger.
func (r *Reporter) Logger() *logrus.Logger {
	if r == nil || r.logger == nil {
		return Discard()
	}
	return r.logger
}

// Error logs err with fields and captures it in Sentry.
func (r *Reporter) Error(fields logrus.Fields, err error, message string) {
	if r == nil || err == nil {
		return
	}

	if r.logger != nil {
		entry := r.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if r.hub != nil {
		r.hub.CaptureException(err)
	}
}

// Warn logs err with fields at warning level without reporting it to Sentry.
func (r *Reporter) Warn(fields logrus.Fields, err error, message string) {
	if r == nil || r.logger == nil {
		return
	}

	entry := r.logger.WithFields(fields)
	if err != nil {
		entry = entry.WithField("error", err.Error())
	}
	entry.Warn(message)
}

// Info logs an informational message with fields.
func (r *Reporter) Info(fields logrus.Fields, message string) {
	if r == nil || r.logger == nil {
		return
	}
	r.logger.WithFields(fields).Info(message)
}
