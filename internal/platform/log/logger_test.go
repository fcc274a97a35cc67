package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

func TestNewLoggerParsesLevel(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger("DEBUG")
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := NewLogger("chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestInitSentryWithoutDSNIsNoop(t *testing.T) {
	t.Parallel()

	hub, flush, err := InitSentry(Discard(), SentrySettings{})
	if err != nil {
		t.Fatalf("InitSentry returned error: %v", err)
	}
	if hub != nil {
		t.Fatalf("expected nil hub without DSN")
	}
	flush()
}

func TestReporterWritesErrorField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger("info")
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	logger.SetOutput(&buf)

	reporter := NewReporter(logger, nil)
	reporter.Error(logrus.Fields{"slug": "intro"}, eris.New("boom"), "loading post")

	out := buf.String()
	if !strings.Contains(out, `"error":"boom"`) || !strings.Contains(out, `"slug":"intro"`) {
		t.Fatalf("expected structured error entry, got %q", out)
	}
}

func TestNilReporterIsSafe(t *testing.T) {
	t.Parallel()

	var reporter *Reporter
	reporter.Error(nil, eris.New("ignored"), "nothing")
	reporter.Warn(nil, nil, "nothing")
	reporter.Info(nil, "nothing")
	if reporter.Logger() == nil {
		t.Fatalf("expected discard logger from nil reporter")
	}
}
