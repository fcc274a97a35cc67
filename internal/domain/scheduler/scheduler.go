// Package scheduler polls processors for content whose scheduled time has passed.
package scheduler

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/platform/log"
	"eduvista/site/internal/platform/metrics"
)

// Processor handles due rows of one content kind.
type Processor interface {
	Name() string
	ProcessScheduled(ctx context.Context, now time.Time) (Report, error)
}

// ItemError records why a single row failed.
type ItemError struct {
	ID    uint   `json:"id"`
	Error string `json:"error"`
}

// Report summarises one processing pass.
type Report struct {
	Kind      string      `json:"kind"`
	Processed int         `json:"processed"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Errors    []ItemError `json:"errors,omitempty"`
}

// Record counts the outcome for row id.
func (r *Report) Record(id uint, err error) {
	r.Processed++
	if err == nil {
		r.Succeeded++
		return
	}
	r.Failed++
	r.Errors = append(r.Errors, ItemError{ID: id, Error: apperr.Message(err)})
}

// Options configures a Runner.
type Options struct {
	Processors []Processor
	Interval   time.Duration
	Reporter   *log.Reporter
	Now        func() time.Time
}

// Runner runs every processor on a fixed interval.
type Runner struct {
	processors []Processor
	interval   time.Duration
	reporter   *log.Reporter
	now        func() time.Time
}

// NewRunner validates options and constructs a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if len(opts.Processors) == 0 {
		return nil, eris.New("at least one processor is required")
	}
	for _, p := range opts.Processors {
		if p == nil {
			return nil, eris.New("processor is nil")
		}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Runner{
		processors: opts.Processors,
		interval:   opts.Interval,
		reporter:   opts.Reporter,
		now:        now,
	}, nil
}

// RunOnce runs every processor once. A processor that fails outright does not
// stop the others; the first such failure is returned alongside all reports.
func (r *Runner) RunOnce(ctx context.Context) ([]Report, error) {
	now := r.now().UTC()
	reports := make([]Report, 0, len(r.processors))

	var firstErr error
	for _, p := range r.processors {
		report, err := r.run(ctx, p, now)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		reports = append(reports, report)
	}
	return reports, firstErr
}

// Process runs the processor registered under name.
func (r *Runner) Process(ctx context.Context, name string) (Report, error) {
	for _, p := range r.processors {
		if p.Name() == name {
			return r.run(ctx, p, r.now().UTC())
		}
	}
	return Report{Kind: name}, apperr.NotFound("processor %s not registered", name)
}

// Run ticks until ctx is cancelled. A zero interval disables the loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.interval <= 0 {
		r.reporter.Info(logrus.Fields{"component": "scheduler"}, "scheduler disabled")
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.reporter.Info(logrus.Fields{"component": "scheduler", "interval": r.interval.String()}, "scheduler started")
	for {
		select {
		case <-ctx.Done():
			r.reporter.Info(logrus.Fields{"component": "scheduler"}, "scheduler stopped")
			return nil
		case <-ticker.C:
			// Errors are logged per processor inside run.
			_, _ = r.RunOnce(ctx)
		}
	}
}

func (r *Runner) run(ctx context.Context, p Processor, now time.Time) (Report, error) {
	fields := logrus.Fields{"component": "scheduler", "kind": p.Name()}

	report, err := p.ProcessScheduled(ctx, now)
	if report.Kind == "" {
		report.Kind = p.Name()
	}
	if err != nil {
		r.reporter.Error(fields, err, "processing scheduled items")
		return report, eris.Wrapf(err, "processing scheduled %s", p.Name())
	}

	metrics.AddScheduledItems(report.Kind, report.Succeeded, report.Failed)
	if report.Processed > 0 {
		fields["processed"] = report.Processed
		fields["succeeded"] = report.Succeeded
		fields["failed"] = report.Failed
		r.reporter.Info(fields, "scheduled items processed")
	}
	return report, nil
}
