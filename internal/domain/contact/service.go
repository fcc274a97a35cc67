package contact

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/email"
	"eduvista/site/internal/domain/events"
	"eduvista/site/internal/platform/log"
	"eduvista/site/internal/platform/validation"
)

// Options configures the contact service. Sender and NotifyEmail are optional;
// without both no notification is sent.
type Options struct {
	Repository  Repository
	Sender      email.Sender
	NotifyEmail string
	Events      events.Dispatcher
	Reporter    *log.Reporter
	Now         func() time.Time
}

// Service stores and triages contact and quote requests.
type Service struct {
	repo        Repository
	sender      email.Sender
	notifyEmail string
	events      events.Dispatcher
	reporter    *log.Reporter
	now         func() time.Time
}

// NewService validates dependencies and constructs a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Repository == nil {
		return nil, eris.New("contact repository is required")
	}

	dispatcher := opts.Events
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:        opts.Repository,
		sender:      opts.Sender,
		notifyEmail: strings.TrimSpace(opts.NotifyEmail),
		events:      dispatcher,
		reporter:    opts.Reporter,
		now:         now,
	}, nil
}

// Submit validates and stores a form submission. Submissions that fill the
// honeypot are stored as spam and trigger nothing.
func (s *Service) Submit(ctx context.Context, kind Kind, input SubmitInput) (*Submission, error) {
	if !kind.Valid() {
		return nil, apperr.Invalid("kind %q is invalid", kind)
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Company = strings.TrimSpace(input.Company)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)
	input.Budget = strings.TrimSpace(input.Budget)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if kind == KindQuote && input.Company == "" {
		return nil, apperr.Invalid("company is required for quote requests")
	}

	submission := &Submission{
		Kind:      kind,
		Name:      input.Name,
		Email:     input.Email,
		Company:   input.Company,
		Phone:     input.Phone,
		Subject:   input.Subject,
		Message:   input.Message,
		Budget:    input.Budget,
		Seats:     input.Seats,
		Status:    StatusNew,
		IP:        input.IP,
		UserAgent: input.UserAgent,
	}
	spam := strings.TrimSpace(input.Website) != ""
	if spam {
		submission.Status = StatusSpam
	}

	if err := s.repo.CreateSubmission(ctx, submission); err != nil {
		s.reporter.Error(logrus.Fields{"kind": kind}, err, "storing contact submission")
		return nil, err
	}
	if spam {
		s.reporter.Info(logrus.Fields{"contact_id": submission.ID, "ip": input.IP}, "honeypot submission stored as spam")
		return submission, nil
	}

	s.notify(ctx, submission)
	s.events.Dispatch(ctx, events.Event{
		Trigger: events.ContactSubmitted,
		Title:   submissionTitle(submission),
		Email:   submission.Email,
		Name:    submission.Name,
		Data: map[string]string{
			"kind":    string(submission.Kind),
			"company": submission.Company,
			"message": submission.Message,
		},
		OccurredAt: s.now().UTC(),
	})
	return submission, nil
}

// notify emails the sales inbox. Delivery failures are logged and do not
// fail the submission.
func (s *Service) notify(ctx context.Context, submission *Submission) {
	if s.sender == nil || s.notifyEmail == "" {
		return
	}

	msg := email.Message{
		To:      s.notifyEmail,
		Subject: "New " + submissionTitle(submission),
		HTML:    notificationHTML(submission),
		Text:    notificationText(submission),
		ReplyTo: submission.Email,
		Tags:    []string{"contact", string(submission.Kind)},
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.reporter.Error(logrus.Fields{"contact_id": submission.ID}, err, "sending contact notification")
	}
}

// List returns one page of submissions.
func (s *Service) List(ctx context.Context, filter Filter) ([]Submission, int64, error) {
	if err := checkFilter(filter); err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.ListSubmissions(ctx, filter)
	if err != nil {
		s.reporter.Error(nil, err, "listing contact submissions")
		return nil, 0, eris.Wrap(err, "listing contact submissions")
	}
	return items, total, nil
}

// Get returns the submission with id.
func (s *Service) Get(ctx context.Context, id uint) (*Submission, error) {
	submission, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"contact_id": id}, err, "fetching contact submission")
		return nil, eris.Wrapf(err, "fetching contact submission %d", id)
	}
	if submission == nil {
		return nil, apperr.NotFound("contact submission %d not found", id)
	}
	return submission, nil
}

// UpdateStatus moves a submission through triage.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status Status) (*Submission, error) {
	if !status.Valid() {
		return nil, apperr.Invalid("status %q is invalid", status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a submission.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.DeleteSubmission(ctx, id)
}

// Export returns every submission matching filter for CSV export.
func (s *Service) Export(ctx context.Context, filter Filter) ([]Submission, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	items, err := s.repo.AllSubmissions(ctx, filter)
	if err != nil {
		s.reporter.Error(nil, err, "exporting contact submissions")
		return nil, eris.Wrap(err, "exporting contact submissions")
	}
	return items, nil
}

// CountByStatus returns submission counts per status.
func (s *Service) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.reporter.Error(nil, err, "counting contact submissions")
		return nil, eris.Wrap(err, "counting contact submissions")
	}
	return counts, nil
}

func checkFilter(filter Filter) error {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return apperr.Invalid("kind %q is invalid", filter.Kind)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return apperr.Invalid("status %q is invalid", filter.Status)
	}
	return nil
}

func submissionTitle(submission *Submission) string {
	label := "contact request"
	if submission.Kind == KindQuote {
		label = "quote request"
	}
	if submission.Company != "" {
		return fmt.Sprintf("%s from %s (%s)", label, submission.Name, submission.Company)
	}
	return fmt.Sprintf("%s from %s", label, submission.Name)
}

func notificationFields(submission *Submission) [][2]string {
	fields := [][2]string{
		{"Name", submission.Name},
		{"Email", submission.Email},
		{"Company", submission.Company},
		{"Phone", submission.Phone},
		{"Subject", submission.Subject},
		{"Budget", submission.Budget},
	}
	if submission.Seats > 0 {
		fields = append(fields, [2]string{"Seats", fmt.Sprint(submission.Seats)})
	}
	return fields
}

func notificationText(submission *Submission) string {
	var b strings.Builder
	for _, field := range notificationFields(submission) {
		if field[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", field[0], field[1])
	}
	b.WriteString("\n")
	b.WriteString(submission.Message)
	return b.String()
}

func notificationHTML(submission *Submission) string {
	var b strings.Builder
	b.WriteString("<table>")
	for _, field := range notificationFields(submission) {
		if field[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "<tr><th>%s</th><td>%s</td></tr>", field[0], html.EscapeString(field[1]))
	}
	b.WriteString("</table><p>")
	b.WriteString(strings.ReplaceAll(html.EscapeString(submission.Message), "\n", "<br>"))
	b.WriteString("</p>")
	return b.String()
}
