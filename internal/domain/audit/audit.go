// Package audit records who changed what through the admin API.
package audit

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/platform/log"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Entry is one audited request. Entries are never updated or deleted.
type Entry struct {
	ID         uint      `json:"id"`
	ActorID    uint      `json:"actor_id"`
	ActorEmail string    `json:"actor_email"`
	Action     string    `json:"action"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	IP         string    `json:"ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Filter narrows the audit listing.
type Filter struct {
	ActorEmail string
	PathPrefix string
	Limit      int
}

// Repository appends and reads audit entries.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	// List returns the newest entries first.
	List(ctx context.Context, filter Filter) ([]Entry, error)
}

// Service writes and reads the audit trail.
type Service struct {
	repo     Repository
	reporter *log.Reporter
	now      func() time.Time
}

// NewService constructs a Service. now may be nil.
func NewService(repo Repository, reporter *log.Reporter, now func() time.Time) (*Service, error) {
	if repo == nil {
		return nil, eris.New("audit repository is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, reporter: reporter, now: now}, nil
}

// Record appends entry, stamping CreatedAt. Failures are logged only so an
// audit outage never fails the audited request.
func (s *Service) Record(ctx context.Context, entry Entry) {
	entry.ID = 0
	entry.Action = strings.ToUpper(entry.Action)
	entry.CreatedAt = s.now().UTC()

	if err := s.repo.Append(ctx, &entry); err != nil {
		s.reporter.Error(logrus.Fields{
			"actor_email": entry.ActorEmail,
			"action":      entry.Action,
			"path":        entry.Path,
		}, err, "writing audit entry")
	}
}

// List returns audit entries, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	filter.ActorEmail = strings.ToLower(strings.TrimSpace(filter.ActorEmail))
	filter.PathPrefix = strings.TrimSpace(filter.PathPrefix)
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		s.reporter.Error(nil, err, "listing audit entries")
		return nil, eris.Wrap(err, "listing audit entries")
	}
	return entries, nil
}
