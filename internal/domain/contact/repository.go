package contact

import "context"

// Repository persists form submissions. GetSubmission returns nil, nil when
// the row does not exist.
type Repository interface {
	ListSubmissions(ctx context.Context, filter Filter) ([]Submission, int64, error)
	// AllSubmissions returns every submission matching filter, ignoring Limit and Offset.
	AllSubmissions(ctx context.Context, filter Filter) ([]Submission, error)
	GetSubmission(ctx context.Context, id uint) (*Submission, error)
	CreateSubmission(ctx context.Context, submission *Submission) error
	UpdateStatus(ctx context.Context, id uint, status Status) error
	DeleteSubmission(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
