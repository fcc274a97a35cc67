package contact

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eduvista/site/internal/data/crud"
	"eduvista/site/internal/domain/apperr"
	domain "eduvista/site/internal/domain/contact"
)

// Repository persists form submissions using Gorm.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed contact repository.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &Repository{db: db, logger: logger}, nil
}

var _ domain.Repository = (*Repository)(nil)

func filterScope(filter domain.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Kind != "" {
			db = db.Where("kind = ?", string(filter.Kind))
		}
		if filter.Status != "" {
			db = db.Where("status = ?", string(filter.Status))
		}
		return db
	}
}

// ListSubmissions returns a page of submissions, newest first.
func (r *Repository) ListSubmissions(ctx context.Context, filter domain.Filter) ([]domain.Submission, int64, error) {
	scope := filterScope(filter)

	var total int64
	if err := r.db.WithContext(ctx).Model(&SubmissionRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		r.logError(nil, err, "counting contact submissions")
		return nil, 0, eris.Wrap(err, "counting contact submissions")
	}

	var records []SubmissionRecord
	err := crud.Paginate(r.db.WithContext(ctx).Scopes(scope), filter.Limit, filter.Offset).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		r.logError(nil, err, "listing contact submissions")
		return nil, 0, eris.Wrap(err, "listing contact submissions")
	}
	return toDomainSubmissions(records), total, nil
}

// AllSubmissions returns every matching submission ordered by id.
func (r *Repository) AllSubmissions(ctx context.Context, filter domain.Filter) ([]domain.Submission, error) {
	var records []SubmissionRecord
	if err := r.db.WithContext(ctx).Scopes(filterScope(filter)).Order("id ASC").Find(&records).Error; err != nil {
		r.logError(nil, err, "loading contact submissions")
		return nil, eris.Wrap(err, "loading contact submissions")
	}
	return toDomainSubmissions(records), nil
}

// GetSubmission returns the submission with id or nil.
func (r *Repository) GetSubmission(ctx context.Context, id uint) (*domain.Submission, error) {
	record, err := crud.Find[SubmissionRecord](ctx, r.db, id)
	if err != nil {
		r.logError(logrus.Fields{"contact_id": id}, err, "fetching contact submission")
		return nil, eris.Wrapf(err, "fetching contact submission %d", id)
	}
	if record == nil {
		return nil, nil
	}
	submission := toDomainSubmission(record)
	return &submission, nil
}

// CreateSubmission stores a new submission.
func (r *Repository) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	record := fromDomainSubmission(submission)
	if err := crud.Insert(ctx, r.db, record, "contact submission"); err != nil {
		r.logError(nil, err, "creating contact submission")
		return err
	}
	*submission = toDomainSubmission(record)
	return nil
}

// UpdateStatus sets the status column of a submission.
func (r *Repository) UpdateStatus(ctx context.Context, id uint, status domain.Status) error {
	result := r.db.WithContext(ctx).Model(&SubmissionRecord{}).Where("id = ?", id).Update("status", string(status))
	if result.Error != nil {
		r.logError(logrus.Fields{"contact_id": id}, result.Error, "updating contact status")
		return eris.Wrapf(result.Error, "updating contact submission %d", id)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("contact submission %d not found", id)
	}
	return nil
}

// DeleteSubmission removes a submission.
func (r *Repository) DeleteSubmission(ctx context.Context, id uint) error {
	return crud.Remove[SubmissionRecord](ctx, r.db, id, "contact submission")
}

// CountByStatus groups submission counts by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&SubmissionRecord{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error
	if err != nil {
		r.logError(nil, err, "counting contact submissions by status")
		return nil, eris.Wrap(err, "counting contact submissions by status")
	}

	counts := map[domain.Status]int64{
		domain.StatusNew:        0,
		domain.StatusInProgress: 0,
		domain.StatusResolved:   0,
		domain.StatusSpam:       0,
	}
	for _, row := range rows {
		counts[domain.Status(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *Repository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func toDomainSubmissions(records []SubmissionRecord) []domain.Submission {
	submissions := make([]domain.Submission, 0, len(records))
	for i := range records {
		submissions = append(submissions, toDomainSubmission(&records[i]))
	}
	return submissions
}

func toDomainSubmission(record *SubmissionRecord) domain.Submission {
	return domain.Submission{
		ID:        record.ID,
		Kind:      domain.Kind(record.Kind),
		Name:      record.Name,
		Email:     record.Email,
		Company:   record.Company,
		Phone:     record.Phone,
		Subject:   record.Subject,
		Message:   record.Message,
		Budget:    record.Budget,
		Seats:     record.Seats,
		Status:    domain.Status(record.Status),
		IP:        record.IP,
		UserAgent: record.UserAgent,
		CreatedAt: record.CreatedAt.UTC(),
		UpdatedAt: record.UpdatedAt.UTC(),
	}
}

func fromDomainSubmission(submission *domain.Submission) *SubmissionRecord {
	return &SubmissionRecord{
		ID:        submission.ID,
		Kind:      string(submission.Kind),
		Name:      submission.Name,
		Email:     submission.Email,
		Company:   submission.Company,
		Phone:     submission.Phone,
		Subject:   submission.Subject,
		Message:   submission.Message,
		Budget:    submission.Budget,
		Seats:     submission.Seats,
		Status:    string(submission.Status),
		IP:        submission.IP,
		UserAgent: submission.UserAgent,
		CreatedAt: submission.CreatedAt,
		UpdatedAt: submission.UpdatedAt,
	}
}
