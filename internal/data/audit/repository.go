package audit

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	domain "eduvista/site/internal/domain/audit"
)

// Repository appends audit entries using Gorm.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed audit repository.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &Repository{db: db, logger: logger}, nil
}

var _ domain.Repository = (*Repository)(nil)

// Append inserts entry.
func (r *Repository) Append(ctx context.Context, entry *domain.Entry) error {
	record := &EntryRecord{
		ActorID:    entry.ActorID,
		ActorEmail: entry.ActorEmail,
		Action:     entry.Action,
		Path:       entry.Path,
		Status:     entry.Status,
		IP:         entry.IP,
		UserAgent:  entry.UserAgent,
		CreatedAt:  entry.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		r.logError(err, "appending audit entry")
		return eris.Wrap(err, "appending audit entry")
	}
	entry.ID = record.ID
	return nil
}

// List returns entries newest first.
func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]domain.Entry, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(filter.Limit)
	if filter.ActorEmail != "" {
		query = query.Where("actor_email = ?", filter.ActorEmail)
	}
	if filter.PathPrefix != "" {
		query = query.Where(`path LIKE ? ESCAPE '\'`, escapeLike(filter.PathPrefix)+"%")
	}

	var records []EntryRecord
	if err := query.Find(&records).Error; err != nil {
		r.logError(err, "listing audit entries")
		return nil, eris.Wrap(err, "listing audit entries")
	}

	entries := make([]domain.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, domain.Entry{
			ID:         record.ID,
			ActorID:    record.ActorID,
			ActorEmail: record.ActorEmail,
			Action:     record.Action,
			Path:       record.Path,
			Status:     record.Status,
			IP:         record.IP,
			UserAgent:  record.UserAgent,
			CreatedAt:  record.CreatedAt.UTC(),
		})
	}
	return entries, nil
}

func (r *Repository) logError(err error, message string) {
	if r.logger == nil || err == nil {
		return
	}
	r.logger.WithField("error", err.Error()).Error(message)
}

// escapeLike escapes LIKE wildcards so a prefix filter matches literally.
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(value)
}
