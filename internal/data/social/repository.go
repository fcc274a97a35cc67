package social

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eduvista/site/internal/data/crud"
	domain "eduvista/site/internal/domain/social"
)

// Repository persists social posts using Gorm.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed social repository.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &Repository{db: db, logger: logger}, nil
}

var _ domain.Repository = (*Repository)(nil)

// ListPosts returns a page of posts, newest first.
func (r *Repository) ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", string(filter.Status))
		}
		if filter.Platform != "" {
			db = db.Where("platforms LIKE ?", `%"`+string(filter.Platform)+`"%`)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&PostRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		r.logError(nil, err, "counting social posts")
		return nil, 0, eris.Wrap(err, "counting social posts")
	}

	var records []PostRecord
	err := crud.Paginate(r.db.WithContext(ctx).Scopes(scope), filter.Limit, filter.Offset).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		r.logError(nil, err, "listing social posts")
		return nil, 0, eris.Wrap(err, "listing social posts")
	}
	return toDomainPosts(records), total, nil
}

// GetPost returns the post with id or nil.
func (r *Repository) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	record, err := crud.Find[PostRecord](ctx, r.db, id)
	if err != nil {
		r.logError(logrus.Fields{"social_post_id": id}, err, "fetching social post")
		return nil, eris.Wrapf(err, "fetching social post %d", id)
	}
	if record == nil {
		return nil, nil
	}
	post := toDomainPost(record)
	return &post, nil
}

// CreatePost stores a new post.
func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) error {
	record := fromDomainPost(post)
	if err := crud.Insert(ctx, r.db, record, "social post"); err != nil {
		r.logError(nil, err, "creating social post")
		return err
	}
	*post = toDomainPost(record)
	return nil
}

// UpdatePost persists every column of post.
func (r *Repository) UpdatePost(ctx context.Context, post *domain.Post) error {
	record := fromDomainPost(post)
	if err := crud.Save(ctx, r.db, record, "social post"); err != nil {
		r.logError(logrus.Fields{"social_post_id": record.ID}, err, "updating social post")
		return err
	}
	post.UpdatedAt = record.UpdatedAt
	return nil
}

// DeletePost removes a post.
func (r *Repository) DeletePost(ctx context.Context, id uint) error {
	return crud.Remove[PostRecord](ctx, r.db, id, "social post")
}

// DuePosts returns scheduled posts whose scheduled_at has passed.
func (r *Repository) DuePosts(ctx context.Context, now time.Time) ([]domain.Post, error) {
	var records []PostRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", string(domain.StatusScheduled), now.UTC()).
		Order("scheduled_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		r.logError(nil, err, "selecting due social posts")
		return nil, eris.Wrap(err, "selecting due social posts")
	}
	return toDomainPosts(records), nil
}

// PublishedPosts returns published posts, optionally only those targeting platform.
func (r *Repository) PublishedPosts(ctx context.Context, platform domain.Platform) ([]domain.Post, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND published_at IS NOT NULL", string(domain.StatusPublished)).
		Order("published_at ASC")
	if platform != "" {
		query = query.Where("platforms LIKE ?", `%"`+string(platform)+`"%`)
	}

	var records []PostRecord
	if err := query.Find(&records).Error; err != nil {
		r.logError(logrus.Fields{"platform": platform}, err, "loading published social posts")
		return nil, eris.Wrap(err, "loading published social posts")
	}
	return toDomainPosts(records), nil
}

// CountPostsByStatus groups post counts by status.
func (r *Repository) CountPostsByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&PostRecord{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error
	if err != nil {
		r.logError(nil, err, "counting social posts by status")
		return nil, eris.Wrap(err, "counting social posts by status")
	}

	counts := map[domain.Status]int64{
		domain.StatusDraft:     0,
		domain.StatusScheduled: 0,
		domain.StatusPublished: 0,
		domain.StatusFailed:    0,
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

func toDomainPosts(records []PostRecord) []domain.Post {
	posts := make([]domain.Post, 0, len(records))
	for i := range records {
		posts = append(posts, toDomainPost(&records[i]))
	}
	return posts
}

func toDomainPost(record *PostRecord) domain.Post {
	platforms := make([]domain.Platform, 0, len(record.Platforms))
	for _, platform := range record.Platforms {
		platforms = append(platforms, domain.Platform(platform))
	}
	media := record.MediaURLs
	if media == nil {
		media = []string{}
	}

	return domain.Post{
		ID:               record.ID,
		Content:          record.Content,
		Platforms:        platforms,
		MediaURLs:        media,
		Status:           domain.Status(record.Status),
		ScheduledAt:      utc(record.ScheduledAt),
		PublishedAt:      utc(record.PublishedAt),
		ExternalID:       record.ExternalID,
		ErrorMessage:     record.ErrorMessage,
		Likes:            record.Likes,
		Comments:         record.Comments,
		Shares:           record.Shares,
		Impressions:      record.Impressions,
		Clicks:           record.Clicks,
		MetricsUpdatedAt: utc(record.MetricsUpdatedAt),
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

func fromDomainPost(post *domain.Post) *PostRecord {
	platforms := make([]string, 0, len(post.Platforms))
	for _, platform := range post.Platforms {
		platforms = append(platforms, string(platform))
	}

	return &PostRecord{
		ID:               post.ID,
		Content:          post.Content,
		Platforms:        platforms,
		MediaURLs:        post.MediaURLs,
		Status:           string(post.Status),
		ScheduledAt:      utc(post.ScheduledAt),
		PublishedAt:      utc(post.PublishedAt),
		ExternalID:       post.ExternalID,
		ErrorMessage:     post.ErrorMessage,
		Likes:            post.Likes,
		Comments:         post.Comments,
		Shares:           post.Shares,
		Impressions:      post.Impressions,
		Clicks:           post.Clicks,
		MetricsUpdatedAt: utc(post.MetricsUpdatedAt),
		CreatedAt:        post.CreatedAt,
		UpdatedAt:        post.UpdatedAt,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	value := t.UTC()
	return &value
}
