package newsletter

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eduvista/site/internal/data/crud"
	domain "eduvista/site/internal/domain/newsletter"
)

// Repository persists subscribers and campaigns using Gorm.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed newsletter repository.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &Repository{db: db, logger: logger}, nil
}

var _ domain.Repository = (*Repository)(nil)

// ListSubscribers returns a page of subscribers, newest first.
func (r *Repository) ListSubscribers(ctx context.Context, filter domain.SubscriberFilter) ([]domain.Subscriber, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", string(filter.Status))
		}
		if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
			like := "%" + search + "%"
			db = db.Where("(email LIKE ? OR LOWER(name) LIKE ?)", like, like)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&SubscriberRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		r.logError(nil, err, "counting subscribers")
		return nil, 0, eris.Wrap(err, "counting subscribers")
	}

	var records []SubscriberRecord
	err := crud.Paginate(r.db.WithContext(ctx).Scopes(scope), filter.Limit, filter.Offset).
		Order("subscribed_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		r.logError(nil, err, "listing subscribers")
		return nil, 0, eris.Wrap(err, "listing subscribers")
	}
	return toDomainSubscribers(records), total, nil
}

// AllSubscribers returns every subscriber with status ordered by id.
func (r *Repository) AllSubscribers(ctx context.Context, status domain.SubscriberStatus) ([]domain.Subscriber, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var records []SubscriberRecord
	if err := query.Find(&records).Error; err != nil {
		r.logError(logrus.Fields{"status": status}, err, "loading subscribers")
		return nil, eris.Wrap(err, "loading subscribers")
	}
	return toDomainSubscribers(records), nil
}

// GetSubscriber returns the subscriber with id or nil.
func (r *Repository) GetSubscriber(ctx context.Context, id uint) (*domain.Subscriber, error) {
	return r.findSubscriber(ctx, "id = ?", id)
}

// GetSubscriberByEmail returns the subscriber with email or nil.
func (r *Repository) GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	return r.findSubscriber(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// GetSubscriberByToken returns the subscriber owning token or nil.
func (r *Repository) GetSubscriberByToken(ctx context.Context, token string) (*domain.Subscriber, error) {
	return r.findSubscriber(ctx, "unsubscribe_token = ?", token)
}

func (r *Repository) findSubscriber(ctx context.Context, query string, arg any) (*domain.Subscriber, error) {
	record, err := crud.Find[SubscriberRecord](ctx, r.db, query, arg)
	if err != nil {
		r.logError(nil, err, "fetching subscriber")
		return nil, eris.Wrap(err, "fetching subscriber")
	}
	if record == nil {
		return nil, nil
	}
	subscriber := toDomainSubscriber(record)
	return &subscriber, nil
}

// CreateSubscriber stores a new subscriber.
func (r *Repository) CreateSubscriber(ctx context.Context, subscriber *domain.Subscriber) error {
	record := fromDomainSubscriber(subscriber)
	if err := crud.Insert(ctx, r.db, record, "subscriber "+record.Email); err != nil {
		r.logError(logrus.Fields{"email": record.Email}, err, "creating subscriber")
		return err
	}
	*subscriber = toDomainSubscriber(record)
	return nil
}

// UpdateSubscriber persists every column of subscriber.
func (r *Repository) UpdateSubscriber(ctx context.Context, subscriber *domain.Subscriber) error {
	record := fromDomainSubscriber(subscriber)
	if err := crud.Save(ctx, r.db, record, "subscriber "+record.Email); err != nil {
		r.logError(logrus.Fields{"subscriber_id": record.ID}, err, "updating subscriber")
		return err
	}
	subscriber.UpdatedAt = record.UpdatedAt
	return nil
}

// DeleteSubscriber removes a subscriber.
func (r *Repository) DeleteSubscriber(ctx context.Context, id uint) error {
	return crud.Remove[SubscriberRecord](ctx, r.db, id, "subscriber")
}

// CountSubscribersByStatus groups subscriber counts by status.
func (r *Repository) CountSubscribersByStatus(ctx context.Context) (map[domain.SubscriberStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&SubscriberRecord{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error
	if err != nil {
		r.logError(nil, err, "counting subscribers by status")
		return nil, eris.Wrap(err, "counting subscribers by status")
	}

	counts := map[domain.SubscriberStatus]int64{domain.Subscribed: 0, domain.Unsubscribed: 0}
	for _, row := range rows {
		counts[domain.SubscriberStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// ListCampaigns returns campaigns newest first.
func (r *Repository) ListCampaigns(ctx context.Context, status domain.CampaignStatus) ([]domain.Campaign, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var records []CampaignRecord
	if err := query.Find(&records).Error; err != nil {
		r.logError(nil, err, "listing campaigns")
		return nil, eris.Wrap(err, "listing campaigns")
	}
	return toDomainCampaigns(records), nil
}

// GetCampaign returns the campaign with id or nil.
func (r *Repository) GetCampaign(ctx context.Context, id uint) (*domain.Campaign, error) {
	record, err := crud.Find[CampaignRecord](ctx, r.db, id)
	if err != nil {
		r.logError(logrus.Fields{"campaign_id": id}, err, "fetching campaign")
		return nil, eris.Wrapf(err, "fetching campaign %d", id)
	}
	if record == nil {
		return nil, nil
	}
	campaign := toDomainCampaign(record)
	return &campaign, nil
}

// CreateCampaign stores a new campaign.
func (r *Repository) CreateCampaign(ctx context.Context, campaign *domain.Campaign) error {
	record := fromDomainCampaign(campaign)
	if err := crud.Insert(ctx, r.db, record, "campaign"); err != nil {
		r.logError(nil, err, "creating campaign")
		return err
	}
	*campaign = toDomainCampaign(record)
	return nil
}

// UpdateCampaign persists every column of campaign.
func (r *Repository) UpdateCampaign(ctx context.Context, campaign *domain.Campaign) error {
	record := fromDomainCampaign(campaign)
	if err := crud.Save(ctx, r.db, record, "campaign"); err != nil {
		r.logError(logrus.Fields{"campaign_id": record.ID}, err, "updating campaign")
		return err
	}
	campaign.UpdatedAt = record.UpdatedAt
	return nil
}

// DeleteCampaign removes a campaign.
func (r *Repository) DeleteCampaign(ctx context.Context, id uint) error {
	return crud.Remove[CampaignRecord](ctx, r.db, id, "campaign")
}

// DueCampaigns returns scheduled campaigns whose scheduled_at has passed.
func (r *Repository) DueCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	var records []CampaignRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", string(domain.CampaignScheduled), now.UTC()).
		Order("scheduled_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		r.logError(nil, err, "selecting due campaigns")
		return nil, eris.Wrap(err, "selecting due campaigns")
	}
	return toDomainCampaigns(records), nil
}

// ClaimCampaign atomically moves a campaign into the sending state.
func (r *Repository) ClaimCampaign(ctx context.Context, id uint, from ...domain.CampaignStatus) (bool, error) {
	statuses := make([]string, 0, len(from))
	for _, status := range from {
		statuses = append(statuses, string(status))
	}

	result := r.db.WithContext(ctx).Model(&CampaignRecord{}).
		Where("id = ? AND status IN ?", id, statuses).
		Update("status", string(domain.CampaignSending))
	if result.Error != nil {
		r.logError(logrus.Fields{"campaign_id": id}, result.Error, "claiming campaign")
		return false, eris.Wrapf(result.Error, "claiming campaign %d", id)
	}
	return result.RowsAffected == 1, nil
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

func toDomainSubscribers(records []SubscriberRecord) []domain.Subscriber {
	items := make([]domain.Subscriber, 0, len(records))
	for i := range records {
		items = append(items, toDomainSubscriber(&records[i]))
	}
	return items
}

func toDomainSubscriber(record *SubscriberRecord) domain.Subscriber {
	return domain.Subscriber{
		ID:               record.ID,
		Email:            record.Email,
		Name:             record.Name,
		Status:           domain.SubscriberStatus(record.Status),
		Source:           record.Source,
		UnsubscribeToken: record.UnsubscribeToken,
		SubscribedAt:     record.SubscribedAt.UTC(),
		UnsubscribedAt:   utc(record.UnsubscribedAt),
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

func fromDomainSubscriber(subscriber *domain.Subscriber) *SubscriberRecord {
	return &SubscriberRecord{
		ID:               subscriber.ID,
		Email:            subscriber.Email,
		Name:             subscriber.Name,
		Status:           string(subscriber.Status),
		Source:           subscriber.Source,
		UnsubscribeToken: subscriber.UnsubscribeToken,
		SubscribedAt:     subscriber.SubscribedAt.UTC(),
		UnsubscribedAt:   utc(subscriber.UnsubscribedAt),
		CreatedAt:        subscriber.CreatedAt,
		UpdatedAt:        subscriber.UpdatedAt,
	}
}

func toDomainCampaigns(records []CampaignRecord) []domain.Campaign {
	items := make([]domain.Campaign, 0, len(records))
	for i := range records {
		items = append(items, toDomainCampaign(&records[i]))
	}
	return items
}

func toDomainCampaign(record *CampaignRecord) domain.Campaign {
	return domain.Campaign{
		ID:             record.ID,
		Subject:        record.Subject,
		PreviewText:    record.PreviewText,
		BodyHTML:       record.BodyHTML,
		Status:         domain.CampaignStatus(record.Status),
		ScheduledAt:    utc(record.ScheduledAt),
		SentAt:         utc(record.SentAt),
		RecipientCount: record.RecipientCount,
		FailureCount:   record.FailureCount,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func fromDomainCampaign(campaign *domain.Campaign) *CampaignRecord {
	return &CampaignRecord{
		ID:             campaign.ID,
		Subject:        campaign.Subject,
		PreviewText:    campaign.PreviewText,
		BodyHTML:       campaign.BodyHTML,
		Status:         string(campaign.Status),
		ScheduledAt:    utc(campaign.ScheduledAt),
		SentAt:         utc(campaign.SentAt),
		RecipientCount: campaign.RecipientCount,
		FailureCount:   campaign.FailureCount,
		CreatedAt:      campaign.CreatedAt,
		UpdatedAt:      campaign.UpdatedAt,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	value := t.UTC()
	return &value
}
