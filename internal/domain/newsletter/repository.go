package newsletter

import (
	"context"
	"time"
)

// Repository defines persistence for subscribers and campaigns.
// Getters return nil, nil when the record does not exist.
type Repository interface {
	ListSubscribers(ctx context.Context, filter SubscriberFilter) ([]Subscriber, int64, error)
	// AllSubscribers returns every subscriber with status, or every subscriber when status is empty.
	AllSubscribers(ctx context.Context, status SubscriberStatus) ([]Subscriber, error)
	GetSubscriber(ctx context.Context, id uint) (*Subscriber, error)
	GetSubscriberByEmail(ctx context.Context, email string) (*Subscriber, error)
	GetSubscriberByToken(ctx context.Context, token string) (*Subscriber, error)
	CreateSubscriber(ctx context.Context, subscriber *Subscriber) error
	UpdateSubscriber(ctx context.Context, subscriber *Subscriber) error
	DeleteSubscriber(ctx context.Context, id uint) error
	CountSubscribersByStatus(ctx context.Context) (map[SubscriberStatus]int64, error)

	ListCampaigns(ctx context.Context, status CampaignStatus) ([]Campaign, error)
	GetCampaign(ctx context.Context, id uint) (*Campaign, error)
	CreateCampaign(ctx context.Context, campaign *Campaign) error
	UpdateCampaign(ctx context.Context, campaign *Campaign) error
	DeleteCampaign(ctx context.Context, id uint) error
	// DueCampaigns returns scheduled campaigns with scheduled_at <= now, oldest first.
	DueCampaigns(ctx context.Context, now time.Time) ([]Campaign, error)
	// ClaimCampaign moves the campaign to sending when its status is one of from.
	// It reports false when another caller changed the status first.
	ClaimCampaign(ctx context.Context, id uint, from ...CampaignStatus) (bool, error)
}
