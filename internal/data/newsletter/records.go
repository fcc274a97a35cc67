package newsletter

import "time"

// SubscriberRecord is a newsletter subscriber row.
type SubscriberRecord struct {
	ID               uint       `gorm:"primaryKey"`
	Email            string     `gorm:"size:254;uniqueIndex:idx_newsletter_subscribers_email;not null"`
	Name             string     `gorm:"size:120"`
	Status           string     `gorm:"size:16;not null;index"`
	Source           string     `gorm:"size:64"`
	UnsubscribeToken string     `gorm:"size:64;uniqueIndex:idx_newsletter_subscribers_token;not null"`
	SubscribedAt     time.Time  `gorm:"not null"`
	UnsubscribedAt   *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName defines the table name for subscribers.
func (SubscriberRecord) TableName() string {
	return "newsletter_subscribers"
}

// CampaignRecord is a newsletter campaign row.
type CampaignRecord struct {
	ID             uint       `gorm:"primaryKey"`
	Subject        string     `gorm:"size:200;not null"`
	PreviewText    string     `gorm:"size:200"`
	BodyHTML       string     `gorm:"type:text;not null"`
	Status         string     `gorm:"size:16;not null;index:idx_newsletter_campaigns_status_scheduled"`
	ScheduledAt    *time.Time `gorm:"index:idx_newsletter_campaigns_status_scheduled"`
	SentAt         *time.Time
	RecipientCount int `gorm:"not null;default:0"`
	FailureCount   int `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName defines the table name for campaigns.
func (CampaignRecord) TableName() string {
	return "newsletter_campaigns"
}
