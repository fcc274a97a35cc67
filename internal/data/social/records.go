package social

import "time"

// PostRecord is a social post row.
type PostRecord struct {
	ID               uint       `gorm:"primaryKey"`
	Content          string     `gorm:"type:text;not null"`
	Platforms        []string   `gorm:"serializer:json;type:text"`
	MediaURLs        []string   `gorm:"serializer:json;type:text"`
	Status           string     `gorm:"size:16;not null;index:idx_social_posts_status_scheduled"`
	ScheduledAt      *time.Time `gorm:"index:idx_social_posts_status_scheduled"`
	PublishedAt      *time.Time `gorm:"index"`
	ExternalID       string     `gorm:"size:512"`
	ErrorMessage     string     `gorm:"type:text"`
	Likes            int        `gorm:"not null;default:0"`
	Comments         int        `gorm:"not null;default:0"`
	Shares           int        `gorm:"not null;default:0"`
	Impressions      int        `gorm:"not null;default:0"`
	Clicks           int        `gorm:"not null;default:0"`
	MetricsUpdatedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName defines the table name for social posts.
func (PostRecord) TableName() string {
	return "social_posts"
}
