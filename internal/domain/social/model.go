package social

import "time"

// Platform is a social network.
type Platform string

const (
	LinkedIn  Platform = "linkedin"
	Twitter   Platform = "twitter"
	Facebook  Platform = "facebook"
	Instagram Platform = "instagram"
)

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	switch p {
	case LinkedIn, Twitter, Facebook, Instagram:
		return true
	}
	return false
}

// CharacterLimit returns the maximum post length on p, or 0 when unbounded.
func (p Platform) CharacterLimit() int {
	switch p {
	case Twitter:
		return 280
	case LinkedIn:
		return 3000
	case Instagram:
		return 2200
	}
	return 0
}

// Status is the lifecycle state of a social post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusFailed:
		return true
	}
	return false
}

// Post is a message published to one or more platforms.
type Post struct {
	ID               uint       `json:"id"`
	Content          string     `json:"content"`
	Platforms        []Platform `json:"platforms"`
	MediaURLs        []string   `json:"media_urls"`
	Status           Status     `json:"status"`
	ScheduledAt      *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	ExternalID       string     `json:"external_id,omitempty"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	Likes            int        `json:"likes"`
	Comments         int        `json:"comments"`
	Shares           int        `json:"shares"`
	Impressions      int        `json:"impressions"`
	Clicks           int        `json:"clicks"`
	MetricsUpdatedAt *time.Time `json:"metrics_updated_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Engagement is the sum of every interaction counter.
func (p Post) Engagement() int {
	return p.Likes + p.Comments + p.Shares + p.Clicks
}

// PostFilter narrows the admin listing.
type PostFilter struct {
	Status   Status
	Platform Platform
	Limit    int
	Offset   int
}

// PostInput creates a post. A non-nil ScheduledAt schedules it immediately.
type PostInput struct {
	Content     string     `json:"content" validate:"required"`
	Platforms   []Platform `json:"platforms" validate:"required,min=1"`
	MediaURLs   []string   `json:"media_urls,omitempty" validate:"omitempty,dive,url"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// PostPatch partially updates an unpublished post.
type PostPatch struct {
	Content   *string     `json:"content,omitempty"`
	Platforms *[]Platform `json:"platforms,omitempty"`
	MediaURLs *[]string   `json:"media_urls,omitempty"`
}

// PublishRequest is what a publisher sends to the platforms.
type PublishRequest struct {
	Content   string
	Platforms []Platform
	MediaURLs []string
}

// PublishResult identifies the created platform posts.
type PublishResult struct {
	// ExternalID joins the per-provider IDs, e.g. "linkedin:urn:li:share:1,ayrshare:abc".
	ExternalID string
}

// Metrics are analytics counters for a published post.
type Metrics struct {
	Likes       int
	Comments    int
	Shares      int
	Impressions int
	Clicks      int
}

// Bucket is the average engagement score of posts published in one time slot.
type Bucket struct {
	Label        string  `json:"label"`
	Posts        int     `json:"posts"`
	AverageScore float64 `json:"average_score"`
}

// TimingReport is the outcome of the optimal timing analysis.
type TimingReport struct {
	Platform    Platform `json:"platform,omitempty"`
	BestHour    int      `json:"best_hour_utc"`
	BestWeekday string   `json:"best_weekday"`
	SampleSize  int      `json:"sample_size"`
	Default     bool     `json:"default"`
	Hours       []Bucket `json:"hours,omitempty"`
	Weekdays    []Bucket `json:"weekdays,omitempty"`
}
