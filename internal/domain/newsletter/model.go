package newsletter

import "time"

// SubscriberStatus is the state of a newsletter subscription.
type SubscriberStatus string

const (
	Subscribed   SubscriberStatus = "subscribed"
	Unsubscribed SubscriberStatus = "unsubscribed"
)

// Valid reports whether s is a known status.
func (s SubscriberStatus) Valid() bool {
	return s == Subscribed || s == Unsubscribed
}

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSending   CampaignStatus = "sending"
	CampaignSent      CampaignStatus = "sent"
	CampaignFailed    CampaignStatus = "failed"
)

// Valid reports whether s is a known status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignSending, CampaignSent, CampaignFailed:
		return true
	}
	return false
}

// Subscriber is a newsletter recipient.
type Subscriber struct {
	ID               uint             `json:"id"`
	Email            string           `json:"email"`
	Name             string           `json:"name,omitempty"`
	Status           SubscriberStatus `json:"status"`
	Source           string           `json:"source,omitempty"`
	UnsubscribeToken string           `json:"-"`
	SubscribedAt     time.Time        `json:"subscribed_at"`
	UnsubscribedAt   *time.Time       `json:"unsubscribed_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Campaign is a newsletter issue.
type Campaign struct {
	ID             uint           `json:"id"`
	Subject        string         `json:"subject"`
	PreviewText    string         `json:"preview_text,omitempty"`
	BodyHTML       string         `json:"body_html"`
	Status         CampaignStatus `json:"status"`
	ScheduledAt    *time.Time     `json:"scheduled_at,omitempty"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
	RecipientCount int            `json:"recipient_count"`
	FailureCount   int            `json:"failure_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SubscriberFilter narrows the admin subscriber listing.
type SubscriberFilter struct {
	Status SubscriberStatus
	Search string
	Limit  int
	Offset int
}

// SubscribeInput is the public signup form.
type SubscribeInput struct {
	Email  string `json:"email" validate:"required,email,max=254"`
	Name   string `json:"name,omitempty" validate:"max=120"`
	Source string `json:"source,omitempty" validate:"max=64"`
}

// CampaignInput creates a campaign.
type CampaignInput struct {
	Subject     string `json:"subject" validate:"required,max=200"`
	PreviewText string `json:"preview_text,omitempty" validate:"max=200"`
	BodyHTML    string `json:"body_html" validate:"required"`
}

// CampaignPatch partially updates a campaign.
type CampaignPatch struct {
	Subject     *string `json:"subject,omitempty"`
	PreviewText *string `json:"preview_text,omitempty"`
	BodyHTML    *string `json:"body_html,omitempty"`
}
