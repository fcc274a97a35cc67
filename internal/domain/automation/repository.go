package automation

import (
	"context"
	"time"

	"eduvista/site/internal/domain/events"
	"eduvista/site/internal/domain/social"
)

// Repository persists automation rules. GetRule returns nil, nil when the
// rule does not exist.
type Repository interface {
	// ListRules returns every rule, or only those for trigger when it is set.
	ListRules(ctx context.Context, trigger events.Trigger) ([]Rule, error)
	EnabledRules(ctx context.Context, trigger events.Trigger) ([]Rule, error)
	GetRule(ctx context.Context, id uint) (*Rule, error)
	CreateRule(ctx context.Context, rule *Rule) error
	UpdateRule(ctx context.Context, rule *Rule) error
	DeleteRule(ctx context.Context, id uint) error
	// RecordRun stamps last_run_at and increments run_count.
	RecordRun(ctx context.Context, id uint, at time.Time) error
}

// SocialSharer publishes a social post immediately.
type SocialSharer interface {
	CreateAndPublish(ctx context.Context, input social.PostInput) (*social.Post, error)
}
