package automation

import (
	"context"
	"testing"
	"time"

	"eduvista/site/internal/data/dbtest"
	"eduvista/site/internal/domain/apperr"
	domain "eduvista/site/internal/domain/automation"
	"eduvista/site/internal/domain/events"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(dbtest.Open(t, &RuleRecord{}), nil)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	return repo
}

func TestEnabledRulesFiltersByTrigger(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	for _, rule := range []*domain.Rule{
		{Name: "share", Trigger: events.BlogPublished, Action: domain.ActionSocialShare, Config: map[string]string{"platforms": "linkedin"}, Enabled: true},
		{Name: "paused", Trigger: events.BlogPublished, Action: domain.ActionSocialShare, Enabled: false},
		{Name: "welcome", Trigger: events.NewsletterSubscribed, Action: domain.ActionEmailSend, Enabled: true},
	} {
		if err := repo.CreateRule(ctx, rule); err != nil {
			t.Fatalf("CreateRule returned error: %v", err)
		}
	}

	enabled, err := repo.EnabledRules(ctx, events.BlogPublished)
	if err != nil {
		t.Fatalf("EnabledRules returned error: %v", err)
	}
	if len(enabled) != 1 || enabled[0].Name != "share" || enabled[0].Config["platforms"] != "linkedin" {
		t.Fatalf("unexpected enabled rules %+v", enabled)
	}

	all, err := repo.ListRules(ctx, "")
	if err != nil {
		t.Fatalf("ListRules returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected three rules, got %d", len(all))
	}
}

func TestRecordRunIncrements(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	rule := &domain.Rule{Name: "welcome", Trigger: events.NewsletterSubscribed, Action: domain.ActionEmailSend, Enabled: true}
	if err := repo.CreateRule(ctx, rule); err != nil {
		t.Fatalf("CreateRule returned error: %v", err)
	}

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := repo.RecordRun(ctx, rule.ID, at); err != nil {
			t.Fatalf("RecordRun returned error: %v", err)
		}
	}

	stored, err := repo.GetRule(ctx, rule.ID)
	if err != nil {
		t.Fatalf("GetRule returned error: %v", err)
	}
	if stored.RunCount != 3 || stored.LastRunAt == nil || !stored.LastRunAt.Equal(at) {
		t.Fatalf("unexpected run bookkeeping %+v", stored)
	}

	if err := repo.RecordRun(ctx, 999, at); !apperr.IsKind(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
