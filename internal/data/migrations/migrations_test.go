package migrations

import (
	"context"
	"testing"

	"eduvista/site/internal/data/dbtest"
	"eduvista/site/internal/platform/log"
)

func TestMigrateCreatesEveryTable(t *testing.T) {
	t.Parallel()

	db := dbtest.Open(t)
	if err := Migrate(context.Background(), db, log.Discard()); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	tables := []string{
		"pages", "content_sections", "testimonials",
		"blog_authors", "blog_categories", "blog_posts",
		"newsletter_subscribers", "newsletter_campaigns",
		"social_posts", "contact_submissions", "automation_rules",
		"audit_logs", "admin_users", "experiments", "experiment_variants",
	}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table %q to exist", table)
		}
	}

	if err := Migrate(context.Background(), db, nil); err != nil {
		t.Fatalf("second Migrate returned error: %v", err)
	}
}

func TestMigrateRequiresDB(t *testing.T) {
	t.Parallel()

	if err := Migrate(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error without db")
	}
}
