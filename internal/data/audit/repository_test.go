package audit

import (
	"context"
	"testing"
	"time"

	"eduvista/site/internal/data/dbtest"
	domain "eduvista/site/internal/domain/audit"
)

func TestListFiltersAndOrders(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(dbtest.Open(t, &EntryRecord{}), nil)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	ctx := context.Background()
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	for i, entry := range []domain.Entry{
		{ActorEmail: "ada@example.com", Action: "POST", Path: "/api/admin/blog/posts", Status: 201},
		{ActorEmail: "ada@example.com", Action: "DELETE", Path: "/api/admin/ab_tests/1", Status: 204},
		{ActorEmail: "grace@example.com", Action: "PATCH", Path: "/api/admin/blog/posts/1", Status: 200},
		{ActorEmail: "grace@example.com", Action: "POST", Path: "/api/admin/abXtests", Status: 200},
	} {
		entry.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Append(ctx, &entry); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	blog, err := repo.List(ctx, domain.Filter{PathPrefix: "/api/admin/blog", Limit: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(blog) != 2 || blog[0].Action != "PATCH" {
		t.Fatalf("expected newest blog entry first, got %+v", blog)
	}

	literal, err := repo.List(ctx, domain.Filter{PathPrefix: "/api/admin/ab_", Limit: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(literal) != 1 || literal[0].Path != "/api/admin/ab_tests/1" {
		t.Fatalf("expected underscore to match literally, got %+v", literal)
	}

	ada, err := repo.List(ctx, domain.Filter{ActorEmail: "ada@example.com", Limit: 1})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(ada) != 1 || ada[0].Action != "DELETE" {
		t.Fatalf("expected ada's latest entry, got %+v", ada)
	}
}
