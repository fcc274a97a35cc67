package contact

import (
	"context"
	"testing"

	"eduvista/site/internal/data/dbtest"
	"eduvista/site/internal/domain/apperr"
	domain "eduvista/site/internal/domain/contact"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(dbtest.Open(t, &SubmissionRecord{}), nil)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	return repo
}

func seed(t *testing.T, repo *Repository) {
	t.Helper()

	for _, submission := range []*domain.Submission{
		{Kind: domain.KindContact, Name: "Ada", Email: "ada@example.com", Message: "Hello", Status: domain.StatusNew},
		{Kind: domain.KindQuote, Name: "Grace", Email: "grace@example.com", Company: "Navy", Message: "Quote", Seats: 40, Status: domain.StatusNew},
		{Kind: domain.KindContact, Name: "Bot", Email: "bot@example.com", Message: "Buy", Status: domain.StatusSpam},
	} {
		if err := repo.CreateSubmission(context.Background(), submission); err != nil {
			t.Fatalf("CreateSubmission returned error: %v", err)
		}
	}
}

func TestListSubmissionsFilters(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	seed(t, repo)
	ctx := context.Background()

	contacts, total, err := repo.ListSubmissions(ctx, domain.Filter{Kind: domain.KindContact})
	if err != nil {
		t.Fatalf("ListSubmissions returned error: %v", err)
	}
	if total != 2 || len(contacts) != 2 {
		t.Fatalf("expected two contact submissions, got total=%d len=%d", total, len(contacts))
	}

	quotes, err := repo.AllSubmissions(ctx, domain.Filter{Kind: domain.KindQuote, Status: domain.StatusNew})
	if err != nil {
		t.Fatalf("AllSubmissions returned error: %v", err)
	}
	if len(quotes) != 1 || quotes[0].Seats != 40 || quotes[0].Company != "Navy" {
		t.Fatalf("unexpected quotes %+v", quotes)
	}
}

func TestUpdateStatusAndCounts(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	seed(t, repo)
	ctx := context.Background()

	if err := repo.UpdateStatus(ctx, 1, domain.StatusResolved); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if err := repo.UpdateStatus(ctx, 99, domain.StatusResolved); !apperr.IsKind(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown submission, got %v", err)
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus returned error: %v", err)
	}
	if counts[domain.StatusNew] != 1 || counts[domain.StatusResolved] != 1 || counts[domain.StatusSpam] != 1 || counts[domain.StatusInProgress] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}

	if err := repo.DeleteSubmission(ctx, 1); err != nil {
		t.Fatalf("DeleteSubmission returned error: %v", err)
	}
	got, err := repo.GetSubmission(ctx, 1)
	if err != nil || got != nil {
		t.Fatalf("expected deleted submission to be gone, got %+v err=%v", got, err)
	}
}
