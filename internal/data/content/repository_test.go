package content

import (
	"context"
	"testing"

	"eduvista/site/internal/data/dbtest"
	"eduvista/site/internal/domain/apperr"
	domain "eduvista/site/internal/domain/content"
	"eduvista/site/internal/platform/log"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()

	db := dbtest.Open(t, &PageRecord{}, &SectionRecord{}, &TestimonialRecord{})
	repo, err := NewRepository(db, log.Discard())
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	return repo
}

func TestNewRepositoryRequiresDatabase(t *testing.T) {
	t.Parallel()

	if _, err := NewRepository(nil, nil); err == nil {
		t.Fatalf("expected error when database is nil")
	}
}

func TestGetPageBySlugReturnsNilForMissingPage(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)

	page, err := repo.GetPageBySlug(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetPageBySlug returned error: %v", err)
	}
	if page != nil {
		t.Fatalf("expected nil page, got %#v", page)
	}
}

func TestPageWithSectionsRoundTrip(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	page := &domain.Page{Slug: "pricing", Title: "Pricing", Published: true}
	if err := repo.CreatePage(ctx, page); err != nil {
		t.Fatalf("CreatePage returned error: %v", err)
	}
	if page.ID == 0 {
		t.Fatalf("expected page ID to be assigned")
	}

	for i, key := range []string{"faq", "hero"} {
		section := &domain.Section{PageID: page.ID, Key: key, Heading: key, Position: 1 - i}
		if err := repo.CreateSection(ctx, section); err != nil {
			t.Fatalf("CreateSection returned error: %v", err)
		}
	}

	stored, err := repo.GetPageBySlug(ctx, "pricing")
	if err != nil {
		t.Fatalf("GetPageBySlug returned error: %v", err)
	}
	if stored == nil || len(stored.Sections) != 2 {
		t.Fatalf("expected page with two sections, got %#v", stored)
	}
	if stored.Sections[0].Key != "hero" {
		t.Fatalf("expected sections ordered by position, got %q first", stored.Sections[0].Key)
	}
}

func TestCreatePageDuplicateSlugIsConflict(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	if err := repo.CreatePage(ctx, &domain.Page{Slug: "about", Title: "About"}); err != nil {
		t.Fatalf("CreatePage returned error: %v", err)
	}

	err := repo.CreatePage(ctx, &domain.Page{Slug: "about", Title: "About again"})
	if !apperr.IsKind(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestDuplicateSectionKeyIsConflict(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	page := &domain.Page{Slug: "home", Title: "Home"}
	if err := repo.CreatePage(ctx, page); err != nil {
		t.Fatalf("CreatePage returned error: %v", err)
	}
	if err := repo.CreateSection(ctx, &domain.Section{PageID: page.ID, Key: "hero"}); err != nil {
		t.Fatalf("CreateSection returned error: %v", err)
	}

	err := repo.CreateSection(ctx, &domain.Section{PageID: page.ID, Key: "hero"})
	if !apperr.IsKind(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestDeletePageRemovesSections(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	page := &domain.Page{Slug: "legal", Title: "Legal"}
	if err := repo.CreatePage(ctx, page); err != nil {
		t.Fatalf("CreatePage returned error: %v", err)
	}
	if err := repo.CreateSection(ctx, &domain.Section{PageID: page.ID, Key: "terms"}); err != nil {
		t.Fatalf("CreateSection returned error: %v", err)
	}

	if err := repo.DeletePage(ctx, page.ID); err != nil {
		t.Fatalf("DeletePage returned error: %v", err)
	}

	sections, err := repo.ListSections(ctx, page.ID)
	if err != nil {
		t.Fatalf("ListSections returned error: %v", err)
	}
	if len(sections) != 0 {
		t.Fatalf("expected sections to be removed, got %d", len(sections))
	}

	if err := repo.DeletePage(ctx, page.ID); !apperr.IsKind(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListTestimonialsFeaturedOnly(t *testing.T) {
	t.Parallel()

	repo := setupRepository(t)
	ctx := context.Background()

	for i, featured := range []bool{true, false, true} {
		item := &domain.Testimonial{AuthorName: "Reviewer", Quote: "Great", Rating: 5, Featured: featured, Position: 3 - i}
		if err := repo.CreateTestimonial(ctx, item); err != nil {
			t.Fatalf("CreateTestimonial returned error: %v", err)
		}
	}

	items, err := repo.ListTestimonials(ctx, true)
	if err != nil {
		t.Fatalf("ListTestimonials returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 featured testimonials, got %d", len(items))
	}
	if items[0].Position > items[1].Position {
		t.Fatalf("expected testimonials ordered by position, got %d then %d", items[0].Position, items[1].Position)
	}
}
