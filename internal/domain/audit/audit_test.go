package audit

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
)

type stubRepository struct {
	entries    []Entry
	lastFilter Filter
	appendErr  error
}

func (s *stubRepository) Append(_ context.Context, entry *Entry) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	entry.ID = uint(len(s.entries) + 1)
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubRepository) List(_ context.Context, filter Filter) ([]Entry, error) {
	s.lastFilter = filter
	return s.entries, nil
}

func TestRecordStampsEntry(t *testing.T) {
	t.Parallel()

	repo := &stubRepository{}
	now := time.Date(2025, 2, 2, 15, 4, 5, 0, time.FixedZone("CET", 3600))
	service, err := NewService(repo, nil, func() time.Time { return now })
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	service.Record(context.Background(), Entry{ID: 99, ActorEmail: "ada@example.com", Action: "post", Path: "/api/admin/pages", Status: 201})

	if len(repo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(repo.entries))
	}
	got := repo.entries[0]
	if got.ID != 1 || got.Action != "POST" || got.CreatedAt.Location() != time.UTC || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected entry %+v", got)
	}
}

func TestRecordIgnoresRepositoryFailure(t *testing.T) {
	t.Parallel()

	service, err := NewService(&stubRepository{appendErr: eris.New("disk full")}, nil, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	service.Record(context.Background(), Entry{Action: "DELETE", Path: "/api/admin/pages/1"})
}

func TestListClampsLimit(t *testing.T) {
	t.Parallel()

	repo := &stubRepository{}
	service, err := NewService(repo, nil, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	if _, err := service.List(context.Background(), Filter{ActorEmail: " Ada@Example.com ", Limit: 10_000}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastFilter.Limit != maxLimit || repo.lastFilter.ActorEmail != "ada@example.com" {
		t.Fatalf("unexpected filter %+v", repo.lastFilter)
	}

	if _, err := service.List(context.Background(), Filter{}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastFilter.Limit != defaultLimit {
		t.Fatalf("expected default limit, got %d", repo.lastFilter.Limit)
	}
}

func TestNewServiceRequiresRepository(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil, nil, nil); err == nil {
		t.Fatalf("expected error without repository")
	}
}
