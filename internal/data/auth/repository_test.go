package auth

import (
	"context"
	"testing"

	"eduvista/site/internal/data/dbtest"
	"eduvista/site/internal/domain/apperr"
	domain "eduvista/site/internal/domain/auth"
)

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo, err := NewRepository(dbtest.Open(t, &UserRecord{}), nil)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	ctx := context.Background()

	user := &domain.User{Email: "ada@example.com", Name: "Ada", PasswordHash: "hash", Role: domain.RoleAdmin}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected ID to be assigned")
	}

	dup := &domain.User{Email: "ada@example.com", Name: "Other", PasswordHash: "hash", Role: domain.RoleEditor}
	if err := repo.CreateUser(ctx, dup); !apperr.IsKind(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	found, err := repo.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail returned error: %v", err)
	}
	if found == nil || found.Role != domain.RoleAdmin || found.PasswordHash != "hash" {
		t.Fatalf("unexpected user %+v", found)
	}

	missing, err := repo.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown email, got %+v err=%v", missing, err)
	}
}
