package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eduvista/site/internal/domain/apperr"
)

const testKey = "0123456789abcdef0123456789abcdef"

type stubRepository struct {
	users map[uint]*User
}

func newStubRepository() *stubRepository {
	return &stubRepository{users: make(map[uint]*User)}
}

func (s *stubRepository) ListUsers(context.Context) ([]User, error) {
	out := make([]User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	return out, nil
}

func (s *stubRepository) GetUser(_ context.Context, id uint) (*User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *stubRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepository) CreateUser(_ context.Context, user *User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return apperr.Conflict("admin user already exists")
		}
	}
	user.ID = uint(len(s.users) + 1)
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *stubRepository) DeleteUser(_ context.Context, id uint) error {
	if _, ok := s.users[id]; !ok {
		return apperr.NotFound("admin user %d not found", id)
	}
	delete(s.users, id)
	return nil
}

func newTestService(t *testing.T, now *time.Time) (*Service, *stubRepository) {
	t.Helper()

	repo := newStubRepository()
	service, err := NewService(Options{
		Repository: repo,
		SigningKey: testKey,
		TokenTTL:   time.Hour,
		Now:        func() time.Time { return *now },
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return service, repo
}

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "correct horse battery" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if !VerifyPassword(hash, "correct horse battery") {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword(hash, "wrong horse battery") {
		t.Fatalf("expected wrong password to fail")
	}
	if VerifyPassword("", "anything") {
		t.Fatalf("expected empty hash to fail")
	}
}

func TestNewServiceRejectsShortKey(t *testing.T) {
	t.Parallel()

	if _, err := NewService(Options{Repository: newStubRepository(), SigningKey: "short"}); err == nil {
		t.Fatalf("expected error for short signing key")
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	service, _ := newTestService(t, &now)
	ctx := context.Background()

	user, err := service.CreateUser(ctx, UserInput{Email: " Ada@Example.com ", Name: "Ada", Password: "a-long-password", Role: RoleEditor})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}

	if _, err := service.Login(ctx, "ada@example.com", "nope-nope-nope"); !apperr.IsKind(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}
	if _, err := service.Login(ctx, "ghost@example.com", "a-long-password"); !apperr.IsKind(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}

	token, err := service.Login(ctx, "ADA@example.com", "a-long-password")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token.TokenType != "Bearer" || !token.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected token %+v", token)
	}

	principal, err := service.Authenticate(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if principal.UserID != user.ID || principal.Role != RoleEditor || principal.Email != "ada@example.com" {
		t.Fatalf("unexpected principal %+v", principal)
	}

	now = now.Add(2 * time.Hour)
	if _, err := service.Authenticate(ctx, token.AccessToken); !apperr.IsKind(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestAuthenticateRejectsForeignTokens(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	service, repo := newTestService(t, &now)
	ctx := context.Background()
	if err := repo.CreateUser(ctx, &User{Email: "ada@example.com", Role: RoleAdmin}); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	registered := jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{Role: RoleAdmin, RegisteredClaims: registered}).
		SignedString([]byte("ffffffffffffffffffffffffffffffff"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims{Role: RoleAdmin, RegisteredClaims: registered}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}).
		SignedString([]byte(testKey))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	unknownUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "42", ExpiresAt: registered.ExpiresAt}}).
		SignedString([]byte(testKey))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	for name, raw := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"other key":    otherKey,
		"alg none":     unsigned,
		"no expiry":    noExpiry,
		"unknown user": unknownUser,
	} {
		if _, err := service.Authenticate(ctx, raw); !apperr.IsKind(err, apperr.ErrUnauthorized) {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
	}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	if err := Authorize(nil, RoleEditor); !apperr.IsKind(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized without principal, got %v", err)
	}
	if err := Authorize(&Principal{Role: RoleEditor}, RoleAdmin); !apperr.IsKind(err, apperr.ErrForbidden) {
		t.Fatalf("expected editor to be forbidden from admin routes, got %v", err)
	}
	if err := Authorize(&Principal{Role: RoleAdmin}, RoleEditor); err != nil {
		t.Fatalf("expected admin to pass editor check, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()

	now := time.Now()
	service, _ := newTestService(t, &now)
	ctx := context.Background()

	if _, err := service.CreateUser(ctx, UserInput{Email: "ada@example.com", Name: "Ada", Password: "short", Role: RoleAdmin}); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid for short password, got %v", err)
	}
	if _, err := service.CreateUser(ctx, UserInput{Email: "ada@example.com", Name: "Ada", Password: "a-long-password", Role: "owner"}); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid for unknown role, got %v", err)
	}

	// 30 characters but 90 bytes: passes the character count, exceeds bcrypt's limit.
	multibyte := strings.Repeat("€", 30)
	if _, err := service.CreateUser(ctx, UserInput{Email: "ada@example.com", Name: "Ada", Password: multibyte, Role: RoleAdmin}); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid for a password over 72 bytes, got %v", err)
	}
	if _, err := service.CreateUser(ctx, UserInput{Email: "ada@example.com", Name: "Ada", Password: strings.Repeat("€", 24), Role: RoleAdmin}); err != nil {
		t.Fatalf("expected 72-byte password to be accepted, got %v", err)
	}
}

func TestDeleteUserRefusesSelf(t *testing.T) {
	t.Parallel()

	now := time.Now()
	service, repo := newTestService(t, &now)
	if err := repo.CreateUser(context.Background(), &User{Email: "ada@example.com", Role: RoleAdmin}); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if err := service.DeleteUser(context.Background(), &Principal{UserID: 1, Role: RoleAdmin}, 1); !apperr.IsKind(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict deleting self, got %v", err)
	}
}
