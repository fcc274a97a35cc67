package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/platform/log"
	"eduvista/site/internal/platform/validation"
)

const (
	defaultTokenTTL = 12 * time.Hour
	tokenLeeway     = 30 * time.Second
	minKeyLength    = 32
)

// dummyHash keeps Login timing similar for unknown addresses.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoO5dYx1sQ8rPz2yZrG7oV0xbY5eFZQk6e"

// Options configures the auth service.
type Options struct {
	Repository Repository
	SigningKey string
	TokenTTL   time.Duration
	Reporter   *log.Reporter
	Now        func() time.Time
}

// Service authenticates admin users and issues HS256 session tokens.
type Service struct {
	repo     Repository
	key      []byte
	ttl      time.Duration
	reporter *log.Reporter
	now      func() time.Time
}

type claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// NewService validates dependencies and constructs a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Repository == nil {
		return nil, eris.New("auth repository is required")
	}
	if len(opts.SigningKey) < minKeyLength {
		return nil, eris.Errorf("jwt signing key must be at least %d bytes", minKeyLength)
	}

	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:     opts.Repository,
		key:      []byte(opts.SigningKey),
		ttl:      ttl,
		reporter: opts.Reporter,
		now:      now,
	}, nil
}

// Login checks credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*Token, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || password == "" {
		return nil, apperr.Invalid("email and password are required")
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		s.reporter.Error(logrus.Fields{"email": emailAddr}, err, "looking up admin user")
		return nil, eris.Wrap(err, "looking up admin user")
	}
	if user == nil {
		VerifyPassword(dummyHash, password)
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if !VerifyPassword(user.PasswordHash, password) {
		s.reporter.Warn(logrus.Fields{"email": emailAddr}, nil, "failed admin login")
		return nil, apperr.Unauthorized("invalid email or password")
	}

	return s.issue(user)
}

func (s *Service) issue(user *User) (*Token, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return nil, eris.Wrap(err, "signing token")
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        *user,
	}, nil
}

// Authenticate verifies a bearer token and returns its principal. The role
// comes from the stored user so demotions apply to live tokens.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.Unauthorized("missing bearer token")
	}

	var parsed claims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(tokenLeeway), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, apperr.Unauthorized("invalid token")
	}

	id, err := strconv.ParseUint(parsed.Subject, 10, 64)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token subject")
	}
	user, err := s.repo.GetUser(ctx, uint(id))
	if err != nil {
		s.reporter.Error(logrus.Fields{"user_id": id}, err, "loading admin user")
		return nil, eris.Wrap(err, "loading admin user")
	}
	if user == nil {
		return nil, apperr.Unauthorized("user no longer exists")
	}

	return &Principal{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Authorize checks that principal holds required.
func Authorize(principal *Principal, required Role) error {
	if principal == nil {
		return apperr.Unauthorized("authentication required")
	}
	if !principal.Role.Allows(required) {
		return apperr.Forbidden("%s role required", required)
	}
	return nil
}

// CreateUser validates input and stores a user with a hashed password.
func (s *Service) CreateUser(ctx context.Context, input UserInput) (*User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
		Role:         input.Role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.reporter.Info(logrus.Fields{"user_id": user.ID, "role": user.Role}, "admin user created")
	return user, nil
}

// ListUsers returns every admin user.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.reporter.Error(nil, err, "listing admin users")
		return nil, eris.Wrap(err, "listing admin users")
	}
	return users, nil
}

// GetUser returns the user with id.
func (s *Service) GetUser(ctx context.Context, id uint) (*User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"user_id": id}, err, "loading admin user")
		return nil, eris.Wrapf(err, "loading admin user %d", id)
	}
	if user == nil {
		return nil, apperr.NotFound("admin user %d not found", id)
	}
	return user, nil
}

// DeleteUser removes a user. Callers cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actor *Principal, id uint) error {
	if actor != nil && actor.UserID == id {
		return apperr.Conflict("cannot delete your own account")
	}
	return s.repo.DeleteUser(ctx, id)
}
