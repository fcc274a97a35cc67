package auth

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eduvista/site/internal/data/crud"
	domain "eduvista/site/internal/domain/auth"
)

// Repository persists admin users using Gorm.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed user repository.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &Repository{db: db, logger: logger}, nil
}

var _ domain.Repository = (*Repository)(nil)

// ListUsers returns users ordered by email.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var records []UserRecord
	if err := r.db.WithContext(ctx).Order("email ASC").Find(&records).Error; err != nil {
		r.logError(nil, err, "listing admin users")
		return nil, eris.Wrap(err, "listing admin users")
	}

	users := make([]domain.User, 0, len(records))
	for i := range records {
		users = append(users, toDomainUser(&records[i]))
	}
	return users, nil
}

// GetUser returns the user with id or nil.
func (r *Repository) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return r.find(ctx, logrus.Fields{"user_id": id}, "id = ?", id)
}

// GetUserByEmail returns the user with email or nil.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(ctx, logrus.Fields{"email": email}, "email = ?", email)
}

func (r *Repository) find(ctx context.Context, fields logrus.Fields, query string, arg any) (*domain.User, error) {
	record, err := crud.Find[UserRecord](ctx, r.db, query, arg)
	if err != nil {
		r.logError(fields, err, "fetching admin user")
		return nil, eris.Wrap(err, "fetching admin user")
	}
	if record == nil {
		return nil, nil
	}
	user := toDomainUser(record)
	return &user, nil
}

// CreateUser stores a new user. Duplicate emails are conflicts.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	record := &UserRecord{
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
	}
	if err := crud.Insert(ctx, r.db, record, "admin user"); err != nil {
		r.logError(logrus.Fields{"email": user.Email}, err, "creating admin user")
		return err
	}
	*user = toDomainUser(record)
	return nil
}

// DeleteUser removes a user.
func (r *Repository) DeleteUser(ctx context.Context, id uint) error {
	return crud.Remove[UserRecord](ctx, r.db, id, "admin user")
}

func (r *Repository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func toDomainUser(record *UserRecord) domain.User {
	return domain.User{
		ID:           record.ID,
		Email:        record.Email,
		Name:         record.Name,
		PasswordHash: record.PasswordHash,
		Role:         domain.Role(record.Role),
		CreatedAt:    record.CreatedAt.UTC(),
		UpdatedAt:    record.UpdatedAt.UTC(),
	}
}
