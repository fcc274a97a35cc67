package auth

import "context"

// Repository persists admin users. Getters return nil, nil when the user
// does not exist.
type Repository interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id uint) error
}
