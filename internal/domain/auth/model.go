package auth

import "time"

// Role is an admin user's permission level.
type Role string

const (
	// RoleAdmin manages everything, including users, automation and audit logs.
	RoleAdmin Role = "admin"
	// RoleEditor manages content only.
	RoleEditor Role = "editor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEditor
}

// Allows reports whether r satisfies required.
func (r Role) Allows(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// User is an admin panel account.
type User struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated caller behind a token.
type Principal struct {
	UserID uint
	Email  string
	Role   Role
}

// UserInput creates an admin user.
type UserInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=12,max=72"`
	Role     Role   `json:"role" validate:"required,oneof=admin editor"`
}

// Token is a signed session token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}
