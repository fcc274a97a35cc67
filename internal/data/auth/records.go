package auth

import "time"

// UserRecord is an admin user row.
type UserRecord struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:254;uniqueIndex:idx_admin_users_email;not null"`
	Name         string `gorm:"size:120;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	Role         string `gorm:"size:16;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName defines the table name for admin users.
func (UserRecord) TableName() string {
	return "admin_users"
}
