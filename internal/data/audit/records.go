package audit

import "time"

// EntryRecord is an audit log row.
type EntryRecord struct {
	ID         uint      `gorm:"primaryKey"`
	ActorID    uint      `gorm:"index"`
	ActorEmail string    `gorm:"size:254;index"`
	Action     string    `gorm:"size:16;not null"`
	Path       string    `gorm:"size:512;not null;index"`
	Status     int       `gorm:"not null"`
	IP         string    `gorm:"size:64"`
	UserAgent  string    `gorm:"size:512"`
	CreatedAt  time.Time `gorm:"index"`
}

// TableName defines the table name for audit entries.
func (EntryRecord) TableName() string {
	return "audit_logs"
}
