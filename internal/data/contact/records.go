package contact

import "time"

// SubmissionRecord is a contact or quote form row.
type SubmissionRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Kind      string `gorm:"size:16;not null;index"`
	Name      string `gorm:"size:120;not null"`
	Email     string `gorm:"size:254;not null"`
	Company   string `gorm:"size:160"`
	Phone     string `gorm:"size:40"`
	Subject   string `gorm:"size:200"`
	Message   string `gorm:"type:text;not null"`
	Budget    string `gorm:"size:64"`
	Seats     int    `gorm:"not null;default:0"`
	Status    string `gorm:"size:16;not null;index"`
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName defines the table name for form submissions.
func (SubmissionRecord) TableName() string {
	return "contact_submissions"
}
