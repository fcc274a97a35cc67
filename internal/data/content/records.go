package content

import "time"

// PageRecord is a marketing page row.
type PageRecord struct {
	ID          uint   `gorm:"primaryKey"`
	Slug        string `gorm:"size:255;uniqueIndex:idx_pages_slug;not null"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"size:500"`
	Published   bool   `gorm:"not null;default:false;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Sections []SectionRecord `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
}

// TableName defines the table name for pages.
func (PageRecord) TableName() string {
	return "pages"
}

// SectionRecord is an ordered block of content belonging to a page.
type SectionRecord struct {
	ID        uint   `gorm:"primaryKey"`
	PageID    uint   `gorm:"not null;uniqueIndex:idx_sections_page_key"`
	Key       string `gorm:"size:64;not null;uniqueIndex:idx_sections_page_key"`
	Heading   string `gorm:"size:200"`
	Body      string `gorm:"type:text"`
	ImageURL  string `gorm:"size:1024"`
	CTALabel  string `gorm:"size:80"`
	CTAURL    string `gorm:"size:1024"`
	Position  int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName defines the table name for sections.
func (SectionRecord) TableName() string {
	return "content_sections"
}

// TestimonialRecord is a customer quote row.
type TestimonialRecord struct {
	ID         uint   `gorm:"primaryKey"`
	AuthorName string `gorm:"size:120;not null"`
	AuthorRole string `gorm:"size:120"`
	Company    string `gorm:"size:120"`
	Quote      string `gorm:"type:text;not null"`
	AvatarURL  string `gorm:"size:1024"`
	Rating     int    `gorm:"not null;default:5"`
	Featured   bool   `gorm:"not null;default:false;index"`
	Position   int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName defines the table name for testimonials.
func (TestimonialRecord) TableName() string {
	return "testimonials"
}
