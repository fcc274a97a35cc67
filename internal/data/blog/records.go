package blog

import "time"

// AuthorRecord is a blog author row.
type AuthorRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:120;not null"`
	Slug      string `gorm:"size:255;uniqueIndex:idx_blog_authors_slug;not null"`
	Bio       string `gorm:"type:text"`
	AvatarURL string `gorm:"size:1024"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName defines the table name for authors.
func (AuthorRecord) TableName() string {
	return "blog_authors"
}

// CategoryRecord is a blog category row.
type CategoryRecord struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:120;not null"`
	Slug        string `gorm:"size:255;uniqueIndex:idx_blog_categories_slug;not null"`
	Description string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName defines the table name for categories.
func (CategoryRecord) TableName() string {
	return "blog_categories"
}

// PostRecord is a blog post row.
type PostRecord struct {
	ID              uint            `gorm:"primaryKey"`
	Slug            string          `gorm:"size:255;uniqueIndex:idx_blog_posts_slug;not null"`
	Title           string          `gorm:"size:200;not null"`
	Excerpt         string          `gorm:"size:500"`
	BodyHTML        string          `gorm:"type:text"`
	CoverImageURL   string          `gorm:"size:1024"`
	MetaDescription string          `gorm:"size:160"`
	AuthorID        *uint           `gorm:"index"`
	Author          *AuthorRecord   `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`
	CategoryID      *uint           `gorm:"index"`
	Category        *CategoryRecord `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Tags            []string        `gorm:"serializer:json;type:text"`
	Status          string          `gorm:"size:16;not null;default:draft;index:idx_blog_posts_status_scheduled"`
	ScheduledAt     *time.Time      `gorm:"index:idx_blog_posts_status_scheduled"`
	PublishedAt     *time.Time      `gorm:"index"`
	SanityID        string          `gorm:"size:128;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName defines the table name for posts.
func (PostRecord) TableName() string {
	return "blog_posts"
}
