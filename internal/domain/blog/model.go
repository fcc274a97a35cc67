package blog

import "time"

// Status is the lifecycle state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Author writes posts.
type Author struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category groups posts.
type Category struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Post is a blog article.
type Post struct {
	ID              uint       `json:"id"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title"`
	Excerpt         string     `json:"excerpt,omitempty"`
	BodyHTML        string     `json:"body_html"`
	CoverImageURL   string     `json:"cover_image_url,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	AuthorID        *uint      `json:"author_id,omitempty"`
	CategoryID      *uint      `json:"category_id,omitempty"`
	Author          *Author    `json:"author,omitempty"`
	Category        *Category  `json:"category,omitempty"`
	Tags            []string   `json:"tags"`
	Status          Status     `json:"status"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	SanityID        string     `json:"sanity_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PostFilter narrows admin and public listings.
type PostFilter struct {
	Status       Status
	CategorySlug string
	Tag          string
	Limit        int
	Offset       int
}

// PostPage is one page of a listing.
type PostPage struct {
	Items    []Post `json:"items"`
	Total    int64  `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// PostInput creates a post.
type PostInput struct {
	Slug            string   `json:"slug,omitempty"`
	Title           string   `json:"title" validate:"required,max=200"`
	Excerpt         string   `json:"excerpt,omitempty" validate:"max=500"`
	BodyHTML        string   `json:"body_html,omitempty"`
	CoverImageURL   string   `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	MetaDescription string   `json:"meta_description,omitempty" validate:"max=160"`
	AuthorID        *uint    `json:"author_id,omitempty"`
	CategoryID      *uint    `json:"category_id,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// PostPatch partially updates a post. Status changes go through Schedule,
// Publish and Archive.
type PostPatch struct {
	Slug            *string   `json:"slug,omitempty"`
	Title           *string   `json:"title,omitempty"`
	Excerpt         *string   `json:"excerpt,omitempty"`
	BodyHTML        *string   `json:"body_html,omitempty"`
	CoverImageURL   *string   `json:"cover_image_url,omitempty"`
	MetaDescription *string   `json:"meta_description,omitempty"`
	AuthorID        *uint     `json:"author_id,omitempty"`
	CategoryID      *uint     `json:"category_id,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
}

// AuthorInput creates or replaces an author.
type AuthorInput struct {
	Name      string `json:"name" validate:"required,max=120"`
	Slug      string `json:"slug,omitempty"`
	Bio       string `json:"bio,omitempty" validate:"max=2000"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// CategoryInput creates or replaces a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

// CMSPost is a post document read from the headless CMS.
type CMSPost struct {
	ID            string
	Slug          string
	Title         string
	Excerpt       string
	BodyHTML      string
	CoverImageURL string
	AuthorName    string
	CategoryTitle string
	Tags          []string
	PublishedAt   *time.Time
}

// SyncResult counts what a CMS import changed.
type SyncResult struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}
