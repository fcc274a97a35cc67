package content

import "time"

// Page is a marketing page composed of ordered sections.
type Page struct {
	ID          uint      `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Published   bool      `json:"published"`
	Sections    []Section `json:"sections,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Section is a named block of content on a page, e.g. "hero" or "pricing".
type Section struct {
	ID        uint      `json:"id"`
	PageID    uint      `json:"page_id"`
	Key       string    `json:"key"`
	Heading   string    `json:"heading"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"image_url,omitempty"`
	CTALabel  string    `json:"cta_label,omitempty"`
	CTAURL    string    `json:"cta_url,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Testimonial is a customer quote shown on marketing pages.
type Testimonial struct {
	ID         uint      `json:"id"`
	AuthorName string    `json:"author_name"`
	AuthorRole string    `json:"author_role,omitempty"`
	Company    string    `json:"company,omitempty"`
	Quote      string    `json:"quote"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Rating     int       `json:"rating"`
	Featured   bool      `json:"featured"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PageInput creates a page. Slug is derived from Title when empty.
type PageInput struct {
	Slug        string `json:"slug,omitempty"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Published   bool   `json:"published,omitempty"`
}

// PagePatch partially updates a page.
type PagePatch struct {
	Slug        *string `json:"slug,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}

// SectionInput creates a section.
type SectionInput struct {
	Key      string `json:"key" validate:"required,max=64"`
	Heading  string `json:"heading,omitempty" validate:"max=200"`
	Body     string `json:"body,omitempty"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
	CTALabel string `json:"cta_label,omitempty" validate:"max=80"`
	CTAURL   string `json:"cta_url,omitempty"`
	Position int    `json:"position,omitempty"`
}

// SectionPatch partially updates a section.
type SectionPatch struct {
	Key      *string `json:"key,omitempty"`
	Heading  *string `json:"heading,omitempty"`
	Body     *string `json:"body,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	CTALabel *string `json:"cta_label,omitempty"`
	CTAURL   *string `json:"cta_url,omitempty"`
	Position *int    `json:"position,omitempty"`
}

// TestimonialInput creates a testimonial.
type TestimonialInput struct {
	AuthorName string `json:"author_name" validate:"required,max=120"`
	AuthorRole string `json:"author_role,omitempty" validate:"max=120"`
	Company    string `json:"company,omitempty" validate:"max=120"`
	Quote      string `json:"quote" validate:"required,max=2000"`
	AvatarURL  string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Rating     int    `json:"rating,omitempty" validate:"gte=0,lte=5"`
	Featured   bool   `json:"featured,omitempty"`
	Position   int    `json:"position,omitempty"`
}

// TestimonialPatch partially updates a testimonial.
type TestimonialPatch struct {
	AuthorName *string `json:"author_name,omitempty"`
	AuthorRole *string `json:"author_role,omitempty"`
	Company    *string `json:"company,omitempty"`
	Quote      *string `json:"quote,omitempty"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
	Featured   *bool   `json:"featured,omitempty"`
	Position   *int    `json:"position,omitempty"`
}
