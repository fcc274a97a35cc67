package templates

import (
	"eduvista/site/internal/domain/blog"
	"eduvista/site/internal/domain/content"
)

// SiteName is shown in titles and the header.
const SiteName = "eduvista"

// Layout carries values the shared layout needs on every page.
type Layout struct {
	Title        string
	Description  string
	CanonicalURL string
	Year         int
}

// HomeData contains the landing page content.
type HomeData struct {
	Layout
	Page         *content.Page
	Testimonials []content.Testimonial
	LatestPosts  []blog.Post
}

// PageData renders a CMS page.
type PageData struct {
	Layout
	Page *content.Page
}

// BlogIndexData renders the blog listing.
type BlogIndexData struct {
	Layout
	Posts      []blog.Post
	Categories []blog.Category
	Category   string
	Page       int
	PrevURL    string
	NextURL    string
}

// BlogPostData renders a single article.
type BlogPostData struct {
	Layout
	Post *blog.Post
}

// MessageData holds a heading and message for status pages.
type MessageData struct {
	Layout
	StatusLabel string
	Message     string
	LinkURL     string
	LinkLabel   string
}
