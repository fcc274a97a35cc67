package content

import "context"

// Repository defines persistence operations for pages, sections and testimonials.
// Getters return nil, nil when the record does not exist.
type Repository interface {
	ListPages(ctx context.Context, publishedOnly bool) ([]Page, error)
	GetPage(ctx context.Context, id uint) (*Page, error)
	GetPageBySlug(ctx context.Context, slug string) (*Page, error)
	CreatePage(ctx context.Context, page *Page) error
	UpdatePage(ctx context.Context, page *Page) error
	DeletePage(ctx context.Context, id uint) error
	CountPages(ctx context.Context) (int64, error)

	ListSections(ctx context.Context, pageID uint) ([]Section, error)
	GetSection(ctx context.Context, id uint) (*Section, error)
	CreateSection(ctx context.Context, section *Section) error
	UpdateSection(ctx context.Context, section *Section) error
	DeleteSection(ctx context.Context, id uint) error

	ListTestimonials(ctx context.Context, featuredOnly bool) ([]Testimonial, error)
	GetTestimonial(ctx context.Context, id uint) (*Testimonial, error)
	CreateTestimonial(ctx context.Context, testimonial *Testimonial) error
	UpdateTestimonial(ctx context.Context, testimonial *Testimonial) error
	DeleteTestimonial(ctx context.Context, id uint) error
}
