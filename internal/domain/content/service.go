package content

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/slug"
	"eduvista/site/internal/platform/log"
	"eduvista/site/internal/platform/validation"
)

// Options configures the content service.
type Options struct {
	Repository Repository
	Reporter   *log.Reporter
}

// Service manages marketing pages, their sections and testimonials.
type Service struct {
	repo     Repository
	reporter *log.Reporter
}

// NewService validates dependencies and constructs a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Repository == nil {
		return nil, eris.New("content repository is required")
	}
	return &Service{repo: opts.Repository, reporter: opts.Reporter}, nil
}

// ListPages returns every page ordered by title.
func (s *Service) ListPages(ctx context.Context) ([]Page, error) {
	pages, err := s.repo.ListPages(ctx, false)
	if err != nil {
		s.reporter.Error(nil, err, "listing pages")
		return nil, eris.Wrap(err, "listing pages")
	}
	return pages, nil
}

// GetPage returns the page with id including its sections.
func (s *Service) GetPage(ctx context.Context, id uint) (*Page, error) {
	page, err := s.repo.GetPage(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"page_id": id}, err, "fetching page")
		return nil, eris.Wrapf(err, "fetching page %d", id)
	}
	if page == nil {
		return nil, apperr.NotFound("page %d not found", id)
	}
	return page, nil
}

// PublishedPage returns a published page by slug for the public site.
func (s *Service) PublishedPage(ctx context.Context, pageSlug string) (*Page, error) {
	trimmed := strings.TrimSpace(pageSlug)
	if trimmed == "" {
		return nil, apperr.Invalid("slug is required")
	}

	page, err := s.repo.GetPageBySlug(ctx, trimmed)
	if err != nil {
		s.reporter.Error(logrus.Fields{"slug": trimmed}, err, "fetching page by slug")
		return nil, eris.Wrapf(err, "fetching page: %s", trimmed)
	}
	if page == nil || !page.Published {
		return nil, apperr.NotFound("page %s not found", trimmed)
	}
	return page, nil
}

// CreatePage validates input and stores a new page.
func (s *Service) CreatePage(ctx context.Context, input PageInput) (*Page, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	pageSlug, err := resolveSlug(input.Slug, input.Title)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Slug:        pageSlug,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Published:   input.Published,
	}
	if err := s.repo.CreatePage(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// UpdatePage applies patch to the page with id.
func (s *Service) UpdatePage(ctx context.Context, id uint, patch PagePatch) (*Page, error) {
	page, err := s.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Slug != nil {
		value := strings.TrimSpace(*patch.Slug)
		if !slug.Valid(value) {
			return nil, apperr.Invalid("slug %q is invalid", value)
		}
		page.Slug = value
	}
	if patch.Title != nil {
		value := strings.TrimSpace(*patch.Title)
		if value == "" {
			return nil, apperr.Invalid("title is required")
		}
		page.Title = value
	}
	if patch.Description != nil {
		page.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Published != nil {
		page.Published = *patch.Published
	}

	if err := s.repo.UpdatePage(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

// DeletePage removes a page and its sections.
func (s *Service) DeletePage(ctx context.Context, id uint) error {
	return s.repo.DeletePage(ctx, id)
}

// CountPages returns the number of stored pages.
func (s *Service) CountPages(ctx context.Context) (int64, error) {
	return s.repo.CountPages(ctx)
}

// AddSection attaches a new section to a page.
func (s *Service) AddSection(ctx context.Context, pageID uint, input SectionInput) (*Section, error) {
	input.Key = strings.TrimSpace(input.Key)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if _, err := s.GetPage(ctx, pageID); err != nil {
		return nil, err
	}

	section := &Section{
		PageID:   pageID,
		Key:      input.Key,
		Heading:  strings.TrimSpace(input.Heading),
		Body:     input.Body,
		ImageURL: strings.TrimSpace(input.ImageURL),
		CTALabel: strings.TrimSpace(input.CTALabel),
		CTAURL:   strings.TrimSpace(input.CTAURL),
		Position: input.Position,
	}
	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// UpdateSection applies patch to the section with id.
func (s *Service) UpdateSection(ctx context.Context, id uint, patch SectionPatch) (*Section, error) {
	section, err := s.repo.GetSection(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"section_id": id}, err, "fetching section")
		return nil, eris.Wrapf(err, "fetching section %d", id)
	}
	if section == nil {
		return nil, apperr.NotFound("section %d not found", id)
	}

	if patch.Key != nil {
		value := strings.TrimSpace(*patch.Key)
		if value == "" {
			return nil, apperr.Invalid("key is required")
		}
		section.Key = value
	}
	if patch.Heading != nil {
		section.Heading = strings.TrimSpace(*patch.Heading)
	}
	if patch.Body != nil {
		section.Body = *patch.Body
	}
	if patch.ImageURL != nil {
		value := strings.TrimSpace(*patch.ImageURL)
		if value != "" && !validation.URL(value) {
			return nil, apperr.Invalid("image_url must be a valid URL")
		}
		section.ImageURL = value
	}
	if patch.CTALabel != nil {
		section.CTALabel = strings.TrimSpace(*patch.CTALabel)
	}
	if patch.CTAURL != nil {
		section.CTAURL = strings.TrimSpace(*patch.CTAURL)
	}
	if patch.Position != nil {
		section.Position = *patch.Position
	}

	if err := s.repo.UpdateSection(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// DeleteSection removes a section.
func (s *Service) DeleteSection(ctx context.Context, id uint) error {
	return s.repo.DeleteSection(ctx, id)
}

// ListTestimonials returns testimonials ordered by position.
func (s *Service) ListTestimonials(ctx context.Context, featuredOnly bool) ([]Testimonial, error) {
	items, err := s.repo.ListTestimonials(ctx, featuredOnly)
	if err != nil {
		s.reporter.Error(nil, err, "listing testimonials")
		return nil, eris.Wrap(err, "listing testimonials")
	}
	return items, nil
}

// CreateTestimonial validates input and stores a testimonial.
func (s *Service) CreateTestimonial(ctx context.Context, input TestimonialInput) (*Testimonial, error) {
	input.AuthorName = strings.TrimSpace(input.AuthorName)
	input.Quote = strings.TrimSpace(input.Quote)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	rating := input.Rating
	if rating == 0 {
		rating = 5
	}

	item := &Testimonial{
		AuthorName: input.AuthorName,
		AuthorRole: strings.TrimSpace(input.AuthorRole),
		Company:    strings.TrimSpace(input.Company),
		Quote:      input.Quote,
		AvatarURL:  strings.TrimSpace(input.AvatarURL),
		Rating:     rating,
		Featured:   input.Featured,
		Position:   input.Position,
	}
	if err := s.repo.CreateTestimonial(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateTestimonial applies patch to the testimonial with id.
func (s *Service) UpdateTestimonial(ctx context.Context, id uint, patch TestimonialPatch) (*Testimonial, error) {
	item, err := s.repo.GetTestimonial(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"testimonial_id": id}, err, "fetching testimonial")
		return nil, eris.Wrapf(err, "fetching testimonial %d", id)
	}
	if item == nil {
		return nil, apperr.NotFound("testimonial %d not found", id)
	}

	if patch.AuthorName != nil {
		value := strings.TrimSpace(*patch.AuthorName)
		if value == "" {
			return nil, apperr.Invalid("author_name is required")
		}
		item.AuthorName = value
	}
	if patch.AuthorRole != nil {
		item.AuthorRole = strings.TrimSpace(*patch.AuthorRole)
	}
	if patch.Company != nil {
		item.Company = strings.TrimSpace(*patch.Company)
	}
	if patch.Quote != nil {
		value := strings.TrimSpace(*patch.Quote)
		if value == "" {
			return nil, apperr.Invalid("quote is required")
		}
		item.Quote = value
	}
	if patch.AvatarURL != nil {
		item.AvatarURL = strings.TrimSpace(*patch.AvatarURL)
	}
	if patch.Rating != nil {
		if *patch.Rating < 1 || *patch.Rating > 5 {
			return nil, apperr.Invalid("rating must be between 1 and 5")
		}
		item.Rating = *patch.Rating
	}
	if patch.Featured != nil {
		item.Featured = *patch.Featured
	}
	if patch.Position != nil {
		item.Position = *patch.Position
	}

	if err := s.repo.UpdateTestimonial(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteTestimonial removes a testimonial.
func (s *Service) DeleteTestimonial(ctx context.Context, id uint) error {
	return s.repo.DeleteTestimonial(ctx, id)
}

// HomePage bundles what the landing page renders.
type HomePage struct {
	Page         *Page
	Testimonials []Testimonial
	GeneratedAt  time.Time
}

// Home loads the published "home" page, when present, plus featured testimonials.
func (s *Service) Home(ctx context.Context) (*HomePage, error) {
	home := &HomePage{GeneratedAt: time.Now().UTC()}

	page, err := s.repo.GetPageBySlug(ctx, "home")
	if err != nil {
		s.reporter.Error(logrus.Fields{"slug": "home"}, err, "fetching home page")
		return nil, eris.Wrap(err, "fetching home page")
	}
	if page != nil && page.Published {
		home.Page = page
	}

	testimonials, err := s.ListTestimonials(ctx, true)
	if err != nil {
		return nil, err
	}
	home.Testimonials = testimonials
	return home, nil
}

func resolveSlug(explicit, title string) (string, error) {
	value := strings.TrimSpace(explicit)
	if value == "" {
		value = slug.Make(title)
	}
	if !slug.Valid(value) {
		return "", apperr.Invalid("slug %q is invalid", value)
	}
	return value, nil
}
