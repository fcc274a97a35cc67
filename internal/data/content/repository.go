package content

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eduvista/site/internal/data/crud"
	domain "eduvista/site/internal/domain/content"
)

// Repository persists pages, sections and testimonials using Gorm.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed content repository.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &Repository{db: db, logger: logger}, nil
}

var _ domain.Repository = (*Repository)(nil)

// ListPages returns pages ordered by title, optionally only published ones.
func (r *Repository) ListPages(ctx context.Context, publishedOnly bool) ([]domain.Page, error) {
	var records []PageRecord

	query := r.db.WithContext(ctx).Order("title ASC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if err := query.Find(&records).Error; err != nil {
		r.logError(nil, err, "listing pages")
		return nil, eris.Wrap(err, "listing pages")
	}

	pages := make([]domain.Page, 0, len(records))
	for i := range records {
		pages = append(pages, *toDomainPage(&records[i]))
	}
	return pages, nil
}

// GetPage returns the page with its sections, or nil when not found.
func (r *Repository) GetPage(ctx context.Context, id uint) (*domain.Page, error) {
	return r.findPage(ctx, "id = ?", id)
}

// GetPageBySlug returns the page with its sections, or nil when not found.
func (r *Repository) GetPageBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, eris.New("slug is required")
	}
	return r.findPage(ctx, "slug = ?", trimmed)
}

func (r *Repository) findPage(ctx context.Context, query string, arg any) (*domain.Page, error) {
	var record PageRecord
	err := r.db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		First(&record, query, arg).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"lookup": arg}, err, "fetching page")
		return nil, eris.Wrap(err, "fetching page")
	}
	return toDomainPage(&record), nil
}

// CreatePage stores a new page.
func (r *Repository) CreatePage(ctx context.Context, page *domain.Page) error {
	if page == nil {
		return eris.New("page is nil")
	}

	record := fromDomainPage(page)
	if err := crud.Insert(ctx, r.db, record, "page "+record.Slug); err != nil {
		r.logError(logrus.Fields{"slug": record.Slug}, err, "creating page")
		return err
	}
	*page = *toDomainPage(record)
	return nil
}

// UpdatePage persists every field of page.
func (r *Repository) UpdatePage(ctx context.Context, page *domain.Page) error {
	if page == nil {
		return eris.New("page is nil")
	}

	record := fromDomainPage(page)
	if err := crud.Save(ctx, r.db, record, "page "+record.Slug); err != nil {
		r.logError(logrus.Fields{"page_id": record.ID}, err, "updating page")
		return err
	}
	page.UpdatedAt = record.UpdatedAt
	return nil
}

// DeletePage removes a page. Sections cascade.
func (r *Repository) DeletePage(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", id).Delete(&SectionRecord{}).Error; err != nil {
			return eris.Wrap(err, "deleting sections")
		}
		return crud.Remove[PageRecord](ctx, tx, id, "page")
	})
	if err != nil {
		r.logError(logrus.Fields{"page_id": id}, err, "deleting page")
	}
	return err
}

// CountPages returns the number of stored pages.
func (r *Repository) CountPages(ctx context.Context) (int64, error) {
	count, err := crud.Count[PageRecord](ctx, r.db, nil)
	if err != nil {
		r.logError(nil, err, "counting pages")
	}
	return count, err
}

// ListSections returns the ordered sections of a page.
func (r *Repository) ListSections(ctx context.Context, pageID uint) ([]domain.Section, error) {
	var records []SectionRecord
	if err := r.db.WithContext(ctx).Where("page_id = ?", pageID).Order("position ASC, id ASC").Find(&records).Error; err != nil {
		r.logError(logrus.Fields{"page_id": pageID}, err, "listing sections")
		return nil, eris.Wrap(err, "listing sections")
	}

	sections := make([]domain.Section, 0, len(records))
	for i := range records {
		sections = append(sections, toDomainSection(&records[i]))
	}
	return sections, nil
}

// GetSection returns a section or nil when not found.
func (r *Repository) GetSection(ctx context.Context, id uint) (*domain.Section, error) {
	record, err := crud.Find[SectionRecord](ctx, r.db, id)
	if err != nil || record == nil {
		return nil, err
	}
	section := toDomainSection(record)
	return &section, nil
}

// CreateSection stores a new section.
func (r *Repository) CreateSection(ctx context.Context, section *domain.Section) error {
	if section == nil {
		return eris.New("section is nil")
	}

	record := fromDomainSection(section)
	if err := crud.Insert(ctx, r.db, record, "section "+record.Key); err != nil {
		r.logError(logrus.Fields{"page_id": record.PageID, "key": record.Key}, err, "creating section")
		return err
	}
	*section = toDomainSection(record)
	return nil
}

// UpdateSection persists every field of section.
func (r *Repository) UpdateSection(ctx context.Context, section *domain.Section) error {
	if section == nil {
		return eris.New("section is nil")
	}

	record := fromDomainSection(section)
	if err := crud.Save(ctx, r.db, record, "section "+record.Key); err != nil {
		r.logError(logrus.Fields{"section_id": record.ID}, err, "updating section")
		return err
	}
	section.UpdatedAt = record.UpdatedAt
	return nil
}

// DeleteSection removes a section.
func (r *Repository) DeleteSection(ctx context.Context, id uint) error {
	return crud.Remove[SectionRecord](ctx, r.db, id, "section")
}

// ListTestimonials returns testimonials ordered by position.
func (r *Repository) ListTestimonials(ctx context.Context, featuredOnly bool) ([]domain.Testimonial, error) {
	var records []TestimonialRecord

	query := r.db.WithContext(ctx).Order("position ASC, id ASC")
	if featuredOnly {
		query = query.Where("featured = ?", true)
	}
	if err := query.Find(&records).Error; err != nil {
		r.logError(nil, err, "listing testimonials")
		return nil, eris.Wrap(err, "listing testimonials")
	}

	items := make([]domain.Testimonial, 0, len(records))
	for i := range records {
		items = append(items, toDomainTestimonial(&records[i]))
	}
	return items, nil
}

// GetTestimonial returns a testimonial or nil when not found.
func (r *Repository) GetTestimonial(ctx context.Context, id uint) (*domain.Testimonial, error) {
	record, err := crud.Find[TestimonialRecord](ctx, r.db, id)
	if err != nil || record == nil {
		return nil, err
	}
	item := toDomainTestimonial(record)
	return &item, nil
}

// CreateTestimonial stores a new testimonial.
func (r *Repository) CreateTestimonial(ctx context.Context, item *domain.Testimonial) error {
	if item == nil {
		return eris.New("testimonial is nil")
	}

	record := fromDomainTestimonial(item)
	if err := crud.Insert(ctx, r.db, record, "testimonial"); err != nil {
		r.logError(nil, err, "creating testimonial")
		return err
	}
	*item = toDomainTestimonial(record)
	return nil
}

// UpdateTestimonial persists every field of item.
func (r *Repository) UpdateTestimonial(ctx context.Context, item *domain.Testimonial) error {
	if item == nil {
		return eris.New("testimonial is nil")
	}

	record := fromDomainTestimonial(item)
	if err := crud.Save(ctx, r.db, record, "testimonial"); err != nil {
		r.logError(logrus.Fields{"testimonial_id": record.ID}, err, "updating testimonial")
		return err
	}
	item.UpdatedAt = record.UpdatedAt
	return nil
}

// DeleteTestimonial removes a testimonial.
func (r *Repository) DeleteTestimonial(ctx context.Context, id uint) error {
	return crud.Remove[TestimonialRecord](ctx, r.db, id, "testimonial")
}

func (r *Repository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil || err == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func toDomainPage(record *PageRecord) *domain.Page {
	page := &domain.Page{
		ID:          record.ID,
		Slug:        record.Slug,
		Title:       record.Title,
		Description: record.Description,
		Published:   record.Published,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
	for i := range record.Sections {
		page.Sections = append(page.Sections, toDomainSection(&record.Sections[i]))
	}
	return page
}

func fromDomainPage(page *domain.Page) *PageRecord {
	return &PageRecord{
		ID:          page.ID,
		Slug:        page.Slug,
		Title:       page.Title,
		Description: page.Description,
		Published:   page.Published,
		CreatedAt:   page.CreatedAt,
		UpdatedAt:   page.UpdatedAt,
	}
}

func toDomainSection(record *SectionRecord) domain.Section {
	return domain.Section{
		ID:        record.ID,
		PageID:    record.PageID,
		Key:       record.Key,
		Heading:   record.Heading,
		Body:      record.Body,
		ImageURL:  record.ImageURL,
		CTALabel:  record.CTALabel,
		CTAURL:    record.CTAURL,
		Position:  record.Position,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func fromDomainSection(section *domain.Section) *SectionRecord {
	return &SectionRecord{
		ID:        section.ID,
		PageID:    section.PageID,
		Key:       section.Key,
		Heading:   section.Heading,
		Body:      section.Body,
		ImageURL:  section.ImageURL,
		CTALabel:  section.CTALabel,
		CTAURL:    section.CTAURL,
		Position:  section.Position,
		CreatedAt: section.CreatedAt,
		UpdatedAt: section.UpdatedAt,
	}
}

func toDomainTestimonial(record *TestimonialRecord) domain.Testimonial {
	return domain.Testimonial{
		ID:         record.ID,
		AuthorName: record.AuthorName,
		AuthorRole: record.AuthorRole,
		Company:    record.Company,
		Quote:      record.Quote,
		AvatarURL:  record.AvatarURL,
		Rating:     record.Rating,
		Featured:   record.Featured,
		Position:   record.Position,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
}

func fromDomainTestimonial(item *domain.Testimonial) *TestimonialRecord {
	return &TestimonialRecord{
		ID:         item.ID,
		AuthorName: item.AuthorName,
		AuthorRole: item.AuthorRole,
		Company:    item.Company,
		Quote:      item.Quote,
		AvatarURL:  item.AvatarURL,
		Rating:     item.Rating,
		Featured:   item.Featured,
		Position:   item.Position,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
}
