package blog

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eduvista/site/internal/data/crud"
	domain "eduvista/site/internal/domain/blog"
)

// Repository persists blog posts, authors and categories using Gorm.
type Repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed blog repository.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*Repository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &Repository{db: db, logger: logger}, nil
}

var _ domain.Repository = (*Repository)(nil)

// ListPosts returns the filtered page of posts and the total number of matches.
func (r *Repository) ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", string(filter.Status))
		}
		if filter.CategorySlug != "" {
			categories := r.db.Model(&CategoryRecord{}).Select("id").Where("slug = ?", filter.CategorySlug)
			db = db.Where("category_id IN (?)", categories)
		}
		if tag := strings.TrimSpace(filter.Tag); tag != "" {
			db = db.Where("tags LIKE ?", `%"`+strings.ToLower(tag)+`"%`)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&PostRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		r.logError(logrus.Fields{"status": filter.Status}, err, "counting posts")
		return nil, 0, eris.Wrap(err, "counting posts")
	}

	order := "created_at DESC, id DESC"
	if filter.Status == domain.StatusPublished {
		order = "published_at DESC, id DESC"
	}

	var records []PostRecord
	err := crud.Paginate(r.db.WithContext(ctx).Scopes(scope), filter.Limit, filter.Offset).
		Preload("Author").
		Preload("Category").
		Order(order).
		Find(&records).Error
	if err != nil {
		r.logError(logrus.Fields{"status": filter.Status}, err, "listing posts")
		return nil, 0, eris.Wrap(err, "listing posts")
	}

	return toDomainPosts(records), total, nil
}

// GetPost returns the post with id or nil when not found.
func (r *Repository) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	return r.findPost(ctx, "id = ?", id)
}

// GetPostBySlug returns the post with slug or nil when not found.
func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, eris.New("slug is required")
	}
	return r.findPost(ctx, "slug = ?", trimmed)
}

func (r *Repository) findPost(ctx context.Context, query string, arg any) (*domain.Post, error) {
	var record PostRecord
	err := r.db.WithContext(ctx).Preload("Author").Preload("Category").First(&record, query, arg).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"lookup": arg}, err, "fetching post")
		return nil, eris.Wrap(err, "fetching post")
	}
	post := toDomainPost(&record)
	return &post, nil
}

// CreatePost stores a new post.
func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) error {
	if post == nil {
		return eris.New("post is nil")
	}

	record := fromDomainPost(post)
	if err := crud.Insert(ctx, r.db.Omit(clause.Associations), record, "post "+record.Slug); err != nil {
		r.logError(logrus.Fields{"slug": record.Slug}, err, "creating post")
		return err
	}
	post.ID = record.ID
	post.CreatedAt = record.CreatedAt
	post.UpdatedAt = record.UpdatedAt
	return nil
}

// UpdatePost persists every column of post.
func (r *Repository) UpdatePost(ctx context.Context, post *domain.Post) error {
	if post == nil {
		return eris.New("post is nil")
	}

	record := fromDomainPost(post)
	if err := crud.Save(ctx, r.db.Omit(clause.Associations), record, "post "+record.Slug); err != nil {
		r.logError(logrus.Fields{"post_id": record.ID}, err, "updating post")
		return err
	}
	post.UpdatedAt = record.UpdatedAt
	return nil
}

// DeletePost removes a post.
func (r *Repository) DeletePost(ctx context.Context, id uint) error {
	return crud.Remove[PostRecord](ctx, r.db, id, "post")
}

// DuePosts returns scheduled posts whose scheduled_at has passed, oldest first.
func (r *Repository) DuePosts(ctx context.Context, now time.Time) ([]domain.Post, error) {
	var records []PostRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", string(domain.StatusScheduled), now.UTC()).
		Order("scheduled_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		r.logError(nil, err, "selecting due posts")
		return nil, eris.Wrap(err, "selecting due posts")
	}
	return toDomainPosts(records), nil
}

// CountPostsByStatus groups post counts by status.
func (r *Repository) CountPostsByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&PostRecord{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error
	if err != nil {
		r.logError(nil, err, "counting posts by status")
		return nil, eris.Wrap(err, "counting posts by status")
	}

	counts := map[domain.Status]int64{
		domain.StatusDraft:     0,
		domain.StatusScheduled: 0,
		domain.StatusPublished: 0,
		domain.StatusArchived:  0,
	}
	for _, row := range rows {
		counts[domain.Status(row.Status)] = row.Count
	}
	return counts, nil
}

// ListAuthors returns authors ordered by name.
func (r *Repository) ListAuthors(ctx context.Context) ([]domain.Author, error) {
	var records []AuthorRecord
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&records).Error; err != nil {
		r.logError(nil, err, "listing authors")
		return nil, eris.Wrap(err, "listing authors")
	}

	authors := make([]domain.Author, 0, len(records))
	for i := range records {
		authors = append(authors, *toDomainAuthor(&records[i]))
	}
	return authors, nil
}

// GetAuthor returns the author with id or nil.
func (r *Repository) GetAuthor(ctx context.Context, id uint) (*domain.Author, error) {
	record, err := crud.Find[AuthorRecord](ctx, r.db, id)
	if err != nil || record == nil {
		return nil, err
	}
	return toDomainAuthor(record), nil
}

// GetAuthorBySlug returns the author with slug or nil.
func (r *Repository) GetAuthorBySlug(ctx context.Context, slug string) (*domain.Author, error) {
	record, err := crud.Find[AuthorRecord](ctx, r.db, "slug = ?", slug)
	if err != nil || record == nil {
		return nil, err
	}
	return toDomainAuthor(record), nil
}

// CreateAuthor stores a new author.
func (r *Repository) CreateAuthor(ctx context.Context, author *domain.Author) error {
	record := fromDomainAuthor(author)
	if err := crud.Insert(ctx, r.db, record, "author "+record.Slug); err != nil {
		r.logError(logrus.Fields{"slug": record.Slug}, err, "creating author")
		return err
	}
	*author = *toDomainAuthor(record)
	return nil
}

// UpdateAuthor persists every column of author.
func (r *Repository) UpdateAuthor(ctx context.Context, author *domain.Author) error {
	record := fromDomainAuthor(author)
	if err := crud.Save(ctx, r.db, record, "author "+record.Slug); err != nil {
		r.logError(logrus.Fields{"author_id": record.ID}, err, "updating author")
		return err
	}
	author.UpdatedAt = record.UpdatedAt
	return nil
}

// DeleteAuthor removes an author and detaches their posts.
func (r *Repository) DeleteAuthor(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&PostRecord{}).Where("author_id = ?", id).Update("author_id", nil).Error; err != nil {
			return eris.Wrap(err, "detaching posts from author")
		}
		return crud.Remove[AuthorRecord](ctx, tx, id, "author")
	})
}

// ListCategories returns categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var records []CategoryRecord
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&records).Error; err != nil {
		r.logError(nil, err, "listing categories")
		return nil, eris.Wrap(err, "listing categories")
	}

	categories := make([]domain.Category, 0, len(records))
	for i := range records {
		categories = append(categories, *toDomainCategory(&records[i]))
	}
	return categories, nil
}

// GetCategory returns the category with id or nil.
func (r *Repository) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	record, err := crud.Find[CategoryRecord](ctx, r.db, id)
	if err != nil || record == nil {
		return nil, err
	}
	return toDomainCategory(record), nil
}

// GetCategoryBySlug returns the category with slug or nil.
func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	record, err := crud.Find[CategoryRecord](ctx, r.db, "slug = ?", slug)
	if err != nil || record == nil {
		return nil, err
	}
	return toDomainCategory(record), nil
}

// CreateCategory stores a new category.
func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	record := fromDomainCategory(category)
	if err := crud.Insert(ctx, r.db, record, "category "+record.Slug); err != nil {
		r.logError(logrus.Fields{"slug": record.Slug}, err, "creating category")
		return err
	}
	*category = *toDomainCategory(record)
	return nil
}

// UpdateCategory persists every column of category.
func (r *Repository) UpdateCategory(ctx context.Context, category *domain.Category) error {
	record := fromDomainCategory(category)
	if err := crud.Save(ctx, r.db, record, "category "+record.Slug); err != nil {
		r.logError(logrus.Fields{"category_id": record.ID}, err, "updating category")
		return err
	}
	category.UpdatedAt = record.UpdatedAt
	return nil
}

// DeleteCategory removes a category and detaches its posts.
func (r *Repository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&PostRecord{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return eris.Wrap(err, "detaching posts from category")
		}
		return crud.Remove[CategoryRecord](ctx, tx, id, "category")
	})
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

func toDomainPosts(records []PostRecord) []domain.Post {
	posts := make([]domain.Post, 0, len(records))
	for i := range records {
		posts = append(posts, toDomainPost(&records[i]))
	}
	return posts
}

func toDomainPost(record *PostRecord) domain.Post {
	post := domain.Post{
		ID:              record.ID,
		Slug:            record.Slug,
		Title:           record.Title,
		Excerpt:         record.Excerpt,
		BodyHTML:        record.BodyHTML,
		CoverImageURL:   record.CoverImageURL,
		MetaDescription: record.MetaDescription,
		AuthorID:        record.AuthorID,
		CategoryID:      record.CategoryID,
		Tags:            record.Tags,
		Status:          domain.Status(record.Status),
		ScheduledAt:     utc(record.ScheduledAt),
		PublishedAt:     utc(record.PublishedAt),
		SanityID:        record.SanityID,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if record.Author != nil {
		post.Author = toDomainAuthor(record.Author)
	}
	if record.Category != nil {
		post.Category = toDomainCategory(record.Category)
	}
	return post
}

func fromDomainPost(post *domain.Post) *PostRecord {
	return &PostRecord{
		ID:              post.ID,
		Slug:            post.Slug,
		Title:           post.Title,
		Excerpt:         post.Excerpt,
		BodyHTML:        post.BodyHTML,
		CoverImageURL:   post.CoverImageURL,
		MetaDescription: post.MetaDescription,
		AuthorID:        post.AuthorID,
		CategoryID:      post.CategoryID,
		Tags:            post.Tags,
		Status:          string(post.Status),
		ScheduledAt:     utc(post.ScheduledAt),
		PublishedAt:     utc(post.PublishedAt),
		SanityID:        post.SanityID,
		CreatedAt:       post.CreatedAt,
		UpdatedAt:       post.UpdatedAt,
	}
}

func toDomainAuthor(record *AuthorRecord) *domain.Author {
	return &domain.Author{
		ID:        record.ID,
		Name:      record.Name,
		Slug:      record.Slug,
		Bio:       record.Bio,
		AvatarURL: record.AvatarURL,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func fromDomainAuthor(author *domain.Author) *AuthorRecord {
	return &AuthorRecord{
		ID:        author.ID,
		Name:      author.Name,
		Slug:      author.Slug,
		Bio:       author.Bio,
		AvatarURL: author.AvatarURL,
		CreatedAt: author.CreatedAt,
		UpdatedAt: author.UpdatedAt,
	}
}

func toDomainCategory(record *CategoryRecord) *domain.Category {
	return &domain.Category{
		ID:          record.ID,
		Name:        record.Name,
		Slug:        record.Slug,
		Description: record.Description,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func fromDomainCategory(category *domain.Category) *CategoryRecord {
	return &CategoryRecord{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	value := t.UTC()
	return &value
}
