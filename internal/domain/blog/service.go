package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/events"
	"eduvista/site/internal/domain/scheduler"
	"eduvista/site/internal/domain/slug"
	"eduvista/site/internal/platform/cache"
	"eduvista/site/internal/platform/log"
	"eduvista/site/internal/platform/validation"
)

const (
	// ProcessorName identifies the blog processor in scheduler reports.
	ProcessorName = "blog"
	// MaxPublicPage bounds public listing pagination.
	MaxPublicPage = 1000

	defaultPageSize = 10
	maxPageSize     = 50
	cachePrefix     = "blog:"
)

// Options configures the blog service. Publisher, Source, Cache and Events are optional.
type Options struct {
	Repository Repository
	Publisher  CMSPublisher
	Source     CMSSource
	Cache      cache.Cache
	CacheTTL   time.Duration
	Events     events.Dispatcher
	BaseURL    string
	Reporter   *log.Reporter
	Now        func() time.Time
}

// Service manages blog posts, authors and categories.
type Service struct {
	repo      Repository
	publisher CMSPublisher
	source    CMSSource
	cache     cache.Cache
	cacheTTL  time.Duration
	events    events.Dispatcher
	baseURL   string
	reporter  *log.Reporter
	now       func() time.Time
}

var _ scheduler.Processor = (*Service)(nil)

// NewService validates dependencies and constructs a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Repository == nil {
		return nil, eris.New("blog repository is required")
	}

	dispatcher := opts.Events
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:      opts.Repository,
		publisher: opts.Publisher,
		source:    opts.Source,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		events:    dispatcher,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		reporter:  opts.Reporter,
		now:       now,
	}, nil
}

// Name implements scheduler.Processor.
func (s *Service) Name() string {
	return ProcessorName
}

// ListPosts returns posts for the admin listing.
func (s *Service) ListPosts(ctx context.Context, filter PostFilter) (*PostPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Invalid("status %q is invalid", filter.Status)
	}

	posts, total, err := s.repo.ListPosts(ctx, filter)
	if err != nil {
		s.reporter.Error(logrus.Fields{"status": filter.Status}, err, "listing posts")
		return nil, eris.Wrap(err, "listing posts")
	}
	return &PostPage{Items: posts, Total: total, PageSize: filter.Limit}, nil
}

// GetPost returns the post with id.
func (s *Service) GetPost(ctx context.Context, id uint) (*Post, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"post_id": id}, err, "fetching post")
		return nil, eris.Wrapf(err, "fetching post %d", id)
	}
	if post == nil {
		return nil, apperr.NotFound("post %d not found", id)
	}
	return post, nil
}

// CreatePost validates input and stores a draft post.
func (s *Service) CreatePost(ctx context.Context, input PostInput) (*Post, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	postSlug, err := resolveSlug(input.Slug, input.Title)
	if err != nil {
		return nil, err
	}
	if err := s.checkRelations(ctx, input.AuthorID, input.CategoryID); err != nil {
		return nil, err
	}

	post := &Post{
		Slug:            postSlug,
		Title:           input.Title,
		Excerpt:         strings.TrimSpace(input.Excerpt),
		BodyHTML:        input.BodyHTML,
		CoverImageURL:   strings.TrimSpace(input.CoverImageURL),
		MetaDescription: strings.TrimSpace(input.MetaDescription),
		AuthorID:        input.AuthorID,
		CategoryID:      input.CategoryID,
		Tags:            normalizeTags(input.Tags),
		Status:          StatusDraft,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost applies patch to the post with id.
func (s *Service) UpdatePost(ctx context.Context, id uint, patch PostPatch) (*Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Slug != nil {
		value := strings.TrimSpace(*patch.Slug)
		if !slug.Valid(value) {
			return nil, apperr.Invalid("slug %q is invalid", value)
		}
		post.Slug = value
	}
	if patch.Title != nil {
		value := strings.TrimSpace(*patch.Title)
		if value == "" {
			return nil, apperr.Invalid("title is required")
		}
		post.Title = value
	}
	if patch.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.BodyHTML != nil {
		post.BodyHTML = *patch.BodyHTML
	}
	if patch.CoverImageURL != nil {
		value := strings.TrimSpace(*patch.CoverImageURL)
		if value != "" && !validation.URL(value) {
			return nil, apperr.Invalid("cover_image_url must be a valid URL")
		}
		post.CoverImageURL = value
	}
	if patch.MetaDescription != nil {
		value := strings.TrimSpace(*patch.MetaDescription)
		if len([]rune(value)) > 160 {
			return nil, apperr.Invalid("meta_description must be at most 160 characters")
		}
		post.MetaDescription = value
	}
	if patch.AuthorID != nil {
		post.AuthorID = patch.AuthorID
	}
	if patch.CategoryID != nil {
		post.CategoryID = patch.CategoryID
	}
	if patch.Tags != nil {
		post.Tags = normalizeTags(*patch.Tags)
	}
	if err := s.checkRelations(ctx, patch.AuthorID, patch.CategoryID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return post, nil
}

// DeletePost removes a post.
func (s *Service) DeletePost(ctx context.Context, id uint) error {
	if err := s.repo.DeletePost(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Schedule marks the post for publication at at, which must be in the future.
func (s *Service) Schedule(ctx context.Context, id uint, at time.Time) (*Post, error) {
	if at.IsZero() {
		return nil, apperr.Invalid("scheduled_at is required")
	}
	if !at.After(s.now()) {
		return nil, apperr.Invalid("scheduled_at must be in the future")
	}

	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == StatusPublished {
		return nil, apperr.Conflict("post %d is already published", id)
	}

	scheduled := at.UTC()
	post.Status = StatusScheduled
	post.ScheduledAt = &scheduled
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Publish makes the post public immediately.
func (s *Service) Publish(ctx context.Context, id uint) (*Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == StatusPublished {
		return nil, apperr.Conflict("post %d is already published", id)
	}

	if err := s.publish(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Archive hides a post from the public site.
func (s *Service) Archive(ctx context.Context, id uint) (*Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Status = StatusArchived
	post.ScheduledAt = nil
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return post, nil
}

// ProcessScheduled publishes every scheduled post that is due. A post whose
// publication fails returns to draft.
func (s *Service) ProcessScheduled(ctx context.Context, now time.Time) (scheduler.Report, error) {
	report := scheduler.Report{Kind: ProcessorName}

	due, err := s.repo.DuePosts(ctx, now)
	if err != nil {
		s.reporter.Error(nil, err, "loading due posts")
		return report, eris.Wrap(err, "loading due posts")
	}

	for i := range due {
		post := &due[i]
		err := s.publish(ctx, post)
		if err != nil {
			post.Status = StatusDraft
			if updateErr := s.repo.UpdatePost(ctx, post); updateErr != nil {
				s.reporter.Error(logrus.Fields{"post_id": post.ID}, updateErr, "reverting failed scheduled post")
			}
		}
		report.Record(post.ID, err)
	}
	return report, nil
}

func (s *Service) publish(ctx context.Context, post *Post) error {
	fields := logrus.Fields{"post_id": post.ID, "slug": post.Slug}
	now := s.now().UTC()

	candidate := *post
	candidate.Status = StatusPublished
	candidate.PublishedAt = &now
	candidate.ScheduledAt = nil

	if s.publisher != nil {
		documentID, err := s.publisher.PublishPost(ctx, candidate)
		if err != nil {
			s.reporter.Error(fields, err, "pushing post to cms")
			return apperr.Upstream(err, "publishing post %d to cms", post.ID)
		}
		candidate.SanityID = documentID
	}

	if err := s.repo.UpdatePost(ctx, &candidate); err != nil {
		s.reporter.Error(fields, err, "marking post published")
		return err
	}
	*post = candidate
	s.invalidate(ctx)

	s.events.Dispatch(ctx, events.Event{
		Trigger:    events.BlogPublished,
		Title:      post.Title,
		URL:        s.PostURL(post.Slug),
		Data:       map[string]string{"excerpt": post.Excerpt, "slug": post.Slug},
		OccurredAt: now,
	})
	return nil
}

// PostURL returns the public URL of a post.
func (s *Service) PostURL(postSlug string) string {
	return fmt.Sprintf("%s/blog/%s", s.baseURL, postSlug)
}

// PublicPosts lists published posts newest first. page is 1-based and at
// most MaxPublicPage. Unknown categories yield an empty page that is not cached.
func (s *Service) PublicPosts(ctx context.Context, categorySlug string, page, pageSize int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPublicPage {
		return nil, apperr.Invalid("page must be at most %d", MaxPublicPage)
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	categorySlug = strings.TrimSpace(categorySlug)

	if categorySlug != "" {
		category, err := s.repo.GetCategoryBySlug(ctx, categorySlug)
		if err != nil {
			s.reporter.Error(logrus.Fields{"category": categorySlug}, err, "fetching category by slug")
			return nil, eris.Wrapf(err, "fetching category: %s", categorySlug)
		}
		if category == nil {
			return &PostPage{Items: []Post{}, Page: page, PageSize: pageSize}, nil
		}
	}

	key := fmt.Sprintf("%spublic:%s:%d:%d", cachePrefix, categorySlug, page, pageSize)
	var cached PostPage
	found, err := cache.GetJSON(ctx, s.cache, key, &cached)
	if err != nil {
		s.reporter.Warn(logrus.Fields{"key": key}, err, "reading blog cache")
	}
	if found {
		return &cached, nil
	}

	posts, total, err := s.repo.ListPosts(ctx, PostFilter{
		Status:       StatusPublished,
		CategorySlug: categorySlug,
		Limit:        pageSize,
		Offset:       (page - 1) * pageSize,
	})
	if err != nil {
		s.reporter.Error(logrus.Fields{"category": categorySlug}, err, "listing public posts")
		return nil, eris.Wrap(err, "listing public posts")
	}
	if posts == nil {
		posts = []Post{}
	}

	result := &PostPage{Items: posts, Total: total, Page: page, PageSize: pageSize}
	if err := cache.SetJSON(ctx, s.cache, key, result, s.cacheTTL); err != nil {
		s.reporter.Warn(logrus.Fields{"key": key}, err, "writing blog cache")
	}
	return result, nil
}

// PublicPost returns a published post by slug.
func (s *Service) PublicPost(ctx context.Context, postSlug string) (*Post, error) {
	trimmed := strings.TrimSpace(postSlug)
	if trimmed == "" {
		return nil, apperr.Invalid("slug is required")
	}

	post, err := s.repo.GetPostBySlug(ctx, trimmed)
	if err != nil {
		s.reporter.Error(logrus.Fields{"slug": trimmed}, err, "fetching post by slug")
		return nil, eris.Wrapf(err, "fetching post: %s", trimmed)
	}
	if post == nil || post.Status != StatusPublished {
		return nil, apperr.NotFound("post %s not found", trimmed)
	}
	return post, nil
}

// CountByStatus returns the number of posts per status.
func (s *Service) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	counts, err := s.repo.CountPostsByStatus(ctx)
	if err != nil {
		s.reporter.Error(nil, err, "counting posts")
		return nil, eris.Wrap(err, "counting posts")
	}
	return counts, nil
}

// SyncFromCMS imports CMS documents, upserting posts by slug.
func (s *Service) SyncFromCMS(ctx context.Context) (*SyncResult, error) {
	if s.source == nil {
		return nil, apperr.Disabled("cms source is not configured")
	}

	docs, err := s.source.FetchPosts(ctx)
	if err != nil {
		s.reporter.Error(nil, err, "fetching cms posts")
		return nil, apperr.Upstream(err, "fetching cms posts")
	}

	result := &SyncResult{Fetched: len(docs)}
	for _, doc := range docs {
		created, err := s.importDocument(ctx, doc)
		switch {
		case err != nil:
			s.reporter.Warn(logrus.Fields{"sanity_id": doc.ID, "slug": doc.Slug}, err, "skipping cms document")
			result.Skipped++
		case created:
			result.Created++
		default:
			result.Updated++
		}
	}

	s.invalidate(ctx)
	return result, nil
}

func (s *Service) importDocument(ctx context.Context, doc CMSPost) (bool, error) {
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		return false, apperr.Invalid("document %s has no title", doc.ID)
	}
	postSlug, err := resolveSlug(doc.Slug, title)
	if err != nil {
		return false, err
	}

	post, err := s.repo.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return false, err
	}
	created := post == nil
	if created {
		post = &Post{Slug: postSlug}
	}

	post.Title = title
	post.Excerpt = strings.TrimSpace(doc.Excerpt)
	post.BodyHTML = doc.BodyHTML
	post.CoverImageURL = strings.TrimSpace(doc.CoverImageURL)
	post.Tags = normalizeTags(doc.Tags)
	post.SanityID = doc.ID
	post.Status = StatusPublished
	post.ScheduledAt = nil
	if doc.PublishedAt != nil {
		published := doc.PublishedAt.UTC()
		post.PublishedAt = &published
	} else if post.PublishedAt == nil {
		now := s.now().UTC()
		post.PublishedAt = &now
	}

	if name := strings.TrimSpace(doc.AuthorName); name != "" {
		author, err := s.ensureAuthor(ctx, name)
		if err != nil {
			return false, err
		}
		post.AuthorID = &author.ID
	}
	if name := strings.TrimSpace(doc.CategoryTitle); name != "" {
		category, err := s.ensureCategory(ctx, name)
		if err != nil {
			return false, err
		}
		post.CategoryID = &category.ID
	}

	if created {
		return true, s.repo.CreatePost(ctx, post)
	}
	return false, s.repo.UpdatePost(ctx, post)
}

func (s *Service) ensureAuthor(ctx context.Context, name string) (*Author, error) {
	authorSlug := slug.Make(name)
	author, err := s.repo.GetAuthorBySlug(ctx, authorSlug)
	if err != nil || author != nil {
		return author, err
	}
	author = &Author{Name: name, Slug: authorSlug}
	if err := s.repo.CreateAuthor(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *Service) ensureCategory(ctx context.Context, name string) (*Category, error) {
	categorySlug := slug.Make(name)
	category, err := s.repo.GetCategoryBySlug(ctx, categorySlug)
	if err != nil || category != nil {
		return category, err
	}
	category = &Category{Name: name, Slug: categorySlug}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListAuthors returns every author.
func (s *Service) ListAuthors(ctx context.Context) ([]Author, error) {
	authors, err := s.repo.ListAuthors(ctx)
	if err != nil {
		s.reporter.Error(nil, err, "listing authors")
		return nil, eris.Wrap(err, "listing authors")
	}
	return authors, nil
}

// CreateAuthor validates input and stores an author.
func (s *Service) CreateAuthor(ctx context.Context, input AuthorInput) (*Author, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	authorSlug, err := resolveSlug(input.Slug, input.Name)
	if err != nil {
		return nil, err
	}

	author := &Author{
		Name:      input.Name,
		Slug:      authorSlug,
		Bio:       strings.TrimSpace(input.Bio),
		AvatarURL: strings.TrimSpace(input.AvatarURL),
	}
	if err := s.repo.CreateAuthor(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

// UpdateAuthor replaces the fields of the author with id.
func (s *Service) UpdateAuthor(ctx context.Context, id uint, input AuthorInput) (*Author, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	author, err := s.repo.GetAuthor(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"author_id": id}, err, "fetching author")
		return nil, eris.Wrapf(err, "fetching author %d", id)
	}
	if author == nil {
		return nil, apperr.NotFound("author %d not found", id)
	}

	authorSlug := author.Slug
	if strings.TrimSpace(input.Slug) != "" {
		if authorSlug, err = resolveSlug(input.Slug, input.Name); err != nil {
			return nil, err
		}
	}

	author.Name = input.Name
	author.Slug = authorSlug
	author.Bio = strings.TrimSpace(input.Bio)
	author.AvatarURL = strings.TrimSpace(input.AvatarURL)
	if err := s.repo.UpdateAuthor(ctx, author); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return author, nil
}

// DeleteAuthor removes an author. Posts keep existing without one.
func (s *Service) DeleteAuthor(ctx context.Context, id uint) error {
	if err := s.repo.DeleteAuthor(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		s.reporter.Error(nil, err, "listing categories")
		return nil, eris.Wrap(err, "listing categories")
	}
	return categories, nil
}

// CreateCategory validates input and stores a category.
func (s *Service) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	categorySlug, err := resolveSlug(input.Slug, input.Name)
	if err != nil {
		return nil, err
	}

	category := &Category{
		Name:        input.Name,
		Slug:        categorySlug,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory replaces the fields of the category with id.
func (s *Service) UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"category_id": id}, err, "fetching category")
		return nil, eris.Wrapf(err, "fetching category %d", id)
	}
	if category == nil {
		return nil, apperr.NotFound("category %d not found", id)
	}

	categorySlug := category.Slug
	if strings.TrimSpace(input.Slug) != "" {
		if categorySlug, err = resolveSlug(input.Slug, input.Name); err != nil {
			return nil, err
		}
	}

	category.Name = input.Name
	category.Slug = categorySlug
	category.Description = strings.TrimSpace(input.Description)
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

// DeleteCategory removes a category. Posts keep existing without one.
func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) checkRelations(ctx context.Context, authorID, categoryID *uint) error {
	if authorID != nil {
		author, err := s.repo.GetAuthor(ctx, *authorID)
		if err != nil {
			return eris.Wrapf(err, "fetching author %d", *authorID)
		}
		if author == nil {
			return apperr.Invalid("author %d does not exist", *authorID)
		}
	}
	if categoryID != nil {
		category, err := s.repo.GetCategory(ctx, *categoryID)
		if err != nil {
			return eris.Wrapf(err, "fetching category %d", *categoryID)
		}
		if category == nil {
			return apperr.Invalid("category %d does not exist", *categoryID)
		}
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		s.reporter.Warn(logrus.Fields{"prefix": cachePrefix}, err, "invalidating blog cache")
	}
}

func resolveSlug(explicit, fallback string) (string, error) {
	value := strings.TrimSpace(explicit)
	if value == "" {
		value = slug.Make(fallback)
	}
	if !slug.Valid(value) {
		return "", apperr.Invalid("slug %q is invalid", value)
	}
	return value, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		value := strings.ToLower(strings.TrimSpace(tag))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
