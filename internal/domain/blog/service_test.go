package blog_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"

	blogdata "eduvista/site/internal/data/blog"
	"eduvista/site/internal/data/dbtest"
	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/blog"
	"eduvista/site/internal/domain/events"
	"eduvista/site/internal/platform/cache"
	"eduvista/site/internal/platform/log"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, event events.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

type stubPublisher struct {
	err   error
	calls int
}

func (p *stubPublisher) PublishPost(_ context.Context, post blog.Post) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return "post-" + post.Slug, nil
}

type stubSource struct {
	docs []blog.CMSPost
}

func (s *stubSource) FetchPosts(context.Context) ([]blog.CMSPost, error) {
	return s.docs, nil
}

type countingCache struct {
	*cache.Memory

	mu   sync.Mutex
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Memory.Set(ctx, key, value, ttl)
}

func (c *countingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

type fixture struct {
	service    *blog.Service
	cache      *countingCache
	dispatcher *recordingDispatcher
	publisher  *stubPublisher
	source     *stubSource
	now        time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.Open(t, &blogdata.AuthorRecord{}, &blogdata.CategoryRecord{}, &blogdata.PostRecord{})
	repo, err := blogdata.NewRepository(db, log.Discard())
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}

	f := &fixture{
		cache:      &countingCache{Memory: cache.NewMemory()},
		dispatcher: &recordingDispatcher{},
		publisher:  &stubPublisher{},
		source:     &stubSource{},
		now:        time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC),
	}
	f.service, err = blog.NewService(blog.Options{
		Repository: repo,
		Publisher:  f.publisher,
		Source:     f.source,
		Cache:      f.cache,
		CacheTTL:   time.Minute,
		Events:     f.dispatcher,
		BaseURL:    "https://eduvista.example/",
		Now:        func() time.Time { return f.now },
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return f
}

func TestCreatePostGeneratesSlugAndDraftStatus(t *testing.T) {
	t.Parallel()

	f := setup(t)

	post, err := f.service.CreatePost(context.Background(), blog.PostInput{
		Title: "Five Ways to Boost Course Completion",
		Tags:  []string{"Engagement", " engagement ", "LMS"},
	})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if post.Slug != "five-ways-to-boost-course-completion" {
		t.Fatalf("unexpected slug %q", post.Slug)
	}
	if post.Status != blog.StatusDraft {
		t.Fatalf("expected draft status, got %q", post.Status)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "engagement" || post.Tags[1] != "lms" {
		t.Fatalf("expected normalised tags, got %v", post.Tags)
	}
}

func TestCreatePostValidation(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	missing := uint(99)

	cases := []blog.PostInput{
		{},
		{Title: "Valid", Slug: "Not_A_Slug"},
		{Title: "Valid", CoverImageURL: "not a url"},
		{Title: "Valid", AuthorID: &missing},
	}
	for _, input := range cases {
		if _, err := f.service.CreatePost(ctx, input); !apperr.IsKind(err, apperr.ErrInvalid) {
			t.Fatalf("expected invalid error for %+v, got %v", input, err)
		}
	}
}

func TestCreatePostDuplicateSlugConflicts(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	if _, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Hello"}); err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if _, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Hello"}); !apperr.IsKind(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestScheduleRequiresFutureTime(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	post, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Later"})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	if _, err := f.service.Schedule(ctx, post.ID, f.now.Add(-time.Minute)); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid error for past time, got %v", err)
	}

	scheduled, err := f.service.Schedule(ctx, post.ID, f.now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if scheduled.Status != blog.StatusScheduled || scheduled.ScheduledAt == nil {
		t.Fatalf("expected scheduled post, got %+v", scheduled)
	}
}

func TestPublishPushesToCMSAndEmitsEvent(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	post, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Launch Day"})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	published, err := f.service.Publish(ctx, post.ID)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if published.Status != blog.StatusPublished || published.PublishedAt == nil {
		t.Fatalf("expected published post, got %+v", published)
	}
	if published.SanityID != "post-launch-day" {
		t.Fatalf("expected sanity id to be recorded, got %q", published.SanityID)
	}

	if len(f.dispatcher.events) != 1 {
		t.Fatalf("expected one event, got %d", len(f.dispatcher.events))
	}
	event := f.dispatcher.events[0]
	if event.Trigger != events.BlogPublished || event.URL != "https://eduvista.example/blog/launch-day" {
		t.Fatalf("unexpected event %+v", event)
	}

	if _, err := f.service.Publish(ctx, post.ID); !apperr.IsKind(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict when publishing twice, got %v", err)
	}
}

func TestPublishCMSFailureLeavesPostUnchanged(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()
	f.publisher.err = eris.New("sanity unavailable")

	post, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Fragile"})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	if _, err := f.service.Publish(ctx, post.ID); !apperr.IsKind(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	stored, err := f.service.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if stored.Status != blog.StatusDraft {
		t.Fatalf("expected post to remain draft, got %q", stored.Status)
	}
}

func TestProcessScheduledPublishesOnlyDuePosts(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	due, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Due"})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	later, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Later"})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if _, err := f.service.Schedule(ctx, due.ID, f.now.Add(time.Minute)); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if _, err := f.service.Schedule(ctx, later.ID, f.now.Add(24*time.Hour)); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	f.now = f.now.Add(time.Hour)
	report, err := f.service.ProcessScheduled(ctx, f.now)
	if err != nil {
		t.Fatalf("ProcessScheduled returned error: %v", err)
	}
	if report.Kind != "blog" || report.Processed != 1 || report.Succeeded != 1 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	stored, err := f.service.GetPost(ctx, later.ID)
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if stored.Status != blog.StatusScheduled {
		t.Fatalf("expected future post to stay scheduled, got %q", stored.Status)
	}
}

func TestProcessScheduledCountsFailures(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	post, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Broken"})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if _, err := f.service.Schedule(ctx, post.ID, f.now.Add(time.Minute)); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	f.publisher.err = eris.New("sanity down")
	f.now = f.now.Add(time.Hour)
	report, err := f.service.ProcessScheduled(ctx, f.now)
	if err != nil {
		t.Fatalf("ProcessScheduled returned error: %v", err)
	}
	if report.Failed != 1 || len(report.Errors) != 1 {
		t.Fatalf("expected one failure, got %+v", report)
	}

	stored, err := f.service.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if stored.Status != blog.StatusDraft {
		t.Fatalf("expected failed post to return to draft, got %q", stored.Status)
	}
}

func TestPublicPostsOnlyReturnsPublished(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	category, err := f.service.CreateCategory(ctx, blog.CategoryInput{Name: "Product News"})
	if err != nil {
		t.Fatalf("CreateCategory returned error: %v", err)
	}

	draft, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Draft"})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	live, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Live", CategoryID: &category.ID})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if _, err := f.service.Publish(ctx, live.ID); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	page, err := f.service.PublicPosts(ctx, "", 1, 10)
	if err != nil {
		t.Fatalf("PublicPosts returned error: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].Slug != "live" {
		t.Fatalf("expected only the published post, got %+v", page)
	}
	if page.Items[0].Category == nil || page.Items[0].Category.Slug != "product-news" {
		t.Fatalf("expected category to be preloaded, got %+v", page.Items[0].Category)
	}

	filtered, err := f.service.PublicPosts(ctx, "other", 1, 10)
	if err != nil {
		t.Fatalf("PublicPosts returned error: %v", err)
	}
	if filtered.Total != 0 {
		t.Fatalf("expected no posts in unknown category, got %d", filtered.Total)
	}

	if _, err := f.service.PublicPost(ctx, draft.Slug); !apperr.IsKind(err, apperr.ErrNotFound) {
		t.Fatalf("expected draft to be hidden, got %v", err)
	}
	if _, err := f.service.PublicPost(ctx, "live"); err != nil {
		t.Fatalf("PublicPost returned error: %v", err)
	}
}

func TestPublicPostsBoundsCachedKeys(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	for _, category := range []string{"missing-1", "missing-2", "missing-3"} {
		page, err := f.service.PublicPosts(ctx, category, 1, 10)
		if err != nil {
			t.Fatalf("PublicPosts(%q) returned error: %v", category, err)
		}
		if page.Total != 0 || len(page.Items) != 0 {
			t.Fatalf("expected empty page for unknown category, got %+v", page)
		}
	}
	if got := f.cache.count(); got != 0 {
		t.Fatalf("expected unknown categories not to be cached, got %d writes", got)
	}

	if _, err := f.service.PublicPosts(ctx, "", blog.MaxPublicPage+1, 10); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid for page beyond limit, got %v", err)
	}
	if _, err := f.service.PublicPosts(ctx, "", math.MaxInt, 10); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid for overflowing page, got %v", err)
	}

	if _, err := f.service.PublicPosts(ctx, "", blog.MaxPublicPage, 10); err != nil {
		t.Fatalf("expected last allowed page to succeed, got %v", err)
	}
	if got := f.cache.count(); got != 1 {
		t.Fatalf("expected one cached listing, got %d writes", got)
	}
}

func TestPublicPostsCacheInvalidatedOnPublish(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	first, err := f.service.PublicPosts(ctx, "", 1, 10)
	if err != nil {
		t.Fatalf("PublicPosts returned error: %v", err)
	}
	if first.Total != 0 {
		t.Fatalf("expected empty listing, got %d", first.Total)
	}

	post, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Fresh"})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if _, err := f.service.Publish(ctx, post.ID); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	second, err := f.service.PublicPosts(ctx, "", 1, 10)
	if err != nil {
		t.Fatalf("PublicPosts returned error: %v", err)
	}
	if second.Total != 1 {
		t.Fatalf("expected cache to be invalidated after publish, got %d posts", second.Total)
	}
}

func TestSyncFromCMSUpsertsBySlug(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	if _, err := f.service.CreatePost(ctx, blog.PostInput{Title: "Existing Post"}); err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}

	published := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	f.source.docs = []blog.CMSPost{
		{ID: "a1", Slug: "existing-post", Title: "Existing Post (updated)", AuthorName: "Maria Lopez", CategoryTitle: "Guides"},
		{ID: "b2", Title: "Brand New Article", PublishedAt: &published, AuthorName: "Maria Lopez"},
		{ID: "c3"},
	}

	result, err := f.service.SyncFromCMS(ctx)
	if err != nil {
		t.Fatalf("SyncFromCMS returned error: %v", err)
	}
	if result.Fetched != 3 || result.Created != 1 || result.Updated != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected sync result %+v", result)
	}

	post, err := f.service.PublicPost(ctx, "brand-new-article")
	if err != nil {
		t.Fatalf("PublicPost returned error: %v", err)
	}
	if post.Author == nil || post.Author.Slug != "maria-lopez" {
		t.Fatalf("expected author to be created, got %+v", post.Author)
	}
	if post.PublishedAt == nil || !post.PublishedAt.Equal(published) {
		t.Fatalf("expected published_at from document, got %v", post.PublishedAt)
	}

	authors, err := f.service.ListAuthors(ctx)
	if err != nil {
		t.Fatalf("ListAuthors returned error: %v", err)
	}
	if len(authors) != 1 {
		t.Fatalf("expected a single shared author, got %d", len(authors))
	}
}

func TestSyncFromCMSDisabledWithoutSource(t *testing.T) {
	t.Parallel()

	db := dbtest.Open(t, &blogdata.AuthorRecord{}, &blogdata.CategoryRecord{}, &blogdata.PostRecord{})
	repo, err := blogdata.NewRepository(db, nil)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	service, err := blog.NewService(blog.Options{Repository: repo})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	if _, err := service.SyncFromCMS(context.Background()); !apperr.IsKind(err, apperr.ErrDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}
