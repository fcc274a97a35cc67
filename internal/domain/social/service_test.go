package social_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"

	"eduvista/site/internal/data/dbtest"
	socialdata "eduvista/site/internal/data/social"
	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/social"
)

type stubPublisher struct {
	mu       sync.Mutex
	requests []social.PublishRequest
	err      error
}

func (p *stubPublisher) Publish(_ context.Context, req social.PublishRequest) (social.PublishResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return social.PublishResult{}, p.err
	}
	return social.PublishResult{ExternalID: "ayrshare:post-1"}, nil
}

type stubMetrics struct {
	metrics social.Metrics
}

func (m *stubMetrics) FetchMetrics(context.Context, string) (social.Metrics, error) {
	return m.metrics, nil
}

type fixture struct {
	service   *social.Service
	publisher *stubPublisher
	now       time.Time
}

func setup(t *testing.T, metrics social.MetricsProvider) *fixture {
	t.Helper()

	db := dbtest.Open(t, &socialdata.PostRecord{})
	repo, err := socialdata.NewRepository(db, nil)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}

	f := &fixture{publisher: &stubPublisher{}, now: time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)}
	f.service, err = social.NewService(social.Options{
		Repository: repo,
		Publisher:  f.publisher,
		Metrics:    metrics,
		Now:        func() time.Time { return f.now },
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return f
}

func TestCreatePostValidatesPlatformsAndLength(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()

	if _, err := f.service.CreatePost(ctx, social.PostInput{Content: "Hi", Platforms: []social.Platform{"myspace"}}); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid platform error, got %v", err)
	}
	if _, err := f.service.CreatePost(ctx, social.PostInput{Content: "Hi"}); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected error without platforms, got %v", err)
	}

	long := strings.Repeat("a", 281)
	if _, err := f.service.CreatePost(ctx, social.PostInput{Content: long, Platforms: []social.Platform{social.Twitter}}); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected twitter length error, got %v", err)
	}

	post, err := f.service.CreatePost(ctx, social.PostInput{Content: long, Platforms: []social.Platform{"LinkedIn", "linkedin"}})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if len(post.Platforms) != 1 || post.Platforms[0] != social.LinkedIn {
		t.Fatalf("expected deduplicated platforms, got %v", post.Platforms)
	}
	if post.Status != social.StatusDraft {
		t.Fatalf("expected draft, got %q", post.Status)
	}
}

func TestCreatePostWithScheduleIsScheduled(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	at := f.now.Add(time.Hour)

	post, err := f.service.CreatePost(context.Background(), social.PostInput{Content: "Soon", Platforms: []social.Platform{social.Twitter}, ScheduledAt: &at})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if post.Status != social.StatusScheduled || post.ScheduledAt == nil || !post.ScheduledAt.Equal(at) {
		t.Fatalf("expected scheduled post, got %+v", post)
	}
}

func TestPublishRecordsSuccessAndFailure(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()

	ok, err := f.service.CreatePost(ctx, social.PostInput{Content: "Works", Platforms: []social.Platform{social.Facebook}})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	published, err := f.service.Publish(ctx, ok.ID)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if published.Status != social.StatusPublished || published.ExternalID != "ayrshare:post-1" || published.PublishedAt == nil {
		t.Fatalf("unexpected published post %+v", published)
	}
	if _, err := f.service.Publish(ctx, ok.ID); !apperr.IsKind(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict on second publish, got %v", err)
	}

	f.publisher.err = eris.New("rate limited")
	bad, err := f.service.CreatePost(ctx, social.PostInput{Content: "Fails", Platforms: []social.Platform{social.Facebook}})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if _, err := f.service.Publish(ctx, bad.ID); !apperr.IsKind(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	stored, err := f.service.GetPost(ctx, bad.ID)
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if stored.Status != social.StatusFailed || !strings.Contains(stored.ErrorMessage, "rate limited") {
		t.Fatalf("expected failed post with reason, got %+v", stored)
	}
}

func TestProcessScheduledCountsOutcomes(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		at := f.now.Add(time.Duration(i+1) * time.Minute)
		if _, err := f.service.CreatePost(ctx, social.PostInput{Content: "Queued", Platforms: []social.Platform{social.LinkedIn}, ScheduledAt: &at}); err != nil {
			t.Fatalf("CreatePost returned error: %v", err)
		}
	}

	f.now = f.now.Add(time.Hour)
	report, err := f.service.ProcessScheduled(ctx, f.now)
	if err != nil {
		t.Fatalf("ProcessScheduled returned error: %v", err)
	}
	if report.Kind != "social" || report.Processed != 2 || report.Succeeded != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	again, err := f.service.ProcessScheduled(ctx, f.now)
	if err != nil {
		t.Fatalf("ProcessScheduled returned error: %v", err)
	}
	if again.Processed != 0 {
		t.Fatalf("expected nothing left to process, got %+v", again)
	}
}

func TestRefreshMetricsAsyncUpdatesPost(t *testing.T) {
	t.Parallel()

	metrics := &stubMetrics{metrics: social.Metrics{Likes: 4, Comments: 2, Shares: 1, Impressions: 90, Clicks: 3}}
	f := setup(t, metrics)
	ctx := context.Background()

	post, err := f.service.CreatePost(ctx, social.PostInput{Content: "Measure me", Platforms: []social.Platform{social.LinkedIn}})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if _, err := f.service.Publish(ctx, post.ID); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if err := f.service.RefreshMetricsAsync(ctx, post.ID); err != nil {
		t.Fatalf("RefreshMetricsAsync returned error: %v", err)
	}
	f.service.Wait()

	stored, err := f.service.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if stored.Likes != 4 || stored.Impressions != 90 || stored.MetricsUpdatedAt == nil {
		t.Fatalf("expected metrics to be stored, got %+v", stored)
	}

	if err := f.service.RefreshMetricsAsync(ctx, 999); !apperr.IsKind(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown post, got %v", err)
	}
}

func TestRefreshMetricsDisabledWithoutProvider(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)

	if err := f.service.RefreshMetricsAsync(context.Background(), 1); !apperr.IsKind(err, apperr.ErrDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestOptimalTimingFiltersByPlatform(t *testing.T) {
	t.Parallel()

	f := setup(t, &stubMetrics{metrics: social.Metrics{Likes: 10, Impressions: 100}})
	ctx := context.Background()

	post, err := f.service.CreatePost(ctx, social.PostInput{Content: "Data", Platforms: []social.Platform{social.LinkedIn}})
	if err != nil {
		t.Fatalf("CreatePost returned error: %v", err)
	}
	if _, err := f.service.Publish(ctx, post.ID); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if _, err := f.service.RefreshMetrics(ctx, post.ID); err != nil {
		t.Fatalf("RefreshMetrics returned error: %v", err)
	}

	linkedin, err := f.service.OptimalTiming(ctx, social.LinkedIn)
	if err != nil {
		t.Fatalf("OptimalTiming returned error: %v", err)
	}
	if linkedin.Default || linkedin.SampleSize != 1 || linkedin.BestHour != 10 || linkedin.BestWeekday != "Tuesday" {
		t.Fatalf("unexpected linkedin report %+v", linkedin)
	}

	twitter, err := f.service.OptimalTiming(ctx, social.Twitter)
	if err != nil {
		t.Fatalf("OptimalTiming returned error: %v", err)
	}
	if !twitter.Default || twitter.SampleSize != 0 {
		t.Fatalf("expected default report for twitter, got %+v", twitter)
	}

	if _, err := f.service.OptimalTiming(ctx, "friendster"); !apperr.IsKind(err, apperr.ErrInvalid) {
		t.Fatalf("expected invalid platform error, got %v", err)
	}
}
