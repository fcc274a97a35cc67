package social

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/domain/scheduler"
	"eduvista/site/internal/platform/log"
	"eduvista/site/internal/platform/validation"
)

// ProcessorName identifies the social processor in scheduler reports.
const ProcessorName = "social"

const defaultRefreshTimeout = 30 * time.Second

// Options configures the social service. Metrics is optional.
type Options struct {
	Repository     Repository
	Publisher      Publisher
	Metrics        MetricsProvider
	Reporter       *log.Reporter
	Now            func() time.Time
	RefreshTimeout time.Duration
}

// Service manages social posts and their publication.
type Service struct {
	repo           Repository
	publisher      Publisher
	metrics        MetricsProvider
	reporter       *log.Reporter
	now            func() time.Time
	refreshTimeout time.Duration
	background     sync.WaitGroup
}

var _ scheduler.Processor = (*Service)(nil)

// NewService validates dependencies and constructs a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Repository == nil {
		return nil, eris.New("social repository is required")
	}
	if opts.Publisher == nil {
		return nil, eris.New("social publisher is required")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	timeout := opts.RefreshTimeout
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}

	return &Service{
		repo:           opts.Repository,
		publisher:      opts.Publisher,
		metrics:        opts.Metrics,
		reporter:       opts.Reporter,
		now:            now,
		refreshTimeout: timeout,
	}, nil
}

// Name implements scheduler.Processor.
func (s *Service) Name() string {
	return ProcessorName
}

// ListPosts returns one page of posts.
func (s *Service) ListPosts(ctx context.Context, filter PostFilter) ([]Post, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperr.Invalid("status %q is invalid", filter.Status)
	}
	if filter.Platform != "" && !filter.Platform.Valid() {
		return nil, 0, apperr.Invalid("platform %q is invalid", filter.Platform)
	}

	posts, total, err := s.repo.ListPosts(ctx, filter)
	if err != nil {
		s.reporter.Error(nil, err, "listing social posts")
		return nil, 0, eris.Wrap(err, "listing social posts")
	}
	return posts, total, nil
}

// GetPost returns the post with id.
func (s *Service) GetPost(ctx context.Context, id uint) (*Post, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		s.reporter.Error(logrus.Fields{"social_post_id": id}, err, "fetching social post")
		return nil, eris.Wrapf(err, "fetching social post %d", id)
	}
	if post == nil {
		return nil, apperr.NotFound("social post %d not found", id)
	}
	return post, nil
}

// CreatePost validates input and stores a draft, or a scheduled post when
// input.ScheduledAt is set.
func (s *Service) CreatePost(ctx context.Context, input PostInput) (*Post, error) {
	input.Content = strings.TrimSpace(input.Content)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	platforms, err := normalizePlatforms(input.Platforms)
	if err != nil {
		return nil, err
	}
	if err := checkLength(input.Content, platforms); err != nil {
		return nil, err
	}

	post := &Post{
		Content:   input.Content,
		Platforms: platforms,
		MediaURLs: append([]string{}, input.MediaURLs...),
		Status:    StatusDraft,
	}
	if input.ScheduledAt != nil {
		if !input.ScheduledAt.After(s.now()) {
			return nil, apperr.Invalid("scheduled_at must be in the future")
		}
		at := input.ScheduledAt.UTC()
		post.Status = StatusScheduled
		post.ScheduledAt = &at
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost edits a post that has not been published.
func (s *Service) UpdatePost(ctx context.Context, id uint, patch PostPatch) (*Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == StatusPublished {
		return nil, apperr.Conflict("social post %d is already published", id)
	}

	if patch.Content != nil {
		value := strings.TrimSpace(*patch.Content)
		if value == "" {
			return nil, apperr.Invalid("content is required")
		}
		post.Content = value
	}
	if patch.Platforms != nil {
		platforms, err := normalizePlatforms(*patch.Platforms)
		if err != nil {
			return nil, err
		}
		post.Platforms = platforms
	}
	if patch.MediaURLs != nil {
		for _, mediaURL := range *patch.MediaURLs {
			if !validation.URL(mediaURL) {
				return nil, apperr.Invalid("media_urls must contain valid URLs")
			}
		}
		post.MediaURLs = append([]string{}, (*patch.MediaURLs)...)
	}
	if err := checkLength(post.Content, post.Platforms); err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post.
func (s *Service) DeletePost(ctx context.Context, id uint) error {
	return s.repo.DeletePost(ctx, id)
}

// Schedule queues the post for publication at at, which must be in the future.
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
		return nil, apperr.Conflict("social post %d is already published", id)
	}

	scheduled := at.UTC()
	post.Status = StatusScheduled
	post.ScheduledAt = &scheduled
	post.ErrorMessage = ""
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Publish sends the post now. The post is stored as failed, with the reason,
// when the publisher rejects it.
func (s *Service) Publish(ctx context.Context, id uint) (*Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == StatusPublished {
		return nil, apperr.Conflict("social post %d is already published", id)
	}
	return post, s.publish(ctx, post)
}

// CreateAndPublish stores a post and publishes it right away.
func (s *Service) CreateAndPublish(ctx context.Context, input PostInput) (*Post, error) {
	input.ScheduledAt = nil
	post, err := s.CreatePost(ctx, input)
	if err != nil {
		return nil, err
	}
	return post, s.publish(ctx, post)
}

// ProcessScheduled publishes every scheduled post that is due.
func (s *Service) ProcessScheduled(ctx context.Context, now time.Time) (scheduler.Report, error) {
	report := scheduler.Report{Kind: ProcessorName}

	due, err := s.repo.DuePosts(ctx, now)
	if err != nil {
		s.reporter.Error(nil, err, "loading due social posts")
		return report, eris.Wrap(err, "loading due social posts")
	}

	for i := range due {
		report.Record(due[i].ID, s.publish(ctx, &due[i]))
	}
	return report, nil
}

func (s *Service) publish(ctx context.Context, post *Post) error {
	fields := logrus.Fields{"social_post_id": post.ID, "platforms": post.Platforms}

	result, publishErr := s.publisher.Publish(ctx, PublishRequest{
		Content:   post.Content,
		Platforms: post.Platforms,
		MediaURLs: post.MediaURLs,
	})

	post.ScheduledAt = nil
	if result.ExternalID != "" {
		post.ExternalID = result.ExternalID
	}
	if publishErr != nil {
		s.reporter.Error(fields, publishErr, "publishing social post")
		post.Status = StatusFailed
		post.ErrorMessage = publishErr.Error()
	} else {
		now := s.now().UTC()
		post.Status = StatusPublished
		post.PublishedAt = &now
		post.ErrorMessage = ""
	}

	if err := s.repo.UpdatePost(ctx, post); err != nil {
		s.reporter.Error(fields, err, "recording social post outcome")
		return err
	}
	if publishErr != nil {
		return apperr.Upstream(publishErr, "publishing social post %d", post.ID)
	}
	return nil
}

// RefreshMetrics pulls analytics for a published post and stores them.
func (s *Service) RefreshMetrics(ctx context.Context, id uint) (*Post, error) {
	if s.metrics == nil {
		return nil, apperr.Disabled("social analytics provider is not configured")
	}

	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != StatusPublished || post.ExternalID == "" {
		return nil, apperr.Conflict("social post %d has not been published", id)
	}

	metrics, err := s.metrics.FetchMetrics(ctx, post.ExternalID)
	if err != nil {
		s.reporter.Error(logrus.Fields{"social_post_id": id}, err, "fetching social metrics")
		return nil, apperr.Upstream(err, "fetching metrics for social post %d", id)
	}

	now := s.now().UTC()
	post.Likes = metrics.Likes
	post.Comments = metrics.Comments
	post.Shares = metrics.Shares
	post.Impressions = metrics.Impressions
	post.Clicks = metrics.Clicks
	post.MetricsUpdatedAt = &now
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// RefreshMetricsAsync validates the request and refreshes metrics in the
// background with a detached, bounded context.
func (s *Service) RefreshMetricsAsync(ctx context.Context, id uint) error {
	if s.metrics == nil {
		return apperr.Disabled("social analytics provider is not configured")
	}
	if _, err := s.GetPost(ctx, id); err != nil {
		return err
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()

		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()

		if _, err := s.RefreshMetrics(refreshCtx, id); err != nil {
			s.reporter.Warn(logrus.Fields{"social_post_id": id}, err, "background metrics refresh failed")
		}
	}()
	return nil
}

// Wait blocks until background refreshes have finished.
func (s *Service) Wait() {
	s.background.Wait()
}

// OptimalTiming recommends when to post, optionally for a single platform.
func (s *Service) OptimalTiming(ctx context.Context, platform Platform) (*TimingReport, error) {
	if platform != "" && !platform.Valid() {
		return nil, apperr.Invalid("platform %q is invalid", platform)
	}

	posts, err := s.repo.PublishedPosts(ctx, platform)
	if err != nil {
		s.reporter.Error(logrus.Fields{"platform": platform}, err, "loading published posts")
		return nil, eris.Wrap(err, "loading published posts")
	}

	report := AnalyzeTiming(posts, platform)
	return &report, nil
}

// CountByStatus returns post counts per status.
func (s *Service) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	counts, err := s.repo.CountPostsByStatus(ctx)
	if err != nil {
		s.reporter.Error(nil, err, "counting social posts")
		return nil, eris.Wrap(err, "counting social posts")
	}
	return counts, nil
}

func normalizePlatforms(input []Platform) ([]Platform, error) {
	seen := make(map[Platform]struct{}, len(input))
	out := make([]Platform, 0, len(input))
	for _, raw := range input {
		platform := Platform(strings.ToLower(strings.TrimSpace(string(raw))))
		if !platform.Valid() {
			return nil, apperr.Invalid("platform %q is not supported", raw)
		}
		if _, ok := seen[platform]; ok {
			continue
		}
		seen[platform] = struct{}{}
		out = append(out, platform)
	}
	if len(out) == 0 {
		return nil, apperr.Invalid("at least one platform is required")
	}
	return out, nil
}

func checkLength(content string, platforms []Platform) error {
	length := len([]rune(content))
	for _, platform := range platforms {
		if limit := platform.CharacterLimit(); limit > 0 && length > limit {
			return apperr.Invalid("content exceeds the %d character limit for %s", limit, platform)
		}
	}
	return nil
}
