package social

import (
	"context"
	"time"
)

// Repository defines persistence for social posts.
// Getters return nil, nil when the record does not exist.
type Repository interface {
	ListPosts(ctx context.Context, filter PostFilter) ([]Post, int64, error)
	GetPost(ctx context.Context, id uint) (*Post, error)
	CreatePost(ctx context.Context, post *Post) error
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id uint) error
	// DuePosts returns scheduled posts with scheduled_at <= now, oldest first.
	DuePosts(ctx context.Context, now time.Time) ([]Post, error)
	// PublishedPosts returns published posts, optionally only those targeting platform.
	PublishedPosts(ctx context.Context, platform Platform) ([]Post, error)
	CountPostsByStatus(ctx context.Context) (map[Status]int64, error)
}

// Publisher sends a post to the platforms.
type Publisher interface {
	Publish(ctx context.Context, req PublishRequest) (PublishResult, error)
}

// MetricsProvider fetches analytics for a published post.
type MetricsProvider interface {
	FetchMetrics(ctx context.Context, externalID string) (Metrics, error)
}
