package blog

import (
	"context"
	"time"
)

// Repository defines persistence operations for posts, authors and categories.
// Getters return nil, nil when the record does not exist.
type Repository interface {
	ListPosts(ctx context.Context, filter PostFilter) ([]Post, int64, error)
	GetPost(ctx context.Context, id uint) (*Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	CreatePost(ctx context.Context, post *Post) error
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id uint) error
	// DuePosts returns scheduled posts with scheduled_at <= now, oldest first.
	DuePosts(ctx context.Context, now time.Time) ([]Post, error)
	CountPostsByStatus(ctx context.Context) (map[Status]int64, error)

	ListAuthors(ctx context.Context) ([]Author, error)
	GetAuthor(ctx context.Context, id uint) (*Author, error)
	GetAuthorBySlug(ctx context.Context, slug string) (*Author, error)
	CreateAuthor(ctx context.Context, author *Author) error
	UpdateAuthor(ctx context.Context, author *Author) error
	DeleteAuthor(ctx context.Context, id uint) error

	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id uint) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id uint) error
}

// CMSPublisher pushes a published post to the headless CMS and returns its document ID.
type CMSPublisher interface {
	PublishPost(ctx context.Context, post Post) (string, error)
}

// CMSSource reads post documents from the headless CMS.
type CMSSource interface {
	FetchPosts(ctx context.Context) ([]CMSPost, error)
}
