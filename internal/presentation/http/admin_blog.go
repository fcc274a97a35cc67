package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/blog"
)

type blogPostsInput struct {
	Status   blog.Status `query:"status" enum:"draft,scheduled,published,archived"`
	Category string      `query:"category"`
	Tag      string      `query:"tag"`
	pageQuery
}

type blogPostCreateInput struct {
	Body blog.PostInput
}

type blogPostPatchInput struct {
	ID   uint `path:"id"`
	Body blog.PostPatch
}

type scheduleInput struct {
	ID   uint `path:"id"`
	Body struct {
		ScheduledAt time.Time `json:"scheduled_at"`
	}
}

type authorCreateInput struct {
	Body blog.AuthorInput
}

type authorUpdateInput struct {
	ID   uint `path:"id"`
	Body blog.AuthorInput
}

type categoryCreateInput struct {
	Body blog.CategoryInput
}

type categoryUpdateInput struct {
	ID   uint `path:"id"`
	Body blog.CategoryInput
}

func (s *Server) registerBlogRoutes() {
	editor := auth.RoleEditor

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/blog/posts", "List blog posts", "blog", editor), s.listBlogPostsHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/blog/posts", "Create a blog post", "blog", editor), s.createBlogPostHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/blog/posts/{id}", "Get a blog post", "blog", editor), s.getBlogPostHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPatch, "/blog/posts/{id}", "Update a blog post", "blog", editor), s.updateBlogPostHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/blog/posts/{id}", "Delete a blog post", "blog", editor), s.deleteBlogPostHandler)
	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/blog/posts/{id}/schedule", "Schedule a blog post", "blog", editor)), s.scheduleBlogPostHandler)
	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/blog/posts/{id}/publish", "Publish a blog post now", "blog", editor)), s.publishBlogPostHandler)
	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/blog/posts/{id}/archive", "Archive a blog post", "blog", editor)), s.archiveBlogPostHandler)
	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/blog/sync", "Import posts from the CMS", "blog", auth.RoleAdmin)), s.syncBlogHandler)

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/blog/authors", "List authors", "blog", editor), s.listAuthorsHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/blog/authors", "Create an author", "blog", editor), s.createAuthorHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPut, "/blog/authors/{id}", "Replace an author", "blog", editor), s.updateAuthorHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/blog/authors/{id}", "Delete an author", "blog", editor), s.deleteAuthorHandler)

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/blog/categories", "List categories", "blog", editor), s.listCategoriesHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/blog/categories", "Create a category", "blog", editor), s.createCategoryHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPut, "/blog/categories/{id}", "Replace a category", "blog", editor), s.updateCategoryHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/blog/categories/{id}", "Delete a category", "blog", editor), s.deleteCategoryHandler)
}

func (s *Server) listBlogPostsHandler(ctx context.Context, input *blogPostsInput) (*dataOutput[listData[blog.Post]], error) {
	page, err := s.blog.ListPosts(ctx, blog.PostFilter{
		Status:       input.Status,
		CategorySlug: input.Category,
		Tag:          input.Tag,
		Limit:        input.Limit,
		Offset:       input.Offset,
	})
	if err != nil {
		return nil, s.fail(ctx, err, "listing blog posts", nil)
	}
	return list(page.Items, page.Total), nil
}

func (s *Server) createBlogPostHandler(ctx context.Context, input *blogPostCreateInput) (*dataOutput[*blog.Post], error) {
	post, err := s.blog.CreatePost(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "creating blog post", nil)
	}
	return created(post), nil
}

func (s *Server) getBlogPostHandler(ctx context.Context, input *idInput) (*dataOutput[*blog.Post], error) {
	post, err := s.blog.GetPost(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "loading blog post", logrus.Fields{"id": input.ID})
	}
	return ok(post), nil
}

func (s *Server) updateBlogPostHandler(ctx context.Context, input *blogPostPatchInput) (*dataOutput[*blog.Post], error) {
	post, err := s.blog.UpdatePost(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "updating blog post", logrus.Fields{"id": input.ID})
	}
	return ok(post), nil
}

func (s *Server) deleteBlogPostHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.blog.DeletePost(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting blog post", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "post deleted"}), nil
}

func (s *Server) scheduleBlogPostHandler(ctx context.Context, input *scheduleInput) (*dataOutput[*blog.Post], error) {
	post, err := s.blog.Schedule(ctx, input.ID, input.Body.ScheduledAt)
	if err != nil {
		return nil, s.fail(ctx, err, "scheduling blog post", logrus.Fields{"id": input.ID})
	}
	return ok(post), nil
}

func (s *Server) publishBlogPostHandler(ctx context.Context, input *idInput) (*dataOutput[*blog.Post], error) {
	post, err := s.blog.Publish(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "publishing blog post", logrus.Fields{"id": input.ID})
	}
	return ok(post), nil
}

func (s *Server) archiveBlogPostHandler(ctx context.Context, input *idInput) (*dataOutput[*blog.Post], error) {
	post, err := s.blog.Archive(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "archiving blog post", logrus.Fields{"id": input.ID})
	}
	return ok(post), nil
}

func (s *Server) syncBlogHandler(ctx context.Context, _ *struct{}) (*dataOutput[*blog.SyncResult], error) {
	result, err := s.blog.SyncFromCMS(ctx)
	if err != nil {
		return nil, s.fail(ctx, err, "syncing posts from cms", nil)
	}
	return ok(result), nil
}

func (s *Server) listAuthorsHandler(ctx context.Context, _ *struct{}) (*dataOutput[listData[blog.Author]], error) {
	authors, err := s.blog.ListAuthors(ctx)
	if err != nil {
		return nil, s.fail(ctx, err, "listing authors", nil)
	}
	return list(authors, int64(len(authors))), nil
}

func (s *Server) createAuthorHandler(ctx context.Context, input *authorCreateInput) (*dataOutput[*blog.Author], error) {
	author, err := s.blog.CreateAuthor(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "creating author", nil)
	}
	return created(author), nil
}

func (s *Server) updateAuthorHandler(ctx context.Context, input *authorUpdateInput) (*dataOutput[*blog.Author], error) {
	author, err := s.blog.UpdateAuthor(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "updating author", logrus.Fields{"id": input.ID})
	}
	return ok(author), nil
}

func (s *Server) deleteAuthorHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.blog.DeleteAuthor(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting author", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "author deleted"}), nil
}

func (s *Server) listCategoriesHandler(ctx context.Context, _ *struct{}) (*dataOutput[listData[blog.Category]], error) {
	categories, err := s.blog.ListCategories(ctx)
	if err != nil {
		return nil, s.fail(ctx, err, "listing categories", nil)
	}
	return list(categories, int64(len(categories))), nil
}

func (s *Server) createCategoryHandler(ctx context.Context, input *categoryCreateInput) (*dataOutput[*blog.Category], error) {
	category, err := s.blog.CreateCategory(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "creating category", nil)
	}
	return created(category), nil
}

func (s *Server) updateCategoryHandler(ctx context.Context, input *categoryUpdateInput) (*dataOutput[*blog.Category], error) {
	category, err := s.blog.UpdateCategory(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "updating category", logrus.Fields{"id": input.ID})
	}
	return ok(category), nil
}

func (s *Server) deleteCategoryHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.blog.DeleteCategory(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting category", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "category deleted"}), nil
}
