package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/social"
)

type socialPostsInput struct {
	Status   social.Status   `query:"status" enum:"draft,scheduled,published,failed"`
	Platform social.Platform `query:"platform" enum:"linkedin,twitter,facebook,instagram"`
	pageQuery
}

type socialPostCreateInput struct {
	Body social.PostInput
}

type socialPostPatchInput struct {
	ID   uint `path:"id"`
	Body social.PostPatch
}

type timingInput struct {
	Platform social.Platform `query:"platform" enum:"linkedin,twitter,facebook,instagram"`
}

func (s *Server) registerSocialRoutes() {
	editor := auth.RoleEditor

	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/social/posts", "List social posts", "social", editor), s.listSocialPostsHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/social/posts", "Create a social post", "social", editor), s.createSocialPostHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPost, "/social/posts/publish", "Create and publish a social post", "social", editor), s.createAndPublishSocialPostHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/social/posts/{id}", "Get a social post", "social", editor), s.getSocialPostHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodPatch, "/social/posts/{id}", "Update a social post", "social", editor), s.updateSocialPostHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodDelete, "/social/posts/{id}", "Delete a social post", "social", editor), s.deleteSocialPostHandler)
	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/social/posts/{id}/schedule", "Schedule a social post", "social", editor)), s.scheduleSocialPostHandler)
	huma.Register(s.api, okOp(adminOp(stdhttp.MethodPost, "/social/posts/{id}/publish", "Publish a social post now", "social", editor)), s.publishSocialPostHandler)
	huma.Register(s.api, acceptedOp(adminOp(stdhttp.MethodPost, "/social/posts/{id}/metrics", "Refresh engagement metrics in the background", "social", editor)), s.refreshSocialMetricsHandler)
	huma.Register(s.api, adminOp(stdhttp.MethodGet, "/social/timing", "Suggest the best time to post", "social", editor), s.optimalTimingHandler)
}

func acceptedOp(op huma.Operation) huma.Operation {
	op.DefaultStatus = stdhttp.StatusAccepted
	return op
}

func (s *Server) listSocialPostsHandler(ctx context.Context, input *socialPostsInput) (*dataOutput[listData[social.Post]], error) {
	posts, total, err := s.social.ListPosts(ctx, social.PostFilter{
		Status:   input.Status,
		Platform: input.Platform,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, s.fail(ctx, err, "listing social posts", nil)
	}
	return list(posts, total), nil
}

func (s *Server) createSocialPostHandler(ctx context.Context, input *socialPostCreateInput) (*dataOutput[*social.Post], error) {
	post, err := s.social.CreatePost(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "creating social post", nil)
	}
	return created(post), nil
}

func (s *Server) createAndPublishSocialPostHandler(ctx context.Context, input *socialPostCreateInput) (*dataOutput[*social.Post], error) {
	post, err := s.social.CreateAndPublish(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "publishing new social post", nil)
	}
	return created(post), nil
}

func (s *Server) getSocialPostHandler(ctx context.Context, input *idInput) (*dataOutput[*social.Post], error) {
	post, err := s.social.GetPost(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "loading social post", logrus.Fields{"id": input.ID})
	}
	return ok(post), nil
}

func (s *Server) updateSocialPostHandler(ctx context.Context, input *socialPostPatchInput) (*dataOutput[*social.Post], error) {
	post, err := s.social.UpdatePost(ctx, input.ID, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "updating social post", logrus.Fields{"id": input.ID})
	}
	return ok(post), nil
}

func (s *Server) deleteSocialPostHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.social.DeletePost(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "deleting social post", logrus.Fields{"id": input.ID})
	}
	return ok(messageData{Message: "post deleted"}), nil
}

func (s *Server) scheduleSocialPostHandler(ctx context.Context, input *scheduleInput) (*dataOutput[*social.Post], error) {
	post, err := s.social.Schedule(ctx, input.ID, input.Body.ScheduledAt)
	if err != nil {
		return nil, s.fail(ctx, err, "scheduling social post", logrus.Fields{"id": input.ID})
	}
	return ok(post), nil
}

func (s *Server) publishSocialPostHandler(ctx context.Context, input *idInput) (*dataOutput[*social.Post], error) {
	post, err := s.social.Publish(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err, "publishing social post", logrus.Fields{"id": input.ID})
	}
	return ok(post), nil
}

func (s *Server) refreshSocialMetricsHandler(ctx context.Context, input *idInput) (*dataOutput[messageData], error) {
	if err := s.social.RefreshMetricsAsync(ctx, input.ID); err != nil {
		return nil, s.fail(ctx, err, "queueing metrics refresh", logrus.Fields{"id": input.ID})
	}
	return accepted(messageData{Message: "metrics refresh started"}), nil
}

func (s *Server) optimalTimingHandler(ctx context.Context, input *timingInput) (*dataOutput[*social.TimingReport], error) {
	report, err := s.social.OptimalTiming(ctx, input.Platform)
	if err != nil {
		return nil, s.fail(ctx, err, "computing optimal timing", logrus.Fields{"platform": input.Platform})
	}
	return ok(report), nil
}
