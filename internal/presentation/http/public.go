package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/blog"
	"eduvista/site/internal/domain/contact"
	"eduvista/site/internal/domain/content"
	"eduvista/site/internal/domain/experiments"
	"eduvista/site/internal/domain/newsletter"
)

type submitInput struct {
	Body contact.SubmitInput
}

type submissionReceipt struct {
	ID      uint         `json:"id"`
	Kind    contact.Kind `json:"kind"`
	Message string       `json:"message"`
}

type subscribeInput struct {
	Body newsletter.SubscribeInput
}

type unsubscribeInput struct {
	Body struct {
		Token string `json:"token" minLength:"1"`
	}
}

type publicPostsInput struct {
	Category string `query:"category"`
	Page     int    `query:"page" minimum:"1" maximum:"1000" default:"1"`
	PageSize int    `query:"page_size" minimum:"1" maximum:"50" default:"10"`
}

type testimonialsInput struct {
	Featured bool `query:"featured"`
}

type assignInput struct {
	ID   uint `path:"id"`
	Body struct {
		VisitorID string `json:"visitor_id" minLength:"1" maxLength:"128"`
	}
}

type variantEventInput struct {
	ID   uint `path:"id"`
	Body struct {
		Variant string `json:"variant" minLength:"1"`
	}
}

type loginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"1"`
		Password string `json:"password" minLength:"1"`
	}
}

func (s *Server) registerPublicRoutes() {
	huma.Register(s.api, publicOp(stdhttp.MethodPost, "/api/contact", "Submit the contact form", "forms"), s.submitHandler(contact.KindContact))
	huma.Register(s.api, publicOp(stdhttp.MethodPost, "/api/quote", "Request a quote", "forms"), s.submitHandler(contact.KindQuote))

	huma.Register(s.api, publicOp(stdhttp.MethodPost, "/api/newsletter/subscribe", "Subscribe to the newsletter", "newsletter"), s.subscribeHandler)
	huma.Register(s.api, publicOp(stdhttp.MethodPost, "/api/newsletter/unsubscribe", "Unsubscribe from the newsletter", "newsletter"), s.unsubscribeHandler)

	huma.Register(s.api, publicOp(stdhttp.MethodGet, "/api/blog/posts", "List published posts", "blog"), s.publicPostsHandler)
	huma.Register(s.api, publicOp(stdhttp.MethodGet, "/api/blog/posts/{slug}", "Get a published post", "blog"), s.publicPostHandler)
	huma.Register(s.api, publicOp(stdhttp.MethodGet, "/api/blog/categories", "List blog categories", "blog"), s.publicCategoriesHandler)

	huma.Register(s.api, publicOp(stdhttp.MethodGet, "/api/pages/{slug}", "Get a published page", "content"), s.publicPageHandler)
	huma.Register(s.api, publicOp(stdhttp.MethodGet, "/api/testimonials", "List testimonials", "content"), s.publicTestimonialsHandler)

	huma.Register(s.api, okOp(publicOp(stdhttp.MethodPost, "/api/experiments/{id}/assign", "Assign a visitor to a variant", "experiments")), s.assignHandler)
	huma.Register(s.api, okOp(publicOp(stdhttp.MethodPost, "/api/experiments/{id}/impression", "Record an impression", "experiments")), s.impressionHandler)
	huma.Register(s.api, okOp(publicOp(stdhttp.MethodPost, "/api/experiments/{id}/conversion", "Record a conversion", "experiments")), s.conversionHandler)

	huma.Register(s.api, okOp(publicOp(stdhttp.MethodPost, "/api/auth/login", "Exchange credentials for a token", "auth")), s.loginHandler)
	huma.Register(s.api, adminMe(), s.meHandler)
}

func okOp(op huma.Operation) huma.Operation {
	op.DefaultStatus = stdhttp.StatusOK
	return op
}

func adminMe() huma.Operation {
	return adminOp(stdhttp.MethodGet, "/me", "Current admin user", "auth", auth.RoleEditor)
}

func (s *Server) submitHandler(kind contact.Kind) func(context.Context, *submitInput) (*dataOutput[submissionReceipt], error) {
	return func(ctx context.Context, input *submitInput) (*dataOutput[submissionReceipt], error) {
		info := clientFromContext(ctx)
		form := input.Body
		form.IP = info.IP
		form.UserAgent = info.UserAgent

		submission, err := s.contact.Submit(ctx, kind, form)
		if err != nil {
			return nil, s.fail(ctx, err, "submitting contact form", logrus.Fields{"kind": kind})
		}

		message := "Thanks for getting in touch. We'll reply within one business day."
		if kind == contact.KindQuote {
			message = "Thanks for your request. We'll send a tailored quote shortly."
		}
		return created(submissionReceipt{ID: submission.ID, Kind: submission.Kind, Message: message}), nil
	}
}

func (s *Server) subscribeHandler(ctx context.Context, input *subscribeInput) (*dataOutput[*newsletter.Subscriber], error) {
	subscriber, isNew, err := s.newsletter.Subscribe(ctx, input.Body)
	if err != nil {
		return nil, s.fail(ctx, err, "subscribing to newsletter", nil)
	}
	if isNew {
		return created(subscriber), nil
	}
	return ok(subscriber), nil
}

func (s *Server) unsubscribeHandler(ctx context.Context, input *unsubscribeInput) (*dataOutput[*newsletter.Subscriber], error) {
	subscriber, err := s.newsletter.Unsubscribe(ctx, input.Body.Token)
	if err != nil {
		return nil, s.fail(ctx, err, "unsubscribing from newsletter", nil)
	}
	return ok(subscriber), nil
}

func (s *Server) publicPostsHandler(ctx context.Context, input *publicPostsInput) (*dataOutput[*blog.PostPage], error) {
	page, err := s.blog.PublicPosts(ctx, input.Category, input.Page, input.PageSize)
	if err != nil {
		return nil, s.fail(ctx, err, "listing public posts", logrus.Fields{"category": input.Category})
	}
	return ok(page), nil
}

func (s *Server) publicPostHandler(ctx context.Context, input *slugInput) (*dataOutput[*blog.Post], error) {
	post, err := s.blog.PublicPost(ctx, input.Slug)
	if err != nil {
		return nil, s.fail(ctx, err, "loading public post", logrus.Fields{"slug": input.Slug})
	}
	return ok(post), nil
}

func (s *Server) publicCategoriesHandler(ctx context.Context, _ *struct{}) (*dataOutput[[]blog.Category], error) {
	categories, err := s.blog.ListCategories(ctx)
	if err != nil {
		return nil, s.fail(ctx, err, "listing categories", nil)
	}
	if categories == nil {
		categories = []blog.Category{}
	}
	return ok(categories), nil
}

func (s *Server) publicPageHandler(ctx context.Context, input *slugInput) (*dataOutput[*content.Page], error) {
	page, err := s.content.PublishedPage(ctx, input.Slug)
	if err != nil {
		return nil, s.fail(ctx, err, "loading public page", logrus.Fields{"slug": input.Slug})
	}
	return ok(page), nil
}

func (s *Server) publicTestimonialsHandler(ctx context.Context, input *testimonialsInput) (*dataOutput[[]content.Testimonial], error) {
	testimonials, err := s.content.ListTestimonials(ctx, input.Featured)
	if err != nil {
		return nil, s.fail(ctx, err, "listing testimonials", nil)
	}
	if testimonials == nil {
		testimonials = []content.Testimonial{}
	}
	return ok(testimonials), nil
}

func (s *Server) assignHandler(ctx context.Context, input *assignInput) (*dataOutput[*experiments.Variant], error) {
	variant, err := s.experiments.Assign(ctx, input.ID, input.Body.VisitorID)
	if err != nil {
		return nil, s.fail(ctx, err, "assigning variant", logrus.Fields{"experiment_id": input.ID})
	}
	return ok(variant), nil
}

func (s *Server) impressionHandler(ctx context.Context, input *variantEventInput) (*dataOutput[messageData], error) {
	if err := s.experiments.RecordImpression(ctx, input.ID, input.Body.Variant); err != nil {
		return nil, s.fail(ctx, err, "recording impression", logrus.Fields{"experiment_id": input.ID})
	}
	return ok(messageData{Message: "impression recorded"}), nil
}

func (s *Server) conversionHandler(ctx context.Context, input *variantEventInput) (*dataOutput[messageData], error) {
	if err := s.experiments.RecordConversion(ctx, input.ID, input.Body.Variant); err != nil {
		return nil, s.fail(ctx, err, "recording conversion", logrus.Fields{"experiment_id": input.ID})
	}
	return ok(messageData{Message: "conversion recorded"}), nil
}

func (s *Server) loginHandler(ctx context.Context, input *loginInput) (*dataOutput[*auth.Token], error) {
	token, err := s.auth.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, s.fail(ctx, err, "logging in", nil)
	}
	return ok(token), nil
}

func (s *Server) meHandler(ctx context.Context, _ *struct{}) (*dataOutput[*auth.User], error) {
	principal := PrincipalFromContext(ctx)
	user, err := s.auth.GetUser(ctx, principal.UserID)
	if err != nil {
		return nil, s.fail(ctx, err, "loading current user", nil)
	}
	return ok(user), nil
}
