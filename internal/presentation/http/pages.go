package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/apperr"
	"eduvista/site/internal/presentation/http/templates"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	errorFallbackMessage = "We couldn't process your request right now."
	blogPageSize         = 9
	homeLatestPosts      = 3
)

type htmlResponse struct {
	Status       int
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

type slugInput struct {
	Slug string `path:"slug"`
}

type blogIndexInput struct {
	Category string `query:"category"`
	Page     int    `query:"page" minimum:"1" default:"1"`
}

type unsubscribePageInput struct {
	Token string `query:"token"`
}

func (s *Server) registerPageRoutes() {
	huma.Get(s.api, "/", s.homeHandler, htmlOperation("Home page", stdhttp.StatusInternalServerError))
	huma.Get(s.api, "/pages/{slug}", s.pageHandler, htmlOperation(
		"Marketing page",
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
	huma.Get(s.api, "/blog", s.blogIndexHandler, htmlOperation(
		"Blog index",
		stdhttp.StatusInternalServerError,
	))
	huma.Get(s.api, "/blog/{slug}", s.blogPostHandler, htmlOperation(
		"Blog article",
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
	huma.Get(s.api, "/newsletter/unsubscribe", s.unsubscribePageHandler, htmlOperation(
		"Unsubscribe from the newsletter",
		stdhttp.StatusBadRequest,
		stdhttp.StatusNotFound,
	))
}

func (s *Server) homeHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	home, err := s.content.Home(ctx)
	if err != nil {
		s.recordError(ctx, err, "loading home page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't load the home page right now."), nil
	}

	data := templates.HomeData{
		Layout:       s.layout("eduvista · eLearning that people finish", "", "/"),
		Page:         home.Page,
		Testimonials: home.Testimonials,
	}
	if home.Page != nil {
		data.Title = home.Page.Title + " · " + templates.SiteName
		data.Description = home.Page.Description
	}

	posts, err := s.blog.PublicPosts(ctx, "", 1, homeLatestPosts)
	if err != nil {
		// The landing page still renders without the blog teaser.
		s.recordError(ctx, err, "loading latest posts", nil)
	} else {
		data.LatestPosts = posts.Items
	}

	return s.renderPage(ctx, templates.Home(data), "rendering home page"), nil
}

func (s *Server) pageHandler(ctx context.Context, input *slugInput) (*htmlResponse, error) {
	slug := strings.TrimSpace(input.Slug)
	page, err := s.content.PublishedPage(ctx, slug)
	if err != nil {
		return s.htmlError(ctx, err, "loading page", logrus.Fields{"slug": slug}), nil
	}

	data := templates.PageData{
		Layout: s.layout(page.Title+" · "+templates.SiteName, page.Description, "/pages/"+page.Slug),
		Page:   page,
	}
	return s.renderPage(ctx, templates.Page(data), "rendering page"), nil
}

func (s *Server) blogIndexHandler(ctx context.Context, input *blogIndexInput) (*htmlResponse, error) {
	category := strings.TrimSpace(input.Category)
	page := input.Page
	if page < 1 {
		page = 1
	}

	posts, err := s.blog.PublicPosts(ctx, category, page, blogPageSize)
	if err != nil {
		return s.htmlError(ctx, err, "listing blog posts", logrus.Fields{"category": category}), nil
	}

	categories, err := s.blog.ListCategories(ctx)
	if err != nil {
		s.recordError(ctx, err, "listing blog categories", nil)
	}

	data := templates.BlogIndexData{
		Layout:     s.layout("Blog · "+templates.SiteName, "Articles on learning design, LMS strategy and corporate training.", "/blog"),
		Posts:      posts.Items,
		Categories: categories,
		Category:   category,
		Page:       page,
	}
	if page > 1 {
		data.PrevURL = blogIndexURL(category, page-1)
	}
	if int64(page*posts.PageSize) < posts.Total {
		data.NextURL = blogIndexURL(category, page+1)
	}

	return s.renderPage(ctx, templates.BlogIndex(data), "rendering blog index"), nil
}

func (s *Server) blogPostHandler(ctx context.Context, input *slugInput) (*htmlResponse, error) {
	slug := strings.TrimSpace(input.Slug)
	post, err := s.blog.PublicPost(ctx, slug)
	if err != nil {
		return s.htmlError(ctx, err, "loading blog post", logrus.Fields{"slug": slug}), nil
	}

	description := post.MetaDescription
	if description == "" {
		description = post.Excerpt
	}
	data := templates.BlogPostData{
		Layout: s.layout(post.Title+" · "+templates.SiteName, description, "/blog/"+post.Slug),
		Post:   post,
	}
	return s.renderPage(ctx, templates.BlogPost(data), "rendering blog post"), nil
}

func (s *Server) unsubscribePageHandler(ctx context.Context, input *unsubscribePageInput) (*htmlResponse, error) {
	subscriber, err := s.newsletter.Unsubscribe(ctx, input.Token)
	if err != nil {
		return s.htmlError(ctx, err, "unsubscribing", nil), nil
	}

	data := templates.MessageData{
		Layout:      s.layout("Unsubscribed · "+templates.SiteName, "", ""),
		StatusLabel: "You're unsubscribed",
		Message:     fmt.Sprintf("%s will no longer receive our newsletter.", subscriber.Email),
		LinkURL:     "/",
		LinkLabel:   "Back to the home page",
	}
	return s.renderPage(ctx, templates.Message(data), "rendering unsubscribe page"), nil
}

func (s *Server) layout(title, description, path string) templates.Layout {
	layout := templates.Layout{
		Title:       title,
		Description: description,
		Year:        s.now().Year(),
	}
	if path != "" && s.baseURL != "" {
		layout.CanonicalURL = s.baseURL + path
	}
	return layout
}

func (s *Server) renderPage(ctx context.Context, component templ.Component, message string) *htmlResponse {
	body, err := renderComponent(ctx, component)
	if err != nil {
		s.recordError(ctx, err, message, nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}
	resp := newHTMLResponse(stdhttp.StatusOK, body)
	resp.CacheControl = "public, max-age=60"
	return resp
}

func (s *Server) htmlError(ctx context.Context, err error, message string, fields logrus.Fields) *htmlResponse {
	status := statusForError(err)
	text := errorFallbackMessage
	switch {
	case status == stdhttp.StatusNotFound:
		text = "We couldn't find that page."
	case status < stdhttp.StatusInternalServerError:
		text = apperr.Message(err)
	default:
		s.recordError(ctx, err, message, fields)
	}
	return s.renderErrorResponse(ctx, status, text)
}

func (s *Server) renderErrorResponse(ctx context.Context, status int, message string) *htmlResponse {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	component := templates.Message(templates.MessageData{
		Layout:      s.layout(label+" · "+templates.SiteName, "", ""),
		StatusLabel: label,
		Message:     message,
		LinkURL:     "/",
		LinkLabel:   "Back to the home page",
	})

	body, err := renderComponent(ctx, component)
	if err != nil {
		s.recordError(ctx, err, "rendering error page", logrus.Fields{"status": status})
		fallback := []byte(fmt.Sprintf("<html><body><h1>%s</h1><p>%s</p></body></html>", label, message))
		return newHTMLResponse(status, fallback)
	}

	return newHTMLResponse(status, body)
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}

func blogIndexURL(category string, page int) string {
	values := url.Values{}
	if category != "" {
		values.Set("category", category)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if len(values) == 0 {
		return "/blog"
	}
	return "/blog?" + values.Encode()
}

func newHTMLResponse(status int, body []byte) *htmlResponse {
	return &htmlResponse{
		Status:      status,
		ContentType: htmlContentType,
		Body:        body,
	}
}

func htmlOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		op.Tags = []string{"site"}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					htmlContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}
