package http

import (
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eduvista/site/internal/domain/ai"
	"eduvista/site/internal/domain/audit"
	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/automation"
	"eduvista/site/internal/domain/blog"
	"eduvista/site/internal/domain/contact"
	"eduvista/site/internal/domain/content"
	"eduvista/site/internal/domain/dashboard"
	"eduvista/site/internal/domain/experiments"
	"eduvista/site/internal/domain/media"
	"eduvista/site/internal/domain/newsletter"
	"eduvista/site/internal/domain/scheduler"
	"eduvista/site/internal/domain/social"
	"eduvista/site/internal/platform/metrics"
)

// Services groups the domain services the HTTP layer exposes.
type Services struct {
	Content     *content.Service
	Blog        *blog.Service
	Newsletter  *newsletter.Service
	Social      *social.Service
	Contact     *contact.Service
	Automation  *automation.Service
	Audit       *audit.Service
	Auth        *auth.Service
	Experiments *experiments.Service
	AI          *ai.Service
	Media       *media.Service
	Dashboard   *dashboard.Service
	Scheduler   *scheduler.Runner
}

// Options configures the HTTP server wiring.
type Options struct {
	Services      Services
	Database      *gorm.DB
	Logger        *logrus.Logger
	SentryHub     *sentry.Hub
	RateLimiter   RateLimiterSettings
	PublicBaseURL string
}

// RateLimiterSettings configures the HTTP rate limiter behaviour.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// Server wires the HTTP transport layer via Huma and templ components.
type Server struct {
	api         huma.API
	mux         *stdhttp.ServeMux
	db          *gorm.DB
	logger      *logrus.Logger
	sentry      *sentry.Hub
	rateLimiter *RateLimiter
	baseURL     string
	now         func() time.Time

	content     *content.Service
	blog        *blog.Service
	newsletter  *newsletter.Service
	social      *social.Service
	contact     *contact.Service
	automation  *automation.Service
	audit       *audit.Service
	auth        *auth.Service
	experiments *experiments.Service
	ai          *ai.Service
	media       *media.Service
	dashboard   *dashboard.Service
	scheduler   *scheduler.Runner
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	svc := opts.Services
	switch {
	case svc.Content == nil:
		return nil, eris.New("content service is required")
	case svc.Blog == nil:
		return nil, eris.New("blog service is required")
	case svc.Newsletter == nil:
		return nil, eris.New("newsletter service is required")
	case svc.Social == nil:
		return nil, eris.New("social service is required")
	case svc.Contact == nil:
		return nil, eris.New("contact service is required")
	case svc.Automation == nil:
		return nil, eris.New("automation service is required")
	case svc.Audit == nil:
		return nil, eris.New("audit service is required")
	case svc.Auth == nil:
		return nil, eris.New("auth service is required")
	case svc.Experiments == nil:
		return nil, eris.New("experiments service is required")
	case svc.AI == nil:
		return nil, eris.New("ai service is required")
	case svc.Media == nil:
		return nil, eris.New("media service is required")
	case svc.Dashboard == nil:
		return nil, eris.New("dashboard service is required")
	case svc.Scheduler == nil:
		return nil, eris.New("scheduler runner is required")
	case opts.Database == nil:
		return nil, eris.New("database is required")
	}

	settings := opts.RateLimiter
	if settings.Burst <= 0 {
		return nil, eris.New("rate limiter burst must be greater than zero")
	}
	if settings.RequestsPerSecond <= 0 {
		return nil, eris.New("rate limiter requests per second must be greater than zero")
	}
	if settings.ClientTTL <= 0 {
		return nil, eris.New("rate limiter client TTL must be greater than zero")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("eduvista", "1.0.0")
	config.Info.Description = "Marketing site and CMS admin API."
	config.Components.Schemas = huma.NewMapRegistry("#/components/schemas/", schemaNamer)
	if config.Components.SecuritySchemes == nil {
		config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	config.Components.SecuritySchemes["bearer"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}

	api := humago.New(mux, config)

	srv := &Server{
		api:         api,
		mux:         mux,
		db:          opts.Database,
		logger:      opts.Logger,
		sentry:      opts.SentryHub,
		baseURL:     strings.TrimRight(opts.PublicBaseURL, "/"),
		now:         time.Now,
		content:     svc.Content,
		blog:        svc.Blog,
		newsletter:  svc.Newsletter,
		social:      svc.Social,
		contact:     svc.Contact,
		automation:  svc.Automation,
		audit:       svc.Audit,
		auth:        svc.Auth,
		experiments: svc.Experiments,
		ai:          svc.AI,
		media:       svc.Media,
		dashboard:   svc.Dashboard,
		scheduler:   svc.Scheduler,
	}

	srv.rateLimiter = NewRateLimiter(settings.Burst, settings.RequestsPerSecond, settings.ClientTTL)

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.rateLimitMiddleware(),
		s.metricsMiddleware(),
		s.loggingMiddleware(),
		s.authMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /favicon.ico", faviconHandler)
	s.mux.HandleFunc("HEAD /favicon.ico", faviconHandler)
	s.mux.Handle("GET /metrics", metrics.Handler())

	s.registerStaticRoute()
	s.registerPageRoutes()
	s.registerHealthRoute()

	s.registerPublicRoutes()

	s.registerContentRoutes()
	s.registerBlogRoutes()
	s.registerNewsletterRoutes()
	s.registerSocialRoutes()
	s.registerContactRoutes()
	s.registerAutomationRoutes()
	s.registerExperimentRoutes()
	s.registerSystemRoutes()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
