package bootstrap

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	auditdata "eduvista/site/internal/data/audit"
	authdata "eduvista/site/internal/data/auth"
	automationdata "eduvista/site/internal/data/automation"
	blogdata "eduvista/site/internal/data/blog"
	contactdata "eduvista/site/internal/data/contact"
	contentdata "eduvista/site/internal/data/content"
	"eduvista/site/internal/data/database"
	experimentsdata "eduvista/site/internal/data/experiments"
	"eduvista/site/internal/data/migrations"
	newsletterdata "eduvista/site/internal/data/newsletter"
	socialdata "eduvista/site/internal/data/social"
	"eduvista/site/internal/domain/ai"
	"eduvista/site/internal/domain/audit"
	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/domain/automation"
	"eduvista/site/internal/domain/blog"
	"eduvista/site/internal/domain/contact"
	"eduvista/site/internal/domain/content"
	"eduvista/site/internal/domain/dashboard"
	domainemail "eduvista/site/internal/domain/email"
	"eduvista/site/internal/domain/experiments"
	"eduvista/site/internal/domain/media"
	"eduvista/site/internal/domain/newsletter"
	"eduvista/site/internal/domain/scheduler"
	"eduvista/site/internal/domain/social"
	"eduvista/site/internal/infrastructure/email"
	"eduvista/site/internal/infrastructure/sanity"
	socialinfra "eduvista/site/internal/infrastructure/social"
	"eduvista/site/internal/infrastructure/storage"
	"eduvista/site/internal/infrastructure/llm/openai"
	"eduvista/site/internal/platform/cache"
	"eduvista/site/internal/platform/config"
	"eduvista/site/internal/platform/log"
	presentationhttp "eduvista/site/internal/presentation/http"
)

type Dependencies struct {
	Config    config.Config
	Logger    *logrus.Logger
	SentryHub *sentry.Hub
}

type Result struct {
	Services   presentationhttp.Services
	HTTPServer *presentationhttp.Server
	Database   *gorm.DB
	Cleanup    func() error
}

type repositories struct {
	content     *contentdata.Repository
	blog        *blogdata.Repository
	newsletter  *newsletterdata.Repository
	social      *socialdata.Repository
	contact     *contactdata.Repository
	automation  *automationdata.Repository
	audit       *auditdata.Repository
	auth        *authdata.Repository
	experiments *experimentsdata.Repository
}

// Build composes the eduvista application layers and returns the constructed components.
func Build(ctx context.Context, deps Dependencies) (Result, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}

	db, err := OpenDatabase(cfg)
	if err != nil {
		return Result{}, eris.Wrap(err, "opening database")
	}

	var closers []func() error
	closers = append(closers, func() error { return database.Close(db) })
	cleanup := func() error {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	closeOnError := func(wrapper error) (Result, error) {
		if closeErr := cleanup(); closeErr != nil {
			logger.WithError(closeErr).Error("closing resources after bootstrap failure")
		}
		return Result{}, wrapper
	}

	if err := migrations.Migrate(ctx, db, logger); err != nil {
		return closeOnError(eris.Wrap(err, "running migrations"))
	}

	repos, err := newRepositories(db, logger)
	if err != nil {
		return closeOnError(err)
	}

	reporter := log.NewReporter(logger, deps.SentryHub)

	sender, err := newSender(cfg, logger)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating email sender"))
	}

	siteCache, closeCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating cache"))
	}
	closers = append(closers, closeCache)

	jwtKey, err := signingKey(cfg, logger)
	if err != nil {
		return closeOnError(err)
	}

	var svc presentationhttp.Services

	if svc.Content, err = content.NewService(content.Options{Repository: repos.content, Reporter: reporter}); err != nil {
		return closeOnError(eris.Wrap(err, "creating content service"))
	}

	router, err := newSocialRouter(cfg)
	if err != nil {
		return closeOnError(eris.Wrap(err, "creating social publishers"))
	}
	if svc.Social, err = social.NewService(social.Options{
		Repository: repos.social,
		Publisher:  router,
		Metrics:    router.Metrics(),
		Reporter:   reporter,
	}); err != nil {
		return closeOnError(eris.Wrap(err, "creating social service"))
	}

	if svc.Automation, err = automation.NewService(automation.Options{
		Repository: repos.automation,
		Social:     svc.Social,
		Sender:     sender,
		Reporter:   reporter,
	}); err != nil {
		return closeOnError(eris.Wrap(err, "creating automation service"))
	}

	blogOpts := blog.Options{
		Repository: repos.blog,
		Cache:      siteCache,
		CacheTTL:   cfg.CacheTTL,
		Events:     svc.Automation,
		BaseURL:    cfg.PublicBaseURL,
		Reporter:   reporter,
	}
	if cfg.Sanity.ProjectID != "" {
		client, err := sanity.NewClient(sanity.Options{
			ProjectID:  cfg.Sanity.ProjectID,
			Dataset:    cfg.Sanity.Dataset,
			Token:      cfg.Sanity.Token,
			APIVersion: cfg.Sanity.APIVersion,
			Logger:     logger,
			Cache:      siteCache,
			CacheTTL:   cfg.CacheTTL,
		})
		if err != nil {
			return closeOnError(eris.Wrap(err, "creating sanity client"))
		}
		blogOpts.Source = client
		if cfg.Sanity.Token != "" {
			blogOpts.Publisher = client
		}
	}
	if svc.Blog, err = blog.NewService(blogOpts); err != nil {
		return closeOnError(eris.Wrap(err, "creating blog service"))
	}

	if svc.Newsletter, err = newsletter.NewService(newsletter.Options{
		Repository: repos.newsletter,
		Sender:     sender,
		Events:     svc.Automation,
		BaseURL:    cfg.PublicBaseURL,
		Reporter:   reporter,
	}); err != nil {
		return closeOnError(eris.Wrap(err, "creating newsletter service"))
	}

	if svc.Contact, err = contact.NewService(contact.Options{
		Repository:  repos.contact,
		Sender:      sender,
		NotifyEmail: cfg.Email.NotifyEmail,
		Events:      svc.Automation,
		Reporter:    reporter,
	}); err != nil {
		return closeOnError(eris.Wrap(err, "creating contact service"))
	}

	if svc.Audit, err = audit.NewService(repos.audit, reporter, nil); err != nil {
		return closeOnError(eris.Wrap(err, "creating audit service"))
	}

	if svc.Auth, err = auth.NewService(auth.Options{
		Repository: repos.auth,
		SigningKey: jwtKey,
		TokenTTL:   cfg.JWTTTL,
		Reporter:   reporter,
	}); err != nil {
		return closeOnError(eris.Wrap(err, "creating auth service"))
	}

	if svc.Experiments, err = experiments.NewService(repos.experiments, reporter, nil); err != nil {
		return closeOnError(eris.Wrap(err, "creating experiments service"))
	}

	aiOpts := ai.Options{Reporter: reporter}
	if cfg.LLMEnabled() {
		generator, err := newGenerator(cfg, logger)
		if err != nil {
			return closeOnError(eris.Wrap(err, "initialising llm generator"))
		}
		aiOpts.Completer = generator
	} else {
		logger.Info("LLM_API_KEY or LLM_MODELS not set, content generation disabled")
	}
	svc.AI = ai.NewService(aiOpts)

	mediaOpts := media.Options{Reporter: reporter}
	if cfg.Supabase.URL != "" {
		store, err := storage.NewSupabase(storage.SupabaseOptions{
			URL:        cfg.Supabase.URL,
			ServiceKey: cfg.Supabase.ServiceKey,
			Bucket:     cfg.Supabase.Bucket,
		})
		if err != nil {
			return closeOnError(eris.Wrap(err, "creating supabase storage"))
		}
		mediaOpts.Storage = store
	}
	svc.Media = media.NewService(mediaOpts)

	if svc.Dashboard, err = dashboard.NewService(dashboard.Options{
		Subscribers: svc.Newsletter,
		Campaigns:   svc.Newsletter,
		Blog:        svc.Blog,
		Social:      svc.Social,
		Contacts:    svc.Contact,
		Audit:       svc.Audit,
		Reporter:    reporter,
	}); err != nil {
		return closeOnError(eris.Wrap(err, "creating dashboard service"))
	}

	if svc.Scheduler, err = scheduler.NewRunner(scheduler.Options{
		Processors: []scheduler.Processor{svc.Blog, svc.Social, svc.Newsletter},
		Interval:   cfg.SchedulerInterval,
		Reporter:   reporter,
	}); err != nil {
		return closeOnError(eris.Wrap(err, "creating scheduler"))
	}

	httpServer, err := presentationhttp.NewServer(presentationhttp.Options{
		Services:  svc,
		Database:  db,
		Logger:    logger,
		SentryHub: deps.SentryHub,
		RateLimiter: presentationhttp.RateLimiterSettings{
			Burst:             cfg.RateLimit.Burst,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			ClientTTL:         cfg.RateLimit.ClientTTL,
		},
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		return closeOnError(eris.Wrap(err, "initialising http server"))
	}
	closers = append(closers, func() error {
		httpServer.Close()
		svc.Social.Wait()
		return nil
	})

	return Result{
		Services:   svc,
		HTTPServer: httpServer,
		Database:   db,
		Cleanup:    cleanup,
	}, nil
}

// OpenDatabase connects to the configured database without migrating it.
func OpenDatabase(cfg config.Config) (*gorm.DB, error) {
	return database.Open(database.Options{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.DatabaseURL,
	})
}

func newRepositories(db *gorm.DB, logger *logrus.Logger) (*repositories, error) {
	var (
		repos repositories
		err   error
	)
	if repos.content, err = contentdata.NewRepository(db, logger); err != nil {
		return nil, eris.Wrap(err, "creating content repository")
	}
	if repos.blog, err = blogdata.NewRepository(db, logger); err != nil {
		return nil, eris.Wrap(err, "creating blog repository")
	}
	if repos.newsletter, err = newsletterdata.NewRepository(db, logger); err != nil {
		return nil, eris.Wrap(err, "creating newsletter repository")
	}
	if repos.social, err = socialdata.NewRepository(db, logger); err != nil {
		return nil, eris.Wrap(err, "creating social repository")
	}
	if repos.contact, err = contactdata.NewRepository(db, logger); err != nil {
		return nil, eris.Wrap(err, "creating contact repository")
	}
	if repos.automation, err = automationdata.NewRepository(db, logger); err != nil {
		return nil, eris.Wrap(err, "creating automation repository")
	}
	if repos.audit, err = auditdata.NewRepository(db, logger); err != nil {
		return nil, eris.Wrap(err, "creating audit repository")
	}
	if repos.auth, err = authdata.NewRepository(db, logger); err != nil {
		return nil, eris.Wrap(err, "creating auth repository")
	}
	if repos.experiments, err = experimentsdata.NewRepository(db, logger); err != nil {
		return nil, eris.Wrap(err, "creating experiments repository")
	}
	return &repos, nil
}

func newSender(cfg config.Config, logger *logrus.Logger) (domainemail.Sender, error) {
	provider := cfg.Email.Provider
	if provider == "brevo" && strings.TrimSpace(cfg.Email.BrevoAPIKey) == "" {
		if isProduction(cfg) {
			return nil, eris.New("BREVO_API_KEY is required when EMAIL_PROVIDER is brevo")
		}
		logger.Warn("BREVO_API_KEY not set, falling back to the log email provider")
		provider = "log"
	}

	return email.NewSender(email.ProviderOptions{
		Provider: provider,
		Brevo: email.BrevoOptions{
			APIKey:      cfg.Email.BrevoAPIKey,
			SenderEmail: cfg.Email.SenderEmail,
			SenderName:  cfg.Email.SenderName,
		},
		Logger: logger,
	})
}

func newCache(ctx context.Context, cfg config.Config, logger *logrus.Logger) (cache.Cache, func() error, error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(), func() error { return nil }, nil
	}

	redisCache, err := cache.NewRedis(ctx, cache.RedisOptions{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err != nil {
		return nil, nil, err
	}
	logger.WithField("addr", cfg.RedisAddr).Info("using redis cache")
	return redisCache, redisCache.Close, nil
}

func newSocialRouter(cfg config.Config) (*socialinfra.Router, error) {
	var (
		linkedIn *socialinfra.LinkedIn
		twitter  *socialinfra.Twitter
		ayrshare *socialinfra.Ayrshare
		err      error
	)

	if cfg.Social.LinkedInAccessToken != "" {
		if linkedIn, err = socialinfra.NewLinkedIn(socialinfra.LinkedInOptions{
			AccessToken: cfg.Social.LinkedInAccessToken,
			AuthorURN:   cfg.Social.LinkedInAuthorURN,
		}); err != nil {
			return nil, eris.Wrap(err, "creating linkedin client")
		}
	}
	if cfg.Social.TwitterBearerToken != "" {
		if twitter, err = socialinfra.NewTwitter(socialinfra.TwitterOptions{
			BearerToken: cfg.Social.TwitterBearerToken,
		}); err != nil {
			return nil, eris.Wrap(err, "creating twitter client")
		}
	}
	if cfg.Social.AyrshareAPIKey != "" {
		if ayrshare, err = socialinfra.NewAyrshare(socialinfra.AyrshareOptions{
			APIKey: cfg.Social.AyrshareAPIKey,
		}); err != nil {
			return nil, eris.Wrap(err, "creating ayrshare client")
		}
	}

	return socialinfra.NewRouter(linkedIn, twitter, ayrshare), nil
}

func newGenerator(cfg config.Config, logger *logrus.Logger) (*openai.Generator, error) {
	client, err := openai.NewClient(openai.ClientOptions{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMEndpoint,
		Logger:  logger,
	})
	if err != nil {
		return nil, eris.Wrap(err, "creating llm client")
	}

	return openai.NewGenerator(openai.GeneratorOptions{
		Client: client,
		Models: cfg.LLMModels,
	})
}

// signingKey returns the configured JWT key. Outside production a missing key
// is replaced by a random one, which invalidates sessions on restart.
func signingKey(cfg config.Config, logger *logrus.Logger) (string, error) {
	if key := strings.TrimSpace(cfg.JWTSigningKey); key != "" {
		return key, nil
	}
	if isProduction(cfg) {
		return "", eris.New("JWT_SIGNING_KEY is required in production")
	}

	logger.Warn("JWT_SIGNING_KEY not set, using an ephemeral key")
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""), nil
}

func isProduction(cfg config.Config) bool {
	return strings.EqualFold(cfg.Environment, "production")
}
