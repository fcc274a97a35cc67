package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the eduvista site.
type Config struct {
	DBDriver      string
	DBPath        string
	DatabaseURL   string
	ServerPort    int
	LogLevel      string
	Environment   string
	SentryDSN     string
	PublicBaseURL string
	ShutdownGrace time.Duration

	LLMEndpoint string
	LLMAPIKey   string
	LLMModels   []string

	JWTSigningKey string
	JWTTTL        time.Duration

	RedisAddr string
	RedisDB   int
	CacheTTL  time.Duration

	RateLimit RateLimitConfig

	SchedulerInterval time.Duration

	Email    EmailConfig
	Social   SocialConfig
	Sanity   SanityConfig
	Supabase SupabaseConfig
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

// EmailConfig selects and configures the outbound email provider.
type EmailConfig struct {
	Provider    string
	BrevoAPIKey string
	SenderEmail string
	SenderName  string
	NotifyEmail string
}

// SocialConfig carries credentials for the social publishing providers.
type SocialConfig struct {
	AyrshareAPIKey      string
	LinkedInAccessToken string
	LinkedInAuthorURN   string
	TwitterBearerToken  string
}

// SanityConfig points at the headless CMS project.
type SanityConfig struct {
	ProjectID  string
	Dataset    string
	Token      string
	APIVersion string
}

// SupabaseConfig points at the object storage bucket used for media uploads.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
}

const (
	defaultDBDriver          = "sqlite"
	defaultDBPath            = "./data/eduvista.db"
	defaultServerPort        = 8080
	defaultLogLevel          = "info"
	defaultEnvironment       = "development"
	defaultPublicBaseURL     = "http://localhost:8080"
	defaultShutdownGrace     = 10 * time.Second
	defaultJWTTTL            = 12 * time.Hour
	defaultCacheTTL          = 5 * time.Minute
	defaultRateLimitRPS      = 5.0
	defaultRateLimitBurst    = 20
	defaultRateLimitTTL      = 10 * time.Minute
	defaultSchedulerInterval = time.Minute
	defaultEmailProvider     = "log"
	defaultSenderEmail       = "hello@eduvista.local"
	defaultSenderName        = "eduvista"
	defaultSanityDataset     = "production"
	defaultSanityAPIVersion  = "v2021-10-21"
	defaultSupabaseBucket    = "media"
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", defaultDBDriver)),
		DBPath:        getEnv("DB_PATH", defaultDBPath),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel),
		Environment:   getEnv("ENV", defaultEnvironment),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", defaultPublicBaseURL), "/"),
		ShutdownGrace: defaultShutdownGrace,
		LLMEndpoint:   os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:     os.Getenv("LLM_API_KEY"),
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		Email: EmailConfig{
			Provider:    strings.ToLower(getEnv("EMAIL_PROVIDER", defaultEmailProvider)),
			BrevoAPIKey: os.Getenv("BREVO_API_KEY"),
			SenderEmail: getEnv("BREVO_SENDER", defaultSenderEmail),
			SenderName:  getEnv("BREVO_SENDER_NAME", defaultSenderName),
			NotifyEmail: os.Getenv("CONTACT_NOTIFY_EMAIL"),
		},
		Social: SocialConfig{
			AyrshareAPIKey:      os.Getenv("AYRSHARE_API_KEY"),
			LinkedInAccessToken: os.Getenv("LINKEDIN_ACCESS_TOKEN"),
			LinkedInAuthorURN:   os.Getenv("LINKEDIN_AUTHOR_URN"),
			TwitterBearerToken:  os.Getenv("TWITTER_BEARER_TOKEN"),
		},
		Sanity: SanityConfig{
			ProjectID:  os.Getenv("SANITY_PROJECT_ID"),
			Dataset:    getEnv("SANITY_DATASET", defaultSanityDataset),
			Token:      os.Getenv("SANITY_TOKEN"),
			APIVersion: getEnv("SANITY_API_VERSION", defaultSanityAPIVersion),
		},
		Supabase: SupabaseConfig{
			URL:        strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			ServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
			Bucket:     getEnv("SUPABASE_BUCKET", defaultSupabaseBucket),
		},
	}

	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, eris.New("DATABASE_URL is required when DB_DRIVER is postgres")
		}
	default:
		return nil, eris.Errorf("invalid DB_DRIVER value: %s", cfg.DBDriver)
	}

	switch cfg.Email.Provider {
	case "brevo", "log":
	default:
		return nil, eris.Errorf("invalid EMAIL_PROVIDER value: %s", cfg.Email.Provider)
	}

	if modelsJSON := os.Getenv("LLM_MODELS"); modelsJSON != "" {
		models, err := parseModels(modelsJSON)
		if err != nil {
			return nil, eris.Wrap(err, "parsing LLM_MODELS")
		}
		cfg.LLMModels = models
	}

	var err error
	if cfg.ServerPort, err = getInt("SERVER_PORT", defaultServerPort); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = getDuration("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", defaultCacheTTL); err != nil {
		return nil, err
	}
	if cfg.SchedulerInterval, err = getDuration("SCHEDULER_INTERVAL", defaultSchedulerInterval); err != nil {
		return nil, err
	}
	if cfg.RateLimit.RequestsPerSecond, err = getFloat("RATE_LIMIT_RPS", defaultRateLimitRPS); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = getInt("RATE_LIMIT_BURST", defaultRateLimitBurst); err != nil {
		return nil, err
	}
	if cfg.RateLimit.ClientTTL, err = getDuration("RATE_LIMIT_CLIENT_TTL", defaultRateLimitTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LLMEnabled reports whether enough configuration exists to build an LLM client.
func (c *Config) LLMEnabled() bool {
	return strings.TrimSpace(c.LLMAPIKey) != "" && len(c.LLMModels) > 0
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, eris.Wrapf(err, "invalid %s value: %s", key, raw)
	}
	return value, nil
}

func parseModels(raw string) ([]string, error) {
	// Accept either a JSON array of strings or an object with a `models` field.
	var arrayInput []string
	if err := json.Unmarshal([]byte(raw), &arrayInput); err == nil {
		return arrayInput, nil
	}

	var objectInput struct {
		Models []string `json:"models"`
	}
	if err := json.Unmarshal([]byte(raw), &objectInput); err != nil {
		return nil, eris.Wrap(err, "decoding JSON")
	}

	if len(objectInput.Models) == 0 {
		return nil, eris.New("models list is empty")
	}

	return objectInput.Models, nil
}
