package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // REVIEWS_TIMEZONE must resolve in minimal images

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/repository/cache"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/service"
	pkgconfig "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/config"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/database"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/tracing"
)

// minSecretLen is the shortest accepted NONCE_SECRET.
const minSecretLen = 16

// Config holds all configuration for the reviews service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort    int `env:"SIP_HTTP_PORT" envDefault:"8080"`
	AssetMaxAge int `env:"ASSET_MAX_AGE" envDefault:"3600"`

	// PostgreSQL
	Postgres    database.PostgresConfig
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	// Slow query logging; 0 disables it.
	SlowQueryThreshold time.Duration `env:"LOG_SLOW_QUERY" envDefault:"500ms"`

	// Redis and the in-process cache tier
	Redis database.RedisConfig
	Cache CacheConfig

	// OpenTelemetry
	Tracing tracing.Config

	// Review store and rendering
	Store   service.StoreConfig `envPrefix:"STORE_"`
	Schema  service.SchemaConfig
	Reviews ReviewsConfig `envPrefix:"REVIEWS_"`

	// Nonces and admin tokens are signed with NonceSecret.
	NonceSecret string        `env:"NONCE_SECRET"`
	NonceTTL    time.Duration `env:"NONCE_TTL" envDefault:"24h"`

	// Per-IP limit on the AJAX endpoints; a zero rate disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// ThemeFile is an optional YAML seed for the color settings.
	ThemeFile string `env:"THEME_FILE"`
}

// CacheConfig configures the in-process tier and the Redis breaker.
type CacheConfig struct {
	LocalTTL         time.Duration `env:"CACHE_LOCAL_TTL" envDefault:"1m"`
	LocalCapacity    uint64        `env:"CACHE_LOCAL_CAPACITY" envDefault:"10000"`
	KeyPrefix        string        `env:"CACHE_KEY_PREFIX" envDefault:"sip_rswc:"`
	BreakerTimeout   time.Duration `env:"CACHE_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerRatio     float64       `env:"CACHE_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerMinSample uint32        `env:"CACHE_BREAKER_MIN_REQUESTS" envDefault:"5"`
}

// Tiered converts c into the cache package configuration.
func (c CacheConfig) Tiered() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.LocalTTL = c.LocalTTL
	cfg.LocalCapacity = c.LocalCapacity
	cfg.KeyPrefix = c.KeyPrefix
	cfg.Breaker.Timeout = c.BreakerTimeout
	cfg.Breaker.FailureRatio = c.BreakerRatio
	cfg.Breaker.MinRequests = c.BreakerMinSample
	return cfg
}

// ReviewsConfig controls how review dates are shown.
type ReviewsConfig struct {
	DateLayout string `env:"DATE_LAYOUT" envDefault:"January 2, 2006"`
	Timezone   string `env:"TIMEZONE" envDefault:"UTC"`
}

// Location resolves Timezone.
func (c ReviewsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load reviews config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Tracing.ServiceName = "sip-reviews"
	cfg.Tracing.ServiceVersion = "0.1.0"
	cfg.Tracing.Environment = cfg.Environment
	return cfg, nil
}

// AjaxURL is the admin-ajax endpoint advertised to the storefront script.
func (c *Config) AjaxURL() string {
	return strings.TrimRight(c.Schema.BaseURL, "/") + "/wp-admin/admin-ajax.php"
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.Postgres.URL == "" && c.Postgres.Host == "" {
		return errors.New("DB_HOST or DATABASE_URL is required")
	}
	if len(c.NonceSecret) < minSecretLen {
		return fmt.Errorf("NONCE_SECRET must be at least %d characters", minSecretLen)
	}
	if c.NonceTTL <= 0 {
		return fmt.Errorf("NONCE_TTL must be positive, got %s", c.NonceTTL)
	}
	if c.Store.CountTTL <= 0 || c.Store.PageTTL <= 0 {
		return errors.New("STORE_COUNT_TTL and STORE_PAGE_TTL must be positive")
	}
	if c.Store.MaxWindow < 1 {
		return fmt.Errorf("STORE_MAX_WINDOW must be at least 1, got %d", c.Store.MaxWindow)
	}
	if c.Cache.LocalTTL <= 0 {
		return fmt.Errorf("CACHE_LOCAL_TTL must be positive, got %s", c.Cache.LocalTTL)
	}
	if c.Cache.BreakerRatio <= 0 || c.Cache.BreakerRatio > 1.0 {
		return fmt.Errorf("CACHE_BREAKER_FAILURE_RATIO must be in (0, 1], got %f", c.Cache.BreakerRatio)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.Tracing.SampleRate)
	}
	if _, err := c.Reviews.Location(); err != nil {
		return err
	}
	return nil
}
