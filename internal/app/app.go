// Package app wires the reviews service together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/auth"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/config"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	handler "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/handler/http"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/render"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/repository/cache"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/repository/postgres"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/service"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/database"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/health"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/middleware"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/tracing"
)

// Services are the storage-backed components shared by the HTTP server and
// the CLI commands.
type Services struct {
	Pool       *pgxpool.Pool
	Redis      *redis.Client
	Cache      *cache.Tiered
	Store      *service.ReviewStore
	Renderer   *render.Renderer
	Controller *service.PaginationController
	Schema     *service.SchemaService
	Embed      *service.EmbedService
	Themes     *service.ThemeService

	started bool
}

// Connect opens Postgres and, when configured, Redis. An unreachable Redis
// is logged and the cache runs on its local tier only.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	pool, err := database.NewPostgresPool(ctx, &cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.Postgres.Host),
		slog.Int("port", cfg.Postgres.Port),
		slog.String("database", cfg.Postgres.DBName),
	)

	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, caching in process only",
				slog.String("addr", cfg.Redis.Addr()),
				slog.String("error", err.Error()),
			)
			rdb = nil
		} else {
			logger.Info("connected to Redis", slog.String("addr", cfg.Redis.Addr()))
		}
	}

	svc, err := newServices(cfg, pool, rdb, logger)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		pool.Close()
		return nil, err
	}
	return svc, nil
}

func newServices(cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client, logger *slog.Logger) (*Services, error) {
	var remote redis.Cmdable
	if rdb != nil {
		remote = rdb
	}
	tiered := cache.New(remote, cfg.Cache.Tiered(), logger)

	loc, err := cfg.Reviews.Location()
	if err != nil {
		return nil, err
	}

	var seed *domain.ColorTheme
	if cfg.ThemeFile != "" {
		theme, err := service.LoadThemeFile(cfg.ThemeFile)
		if err != nil {
			return nil, err
		}
		seed = &theme
		logger.Info("color theme seeded", slog.String("file", cfg.ThemeFile))
	}

	store := service.NewReviewStore(
		postgres.NewReviewRepository(pool),
		postgres.NewProductRepository(pool),
		tiered,
		cfg.Store,
		logger,
	)
	renderer := render.NewRenderer(render.NewHooks(), render.Options{
		DateLayout: cfg.Reviews.DateLayout,
		Location:   loc,
	})
	controller := service.NewPaginationController(store, renderer, logger)
	schema := service.NewSchemaService(store, cfg.Schema, logger)

	return &Services{
		Pool:       pool,
		Redis:      rdb,
		Cache:      tiered,
		Store:      store,
		Renderer:   renderer,
		Controller: controller,
		Schema:     schema,
		Embed:      service.NewEmbedService(store, controller, schema, renderer, logger),
		Themes:     service.NewThemeService(postgres.NewOptionRepository(pool), seed, logger),
	}, nil
}

// Start runs the local cache expiry loop.
func (s *Services) Start() {
	s.Cache.Start()
	s.started = true
}

// Close releases the connections.
func (s *Services) Close() {
	if s.started {
		s.Cache.Stop()
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	s.Pool.Close()
}

// App wires together all dependencies and runs the reviews service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	services       *Services
	limiter        *middleware.RateLimiter
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	svc, err := Connect(ctx, cfg, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, svc.Pool, handler.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if cfg.AutoMigrate {
		if err := database.RunMigrations(ctx, svc.Pool, postgres.Migrations(), logger); err != nil {
			svc.Close()
			_ = tracerShutdown(context.Background())
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return svc.Pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", svc.Cache.Ping)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 0, logger)
	}

	tokens := auth.NewTokenManager(cfg.NonceSecret)
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	// HTTP router.
	router := handler.NewRouter(handler.Dependencies{
		Controller:  svc.Controller,
		Embed:       svc.Embed,
		Themes:      svc.Themes,
		Nonces:      auth.NewNonceManager(cfg.NonceSecret, cfg.NonceTTL),
		Tokens:      tokens.Validate,
		Permissions: auth.ClaimsChecker{},
		Health:      healthHandler,
		RateLimiter: limiter,
		Logger:      logger,
	}, handler.Options{
		AjaxURL:        cfg.AjaxURL(),
		CORS:           cors,
		AssetMaxAge:    cfg.AssetMaxAge,
		PprofEnabled:   cfg.PprofEnabled,
		PprofAllowlist: cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		services:       svc,
		limiter:        limiter,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server, then blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.services.Start()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Rate limiter, cache, Redis and PostgreSQL
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.limiter != nil {
		a.limiter.Stop()
	}
	a.services.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
