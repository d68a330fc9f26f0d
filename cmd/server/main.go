package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/app"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/config"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/logger"
)

const serviceName = "sip-reviews"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// Cobra already printed the error.
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sip-reviews",
		Short:         "Product reviews shortcode service",
		Long:          "Serves paginated, filterable product reviews with a rating summary, themed CSS and product structured data.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newRenderCmd(),
		newIssueTokenCmd(),
		newSeedCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			log.Info("starting reviews service",
				slog.String("environment", cfg.Environment),
				slog.Int("http_port", cfg.HTTPPort),
				slog.Bool("redis", cfg.Redis.Enabled()),
			)

			// Create the application with all dependencies wired.
			application, err := app.NewApp(cfg, log)
			if err != nil {
				log.Error("failed to initialize application", slog.String("error", err.Error()))
				return err
			}

			// Run the application. This blocks until shutdown.
			if err := application.Run(cmd.Context()); err != nil {
				log.Error("application error", slog.String("error", err.Error()))
				return err
			}

			log.Info("reviews service stopped")
			return nil
		},
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		return nil, nil, err
	}
	return cfg, logger.New(serviceName, cfg.LogLevel), nil
}
