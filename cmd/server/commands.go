package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/app"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/auth"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/repository/postgres"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/service"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				names, err := database.PendingMigrations(postgres.Migrations())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := database.NewPostgresPool(cmd.Context(), &cfg.Postgres, log)
			if err != nil {
				return fmt.Errorf("connect to postgres: %w", err)
			}
			defer pool.Close()

			if err := database.RunMigrations(cmd.Context(), pool, postgres.Migrations(), log); err != nil {
				return err
			}
			log.Info("database migrations completed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print the embedded migration files and exit")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		productID int64
		limit     int
		schema    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the reviews embed HTML of a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			svc, err := app.Connect(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			out, err := svc.Embed.Render(cmd.Context(), service.EmbedRequest{
				ProductID: productID,
				Limit:     limit,
				Schema:    schema,
			})
			if err != nil {
				return err
			}
			if out == "" {
				log.Warn("nothing to render", slog.Int64("product_id", productID))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().Int64Var(&productID, "id", 0, "product ID")
	cmd.Flags().IntVar(&limit, "limit", 5, "reviews on the first page")
	cmd.Flags().BoolVar(&schema, "schema", false, "append product JSON-LD")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newIssueTokenCmd() *cobra.Command {
	var (
		userID string
		caps   []string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Mint an admin bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := auth.NewTokenManager(cfg.NonceSecret).Issue(userID, caps, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user the token is issued to")
	cmd.Flags().StringSliceVar(&caps, "cap", []string{auth.CapabilityManageWooCommerce}, "granted capability (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var opts service.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a reproducible demo catalog of products and reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Products < 1 {
				return errors.New("--products must be at least 1")
			}
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := database.NewPostgresPool(cmd.Context(), &cfg.Postgres, log)
			if err != nil {
				return fmt.Errorf("connect to postgres: %w", err)
			}
			defer pool.Close()

			res, err := service.NewSeeder(postgres.NewCatalogWriter(pool), log).Seed(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products with %d reviews\n", res.Products, res.Reviews)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Products, "products", 20, "number of products")
	cmd.Flags().IntVar(&opts.ReviewsPerProduct, "reviews", 25, "reviews per product")
	cmd.Flags().Int64Var(&opts.FirstID, "first-id", 1, "ID of the first product")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed")
	return cmd
}
