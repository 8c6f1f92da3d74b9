package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/cmsroute/pkg/config"
	"github.com/dmitrymomot/cmsroute/pkg/logger"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the url_rewrites schema",
		Long: `Apply the url_rewrites schema to the configured rewrite store.
Postgres migrations run regardless of REWRITE_MIGRATE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Rewrite.Migrate = true
			cfg.Rewrite.Breaker = false

			store, err := rewrite.Open(cmd.Context(), cfg.Rewrite, logger.New(cfg.Logger))
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s rewrite store\n", cfg.Rewrite.Driver)
			return nil
		},
	}
}
