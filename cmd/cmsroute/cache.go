package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached route tables",
	}
	cmd.AddCommand(cacheFlushCmd())
	return cmd
}

func cacheFlushCmd() *cobra.Command {
	var router string

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Drop cached route tables and rewrite snapshots",
		Long: `Drop the cached route tables and rewrite snapshots so the next request
on every worker rebuilds them. Run after deploying handler changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				routers, err := d.selected(router)
				if err != nil {
					return err
				}
				for _, rt := range routers {
					if err := rt.Invalidate(cmd.Context()); err != nil {
						return fmt.Errorf("%s router: %w", rt.Name(), err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "flushed %s\n", rt.Name())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&router, "router", "r", "all", "Router to flush: web, crud, graphql, webhooks or all")

	return cmd
}
