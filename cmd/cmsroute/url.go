package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func urlCmd() *cobra.Command {
	var router string

	cmd := &cobra.Command{
		Use:   "url <name> [key=value...]",
		Short: "Build the URL of a named route",
		Example: `  cmsroute url frontend.page id=42
  cmsroute url webhook.rewrites --router webhooks`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make(map[string]string, len(args)-1)
			for _, kv := range args[1:] {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("invalid parameter %q, want key=value", kv)
				}
				params[k] = v
			}

			return withDeps(cmd.Context(), func(d *deps) error {
				rt, err := d.router(router)
				if err != nil {
					return err
				}
				u, err := rt.LookupURL(cmd.Context(), args[0], params)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), u)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&router, "router", "r", "web", "Router holding the route")

	return cmd
}
