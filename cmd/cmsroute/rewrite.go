package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/cmsroute/pkg/cache"
	"github.com/dmitrymomot/cmsroute/pkg/rewrite"
)

func rewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Manage URL rewrites",
	}
	cmd.AddCommand(rewriteAddCmd(), rewriteImportCmd(), rewriteListCmd(), rewriteDeleteCmd())
	return cmd
}

// dropSnapshots deletes the cached rewrite snapshots so workers sharing the
// cache stop serving changed or deleted records.
func dropSnapshots(ctx context.Context, d *deps) error {
	for _, rt := range d.routers {
		if err := d.tables.Delete(ctx, cache.Key(rt.Name(), cache.CategoryRoutes)); err != nil {
			return fmt.Errorf("drop %s rewrite snapshot: %w", rt.Name(), err)
		}
	}
	return nil
}

func rewriteAddCmd() *cobra.Command {
	var rec rewrite.Record

	cmd := &cobra.Command{
		Use:     "add <url> <route>",
		Short:   "Map a pretty URL to a route",
		Example: `  cmsroute rewrite add /en/about.html /page/42 --locale en --website 1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec.URL, rec.Route = args[0], args[1]
			if err := rec.Validate(); err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *deps) error {
				if err := d.store.Save(cmd.Context(), &rec); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved rewrite %d\n", rec.ID)
				return dropSnapshots(cmd.Context(), d)
			})
		},
	}

	cmd.Flags().Int64VarP(&rec.WebsiteID, "website", "w", 0, "Website id")
	cmd.Flags().StringVarP(&rec.Locale, "locale", "l", "", "Locale of the URL")
	cmd.Flags().StringVar(&rec.Domain, "domain", "", "Domain the URL belongs to")

	return cmd
}

func rewriteImportCmd() *cobra.Command {
	var websiteID int64

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import rewrites from a YAML or JSON list",
		Long: `Import reads a list of records with url, route and optional locale,
domain and website_id fields. Records without website_id get --website.
The whole file is validated first; SQL stores import it in one transaction.`,
		Example: `  cmsroute rewrite import rewrites.yaml --website 1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var recs []rewrite.Record
			// JSON is valid YAML.
			if err := yaml.Unmarshal(data, &recs); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			for i := range recs {
				if recs[i].WebsiteID == 0 {
					recs[i].WebsiteID = websiteID
				}
			}

			return withDeps(cmd.Context(), func(d *deps) error {
				if err := rewrite.Import(cmd.Context(), d.store, recs); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d rewrites\n", len(recs))
				return dropSnapshots(cmd.Context(), d)
			})
		},
	}

	cmd.Flags().Int64VarP(&websiteID, "website", "w", 0, "Website id for records without one")

	return cmd
}

func rewriteListCmd() *cobra.Command {
	var websiteID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the rewrites of a website",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				recs, err := d.store.List(cmd.Context(), websiteID)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tURL\tROUTE\tLOCALE")
				for _, r := range recs {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.URL, r.Route, r.Locale)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().Int64VarP(&websiteID, "website", "w", 0, "Website id")

	return cmd
}

func rewriteDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rewrite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			return withDeps(cmd.Context(), func(d *deps) error {
				if err := d.store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				return dropSnapshots(cmd.Context(), d)
			})
		},
	}
}
