package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/cmsroute"
)

// routerTable is one router's table as dumped by the routes command.
type routerTable struct {
	Router string         `json:"router" yaml:"router"`
	Mount  string         `json:"mount" yaml:"mount"`
	Table  cmsroute.Table `json:"table" yaml:"table"`
}

func routesCmd() *cobra.Command {
	var (
		router string
		format string
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List route tables in dispatch order",
		Example: `  cmsroute routes
  cmsroute routes --router webhooks
  cmsroute routes --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *deps) error {
				routers, err := d.selected(router)
				if err != nil {
					return err
				}

				tables := make([]routerTable, 0, len(routers))
				for _, rt := range routers {
					t, err := rt.Routes(cmd.Context())
					if err != nil {
						return fmt.Errorf("%s router: %w", rt.Name(), err)
					}
					tables = append(tables, routerTable{Router: rt.Name(), Mount: rt.Mount(), Table: t})
				}
				return writeTables(cmd.OutOrStdout(), format, tables)
			})
		},
	}

	cmd.Flags().StringVarP(&router, "router", "r", "all", "Router to list: web, crud, graphql, webhooks or all")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")

	return cmd
}

func writeTables(w io.Writer, format string, tables []routerTable) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tables)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tables); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ROUTER\tVERBS\tPATTERN\tNAME\tHANDLER")
		for _, rt := range tables {
			for _, e := range rt.Table.Entries() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					rt.Router, strings.Join(e.Verbs, ","), e.Pattern(), e.Name, e.Handler)
			}
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
