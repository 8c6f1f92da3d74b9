package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/cmsroute/pkg/website"
)

func resolveCmd() *cobra.Command {
	var (
		method string
		domain string
	)

	cmd := &cobra.Command{
		Use:   "resolve <uri>",
		Short: "Resolve a request without serving it",
		Long: `Resolve a request the way the server would and print the resulting
route info as JSON. Absolute URLs set the domain from their host.`,
		Example: `  cmsroute resolve /blog/hello/2
  cmsroute resolve -X POST /webhooks/rewrites
  cmsroute resolve https://shop.example.com/en/about.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uri := args[0]
			if u, err := url.Parse(uri); err == nil && u.Host != "" && domain == "" {
				domain = u.Host
			}
			path := uri
			if u, err := url.Parse(uri); err == nil {
				path = u.Path
			}

			return withDeps(cmd.Context(), func(d *deps) error {
				rt := d.routerFor(path)
				info, err := rt.Resolve(cmd.Context(), strings.ToUpper(method), uri, website.NormalizeHost(domain))
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			})
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVarP(&domain, "domain", "d", "", "Request domain, selects the website for rewrites")

	return cmd
}
