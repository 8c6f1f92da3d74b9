package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cmsroute",
		Short: "Route resolution for content managed sites",
		Long: `cmsroute serves and inspects the route tables of a content managed site.

Configuration is read from the environment (CMSROUTE_*, REDIS_*,
REWRITE_*, DATABASE_*, LOG_*). Commands share the same wiring as the
server, so "routes" and "resolve" show exactly what "serve" would do.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		routesCmd(),
		resolveCmd(),
		urlCmd(),
		cacheCmd(),
		rewriteCmd(),
		migrateCmd(),
		versionCmd(),
	)

	return rootCmd
}
