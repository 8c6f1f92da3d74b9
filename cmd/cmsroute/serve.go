package main

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/cmsroute"
	"github.com/dmitrymomot/cmsroute/middlewares"
)

func serveCmd() *cobra.Command {
	var (
		addr        string
		maintenance bool
		metricsPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. Route tables are built before the server
listens; a table that fails to build aborts startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := setup(ctx)
			if err != nil {
				return err
			}

			app := newApp(d, maintenance || d.cfg.Maintenance)
			if metricsPath != "" {
				app.Mux().Handle(metricsPath, promhttp.HandlerFor(d.metrics, promhttp.HandlerOpts{}))
			}

			if addr == "" {
				addr = d.cfg.HTTPAddr
			}
			return app.Run(addr,
				cmsroute.Logger(d.log),
				cmsroute.ShutdownTimeout(d.cfg.ShutdownTimeout),
				cmsroute.ShutdownHook(d.close),
			)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default CMSROUTE_HTTP_ADDR)")
	cmd.Flags().BoolVar(&maintenance, "maintenance", false, "Serve only routes that work offline")
	cmd.Flags().StringVar(&metricsPath, "metrics-path", "/metrics", "Prometheus endpoint, empty to disable")

	return cmd
}

// newApp assembles the HTTP application around the connected dependencies.
func newApp(d *deps, maintenance bool) *cmsroute.App {
	health := make([]cmsroute.HealthOption, 0, len(d.checks))
	for name, check := range d.checks {
		health = append(health, cmsroute.WithReadinessCheck(name, check))
	}

	return cmsroute.New(
		cmsroute.WithLogger("cmsroute", d.cfg.Logger,
			middlewares.RequestIDExtractor(),
			cmsroute.RouteExtractor(),
		),
		cmsroute.WithRegistry(d.reg),
		cmsroute.WithRouters(d.routers...),
		cmsroute.WithWebsiteResolver(d.sites),
		cmsroute.WithMaintenance(maintenance),
		cmsroute.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.Timeout(middlewares.DefaultTimeout),
		),
		cmsroute.WithHealthChecks(health...),
	)
}

