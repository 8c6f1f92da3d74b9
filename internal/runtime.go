package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/cmsroute/pkg/logger"
)

// serve listens on cfg.address and blocks until the base context is
// cancelled or SIGINT/SIGTERM arrives. SIGHUP runs the reload hooks.
func serve(handler http.Handler, cfg *runConfig) error {
	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}

	ctx, stop := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, fn := range cfg.startup {
		if err := fn(ctx); err != nil {
			log.Error("startup failed", slog.Any("error", err))
			return err
		}
	}

	ln, err := net.Listen("tcp", cfg.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	served := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			served <- err
		}
		close(served)
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case err := <-served:
			return err
		case <-hup:
			reload(ctx, log, cfg.reload)
		case <-ctx.Done():
			log.Info("shutting down server")
			return shutdown(srv, log, cfg)
		}
	}
}

func reload(ctx context.Context, log *slog.Logger, hooks []hook) {
	log.Info("reloading route tables")
	for _, fn := range hooks {
		if err := fn(ctx); err != nil {
			log.Error("reload failed", slog.Any("error", err))
		}
	}
}

// shutdown drains the server, then runs the shutdown hooks under the same
// deadline. Hook failures are collected, not short-circuited.
func shutdown(srv *http.Server, log *slog.Logger, cfg *runConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	errs := srv.Shutdown(ctx)
	for _, fn := range cfg.shutdown {
		if err := fn(ctx); err != nil {
			log.Error("shutdown hook failed", slog.Any("error", err))
			errs = errors.Join(errs, err)
		}
	}

	if errs != nil {
		log.Error("shutdown completed with errors", slog.Any("error", errs))
		return errs
	}
	log.Info("shutdown completed")
	return nil
}
