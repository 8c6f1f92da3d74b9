package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// Dialect names the SQL dialect migrations are written for.
type Dialect = database.Dialect

const (
	DialectPostgres = database.DialectPostgres
	DialectSQLite   = database.DialectSQLite3
)

// Migrate applies every pending migration found at the root of migrations.
// It uses a goose provider rather than goose's package-level state, so
// several databases can be migrated concurrently.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect, migrations fs.FS, table string, log *slog.Logger) error {
	if table == "" {
		table = "cmsroute_migrations"
	}

	store, err := database.NewStore(dialect, table)
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}

	opts := []goose.ProviderOption{goose.WithStore(store)}
	if log != nil {
		opts = append(opts, goose.WithLogger(&gooseLoggerAdapter{log}), goose.WithVerbose(true))
	}

	provider, err := goose.NewProvider("", db, migrations, opts...)
	if err != nil {
		return errors.Join(ErrMigrate, err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}

// MigratePool runs Postgres migrations through a pgx pool.
func MigratePool(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) error {
	// Shares the pool's connections; closing it would disrupt the pool.
	db := stdlib.OpenDBFromPool(pool)
	return Migrate(ctx, db, DialectPostgres, migrations, table, log)
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf only logs: goose also returns the error, and exiting here would skip shutdown hooks.
func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
