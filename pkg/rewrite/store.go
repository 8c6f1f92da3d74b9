package rewrite

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/cmsroute/pkg/db"
)

// Driver names a Store implementation.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
	DriverMemory   Driver = "memory"
)

// Config selects and configures the rewrite store.
type Config struct {
	Driver     Driver `env:"REWRITE_DRIVER" envDefault:"memory"`
	SQLitePath string `env:"REWRITE_SQLITE_PATH" envDefault:"cmsroute.db"`
	// Migrate applies the url_rewrites schema to Postgres on open.
	// SQLite databases are always migrated.
	Migrate bool `env:"REWRITE_MIGRATE" envDefault:"true"`
	// Breaker wraps the store in a circuit breaker.
	Breaker bool `env:"REWRITE_BREAKER" envDefault:"true"`
	DB      db.Config
}

// Open builds the configured store. Closing a Postgres store also closes
// its pool.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (Store, error) {
	var (
		s   Store
		err error
	)

	switch Driver(strings.ToLower(string(cfg.Driver))) {
	case DriverMemory, "":
		s = NewMemory()
	case DriverSQLite:
		s, err = OpenSQLite(ctx, cfg.SQLitePath, log)
	case DriverPostgres:
		s, err = openPostgres(ctx, cfg, log)
	default:
		return nil, ErrUnknownDriver
	}
	if err != nil {
		return nil, err
	}

	if cfg.Breaker {
		s = NewBreaker(s, WithBreakerLogger(log))
	}
	return s, nil
}

type ownedPostgres struct {
	*Postgres
	pool *pgxpool.Pool
}

func (o ownedPostgres) Close() error {
	o.pool.Close()
	return nil
}

func openPostgres(ctx context.Context, cfg Config, log *slog.Logger) (Store, error) {
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, joinErr(ErrStoreFailed, err)
	}
	if cfg.Migrate {
		if err := db.MigratePool(ctx, pool, PostgresMigrations(), cfg.DB.MigrationsTable, log); err != nil {
			pool.Close()
			return nil, joinErr(ErrMigrationsFail, err)
		}
	}
	return ownedPostgres{Postgres: NewPostgres(pool), pool: pool}, nil
}
