// Package db provides the PostgreSQL plumbing behind the rewrite store.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] for connection pooling with
// startup retries, and [github.com/pressly/goose/v3] for schema migrations.
//
// # Configuration
//
//	DATABASE_CONN_URL           PostgreSQL connection URL
//	DATABASE_MIGRATIONS_TABLE   goose version table (default: cmsroute_migrations)
//	DATABASE_MAX_OPEN_CONNS     default: 10
//	DATABASE_MIN_CONNS          default: 2
//	DATABASE_HEALTHCHECK_PERIOD default: 1m
//	DATABASE_MAX_CONN_IDLE_TIME default: 10m
//	DATABASE_MAX_CONN_LIFETIME  default: 30m
//	DATABASE_RETRY_ATTEMPTS     default: 3
//	DATABASE_RETRY_INTERVAL     default: 5s
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := db.MigratePool(ctx, pool, rewrite.PostgresMigrations(), cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//
// [Migrate] also accepts any *sql.DB with a [Dialect], which is how the
// SQLite rewrite store applies its schema.
package db
