package rewrite

import (
	"embed"
	"io/fs"
)

//go:embed migrations
var migrations embed.FS

// PostgresMigrations returns the url_rewrites schema for db.MigratePool.
func PostgresMigrations() fs.FS {
	return mustSub("migrations/postgres")
}

// SQLiteMigrations returns the url_rewrites schema for SQLite.
func SQLiteMigrations() fs.FS {
	return mustSub("migrations/sqlite")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(migrations, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
