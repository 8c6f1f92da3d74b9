package rewrite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/cmsroute/pkg/db"
)

const upsertSQLite = `
	INSERT INTO url_rewrites (route, url, locale, domain, website_id)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (website_id, url) DO UPDATE
	SET route = excluded.route, locale = excluded.locale, domain = excluded.domain, updated_at = CURRENT_TIMESTAMP
	RETURNING id`

// SQLite stores rewrites in a local SQLite database, for single-node sites
// and tests.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the url_rewrites schema. Use ":memory:" only with a single connection;
// the store pins the pool to one connection for that case.
func OpenSQLite(ctx context.Context, path string, log *slog.Logger) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, joinErr(ErrStoreFailed, err)
	}
	if path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, joinErr(ErrStoreFailed, err)
	}
	if err := db.Migrate(ctx, conn, db.DialectSQLite, SQLiteMigrations(), "", log); err != nil {
		_ = conn.Close()
		return nil, errors.Join(ErrMigrationsFail, err)
	}
	return &SQLite{db: conn}, nil
}

func (s *SQLite) Find(ctx context.Context, q Query) (Record, error) {
	var rec Record
	err := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM url_rewrites WHERE url = ? AND website_id = ? LIMIT 1`,
		q.URL, q.WebsiteID,
	).Scan(&rec.ID, &rec.Route, &rec.URL, &rec.Locale, &rec.Domain, &rec.WebsiteID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, joinErr(ErrStoreFailed, err)
	}
	return rec, nil
}

func (s *SQLite) FindByRoute(ctx context.Context, route string, websiteID int64) ([]Record, error) {
	return s.collect(ctx,
		`SELECT `+recordColumns+` FROM url_rewrites WHERE route = ? AND website_id = ? ORDER BY id`,
		route, websiteID,
	)
}

func (s *SQLite) List(ctx context.Context, websiteID int64) ([]Record, error) {
	return s.collect(ctx,
		`SELECT `+recordColumns+` FROM url_rewrites WHERE website_id = ? ORDER BY id`,
		websiteID,
	)
}

func (s *SQLite) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	err := s.db.QueryRowContext(ctx, upsertSQLite, rec.Route, rec.URL, rec.Locale, rec.Domain, rec.WebsiteID).Scan(&rec.ID)
	return joinErr(ErrStoreFailed, err)
}

// SaveAll upserts recs in one transaction and sets their ids.
func (s *SQLite) SaveAll(ctx context.Context, recs []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return joinErr(ErrStoreFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range recs {
		rec := &recs[i]
		if err := tx.QueryRowContext(ctx, upsertSQLite, rec.Route, rec.URL, rec.Locale, rec.Domain, rec.WebsiteID).Scan(&rec.ID); err != nil {
			return joinErr(ErrStoreFailed, err)
		}
	}
	return joinErr(ErrStoreFailed, tx.Commit())
}

func (s *SQLite) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM url_rewrites WHERE id = ?`, id)
	return joinErr(ErrStoreFailed, err)
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) collect(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, joinErr(ErrStoreFailed, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Route, &rec.URL, &rec.Locale, &rec.Domain, &rec.WebsiteID); err != nil {
			return nil, joinErr(ErrStoreFailed, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, joinErr(ErrStoreFailed, err)
	}
	return out, nil
}

var _ Store = (*SQLite)(nil)
