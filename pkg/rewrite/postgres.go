package rewrite

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/cmsroute/pkg/db"
)

// PgxConn is the subset of *pgxpool.Pool the Postgres store uses.
type PgxConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

const (
	recordColumns = `id, route, url, locale, domain, website_id`

	upsertPostgres = `
		INSERT INTO url_rewrites (route, url, locale, domain, website_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (website_id, url) DO UPDATE
		SET route = EXCLUDED.route, locale = EXCLUDED.locale, domain = EXCLUDED.domain, updated_at = now()
		RETURNING id`
)

// Postgres stores rewrites in the url_rewrites table. The schema comes
// from PostgresMigrations.
type Postgres struct {
	conn PgxConn
}

// NewPostgres wraps a pgx pool. Closing the pool stays the caller's job,
// see db.Shutdown.
func NewPostgres(conn PgxConn) *Postgres {
	return &Postgres{conn: conn}
}

func (p *Postgres) Find(ctx context.Context, q Query) (Record, error) {
	rows, err := p.conn.Query(ctx,
		`SELECT `+recordColumns+` FROM url_rewrites WHERE url = $1 AND website_id = $2 LIMIT 1`,
		q.URL, q.WebsiteID,
	)
	if err != nil {
		return Record{}, joinErr(ErrStoreFailed, err)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Record])
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, joinErr(ErrStoreFailed, err)
	}
	return rec, nil
}

func (p *Postgres) FindByRoute(ctx context.Context, route string, websiteID int64) ([]Record, error) {
	return p.collect(ctx,
		`SELECT `+recordColumns+` FROM url_rewrites WHERE route = $1 AND website_id = $2 ORDER BY id`,
		route, websiteID,
	)
}

func (p *Postgres) List(ctx context.Context, websiteID int64) ([]Record, error) {
	return p.collect(ctx,
		`SELECT `+recordColumns+` FROM url_rewrites WHERE website_id = $1 ORDER BY id`,
		websiteID,
	)
}

func (p *Postgres) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	err := p.conn.QueryRow(ctx, upsertPostgres, rec.Route, rec.URL, rec.Locale, rec.Domain, rec.WebsiteID).Scan(&rec.ID)
	return joinErr(ErrStoreFailed, err)
}

// SaveAll upserts recs in one transaction and sets their ids. Either every
// record is stored or none is.
func (p *Postgres) SaveAll(ctx context.Context, recs []Record) error {
	err := db.WithTx(ctx, p.conn, func(tx pgx.Tx) error {
		for i := range recs {
			rec := &recs[i]
			if err := tx.QueryRow(ctx, upsertPostgres, rec.Route, rec.URL, rec.Locale, rec.Domain, rec.WebsiteID).Scan(&rec.ID); err != nil {
				return err
			}
		}
		return nil
	})
	return joinErr(ErrStoreFailed, err)
}

func (p *Postgres) Delete(ctx context.Context, id int64) error {
	_, err := p.conn.Exec(ctx, `DELETE FROM url_rewrites WHERE id = $1`, id)
	return joinErr(ErrStoreFailed, err)
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.conn.Ping(ctx)
}

// Close is a no-op; the pool is owned by the caller.
func (p *Postgres) Close() error {
	return nil
}

func (p *Postgres) collect(ctx context.Context, sql string, args ...any) ([]Record, error) {
	rows, err := p.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, joinErr(ErrStoreFailed, err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[Record])
	if err != nil {
		return nil, joinErr(ErrStoreFailed, err)
	}
	return recs, nil
}

var (
	_ Store      = (*Postgres)(nil)
	_ BatchSaver = (*Postgres)(nil)
)
