package rewrite

import (
	"context"
	"strings"
)

// Record maps a human-readable URL on one website to an internal route
// string, e.g. "/en/about.html" to "/page/42".
type Record struct {
	Route     string `json:"route" yaml:"route" db:"route"`
	URL       string `json:"url" yaml:"url" db:"url"`
	Locale    string `json:"locale,omitempty" yaml:"locale,omitempty" db:"locale"`
	Domain    string `json:"domain,omitempty" yaml:"domain,omitempty" db:"domain"`
	ID        int64  `json:"id" yaml:"id,omitempty" db:"id"`
	WebsiteID int64  `json:"website_id" yaml:"website_id" db:"website_id"`
}

// Validate checks the fields a store needs to index the record.
func (r Record) Validate() error {
	switch {
	case !strings.HasPrefix(r.URL, "/"):
		return ErrInvalidRecord
	case !strings.HasPrefix(r.Route, "/"):
		return ErrInvalidRecord
	case r.WebsiteID < 0:
		return ErrInvalidRecord
	}
	return nil
}

// Query selects a rewrite by exact URL within a website.
type Query struct {
	URL       string
	WebsiteID int64
}

// Finder is the read side used by routers during resolution.
type Finder interface {
	// Find returns the record for q or ErrNotFound.
	Find(ctx context.Context, q Query) (Record, error)
}

// Store persists rewrite records. Routers only read through Finder; the
// write methods serve operators and tests.
type Store interface {
	Finder

	// FindByRoute returns every record pointing at route on a website,
	// e.g. the translations of one page.
	FindByRoute(ctx context.Context, route string, websiteID int64) ([]Record, error)

	// List returns a website's records ordered by id.
	List(ctx context.Context, websiteID int64) ([]Record, error)

	// Save inserts rec, or updates the record with the same website and URL,
	// and sets rec.ID.
	Save(ctx context.Context, rec *Record) error

	// Delete removes a record by id. Missing ids are not an error.
	Delete(ctx context.Context, id int64) error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Healthcheck adapts a store to the health.CheckFunc signature.
func Healthcheck(s Store) func(context.Context) error {
	return func(ctx context.Context) error {
		if s == nil {
			return ErrHealthcheck
		}
		if err := s.Ping(ctx); err != nil {
			return joinErr(ErrHealthcheck, err)
		}
		return nil
	}
}
