package rewrite

import (
	"context"
	"fmt"
)

// BatchSaver is implemented by stores that can save many records in one
// transaction.
type BatchSaver interface {
	SaveAll(ctx context.Context, recs []Record) error
}

// Import validates every record before writing any, then saves them. Stores
// implementing BatchSaver write all or nothing; others stop at the first
// failure. Ids are written back into recs.
func Import(ctx context.Context, s Store, recs []Record) error {
	for i, rec := range recs {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("record %d (%s -> %s): %w", i, rec.URL, rec.Route, err)
		}
	}
	if b, ok := s.(BatchSaver); ok {
		return b.SaveAll(ctx, recs)
	}
	for i := range recs {
		if err := s.Save(ctx, &recs[i]); err != nil {
			return fmt.Errorf("record %d (%s): %w", i, recs[i].URL, err)
		}
	}
	return nil
}
