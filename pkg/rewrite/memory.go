package rewrite

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

type memKey struct {
	url       string
	websiteID int64
}

// Memory is an in-process Store for tests and single-node demos.
type Memory struct {
	byKey  map[memKey]*Record
	byID   map[int64]*Record
	mu     sync.RWMutex
	nextID int64
	closed bool
}

// NewMemory creates a Memory store seeded with records. Seed records
// without an id get one assigned.
func NewMemory(seed ...Record) *Memory {
	m := &Memory{
		byKey: make(map[memKey]*Record),
		byID:  make(map[int64]*Record),
	}
	for _, rec := range seed {
		_ = m.Save(context.Background(), &rec)
	}
	return m
}

func (m *Memory) Find(_ context.Context, q Query) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}
	rec, ok := m.byKey[memKey{url: q.URL, websiteID: q.WebsiteID}]
	if !ok {
		return Record{}, ErrNotFound
	}
	return *rec, nil
}

func (m *Memory) FindByRoute(_ context.Context, route string, websiteID int64) ([]Record, error) {
	return m.filter(func(r *Record) bool {
		return r.Route == route && r.WebsiteID == websiteID
	})
}

func (m *Memory) List(_ context.Context, websiteID int64) ([]Record, error) {
	return m.filter(func(r *Record) bool { return r.WebsiteID == websiteID })
}

func (m *Memory) Save(_ context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	key := memKey{url: rec.URL, websiteID: rec.WebsiteID}
	if existing, ok := m.byKey[key]; ok {
		rec.ID = existing.ID
	} else if rec.ID == 0 {
		m.nextID++
		rec.ID = m.nextID
	}
	m.nextID = max(m.nextID, rec.ID)

	if old, ok := m.byID[rec.ID]; ok {
		delete(m.byKey, memKey{url: old.URL, websiteID: old.WebsiteID})
	}
	stored := *rec
	m.byKey[key] = &stored
	m.byID[rec.ID] = &stored
	return nil
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if rec, ok := m.byID[id]; ok {
		delete(m.byKey, memKey{url: rec.URL, websiteID: rec.WebsiteID})
		delete(m.byID, id)
	}
	return nil
}

func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrStoreClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) filter(keep func(*Record) bool) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	var out []Record
	for _, rec := range m.byID {
		if keep(rec) {
			out = append(out, *rec)
		}
	}
	slices.SortFunc(out, func(a, b Record) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

var _ Store = (*Memory)(nil)
