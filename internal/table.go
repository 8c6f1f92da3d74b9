package internal

import (
	"encoding/json"
	"errors"
	"slices"
)

// DefaultMethod is the handler method recorded for scanned routes.
const DefaultMethod = "Handle"

// HandlerRef identifies the code invoked when a route matches.
type HandlerRef struct {
	Class  string `json:"class" yaml:"class"`
	Method string `json:"method" yaml:"method"`
}

func (h HandlerRef) String() string {
	return h.Class + "::" + h.Method
}

// RouteEntry is one route of a table. Its full pattern is Group+Path.
type RouteEntry struct {
	Group   string     `json:"group" yaml:"group"`
	Name    string     `json:"name" yaml:"name"`
	Path    string     `json:"path" yaml:"path"`
	Handler HandlerRef `json:"handler" yaml:"handler"`
	Verbs   []string   `json:"verbs" yaml:"verbs"`
}

// Pattern returns the full path pattern of the entry.
func (e RouteEntry) Pattern() string {
	return e.Group + e.Path
}

// Group is a batch of entries sharing a path prefix.
type Group struct {
	Prefix  string       `json:"prefix" yaml:"prefix"`
	Entries []RouteEntry `json:"entries" yaml:"entries"`
}

// Table is an ordered collection of route groups. Groups keep the order
// of their first entry, entries keep registration order, and dispatch
// follows the same order.
type Table struct {
	Groups []Group `json:"groups" yaml:"groups"`
}

// Add appends e to its group, creating the group at the end if needed.
func (t *Table) Add(e RouteEntry) {
	for i := range t.Groups {
		if t.Groups[i].Prefix == e.Group {
			t.Groups[i].Entries = append(t.Groups[i].Entries, e)
			return
		}
	}
	t.Groups = append(t.Groups, Group{Prefix: e.Group, Entries: []RouteEntry{e}})
}

// Entries returns all entries in dispatch order.
func (t Table) Entries() []RouteEntry {
	out := make([]RouteEntry, 0, t.Len())
	for _, g := range t.Groups {
		out = append(out, g.Entries...)
	}
	return out
}

// Len returns the number of entries.
func (t Table) Len() int {
	n := 0
	for _, g := range t.Groups {
		n += len(g.Entries)
	}
	return n
}

// Lookup returns the first entry named name.
func (t Table) Lookup(name string) (RouteEntry, bool) {
	for _, g := range t.Groups {
		for _, e := range g.Entries {
			if e.Name == name {
				return e, true
			}
		}
	}
	return RouteEntry{}, false
}

func (t Table) clone() Table {
	out := Table{Groups: make([]Group, len(t.Groups))}
	for i, g := range t.Groups {
		out.Groups[i] = Group{Prefix: g.Prefix, Entries: slices.Clone(g.Entries)}
	}
	return out
}

func encodeTable(t Table) ([]byte, error) {
	return json.Marshal(t)
}

func decodeTable(data []byte) (Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return Table{}, errors.Join(ErrTableCorrupted, err)
	}
	return t, nil
}
