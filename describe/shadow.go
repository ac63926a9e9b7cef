package describe

import (
	"sync"

	tabledesc "github.com/shibukawa/tabledesc"
)

// ShadowStore retains unique and foreign key declarations for dialects
// whose ALTER TABLE cannot add or drop such constraints after creation.
// SQLite emulates those operations by rebuilding the table from catalog
// state, which would silently lose the declarations; recording them here
// lets a rebuild re-apply them and lets Describe report them.
//
// A store is injected per connection, never shared as a package global.
// Table and column names match exactly, including case.
type ShadowStore struct {
	mu      sync.RWMutex
	entries map[string][]tabledesc.ConstraintEntry
}

// NewShadowStore returns an empty store.
func NewShadowStore() *ShadowStore {
	return &ShadowStore{entries: make(map[string][]tabledesc.ConstraintEntry)}
}

// Record stores entry, replacing any earlier entry for the same table and
// column pair so repeated declarations do not accumulate.
func (s *ShadowStore) Record(entry tabledesc.ConstraintEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entries[entry.Table]
	for i, existing := range list {
		if existing.Column == entry.Column {
			list[i] = entry

			return
		}
	}

	s.entries[entry.Table] = append(list, entry)
}

// List returns the entries recorded for table in recording order. The
// result is a copy; callers cannot corrupt the store through it. Unknown
// tables yield an empty list.
func (s *ShadowStore) List(table string) []tabledesc.ConstraintEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.entries[table]

	out := make([]tabledesc.ConstraintEntry, len(list))
	copy(out, list)

	return out
}

// Remove drops every entry for table. Table-drop flows call this so a
// later table of the same name starts clean.
func (s *ShadowStore) Remove(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, table)
}

// RemoveColumn drops the entry owned by a single column, if any.
func (s *ShadowStore) RemoveColumn(table, column string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.entries[table]
	for i, entry := range list {
		if entry.Column == column {
			s.entries[table] = append(list[:i], list[i+1:]...)

			return
		}
	}
}

// Tables returns the names of tables with at least one recorded entry.
func (s *ShadowStore) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.entries))
	for table := range s.entries {
		out = append(out, table)
	}

	return out
}
