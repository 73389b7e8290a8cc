package namespace

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// table maps names to symbols. Every single-entry operation is atomic, which
// lets a resolver look into another package's external table without taking
// that package's lock.
type table struct {
	mu sync.RWMutex
	m  map[string]*Symbol
}

func newTable(size int) *table {
	return &table{m: make(map[string]*Symbol, size)}
}

func (t *table) get(name string) (*Symbol, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.m[name]
	return s, ok
}

func (t *table) set(name string, s *Symbol) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[name] = s
}

func (t *table) remove(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, name)
}

func (t *table) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.m)
}

// snapshot returns a copy of the whole table.
func (t *table) snapshot() map[string]*Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.m)
}

// symbols returns the resident symbols ordered by name.
func (t *table) symbols() []*Symbol {
	t.mu.RLock()
	syms := slices.Collect(maps.Values(t.m))
	t.mu.RUnlock()
	slices.SortFunc(syms, func(a, b *Symbol) int { return strings.Compare(a.name, b.name) })
	return syms
}
