package tiling

import (
	"sync"

	"github.com/1broseidon/shelltweak/internal/placement"
)

// DefaultMemoSize bounds the number of cached arrangements.
const DefaultMemoSize = 64

type memoKey struct {
	panel placement.RegionSpec
	dock  placement.RegionSpec
	items int
}

// Memo caches Resolve results by input value. Cached arrangements are
// shared between callers and must not be modified.
type Memo struct {
	mu      sync.Mutex
	limit   int
	entries map[memoKey]Arrangement
	hits    int
	misses  int
}

// NewMemo returns a cache holding up to limit arrangements. When full the
// cache is cleared and starts over.
func NewMemo(limit int) *Memo {
	if limit <= 0 {
		limit = DefaultMemoSize
	}
	return &Memo{
		limit:   limit,
		entries: make(map[memoKey]Arrangement, limit),
	}
}

// Resolve returns the cached arrangement or computes and stores it.
func (m *Memo) Resolve(panel, dock placement.RegionSpec, dockItems int) Arrangement {
	key := memoKey{panel: panel, dock: dock, items: dockItems}

	m.mu.Lock()
	defer m.mu.Unlock()

	if arr, ok := m.entries[key]; ok {
		m.hits++
		return arr
	}
	m.misses++
	arr := Resolve(panel, dock, dockItems)
	if len(m.entries) >= m.limit {
		clear(m.entries)
	}
	m.entries[key] = arr
	return arr
}

// ResolveSpec is Resolve over a full LayoutSpec.
func (m *Memo) ResolveSpec(spec placement.LayoutSpec) Arrangement {
	return m.Resolve(spec.Panel, spec.Dock, spec.DockItemCount)
}

// Stats returns hit and miss counts.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Len returns the number of cached arrangements.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
