package tiling

import (
	"reflect"
	"sync"
	"testing"

	"github.com/1broseidon/shelltweak/internal/placement"
)

func TestMemo_CachesByValue(t *testing.T) {
	m := NewMemo(8)
	spec := placement.Default()

	first := m.ResolveSpec(spec)
	second := m.ResolveSpec(placement.Default())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical arrangements")
	}
	if first.Root != second.Root {
		t.Fatalf("expected the cached arrangement to be returned")
	}
	hits, misses := m.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}
	if !reflect.DeepEqual(first, ResolveSpec(spec)) {
		t.Fatalf("memoised result differs from Resolve")
	}
}

func TestMemo_ClearsWhenFull(t *testing.T) {
	m := NewMemo(2)
	for i := 0; i < 3; i++ {
		m.ResolveSpec(placement.Default().WithDockItemCount(i))
	}
	if got := m.Len(); got != 1 {
		t.Fatalf("expected cache to restart after reaching its limit, got %d entries", got)
	}
}

func TestMemo_ConcurrentUse(t *testing.T) {
	m := NewMemo(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.ResolveSpec(placement.Default().WithDockItemCount((n + j) % 5))
			}
		}(i)
	}
	wg.Wait()
	hits, misses := m.Stats()
	if hits+misses != 400 {
		t.Fatalf("expected 400 lookups, got %d", hits+misses)
	}
}
