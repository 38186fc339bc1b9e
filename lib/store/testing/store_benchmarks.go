package testing

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/ValentinKolb/fsKV/lib/store"
)

// RunStoreBenchmarks runs all benchmarks for a store implementation
func RunStoreBenchmarks(b *testing.B, name string, factory StoreFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Insert", func(b *testing.B) {
			benchmarkInsert(b, openStore(b, factory))
		})

		b.Run("InsertLargeValue", func(b *testing.B) {
			benchmarkInsertLargeValue(b, openStore(b, factory))
		})

		b.Run("Lookup", func(b *testing.B) {
			benchmarkLookup(b, openStore(b, factory))
		})

		b.Run("Lookup(not)", func(b *testing.B) {
			benchmarkLookupMissing(b, openStore(b, factory))
		})

		b.Run("Remove", func(b *testing.B) {
			benchmarkRemove(b, openStore(b, factory))
		})

		b.Run("Open", func(b *testing.B) {
			benchmarkOpen(b, factory)
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, openStore(b, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Insert with small values
func benchmarkInsert(b *testing.B, s store.IStore) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Insert(fmt.Sprintf("bench-key-%d", i), i); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}
}

// Benchmark for Insert with 64KiB values
func benchmarkInsertLargeValue(b *testing.B, s store.IStore) {
	value := strings.Repeat("x", 64*1024)

	b.SetBytes(int64(len(value)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Insert(fmt.Sprintf("bench-large-%d", i), value); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}
}

// Benchmark for Lookup of existing keys
func benchmarkLookup(b *testing.B, s store.IStore) {
	const numKeys = 1000
	for i := 0; i < numKeys; i++ {
		if err := s.Insert(fmt.Sprintf("bench-key-%d", i), i); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}

	var out int
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Lookup(fmt.Sprintf("bench-key-%d", i%numKeys), &out); err != nil {
			b.Fatalf("Lookup failed: %v", err)
		}
	}
}

// Benchmark for Lookup of keys that were never inserted
func benchmarkLookupMissing(b *testing.B, s store.IStore) {
	var out int
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Lookup(fmt.Sprintf("missing-key-%d", i), &out)
	}
}

// Benchmark for Remove, the inserts are not timed
func benchmarkRemove(b *testing.B, s store.IStore) {
	for i := 0; i < b.N; i++ {
		if err := s.Insert(fmt.Sprintf("bench-key-%d", i), i); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}

	var out int
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Remove(fmt.Sprintf("bench-key-%d", i), &out); err != nil {
			b.Fatalf("Remove failed: %v", err)
		}
	}
}

// Benchmark for opening a store with 1000 existing mappings (initialization scan)
func benchmarkOpen(b *testing.B, factory StoreFactory) {
	root := b.TempDir()
	s := openStoreAt(b, factory, root)
	for i := 0; i < 1000; i++ {
		if err := s.Insert(fmt.Sprintf("bench-key-%d", i), i); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}
	closeStore(s)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, err := factory(root)
		if err != nil {
			b.Fatalf("Open failed: %v", err)
		}
		if s.Size() != 1000 {
			b.Fatalf("Expected 1000 entries, got %d", s.Size())
		}
		closeStore(s)
	}
}

// Benchmark for a realistic mix: 50% lookups, 30% inserts, 20% removes
func benchmarkMixedUsage(b *testing.B, s store.IStore) {
	const keySpace = 1000
	r := rand.New(rand.NewSource(42))
	var out int

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("mixed-key-%d", r.Intn(keySpace))
		switch op := r.Intn(10); {
		case op < 5:
			_ = s.Lookup(key, &out)
		case op < 8:
			_ = s.Insert(key, i)
		default:
			_ = s.Remove(key, &out)
		}
	}
}
