package testing

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"testing"

	"github.com/ValentinKolb/fsKV/lib/store"
)

// StoreFactory binds a new store instance to the given root directory
type StoreFactory func(root string) (store.IStore, error)

// Address is a structured record used as key and value in the conformance tests
type Address struct {
	Street string
	City   string
}

// RunStoreTests runs the conformance test suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("EmptyRoot", func(t *testing.T) {
			testEmptyRoot(t, factory)
		})

		t.Run("InsertLookupRemove", func(t *testing.T) {
			testInsertLookupRemove(t, openStore(t, factory))
		})

		t.Run("DuplicateInsert", func(t *testing.T) {
			testDuplicateInsert(t, openStore(t, factory))
		})

		t.Run("NotFound", func(t *testing.T) {
			testNotFound(t, openStore(t, factory))
		})

		t.Run("RemoveWithoutValue", func(t *testing.T) {
			testRemoveWithoutValue(t, openStore(t, factory))
		})

		t.Run("ValueTypes", func(t *testing.T) {
			testValueTypes(t, openStore(t, factory))
		})

		t.Run("KeyTypes", func(t *testing.T) {
			testKeyTypes(t, openStore(t, factory))
		})

		t.Run("ShardLifecycle", func(t *testing.T) {
			testShardLifecycle(t, openStore(t, factory))
		})

		t.Run("Reopen", func(t *testing.T) {
			testReopen(t, factory)
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, openStore(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// openStore binds a store to a fresh temp dir and closes it when the test ends
func openStore(t testing.TB, factory StoreFactory) store.IStore {
	return openStoreAt(t, factory, t.TempDir())
}

func openStoreAt(t testing.TB, factory StoreFactory, root string) store.IStore {
	s, err := factory(root)
	if err != nil {
		t.Fatalf("Failed to open store at %s: %v", root, err)
	}
	t.Cleanup(func() {
		closeStore(s)
	})
	return s
}

// closeStore closes s if it implements io.Closer
func closeStore(s store.IStore) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}

func expectSize(t testing.TB, s store.IStore, expected int) {
	t.Helper()
	if got := s.Size(); got != expected {
		t.Errorf("Expected size %d, got %d", expected, got)
	}
}

func expectCode(t testing.TB, err error, expected *store.Error) {
	t.Helper()
	if !errors.Is(err, expected) {
		t.Errorf("Expected error with code %s, got %v", expected.Code, err)
	}
}

// checkRoundTrip inserts value under key and expects lookup to return it unchanged
func checkRoundTrip[V any](t *testing.T, s store.IStore, key any, value V) {
	t.Helper()
	if err := s.Insert(key, value); err != nil {
		t.Fatalf("Insert(%v) failed: %v", key, err)
	}
	got, err := store.LookupAs[V](s, key)
	if err != nil {
		t.Fatalf("Lookup(%v) failed: %v", key, err)
	}
	if !reflect.DeepEqual(got, value) {
		t.Errorf("Lookup(%v): expected %#v, got %#v", key, value, got)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testEmptyRoot(t *testing.T, factory StoreFactory) {
	s, err := factory("")
	if err == nil {
		closeStore(s)
		t.Fatalf("Expected opening an empty root to fail")
	}
	expectCode(t, err, store.ErrConfig)
}

func testInsertLookupRemove(t *testing.T, s store.IStore) {
	expectSize(t, s, 0)

	if err := s.Insert("Pizza", 21); err != nil {
		t.Fatalf("Insert(Pizza) failed: %v", err)
	}
	expectSize(t, s, 1)

	if err := s.Insert("Coffee", 33); err != nil {
		t.Fatalf("Insert(Coffee) failed: %v", err)
	}
	expectSize(t, s, 2)

	price, err := store.LookupAs[int](s, "Pizza")
	if err != nil {
		t.Fatalf("Lookup(Pizza) failed: %v", err)
	}
	if price != 21 {
		t.Errorf("Expected Pizza to cost 21, got %d", price)
	}

	removed, err := store.RemoveAs[int](s, "Pizza")
	if err != nil {
		t.Fatalf("Remove(Pizza) failed: %v", err)
	}
	if removed != 21 {
		t.Errorf("Expected Remove(Pizza) to return 21, got %d", removed)
	}
	expectSize(t, s, 1)

	_, err = store.LookupAs[int](s, "Pizza")
	expectCode(t, err, store.ErrNotFound)

	price, err = store.LookupAs[int](s, "Coffee")
	if err != nil {
		t.Fatalf("Lookup(Coffee) failed: %v", err)
	}
	if price != 33 {
		t.Errorf("Expected Coffee to cost 33, got %d", price)
	}
}

func testDuplicateInsert(t *testing.T, s store.IStore) {
	if err := s.Insert("Hello", 2); err != nil {
		t.Fatalf("First Insert(Hello) failed: %v", err)
	}

	err := s.Insert("Hello", 2)
	expectCode(t, err, store.ErrAlreadyExists)
	expectSize(t, s, 1)

	// a duplicate with a different value must not overwrite the original
	err = s.Insert("Hello", 3)
	expectCode(t, err, store.ErrAlreadyExists)
	expectSize(t, s, 1)

	value, err := store.LookupAs[int](s, "Hello")
	if err != nil {
		t.Fatalf("Lookup(Hello) failed: %v", err)
	}
	if value != 2 {
		t.Errorf("Expected original value 2, got %d", value)
	}
}

func testNotFound(t *testing.T, s store.IStore) {
	var out int

	expectCode(t, s.Lookup("nonexistent-key", &out), store.ErrNotFound)
	expectCode(t, s.Remove("nonexistent-key", &out), store.ErrNotFound)
	expectSize(t, s, 0)

	if err := s.Insert("short-lived", 1); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Remove("short-lived", &out); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	expectCode(t, s.Lookup("short-lived", &out), store.ErrNotFound)
	expectCode(t, s.Remove("short-lived", &out), store.ErrNotFound)
	expectSize(t, s, 0)
}

func testRemoveWithoutValue(t *testing.T, s store.IStore) {
	if err := s.Insert("key", "value"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Remove("key", nil); err != nil {
		t.Fatalf("Remove with nil out failed: %v", err)
	}
	expectSize(t, s, 0)

	var out string
	expectCode(t, s.Lookup("key", &out), store.ErrNotFound)
}

func testValueTypes(t *testing.T, s store.IStore) {
	t.Run("Int", func(t *testing.T) {
		checkRoundTrip(t, s, "int", 42)
		checkRoundTrip(t, s, "negative-int", -7)
	})
	t.Run("Bool", func(t *testing.T) {
		checkRoundTrip(t, s, "bool", true)
	})
	t.Run("String", func(t *testing.T) {
		checkRoundTrip(t, s, "string", "Hello, World!")
		checkRoundTrip(t, s, "unicode", "Grüße 🍕")
	})
	t.Run("Slice", func(t *testing.T) {
		checkRoundTrip(t, s, "slice", []int{1, 2, 3})
		checkRoundTrip(t, s, "string-slice", []string{"a", "b"})
	})
	t.Run("Map", func(t *testing.T) {
		checkRoundTrip(t, s, "map", map[string]int{"Pizza": 21, "Coffee": 33})
	})
	t.Run("Struct", func(t *testing.T) {
		checkRoundTrip(t, s, "struct", Address{Street: "Bahnhofstraße 1", City: "Ulm"})
	})

	expectSize(t, s, 9)
}

func testKeyTypes(t *testing.T, s store.IStore) {
	keys := []any{
		1,
		"1",
		true,
		[]int{1, 2},
		Address{Street: "Main St 1", City: "Springfield"},
	}

	for i, key := range keys {
		if err := s.Insert(key, i); err != nil {
			t.Fatalf("Insert(%#v) failed: %v", key, err)
		}
	}
	expectSize(t, s, len(keys))

	for i, key := range keys {
		got, err := store.LookupAs[int](s, key)
		if err != nil {
			t.Errorf("Lookup(%#v) failed: %v", key, err)
			continue
		}
		if got != i {
			t.Errorf("Lookup(%#v): expected %d, got %d", key, i, got)
		}
	}
}

func testShardLifecycle(t *testing.T, s store.IStore) {
	countDirs := func() int {
		entries, err := os.ReadDir(s.Root())
		if err != nil {
			t.Fatalf("Failed to list root: %v", err)
		}
		dirs := 0
		for _, e := range entries {
			if e.IsDir() {
				dirs++
			}
		}
		return dirs
	}

	if n := countDirs(); n != 0 {
		t.Fatalf("Expected empty root, found %d directories", n)
	}

	if err := s.Insert("only", "mapping"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if n := countDirs(); n != 1 {
		t.Errorf("Expected 1 shard directory after insert, found %d", n)
	}

	if err := s.Remove("only", nil); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if n := countDirs(); n != 0 {
		t.Errorf("Expected shard directory to be removed, found %d directories", n)
	}
}

func testReopen(t *testing.T, factory StoreFactory) {
	root := t.TempDir()
	numEntries := 50

	s, err := factory(root)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	for i := 0; i < numEntries; i++ {
		if err := s.Insert(fmt.Sprintf("reopen-key-%d", i), i); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := s.Remove("reopen-key-0", nil); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	closeStore(s)

	s2 := openStoreAt(t, factory, root)
	expectSize(t, s2, numEntries-1)

	for i := 1; i < numEntries; i++ {
		got, err := store.LookupAs[int](s2, fmt.Sprintf("reopen-key-%d", i))
		if err != nil {
			t.Errorf("Lookup after reopen failed: %v", err)
			continue
		}
		if got != i {
			t.Errorf("Expected %d after reopen, got %d", i, got)
		}
	}

	var out int
	expectCode(t, s2.Lookup("reopen-key-0", &out), store.ErrNotFound)
}

func testRealisticUsage(t *testing.T, s store.IStore) {
	numEntries := 200

	for i := 0; i < numEntries; i++ {
		key := fmt.Sprintf("user:%d", i)
		value := Address{Street: fmt.Sprintf("Street %d", i), City: "Berlin"}
		if err := s.Insert(key, value); err != nil {
			t.Fatalf("Insert(%s) failed: %v", key, err)
		}
	}
	expectSize(t, s, numEntries)

	// remove every second entry
	for i := 0; i < numEntries; i += 2 {
		key := fmt.Sprintf("user:%d", i)
		value, err := store.RemoveAs[Address](s, key)
		if err != nil {
			t.Fatalf("Remove(%s) failed: %v", key, err)
		}
		if value.Street != fmt.Sprintf("Street %d", i) {
			t.Errorf("Remove(%s) returned wrong value %#v", key, value)
		}
	}
	expectSize(t, s, numEntries/2)

	for i := 0; i < numEntries; i++ {
		key := fmt.Sprintf("user:%d", i)
		_, err := store.LookupAs[Address](s, key)
		if i%2 == 0 {
			expectCode(t, err, store.ErrNotFound)
		} else if err != nil {
			t.Errorf("Lookup(%s) failed: %v", key, err)
		}
	}

	// re-insert after remove must succeed
	if err := s.Insert("user:0", Address{Street: "New Street", City: "Hamburg"}); err != nil {
		t.Errorf("Re-insert after remove failed: %v", err)
	}
	expectSize(t, s, numEntries/2+1)
}
