// Package testing provides standardised tests and benchmarks for
// store implementations that satisfy the store.IStore interface.
//
// The package contains:
//   - testing: A conformance suite for the IStore contract (insert, lookup, remove,
//     size bookkeeping, reopening and the on-disk shard lifecycle)
//   - benchmark: Performance tests for the three store operations
//
// Every test gets a fresh root directory from t.TempDir, the factory binds a new
// store to it. Stores that implement io.Closer are closed after each test.
//
// Example usage:
//
//	factory := func(root string) (store.IStore, error) {
//		return fstore.Open(root, nil)
//	}
//
//	// Running the standard test suite
//	testing.RunStoreTests(t, "fstore", factory)
//
//	// Running performance benchmarks
//	testing.RunStoreBenchmarks(b, "fstore", factory)
package testing
