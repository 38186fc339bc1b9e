// Package store defines the contract of the fsKV key-value store: the IStore
// interface, typed lookup helpers and the unified error system.
//
// The package focuses on:
//   - A unified interface (IStore) for insert, lookup and remove of arbitrary Go values
//   - A structured error type whose codes let callers tell expected domain errors
//     (not found, already exists) apart from configuration, encoding and i/o failures
//
// Key Components:
//
//   - IStore Interface: The core abstraction. Values are passed as `any`; reads decode
//     into a caller supplied pointer so one store can hold values of different types.
//     LookupAs and RemoveAs wrap this for callers that know the value type statically:
//
//     price, err := store.LookupAs[int](s, "Pizza")
//
//   - Error System: *Error carries a RetCode, a message and the underlying cause.
//     Errors compare by code, so errors.Is(err, store.ErrNotFound) works for every
//     not-found error regardless of message. CodeOf extracts the code from any error.
//
// Implementations:
//
//	The filesystem store (fstore) persists every mapping as a key file and a value file
//	inside a shard directory derived from the key's fingerprint.
//	Available in the "github.com/ValentinKolb/fsKV/lib/store/fstore" package.
//
// The testing package (github.com/ValentinKolb/fsKV/lib/store/testing) contains a
// conformance suite every IStore implementation is expected to pass.
package store
