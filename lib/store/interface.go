package store

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for interacting with a persistent key–value store.
// Keys and values are arbitrary Go values; the store encodes them with its codec.
// All operations return nil or a *Error on failure.
type IStore interface {
	// Root returns the directory the store is bound to.
	Root() string
	// Size returns the number of mappings currently stored.
	Size() int
	// Insert stores a new mapping. It fails with ErrAlreadyExists if the key is present,
	// an existing value is never overwritten.
	Insert(key, value any) (err error)
	// Lookup decodes the value stored for key into out, which must be a pointer.
	// It fails with ErrNotFound if no mapping exists.
	Lookup(key, out any) (err error)
	// Remove deletes the mapping for key and decodes its former value into out.
	// out may be nil if the caller does not need the value, the stored value must
	// still be decodable.
	// It fails with ErrNotFound if no mapping exists.
	Remove(key, out any) (err error)
}

// --------------------------------------------------------------------------
// Typed helpers
// --------------------------------------------------------------------------

// LookupAs returns the value stored for key decoded as V.
func LookupAs[V any](s IStore, key any) (V, error) {
	var value V
	err := s.Lookup(key, &value)
	return value, err
}

// RemoveAs removes the mapping for key and returns its former value decoded as V.
func RemoveAs[V any](s IStore, key any) (V, error) {
	var value V
	err := s.Remove(key, &value)
	return value, err
}
