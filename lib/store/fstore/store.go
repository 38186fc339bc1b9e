package fstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ValentinKolb/fsKV/lib/codec"
	"github.com/ValentinKolb/fsKV/lib/layout"
	"github.com/ValentinKolb/fsKV/lib/store"
	"github.com/hashicorp/go-multierror"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("fstore")

// Store is a key-value store that keeps every mapping as a key file and a value
// file inside a shard directory below root.
//
// Thread-safety: Store is not safe for concurrent use. Exactly one Store may
// operate on a root directory at a time.
type Store struct {
	root  string
	size  int
	codec codec.ICodec
	opts  Options
}

// Open binds a store to the directory at path, creating it (and missing parents)
// if necessary. The number of stored mappings is recovered by counting the key
// files below path.
//
// A nil opts selects DefaultOptions.
func Open(path string, opts *Options) (*Store, error) {
	if path == "" {
		return nil, store.NewError(store.RetCConfigError, "store path must not be empty")
	}

	o := opts.withDefaults()

	if err := os.MkdirAll(path, o.DirPerm); err != nil {
		return nil, store.WrapError(store.RetCConfigError, fmt.Sprintf("failed to create store directory %s", path), err)
	}

	s := &Store{
		root:  path,
		size:  countKeyFiles(path),
		codec: o.Codec,
		opts:  o,
	}

	registerEntriesGauge(s)

	log.Infof("opened store at %s with %d entries (codec %s)", path, s.size, s.codec.Name())
	return s, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Size() int {
	return s.size
}

func (s *Store) Insert(key, value any) (err error) {
	defer func(start time.Time) { observe(opInsert, start, err) }(time.Now())

	encKey, err := s.encode(key, "key")
	if err != nil {
		return err
	}
	encValue, err := s.encode(value, "value")
	if err != nil {
		return err
	}

	fp, paths := layout.ResolveKey(s.root, encKey)

	if err := os.MkdirAll(paths.ShardDir, s.opts.DirPerm); err != nil {
		return store.WrapError(store.RetCIOError, fmt.Sprintf("failed to create shard directory %s", paths.ShardDir), err)
	}

	exists, err := fileExists(paths.KeyFile)
	if err != nil {
		return store.WrapError(store.RetCIOError, "failed to stat key file", err)
	}
	if exists {
		return store.NewError(store.RetCAlreadyExists, fmt.Sprintf("mapping %s already exists", fp))
	}

	if err := writeFileAtomic(paths.KeyFile, encKey, s.opts.FilePerm, s.opts.SyncWrites); err != nil {
		return s.rollbackInsert(paths, false, store.WrapError(store.RetCIOError, "failed to write key file", err))
	}
	if err := writeFileAtomic(paths.ValueFile, encValue, s.opts.FilePerm, s.opts.SyncWrites); err != nil {
		return s.rollbackInsert(paths, true, store.WrapError(store.RetCIOError, "failed to write value file", err))
	}

	s.size++
	log.Debugf("inserted %s (size %d)", fp, s.size)
	return nil
}

func (s *Store) Lookup(key, out any) (err error) {
	defer func(start time.Time) { observe(opLookup, start, err) }(time.Now())

	if out == nil {
		return store.NewError(store.RetCInvalidOperation, "lookup needs a non-nil pointer to decode into")
	}

	encKey, err := s.encode(key, "key")
	if err != nil {
		return err
	}
	fp, paths := layout.ResolveKey(s.root, encKey)

	data, err := os.ReadFile(paths.ValueFile)
	if errors.Is(err, fs.ErrNotExist) {
		return store.NewError(store.RetCNotFound, fmt.Sprintf("mapping %s not found", fp))
	}
	if err != nil {
		return store.WrapError(store.RetCIOError, "failed to read value file", err)
	}

	return s.decode(data, out)
}

func (s *Store) Remove(key, out any) (err error) {
	defer func(start time.Time) { observe(opRemove, start, err) }(time.Now())

	encKey, err := s.encode(key, "key")
	if err != nil {
		return err
	}
	fp, paths := layout.ResolveKey(s.root, encKey)

	// all three parts of the mapping must be present
	for _, p := range []string{paths.ShardDir, paths.KeyFile, paths.ValueFile} {
		ok, err := fileExists(p)
		if err != nil {
			return store.WrapError(store.RetCIOError, fmt.Sprintf("failed to stat %s", p), err)
		}
		if !ok {
			return store.NewError(store.RetCNotFound, fmt.Sprintf("mapping %s not found", fp))
		}
	}

	// the value must be readable before the mapping is reported as removed
	data, err := os.ReadFile(paths.ValueFile)
	if err != nil {
		return store.WrapError(store.RetCIOError, "failed to read value file", err)
	}
	if out != nil {
		if err := s.decode(data, out); err != nil {
			return err
		}
	} else if err := s.codec.Validate(data); err != nil {
		return store.WrapError(store.RetCEncodingError, "failed to decode value", err)
	}

	if err := os.Remove(paths.KeyFile); err != nil {
		return store.WrapError(store.RetCIOError, "failed to remove key file", err)
	}
	if err := os.Remove(paths.ValueFile); err != nil {
		return store.WrapError(store.RetCIOError, "failed to remove value file", err)
	}
	s.size--
	log.Debugf("removed %s (size %d)", fp, s.size)

	if _, err := removeDirIfEmpty(paths.ShardDir); err != nil {
		return store.WrapError(store.RetCIOError, fmt.Sprintf("failed to remove shard directory %s", paths.ShardDir), err)
	}
	return nil
}

// Close releases the store and unbinds its entries gauge. Every operation is
// flushed to disk before it returns, so there is nothing left to write.
func (s *Store) Close() error {
	unregisterEntriesGauge(s)
	log.Debugf("closed store at %s with %d entries", s.root, s.size)
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// encode encodes v and wraps codec failures as encoding errors
func (s *Store) encode(v any, what string) ([]byte, error) {
	data, err := s.codec.Encode(v)
	if err != nil {
		return nil, store.WrapError(store.RetCEncodingError, fmt.Sprintf("failed to encode %s", what), err)
	}
	return data, nil
}

// decode decodes a stored value into out and wraps codec failures as encoding errors
func (s *Store) decode(data []byte, out any) error {
	if err := s.codec.Decode(data, out); err != nil {
		return store.WrapError(store.RetCEncodingError, "failed to decode value", err)
	}
	return nil
}

// rollbackInsert undoes the file system changes of a failed insert: the key file
// (if it was written) and the shard directory (if it is empty now).
// The returned error carries cause and every rollback failure.
func (s *Store) rollbackInsert(paths layout.Paths, keyWritten bool, cause *store.Error) error {
	var result *multierror.Error

	if keyWritten {
		if err := os.Remove(paths.KeyFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			result = multierror.Append(result, fmt.Errorf("rollback key file: %w", err))
		}
	}
	if _, err := removeDirIfEmpty(paths.ShardDir); err != nil {
		result = multierror.Append(result, fmt.Errorf("rollback shard directory: %w", err))
	}

	if result != nil {
		log.Errorf("insert rollback incomplete, %s may be inconsistent: %v", paths.ShardDir, result)
		cause.Err = multierror.Append(result, cause.Err).ErrorOrNil()
	}
	return cause
}

// fileExists reports whether a file or directory exists at path (following symlinks)
func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// removeDirIfEmpty lists dir and removes it only if the listing yields no entries
func removeDirIfEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(entries) > 0 {
		return false, nil
	}
	if err := os.Remove(dir); err != nil {
		return false, err
	}
	return true, nil
}
