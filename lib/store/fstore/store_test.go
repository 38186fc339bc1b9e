package fstore

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/fsKV/lib/codec"
	"github.com/ValentinKolb/fsKV/lib/layout"
	"github.com/ValentinKolb/fsKV/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fingerprint of the JSON encoded key "Pizza" (including the quotes)
const pizzaFingerprint = layout.Fingerprint("847329705fa1f96dd0b9f6a4e82ff1e2021a24b6253949831fcff69e2c4ae51b")

func openTestStore(t *testing.T, root string) *Store {
	t.Helper()
	s, err := Open(root, &Options{SyncWrites: false})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// plant writes a file below root, creating parent directories
func plant(t *testing.T, root string, rel string, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpen(t *testing.T) {
	t.Run("EmptyPath", func(t *testing.T) {
		s, err := Open("", nil)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, store.ErrConfig)
	})

	t.Run("CreatesMissingDirectories", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "a", "b", "store")
		s := openTestStore(t, root)

		assert.Equal(t, root, s.Root())
		assert.Equal(t, 0, s.Size())
		assert.DirExists(t, root)
	})

	t.Run("PathIsAFile", func(t *testing.T) {
		file := plant(t, t.TempDir(), "not-a-dir", "x")
		_, err := Open(file, nil)
		assert.ErrorIs(t, err, store.ErrConfig)
	})

	t.Run("NilOptionsUseDefaults", func(t *testing.T) {
		s, err := Open(t.TempDir(), nil)
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, "json", s.codec.Name())
		assert.True(t, s.opts.SyncWrites)
		assert.Equal(t, os.FileMode(0o755), s.opts.DirPerm)
		assert.Equal(t, os.FileMode(0o644), s.opts.FilePerm)
	})
}

func TestOnDiskLayout(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t, root)

	require.NoError(t, s.Insert("Pizza", 21))

	paths := layout.Resolve(root, pizzaFingerprint)
	assert.Equal(t, filepath.Join(root, "847329705f"), paths.ShardDir)

	key, err := os.ReadFile(paths.KeyFile)
	require.NoError(t, err)
	assert.Equal(t, `"Pizza"`, string(key))

	value, err := os.ReadFile(paths.ValueFile)
	require.NoError(t, err)
	assert.Equal(t, "21", string(value))

	// no temp files are left behind
	entries, err := os.ReadDir(paths.ShardDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestScenario(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "store"))

	require.NoError(t, s.Insert("Pizza", 21))
	assert.Equal(t, 1, s.Size())
	require.NoError(t, s.Insert("Coffee", 33))
	assert.Equal(t, 2, s.Size())

	price, err := store.LookupAs[int](s, "Pizza")
	require.NoError(t, err)
	assert.Equal(t, 21, price)

	removed, err := store.RemoveAs[int](s, "Pizza")
	require.NoError(t, err)
	assert.Equal(t, 21, removed)
	assert.Equal(t, 1, s.Size())

	_, err = store.LookupAs[int](s, "Pizza")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInsert(t *testing.T) {
	t.Run("Duplicate", func(t *testing.T) {
		s := openTestStore(t, t.TempDir())

		require.NoError(t, s.Insert("Hello", 2))
		err := s.Insert("Hello", 2)
		assert.ErrorIs(t, err, store.ErrAlreadyExists)
		assert.Equal(t, store.RetCAlreadyExists, store.CodeOf(err))
		assert.Equal(t, 1, s.Size())
	})

	t.Run("EncodingError", func(t *testing.T) {
		root := t.TempDir()
		s := openTestStore(t, root)

		err := s.Insert("chan", make(chan int))
		assert.ErrorIs(t, err, store.ErrEncoding)
		err = s.Insert(func() {}, 1)
		assert.ErrorIs(t, err, store.ErrEncoding)
		assert.Equal(t, 0, s.Size())

		// nothing was written
		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		root := t.TempDir()
		s := openTestStore(t, root)

		// json cannot tell these keys apart, so both must be rejected
		assert.ErrorIs(t, s.Insert("\xff", "A"), store.ErrEncoding)
		assert.ErrorIs(t, s.Insert("\xfe", "B"), store.ErrEncoding)
		assert.ErrorIs(t, s.Insert("key", "\xff"), store.ErrEncoding)
		assert.Equal(t, 0, s.Size())

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Empty(t, entries)

		var out string
		assert.ErrorIs(t, s.Lookup("\xfe", &out), store.ErrEncoding)
	})

	t.Run("InvalidUTF8WithGob", func(t *testing.T) {
		s, err := Open(t.TempDir(), &Options{Codec: codec.NewGOBCodec()})
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Insert("\xff", "A"))
		require.NoError(t, s.Insert("\xfe", "B"))
		assert.Equal(t, 2, s.Size())

		value, err := store.LookupAs[string](s, "\xfe")
		require.NoError(t, err)
		assert.Equal(t, "B", value)
	})

	t.Run("OverwritesOrphanValue", func(t *testing.T) {
		root := t.TempDir()
		paths := layout.Resolve(root, pizzaFingerprint)
		plant(t, root, filepath.Join(pizzaFingerprint.Shard(), pizzaFingerprint.ValueFileName()), "99")

		s := openTestStore(t, root)
		assert.Equal(t, 0, s.Size())

		require.NoError(t, s.Insert("Pizza", 21))
		assert.Equal(t, 1, s.Size())

		value, err := os.ReadFile(paths.ValueFile)
		require.NoError(t, err)
		assert.Equal(t, "21", string(value))
	})

	t.Run("RollbackOnValueWriteFailure", func(t *testing.T) {
		root := t.TempDir()
		paths := layout.Resolve(root, pizzaFingerprint)

		// a directory in place of the value file makes the final rename fail
		require.NoError(t, os.MkdirAll(filepath.Join(paths.ValueFile, "blocker"), 0o755))

		s := openTestStore(t, root)
		err := s.Insert("Pizza", 21)
		assert.ErrorIs(t, err, store.ErrIO)
		assert.Equal(t, 0, s.Size())
		assert.NoFileExists(t, paths.KeyFile)

		entries, err := os.ReadDir(paths.ShardDir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, pizzaFingerprint.ValueFileName(), entries[0].Name())

		// once the blocker is gone the shard directory is cleaned up by a successful cycle
		require.NoError(t, os.RemoveAll(paths.ValueFile))
		require.NoError(t, s.Insert("Pizza", 21))
		require.NoError(t, s.Remove("Pizza", nil))
		assert.NoDirExists(t, paths.ShardDir)
	})

	t.Run("RollbackRemovesEmptyShard", func(t *testing.T) {
		root := t.TempDir()
		paths := layout.Resolve(root, pizzaFingerprint)
		s := openTestStore(t, root)

		err := s.rollbackInsert(paths, false, store.NewError(store.RetCIOError, "write failed"))
		assert.ErrorIs(t, err, store.ErrIO)
		assert.NoDirExists(t, paths.ShardDir)

		require.NoError(t, os.MkdirAll(paths.ShardDir, 0o755))
		plant(t, root, filepath.Join(pizzaFingerprint.Shard(), pizzaFingerprint.KeyFileName()), `"Pizza"`)

		err = s.rollbackInsert(paths, true, store.NewError(store.RetCIOError, "write failed"))
		assert.ErrorIs(t, err, store.ErrIO)
		assert.NoFileExists(t, paths.KeyFile)
		assert.NoDirExists(t, paths.ShardDir)
	})
}

func TestLookup(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	require.NoError(t, s.Insert("name", "fsKV"))

	t.Run("NilOut", func(t *testing.T) {
		err := s.Lookup("name", nil)
		assert.Equal(t, store.RetCInvalidOperation, store.CodeOf(err))
	})

	t.Run("DecodeError", func(t *testing.T) {
		_, err := store.LookupAs[int](s, "name")
		assert.ErrorIs(t, err, store.ErrEncoding)
	})

	t.Run("OnlyValueFileMatters", func(t *testing.T) {
		paths := layout.Resolve(s.Root(), layout.Digest([]byte(`"name"`)))
		require.NoError(t, os.Remove(paths.KeyFile))

		value, err := store.LookupAs[string](s, "name")
		require.NoError(t, err)
		assert.Equal(t, "fsKV", value)
	})
}

func TestRemove(t *testing.T) {
	t.Run("MissingValueFile", func(t *testing.T) {
		root := t.TempDir()
		s := openTestStore(t, root)
		require.NoError(t, s.Insert("Pizza", 21))

		paths := layout.Resolve(root, pizzaFingerprint)
		require.NoError(t, os.Remove(paths.ValueFile))

		err := s.Remove("Pizza", nil)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Equal(t, 1, s.Size())
		assert.FileExists(t, paths.KeyFile)
	})

	t.Run("DecodeErrorKeepsMapping", func(t *testing.T) {
		root := t.TempDir()
		s := openTestStore(t, root)
		require.NoError(t, s.Insert("Pizza", "twenty-one"))

		_, err := store.RemoveAs[int](s, "Pizza")
		assert.ErrorIs(t, err, store.ErrEncoding)
		assert.Equal(t, 1, s.Size())

		value, err := store.LookupAs[string](s, "Pizza")
		require.NoError(t, err)
		assert.Equal(t, "twenty-one", value)
	})

	t.Run("CorruptValueWithoutOut", func(t *testing.T) {
		root := t.TempDir()
		s := openTestStore(t, root)
		require.NoError(t, s.Insert("Pizza", 21))

		paths := layout.Resolve(root, pizzaFingerprint)
		require.NoError(t, os.WriteFile(paths.ValueFile, []byte("{broken"), 0o644))

		err := s.Remove("Pizza", nil)
		assert.ErrorIs(t, err, store.ErrEncoding)
		assert.Equal(t, 1, s.Size())
		assert.FileExists(t, paths.KeyFile)
		assert.FileExists(t, paths.ValueFile)
	})

	t.Run("SharedShardSurvives", func(t *testing.T) {
		root := t.TempDir()
		s := openTestStore(t, root)
		require.NoError(t, s.Insert("Pizza", 21))

		// a second mapping in the same shard directory
		other := layout.Fingerprint(pizzaFingerprint.Shard() + "0000000000000000000000000000000000000000000000000000")
		plant(t, root, filepath.Join(other.Shard(), other.KeyFileName()), `"other"`)
		plant(t, root, filepath.Join(other.Shard(), other.ValueFileName()), "1")

		require.NoError(t, s.Remove("Pizza", nil))

		shard := filepath.Join(root, pizzaFingerprint.Shard())
		assert.DirExists(t, shard)
		assert.FileExists(t, filepath.Join(shard, other.KeyFileName()))
		assert.FileExists(t, filepath.Join(shard, other.ValueFileName()))
		assert.NoFileExists(t, filepath.Join(shard, pizzaFingerprint.KeyFileName()))
	})

	t.Run("LastMappingRemovesShard", func(t *testing.T) {
		root := t.TempDir()
		s := openTestStore(t, root)
		require.NoError(t, s.Insert("Pizza", 21))
		require.NoError(t, s.Insert("Coffee", 33))

		require.NoError(t, s.Remove("Pizza", nil))
		assert.NoDirExists(t, filepath.Join(root, pizzaFingerprint.Shard()))

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestInitializationScan(t *testing.T) {
	t.Run("CountsKeyFilesOnly", func(t *testing.T) {
		root := t.TempDir()
		plant(t, root, "aaaaaaaaaa/a.key", "")
		plant(t, root, "aaaaaaaaaa/a.value", "")
		plant(t, root, "bbbbbbbbbb/b.key", "")
		plant(t, root, "deep/nested/dir/c.key", "")
		plant(t, root, "cccccccccc/"+tempPrefix+"123", "")
		plant(t, root, "notes.txt", "")

		s := openTestStore(t, root)
		assert.Equal(t, 3, s.Size())
	})

	t.Run("FollowsSymlinks", func(t *testing.T) {
		root := t.TempDir()
		external := t.TempDir()
		plant(t, root, "aaaaaaaaaa/a.key", "")
		plant(t, external, "bbbbbbbbbb/b.key", "")
		plant(t, external, "cccccccccc/c.key", "")

		if err := os.Symlink(external, filepath.Join(root, "linked")); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
		require.NoError(t, os.Symlink(filepath.Join(external, "bbbbbbbbbb", "b.key"), filepath.Join(root, "aaaaaaaaaa", "link.key")))

		s := openTestStore(t, root)
		assert.Equal(t, 4, s.Size())
	})

	t.Run("SymlinkCycle", func(t *testing.T) {
		root := t.TempDir()
		plant(t, root, "aaaaaaaaaa/a.key", "")

		if err := os.Symlink(root, filepath.Join(root, "aaaaaaaaaa", "loop")); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}

		s := openTestStore(t, root)
		assert.Equal(t, 1, s.Size())
	})

	t.Run("SkipsDanglingSymlink", func(t *testing.T) {
		root := t.TempDir()
		plant(t, root, "aaaaaaaaaa/a.key", "")

		if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling.key")); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}

		s := openTestStore(t, root)
		assert.Equal(t, 1, s.Size())
	})

	t.Run("Reopen", func(t *testing.T) {
		root := t.TempDir()
		s := openTestStore(t, root)
		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, s.Insert(k, k))
		}
		require.NoError(t, s.Remove("b", nil))
		require.NoError(t, s.Close())

		s2 := openTestStore(t, root)
		assert.Equal(t, 2, s2.Size())
	})
}

func TestCheck(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t, root)
	require.NoError(t, s.Insert("Pizza", 21))
	require.NoError(t, s.Insert("Coffee", 33))

	report, err := s.Check()
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.KeyFiles)
	assert.Equal(t, 2, report.ValueFiles)

	orphanKey := layout.Digest([]byte(`"orphan"`))
	orphanValue := layout.Digest([]byte(`"widow"`))
	misplaced := layout.Digest([]byte(`"lost"`))
	plant(t, root, filepath.Join(orphanKey.Shard(), orphanKey.KeyFileName()), `"orphan"`)
	plant(t, root, filepath.Join(orphanValue.Shard(), orphanValue.ValueFileName()), "1")
	plant(t, root, filepath.Join("elsewhere", misplaced.KeyFileName()), `"lost"`)
	plant(t, root, filepath.Join("elsewhere", misplaced.ValueFileName()), "2")
	tmp := plant(t, root, filepath.Join(pizzaFingerprint.Shard(), tempPrefix+"42"), "")

	report, err = s.Check()
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, []layout.Fingerprint{orphanKey}, report.MissingValue)
	assert.Equal(t, []layout.Fingerprint{orphanValue}, report.MissingKey)
	assert.Len(t, report.Misplaced, 2)
	assert.Equal(t, []string{tmp}, report.TempFiles)
	assert.Equal(t, 4, report.KeyFiles)
	assert.Equal(t, 4, report.ValueFiles)

	// check is read-only
	assert.Equal(t, 2, s.Size())
	assert.FileExists(t, tmp)
}

func TestInfo(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t, root)

	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, 0, info.Entries)
	assert.Equal(t, 0, info.Shards)
	assert.Equal(t, int64(0), info.ValueSizes.Count)

	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, k := range keys {
		require.NoError(t, s.Insert(k, "value"))
	}

	info, err = s.Info()
	require.NoError(t, err)
	assert.Equal(t, root, info.Root)
	assert.Equal(t, "json", info.Codec)
	assert.Equal(t, len(keys), info.Entries)
	assert.Equal(t, len(keys), info.KeyFiles)
	assert.Equal(t, len(keys), info.Shards)
	assert.Equal(t, int64(len(keys)), info.ValueSizes.Count)
	assert.Equal(t, int64(len(keys)*len(`"value"`)), info.ValueSizes.Total)
	assert.Equal(t, int64(len(keys)*len(`"a"`)), info.KeyBytes)
	assert.InDelta(t, 1.0, info.ShardFill.Mean, 1e-9)
	assert.InDelta(t, 1.0, info.ShardFill.DistributionQuality, 1e-9)
}

func TestCodecOption(t *testing.T) {
	root := t.TempDir()
	yamlCodec, err := codec.ByName("yaml")
	require.NoError(t, err)

	s, err := Open(root, &Options{Codec: yamlCodec})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert("Pizza", 21))

	fp := layout.Digest([]byte("Pizza\n"))
	value, err := os.ReadFile(layout.Resolve(root, fp).ValueFile)
	require.NoError(t, err)
	assert.Equal(t, "21\n", string(value))

	price, err := store.LookupAs[int](s, "Pizza")
	require.NoError(t, err)
	assert.Equal(t, 21, price)
}

func TestMetrics(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	ok := metrics.GetOrCreateCounter(`fskv_ops_total{op="insert",result="ok"}`)
	dup := metrics.GetOrCreateCounter(`fskv_ops_total{op="insert",result="alreadyexists"}`)
	missing := metrics.GetOrCreateCounter(`fskv_ops_total{op="lookup",result="notfound"}`)
	okBefore, dupBefore, missingBefore := ok.Get(), dup.Get(), missing.Get()

	require.NoError(t, s.Insert("k", 1))
	_ = s.Insert("k", 1)
	var out int
	_ = s.Lookup("missing", &out)

	assert.Equal(t, okBefore+1, ok.Get())
	assert.Equal(t, dupBefore+1, dup.Get())
	assert.Equal(t, missingBefore+1, missing.Get())

	cur, found := openStores.Load(s.Root())
	require.True(t, found)
	assert.Same(t, s, cur)

	require.NoError(t, s.Close())
	_, found = openStores.Load(s.Root())
	assert.False(t, found)
}

func TestClose(t *testing.T) {
	root := t.TempDir()
	gauge := func() float64 {
		return metrics.GetOrCreateGauge(fmt.Sprintf(`fskv_entries{root=%q}`, root), nil).Get()
	}

	first, err := Open(root, &Options{SyncWrites: false})
	require.NoError(t, err)
	require.NoError(t, first.Insert("Pizza", 21))
	assert.Equal(t, float64(1), gauge())

	// a second store on the same root takes over the gauge
	second, err := Open(root, &Options{SyncWrites: false})
	require.NoError(t, err)
	require.NoError(t, second.Insert("Coffee", 33))

	require.NoError(t, first.Close())
	assert.Equal(t, float64(2), gauge())

	require.NoError(t, second.Close())
	assert.Equal(t, float64(0), gauge())

	// closing twice is harmless and the data stays on disk
	require.NoError(t, second.Close())
	reopened := openTestStore(t, root)
	assert.Equal(t, 2, reopened.Size())
}
