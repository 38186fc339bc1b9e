package fstore

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/fsKV/lib/layout"
	"github.com/ValentinKolb/fsKV/lib/store"
	"github.com/ValentinKolb/fsKV/lib/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Directory Walk
// --------------------------------------------------------------------------

// walkFiles calls fn for every non-directory entry below root. Symbolic links are
// followed, directories reached through a link are descended as well. Every
// directory is visited at most once (by real path), which breaks link cycles.
// Entries that cannot be stat'ed or listed are logged and skipped.
func walkFiles(root string, fn func(path string, info os.FileInfo)) {
	visited := make(map[string]struct{})

	var walk func(dir string)
	walk = func(dir string) {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			log.Warningf("skipping %s: %v", dir, err)
			return
		}
		if _, seen := visited[real]; seen {
			return
		}
		visited[real] = struct{}{}

		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Warningf("skipping unreadable directory %s: %v", dir, err)
			return
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			// os.Stat follows symlinks
			info, err := os.Stat(path)
			if err != nil {
				log.Warningf("skipping %s: %v", path, err)
				continue
			}

			if info.IsDir() {
				walk(path)
				continue
			}
			fn(path, info)
		}
	}

	walk(root)
}

// countKeyFiles returns the number of key files anywhere below root
func countKeyFiles(root string) int {
	count := 0
	walkFiles(root, func(path string, _ os.FileInfo) {
		if layout.IsKeyFile(filepath.Base(path)) {
			count++
		}
	})
	return count
}

// --------------------------------------------------------------------------
// Check
// --------------------------------------------------------------------------

// CheckReport lists the inconsistencies found by Check. Fingerprints and paths are sorted.
type CheckReport struct {
	KeyFiles     int                  `json:"key_files"`     // number of key files found
	ValueFiles   int                  `json:"value_files"`   // number of value files found
	MissingValue []layout.Fingerprint `json:"missing_value"` // key file without value file
	MissingKey   []layout.Fingerprint `json:"missing_key"`   // value file without key file
	Misplaced    []string             `json:"misplaced"`     // files outside the shard dir of their fingerprint
	TempFiles    []string             `json:"temp_files"`    // leftovers of interrupted writes
}

// OK reports whether the check found no inconsistencies
func (r CheckReport) OK() bool {
	return len(r.MissingValue) == 0 &&
		len(r.MissingKey) == 0 &&
		len(r.Misplaced) == 0 &&
		len(r.TempFiles) == 0
}

// Check walks the store root and reports half-written mappings and stray files.
// It never modifies the store.
func (s *Store) Check() (CheckReport, error) {
	if _, err := os.Stat(s.root); err != nil {
		return CheckReport{}, store.WrapError(store.RetCIOError, "failed to stat store root", err)
	}

	var report CheckReport
	keys := make(map[layout.Fingerprint]struct{})
	values := make(map[layout.Fingerprint]struct{})

	walkFiles(s.root, func(path string, _ os.FileInfo) {
		name := filepath.Base(path)

		if isTempFile(name) {
			report.TempFiles = append(report.TempFiles, path)
			return
		}

		fp, ok := layout.FingerprintOf(name)
		if !ok {
			return
		}
		if filepath.Base(filepath.Dir(path)) != fp.Shard() {
			report.Misplaced = append(report.Misplaced, path)
		}

		if layout.IsKeyFile(name) {
			report.KeyFiles++
			keys[fp] = struct{}{}
		} else {
			report.ValueFiles++
			values[fp] = struct{}{}
		}
	})

	for fp := range keys {
		if _, ok := values[fp]; !ok {
			report.MissingValue = append(report.MissingValue, fp)
		}
	}
	for fp := range values {
		if _, ok := keys[fp]; !ok {
			report.MissingKey = append(report.MissingKey, fp)
		}
	}

	sort.Slice(report.MissingValue, func(i, j int) bool { return report.MissingValue[i] < report.MissingValue[j] })
	sort.Slice(report.MissingKey, func(i, j int) bool { return report.MissingKey[i] < report.MissingKey[j] })
	sort.Strings(report.Misplaced)
	sort.Strings(report.TempFiles)

	if !report.OK() {
		log.Warningf("check of %s found %d missing values, %d missing keys, %d misplaced and %d temp files",
			s.root, len(report.MissingValue), len(report.MissingKey), len(report.Misplaced), len(report.TempFiles))
	}
	return report, nil
}

// --------------------------------------------------------------------------
// Info
// --------------------------------------------------------------------------

// Info describes the contents of a store
type Info struct {
	Root       string                 `json:"root"`
	Codec      string                 `json:"codec"`
	Entries    int                    `json:"entries"`     // in-memory count
	KeyFiles   int                    `json:"key_files"`   // key files found on disk
	Shards     int                    `json:"shards"`      // number of shard directories
	ShardFill  util.DistributionStats `json:"shard_fill"`  // key files per shard
	ValueSizes util.SizeSummary       `json:"value_sizes"` // value file sizes in bytes
	KeyBytes   int64                  `json:"key_bytes"`   // total size of all key files
}

// Info collects statistics about the store. Shard directories are inspected in
// parallel, the call returns once all of them are done. It never modifies the store.
func (s *Store) Info() (Info, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return Info{}, store.WrapError(store.RetCIOError, "failed to list store root", err)
	}

	var shards []string
	for _, entry := range entries {
		path := filepath.Join(s.root, entry.Name())
		if st, err := os.Stat(path); err == nil && st.IsDir() {
			shards = append(shards, path)
		}
	}

	var (
		fill       = xsync.NewMapOf[string, int]()
		valueSizes = util.NewSizeHistogram()
		keyBytes   atomic.Int64
		wg         sync.WaitGroup
		work       = make(chan string)
	)

	workers := runtime.GOMAXPROCS(0)
	if workers > len(shards) {
		workers = len(shards)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for shard := range work {
				keys := 0
				walkFiles(shard, func(path string, info os.FileInfo) {
					name := filepath.Base(path)
					switch {
					case layout.IsKeyFile(name):
						keys++
						keyBytes.Add(info.Size())
					case layout.IsValueFile(name):
						valueSizes.AddSample(info.Size())
					}
				})
				fill.Store(shard, keys)
			}
		}()
	}

	for _, shard := range shards {
		work <- shard
	}
	close(work)
	wg.Wait()

	var perShard []float64
	keyFiles := 0
	fill.Range(func(_ string, keys int) bool {
		perShard = append(perShard, float64(keys))
		keyFiles += keys
		return true
	})

	return Info{
		Root:       s.root,
		Codec:      s.codec.Name(),
		Entries:    s.size,
		KeyFiles:   keyFiles,
		Shards:     len(shards),
		ShardFill:  util.NewDistributionStats(perShard),
		ValueSizes: valueSizes.Summary(),
		KeyBytes:   keyBytes.Load(),
	}, nil
}
