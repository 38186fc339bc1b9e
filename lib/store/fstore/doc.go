// Package fstore implements store.IStore on top of a plain directory tree.
//
// Every mapping is persisted as two files. The key and the value are encoded with
// the store's codec (JSON by default), the encoded key is hashed with SHA-256 and
// the hex digest (the fingerprint) names the files:
//
//	<root>/<fingerprint[0:10]>/<fingerprint>.key    encoded key
//	<root>/<fingerprint[0:10]>/<fingerprint>.value  encoded value
//
// Shard directories are created on the first insert that needs them and removed by
// the remove that leaves them empty.
//
// # Writes
//
// Key and value file are each written to a temp file in the shard directory and
// renamed into place (optionally after an fsync, see Options.SyncWrites). If the
// value file cannot be written, the key file is removed again so that a failed
// insert leaves no trace. Temp files never end in ".key" and are ignored when
// counting mappings.
//
// # Opening
//
// Open creates the root directory if needed and counts the key files below it,
// following symbolic links. This count is what Size reports; it is kept up to date
// by Insert and Remove. Unreadable entries are skipped with a warning.
//
// # Maintenance
//
// Check reports key files without value files (and vice versa), misplaced files and
// leftover temp files. Info reports the shard fill distribution and value sizes.
// Neither modifies the store.
//
// # Metrics
//
// Every operation is counted and timed with github.com/VictoriaMetrics/metrics:
//
//	fskv_ops_total{op="insert",result="ok"}
//	fskv_op_duration_seconds{op="lookup"}
//	fskv_entries{root="data"}
//
// A Store must not be used concurrently, and only one Store may be bound to a root
// directory at a time.
//
// Example:
//
//	s, err := fstore.Open("data", nil)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	_ = s.Insert("Pizza", 21)
//	price, err := store.LookupAs[int](s, "Pizza")
package fstore
