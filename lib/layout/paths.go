package layout

import "path/filepath"

// Paths holds the three locations that belong to one mapping.
type Paths struct {
	ShardDir  string // <root>/<fingerprint[0:10]>
	KeyFile   string // <shard>/<fingerprint>.key
	ValueFile string // <shard>/<fingerprint>.value
}

// Resolve derives the shard directory, key file and value file of a fingerprint
// relative to the store root.
func Resolve(root string, fp Fingerprint) Paths {
	shardDir := filepath.Join(root, fp.Shard())
	return Paths{
		ShardDir:  shardDir,
		KeyFile:   filepath.Join(shardDir, fp.KeyFileName()),
		ValueFile: filepath.Join(shardDir, fp.ValueFileName()),
	}
}

// ResolveKey digests the encoded key and resolves its paths in one step
func ResolveKey(root string, encodedKey []byte) (Fingerprint, Paths) {
	fp := Digest(encodedKey)
	return fp, Resolve(root, fp)
}
