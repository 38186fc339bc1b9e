// Package layout implements the addressing scheme of the fsKV on-disk format.
//
// A key is never stored under its own name. Instead the encoded key bytes are
// digested into a Fingerprint (SHA-256, lowercase hex) and the fingerprint decides
// where the mapping lives:
//
//	<root>/<fingerprint[0:10]>/<fingerprint>.key
//	<root>/<fingerprint[0:10]>/<fingerprint>.value
//
// The first ShardPrefixLen characters of the fingerprint name the shard directory.
// With 16^10 possible shard names, directories stay small even for very large
// stores, and a shard only ever holds keys whose digests collide on the prefix.
//
// Everything in this package is pure: no function touches the filesystem and no
// function can fail.
package layout
