// Package codec provides the encode/decode capability the fsKV store relies on.
// The store engine treats a codec as an opaque boundary: keys are encoded and digested
// into fingerprints, values are encoded and written to disk verbatim.
//
// The package focuses on:
//   - Providing a consistent interface for different encodings
//   - Producing stable bytes, since equal keys must always map to equal fingerprints
//   - Letting applications plug in their own formats through a registry
//
// Key Components:
//
//   - ICodec: Core interface that all codec implementations must satisfy.
//
//   - jsonCodecImpl: Compact JSON without HTML escaping. This is the default and the
//     format the on-disk layout was originally defined with. A string key "Pizza" is
//     encoded as the seven bytes "Pizza" including the quotes.
//
//   - yamlCodecImpl: YAML via gopkg.in/yaml.v3. Human-readable value files, useful when
//     the store directory is inspected or edited by hand.
//
//   - gobCodecImpl: Go's gob encoding. Compact for Go-only deployments but not stable
//     for map keys (see NewGOBCodec).
//
//   - Registry: Register, ByName and Names manage a process-wide, concurrency-safe map
//     of codecs. The three built-in codecs are registered on package initialisation.
//
// Compatibility:
//
//	Fingerprints depend on the encoded key bytes. A store written with one codec cannot
//	be read with another one: lookups will miss and report the mapping as not found.
//
// Thread Safety:
//
//	All codec implementations are stateless and safe for concurrent use.
//
// Usage:
//
//	c, err := codec.ByName("json")
//	data, err := c.Encode(map[string]int{"Blue": 10})
//	var scores map[string]int
//	err = c.Decode(data, &scores)
package codec
