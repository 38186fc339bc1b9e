package codec

// ICodec is the interface for all key and value codecs.
// The store never inspects encoded bytes, it only digests keys and persists values.
type ICodec interface {
	// Name returns the registry name of the codec (e.g. "json")
	Name() string
	// Encode encodes a value into a byte array
	// It returns an error if the value is not representable in the format
	Encode(v any) ([]byte, error)
	// Decode decodes a byte array into the value pointed to by v
	// It returns an error if the bytes are malformed or do not match the shape of v
	Decode(b []byte, v any) error
	// Validate reports whether b could be decoded at all, without keeping the result
	Validate(b []byte) error
}
