package codec

import (
	"bytes"
	"encoding/json"
	"errors"
)

// NewJSONCodec creates a new codec using compact json encoding.
// HTML escaping is disabled and the trailing newline of the encoder is dropped,
// so the output matches what other json implementations produce for the same value.
func NewJSONCodec() ICodec {
	return &jsonCodecImpl{}
}

// jsonCodecImpl implements the ICodec interface using json encoding
type jsonCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICodec)
// --------------------------------------------------------------------------

func (j jsonCodecImpl) Name() string {
	return "json"
}

func (j jsonCodecImpl) Encode(v any) ([]byte, error) {
	// encoding/json silently replaces invalid UTF-8 with U+FFFD,
	// distinct keys would then share one fingerprint
	if err := checkUTF8(v); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (j jsonCodecImpl) Decode(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

func (j jsonCodecImpl) Validate(b []byte) error {
	if !json.Valid(b) {
		return errors.New("invalid JSON document")
	}
	return nil
}
