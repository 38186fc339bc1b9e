package codec

import (
	"gopkg.in/yaml.v3"
)

// NewYAMLCodec creates a new codec using yaml encoding.
// Map keys are emitted in sorted order, so equal keys always produce equal bytes.
func NewYAMLCodec() ICodec {
	return &yamlCodecImpl{}
}

// yamlCodecImpl implements the ICodec interface using yaml encoding
type yamlCodecImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ICodec)
// --------------------------------------------------------------------------

func (y yamlCodecImpl) Name() string {
	return "yaml"
}

func (y yamlCodecImpl) Encode(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (y yamlCodecImpl) Decode(b []byte, v any) error {
	return yaml.Unmarshal(b, v)
}

func (y yamlCodecImpl) Validate(b []byte) error {
	var node yaml.Node
	return yaml.Unmarshal(b, &node)
}
