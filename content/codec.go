package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Codec translates between the wire form of a wording file and a Document.
// The service treats payloads as opaque bytes everywhere else.
type Codec interface {
	// Extension is the file extension the codec serves, without the dot.
	Extension() string

	Decode(data []byte) (Document, error)
	Encode(doc Document) ([]byte, error)
}

// NewTOMLCodec returns the default codec, matching the messages.<locale>.toml
// layout used for translation bundles.
func NewTOMLCodec() Codec {
	return &tomlCodec{}
}

// NewJSONCodec returns a codec for JSON wording files.
func NewJSONCodec() Codec {
	return &jsonCodec{}
}

// NewYAMLCodec returns a codec for YAML wording files.
func NewYAMLCodec() Codec {
	return &yamlCodec{}
}

type tomlCodec struct{}

func (tomlCodec) Extension() string { return "toml" }

func (tomlCodec) Decode(data []byte) (Document, error) {
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not decode toml wording: %w", err)
	}
	return doc, nil
}

func (tomlCodec) Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("could not encode toml wording: %w", err)
	}
	return buf.Bytes(), nil
}

type jsonCodec struct{}

func (jsonCodec) Extension() string { return "json" }

func (jsonCodec) Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not decode json wording: %w", err)
	}
	return doc, nil
}

func (jsonCodec) Encode(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("could not encode json wording: %w", err)
	}
	return data, nil
}

type yamlCodec struct{}

func (yamlCodec) Extension() string { return "yaml" }

func (yamlCodec) Decode(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("could not decode yaml wording: %w", err)
	}
	return doc, nil
}

func (yamlCodec) Encode(doc Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("could not encode yaml wording: %w", err)
	}
	return data, nil
}
