// Package payload decodes incoming cluster request documents.
package payload

import (
	"encoding/json"
	"fmt"

	"github.com/rzbill/cse/pkg/types"
	"gopkg.in/yaml.v3"
)

// Request is a decoded cluster request.
type Request struct {
	// PayloadVersion is the generation the body was decoded with
	PayloadVersion types.Generation

	// Entity is the decoded and validated body
	Entity types.NativeEntity
}

type envelope struct {
	PayloadVersion *string `json:"payloadVersion"`
}

// Decode reads the top-level payloadVersion and decodes the rest of the document as
// a native entity of that generation. The version is checked before anything else is
// decoded. A body that does not decode, or decodes but fails validation, is a
// MalformedPayloadError.
func Decode(data []byte) (*Request, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, types.NewMalformedPayloadError("request is not a JSON object", err)
	}
	if env.PayloadVersion == nil {
		return nil, types.NewMalformedPayloadError("payloadVersion is required", nil)
	}

	gen, err := types.ParsePayloadVersion(*env.PayloadVersion)
	if err != nil {
		return nil, err
	}

	entity, err := types.DecodeNativeEntity(gen, data)
	if err != nil {
		return nil, err
	}
	if err := entity.Validate(); err != nil {
		return nil, types.NewMalformedPayloadError(fmt.Sprintf("invalid generation %s request", gen), err)
	}

	return &Request{PayloadVersion: gen, Entity: entity}, nil
}

// DecodeYAML accepts the same document written as YAML.
func DecodeYAML(data []byte) (*Request, error) {
	data, err := YAMLToJSON(data)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// YAMLToJSON re-encodes a YAML document as JSON.
func YAMLToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, types.NewMalformedPayloadError("request is not valid YAML", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, types.NewMalformedPayloadError("request cannot be represented as JSON", err)
	}
	return out, nil
}
