package saves

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeV1 describes the structural shape of a format-1 record. Leaf
// metadata fields other than slot are repaired during normalization, so the
// schema leaves them untyped.
var envelopeV1 = jsonschema.MustCompileString("planet-save-v1.schema.json", fmt.Sprintf(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["version", "metadata", "planetStateVersion", "planetState"],
	"properties": {
		"version": {"type": "integer"},
		"metadata": {
			"type": "object",
			"required": ["slot"],
			"properties": {
				"slot": {"type": "integer", "minimum": 0, "maximum": %d}
			}
		},
		"planetStateVersion": {"type": "integer"},
		"planetState": {"type": "object"}
	}
}`, SlotCount-1))

// validateEnvelope returns a one-line reason when v does not match the
// format-1 envelope.
func validateEnvelope(v any) (string, bool) {
	err := envelopeV1.Validate(v)
	if err == nil {
		return "", true
	}
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		leaf := ve
		for len(leaf.Causes) > 0 {
			leaf = leaf.Causes[0]
		}
		return fmt.Sprintf("%s: %s", location(leaf.InstanceLocation), leaf.Message), false
	}
	return err.Error(), false
}

func location(ptr string) string {
	if ptr == "" {
		return "record"
	}
	return ptr
}
