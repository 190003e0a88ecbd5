// Package saves defines the versioned save record that wraps a planet state
// with slot metadata, and its (de)serialization pipeline.
//
// The save format version is independent of the planet state schema version:
// a record names both, and each is migrated by its own registry.
package saves

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/talgya/planet-core/internal/planet"
)

const (
	// FormatVersion is the save envelope version this build writes.
	FormatVersion = 1
	// SlotCount is the fixed number of save slots.
	SlotCount = 3
)

// Record is a planet state plus the metadata it was saved with.
type Record struct {
	FormatVersion      int                `json:"version"`
	Metadata           Metadata           `json:"metadata"`
	PlanetStateVersion int                `json:"planetStateVersion"`
	PlanetState        planet.PlanetState `json:"planetState"`
}

// DeserializeOptions tunes Deserialize.
type DeserializeOptions struct {
	// ExpectedSlot, when set, must equal the record's metadata.slot.
	ExpectedSlot *int
}

// ForSlot returns options that require the record to belong to slot.
func ForSlot(slot int) DeserializeOptions {
	return DeserializeOptions{ExpectedSlot: &slot}
}

// Serialize wraps state and normalized metadata into a current-format record.
func Serialize(state planet.PlanetState, meta Metadata) ([]byte, error) {
	rec := Record{
		FormatVersion:      FormatVersion,
		Metadata:           meta.Normalized(),
		PlanetStateVersion: state.Version,
		PlanetState:        state,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode save record: %w", err)
	}
	return data, nil
}

// recordNormalizer reads one save format version.
type recordNormalizer func(obj map[string]any, opts DeserializeOptions) (Record, error)

var recordNormalizers = map[int]recordNormalizer{
	1: normalizeRecordV1,
}

// Deserialize parses a stored record. It fails with KindCorrupted for
// malformed payloads or slot mismatches, KindUnsupportedVersion for unknown
// save formats and KindIncompatible for planet states this build cannot read.
func Deserialize(payload []byte, opts DeserializeOptions) (Record, error) {
	slot := -1
	if opts.ExpectedSlot != nil {
		slot = *opts.ExpectedSlot
	}

	raw, err := planet.DecodeJSON(payload)
	if err != nil {
		return Record{}, &Error{Kind: KindCorrupted, Slot: slot, Reason: "payload is not valid JSON", Err: err}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Record{}, corrupted(slot, "payload is not an object")
	}

	tag, present := obj["version"]
	if !present {
		return Record{}, corrupted(slot, "missing format version")
	}
	version, ok := integer(tag)
	if !ok {
		return Record{}, corrupted(slot, "format version %v is not an integer", tag)
	}
	norm, ok := recordNormalizers[int(version)]
	if !ok {
		return Record{}, &Error{
			Kind:   KindUnsupportedVersion,
			Slot:   slot,
			Reason: fmt.Sprintf("save format version %d is not supported", version),
		}
	}
	return norm(obj, opts)
}

func normalizeRecordV1(obj map[string]any, opts DeserializeOptions) (Record, error) {
	slot := -1
	if opts.ExpectedSlot != nil {
		slot = *opts.ExpectedSlot
	}

	if reason, ok := validateEnvelope(obj); !ok {
		return Record{}, corrupted(slot, "%s", reason)
	}

	rawMeta := obj["metadata"].(map[string]any)
	stored, _ := integer(rawMeta["slot"])
	if opts.ExpectedSlot != nil && int(stored) != *opts.ExpectedSlot {
		return Record{}, corrupted(slot, "record belongs to slot %d", stored)
	}
	if slot < 0 {
		slot = int(stored)
	}

	stateVersion, _ := integer(obj["planetStateVersion"])
	if stateVersion > planet.CurrentVersion {
		return Record{}, &Error{
			Kind:   KindIncompatible,
			Slot:   slot,
			Reason: fmt.Sprintf("planet state version %d is newer than supported version %d", stateVersion, planet.CurrentVersion),
		}
	}

	state, err := planet.Migrate(obj["planetState"])
	if err != nil {
		return Record{}, &Error{Kind: KindIncompatible, Slot: slot, Reason: "embedded planet state", Err: err}
	}

	return Record{
		FormatVersion:      FormatVersion,
		Metadata:           normalizeMetadata(rawMeta, int(stored)),
		PlanetStateVersion: state.Version,
		PlanetState:        state,
	}, nil
}

func integer(v any) (int64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}
