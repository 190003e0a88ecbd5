package slots

import (
	"encoding/json"

	"github.com/talgya/planet-core/internal/saves"
)

// Status names a slot classification.
type Status string

const (
	StatusEmpty        Status = "empty"
	StatusAvailable    Status = "available"
	StatusCorrupted    Status = "corrupted"
	StatusIncompatible Status = "incompatible"
)

// Summary is the read-time classification of one slot. The concrete type is
// one of Empty, Available, Corrupted or Incompatible.
type Summary interface {
	SlotIndex() int
	Status() Status
	isSummary()
}

// Empty reports that nothing is stored in a slot.
type Empty struct {
	Slot int
}

// Available reports a record that deserialized cleanly.
type Available struct {
	Slot               int
	Metadata           saves.Metadata
	PlanetStateVersion int
}

// Corrupted reports a structurally broken payload.
type Corrupted struct {
	Slot   int
	Reason string
}

// Incompatible reports a payload with a version this build cannot read.
type Incompatible struct {
	Slot   int
	Reason string
}

func (s Empty) SlotIndex() int        { return s.Slot }
func (s Available) SlotIndex() int    { return s.Slot }
func (s Corrupted) SlotIndex() int    { return s.Slot }
func (s Incompatible) SlotIndex() int { return s.Slot }

func (Empty) Status() Status        { return StatusEmpty }
func (Available) Status() Status    { return StatusAvailable }
func (Corrupted) Status() Status    { return StatusCorrupted }
func (Incompatible) Status() Status { return StatusIncompatible }

func (Empty) isSummary()        {}
func (Available) isSummary()    {}
func (Corrupted) isSummary()    {}
func (Incompatible) isSummary() {}

func (s Empty) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status Status `json:"status"`
		Slot   int    `json:"slot"`
	}{StatusEmpty, s.Slot})
}

func (s Available) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status             Status         `json:"status"`
		Slot               int            `json:"slot"`
		Metadata           saves.Metadata `json:"metadata"`
		PlanetStateVersion int            `json:"planetStateVersion"`
	}{StatusAvailable, s.Slot, s.Metadata, s.PlanetStateVersion})
}

func (s Corrupted) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status Status `json:"status"`
		Slot   int    `json:"slot"`
		Reason string `json:"reason"`
	}{StatusCorrupted, s.Slot, s.Reason})
}

func (s Incompatible) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status Status `json:"status"`
		Slot   int    `json:"slot"`
		Reason string `json:"reason"`
	}{StatusIncompatible, s.Slot, s.Reason})
}
