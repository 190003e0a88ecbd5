package saves

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failures the save layer reports.
type Kind int

const (
	// KindSlotEmpty: nothing is stored in the slot.
	KindSlotEmpty Kind = iota + 1
	// KindCorrupted: the payload is structurally broken.
	KindCorrupted
	// KindUnsupportedVersion: the save format version is unknown to this build.
	KindUnsupportedVersion
	// KindIncompatible: the payload is well formed but carries a planet state
	// this build cannot read.
	KindIncompatible
	// KindInvalidSlot: the caller passed a slot index outside [0, SlotCount).
	// This is a contract violation, not a data error.
	KindInvalidSlot
)

func (k Kind) String() string {
	switch k {
	case KindSlotEmpty:
		return "slot_empty"
	case KindCorrupted:
		return "corrupted"
	case KindUnsupportedVersion:
		return "unsupported_version"
	case KindIncompatible:
		return "incompatible"
	case KindInvalidSlot:
		return "invalid_slot"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks.
var (
	ErrSlotEmpty          = &Error{Kind: KindSlotEmpty, Slot: -1}
	ErrCorrupted          = &Error{Kind: KindCorrupted, Slot: -1}
	ErrUnsupportedVersion = &Error{Kind: KindUnsupportedVersion, Slot: -1}
	ErrIncompatible       = &Error{Kind: KindIncompatible, Slot: -1}
	ErrInvalidSlot        = &Error{Kind: KindInvalidSlot, Slot: -1}
)

// Error is a classified save failure. Slot is -1 when no slot is involved.
type Error struct {
	Kind   Kind
	Slot   int
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Slot >= 0 {
		msg = fmt.Sprintf("slot %d: %s", e.Slot, msg)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrCorrupted)
// works regardless of slot or reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the save error kind carried by err, or 0.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func corrupted(slot int, format string, args ...any) *Error {
	return &Error{Kind: KindCorrupted, Slot: slot, Reason: fmt.Sprintf(format, args...)}
}

// InvalidSlot reports a slot index outside [0, SlotCount).
func InvalidSlot(slot int) error {
	return &Error{Kind: KindInvalidSlot, Slot: -1, Reason: fmt.Sprintf("slot %d outside [0, %d)", slot, SlotCount)}
}

// SlotEmpty reports that nothing is stored in slot.
func SlotEmpty(slot int) error {
	return &Error{Kind: KindSlotEmpty, Slot: slot}
}
