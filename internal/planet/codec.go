package planet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrorKind distinguishes the two ways decoding a state can fail.
type ErrorKind int

const (
	// KindParse means the payload is not well-formed JSON.
	KindParse ErrorKind = iota + 1
	// KindUnsupportedVersion means no normalizer is registered for the
	// payload's version tag.
	KindUnsupportedVersion
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindUnsupportedVersion:
		return "unsupported_version"
	default:
		return "unknown"
	}
}

// Error reports a planet state decoding failure.
type Error struct {
	Kind    ErrorKind
	Version any // the offending version tag, when Kind is KindUnsupportedVersion
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindParse:
		return fmt.Sprintf("parse planet state: %v", e.Err)
	case KindUnsupportedVersion:
		if e.Version == nil {
			return "unsupported planet state version: missing"
		}
		return fmt.Sprintf("unsupported planet state version: %v", e.Version)
	default:
		return "planet state error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a planet error, or 0 if err is not one.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// normalizer turns an object tagged with one schema version into a current state.
type normalizer func(obj map[string]any) PlanetState

// normalizers is the migration registry keyed by schema version. Older
// versions register a normalizer that migrates forward.
var normalizers = map[int]normalizer{
	CurrentVersion: func(obj map[string]any) PlanetState { return Normalize(obj) },
}

// Migrate dispatches on the input's version tag. A missing, malformed or
// unregistered version fails with KindUnsupportedVersion; everything else
// is repaired silently.
func Migrate(raw any) (PlanetState, error) {
	obj, ok := object(raw)
	if !ok {
		return PlanetState{}, &Error{Kind: KindUnsupportedVersion}
	}
	tag, present := obj["version"]
	version, ok := integer(tag)
	if !present || !ok {
		return PlanetState{}, &Error{Kind: KindUnsupportedVersion, Version: tag}
	}
	norm, ok := normalizers[int(version)]
	if !ok {
		return PlanetState{}, &Error{Kind: KindUnsupportedVersion, Version: version}
	}
	return norm(obj), nil
}

// Serialize encodes a state as canonical JSON.
func Serialize(s PlanetState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode planet state: %w", err)
	}
	return data, nil
}

// Deserialize parses and migrates a payload produced by Serialize or by an
// older build.
func Deserialize(payload []byte) (PlanetState, error) {
	raw, err := DecodeJSON(payload)
	if err != nil {
		return PlanetState{}, &Error{Kind: KindParse, Err: err}
	}
	return Migrate(raw)
}

// DecodeJSON parses a single JSON value, keeping numbers as json.Number so
// that values outside the float64 range reach normalization as bad leaves
// instead of failing the whole document.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}
