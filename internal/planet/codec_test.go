package planet

import (
	"errors"
	"reflect"
	"testing"
)

func sampleState(t *testing.T) PlanetState {
	t.Helper()
	return Normalize(decode(t, `{
		"version": 1,
		"atmosphere": {"composition": [{"gas": "CO2", "percentage": 95.3}, {"gas": "N2", "percentage": 2.7}], "surfacePressure": 0.636, "greenhouseCoefficient": 0.1},
		"geology": {
			"plates": [{"id": "tharsis", "name": "Tharsis", "type": "continental", "area": 0.25, "driftRate": 0.1}],
			"heightField": {"width": 3, "height": 2, "values": [-120.5, 0, 3.25, 8848.86, -10994, 1e-7]},
			"volcanism": 0.42
		},
		"hydrology": {
			"oceanCoverage": 0.1,
			"riverNetwork": {"seed": -77, "rivers": [{"id": "r1", "name": "Ares", "lengthKm": 1234.5, "source": {"latitude": 12.5, "longitude": -40}, "mouth": {"latitude": -3, "longitude": 170.25}}]},
			"iceCaps": {"north": 0.3, "south": 0.45}
		},
		"biosphere": {"biomeMap": {"width": 3, "height": 2, "cells": [{"biome": "desert", "biodiversity": 0.05}, {"biome": "ice", "biodiversity": 0}]}, "biodiversityIndex": 0.02},
		"civilization": {"populationCenters": [{"id": "base", "name": "Base One", "population": 42, "kind": "outpost", "coordinates": {"latitude": -14.5, "longitude": 175.4}}], "techLevel": "spacefaring", "pollutionIndex": 0.01},
		"climate": {"axialTilt": 25.19, "albedo": 0.25, "greenhouseMultiplier": 0.3, "currentTime": 12.75, "yearLength": 687}
	}`))
}

func TestRoundTrip(t *testing.T) {
	for name, s := range map[string]PlanetState{
		"default":    Default(),
		"normalized": sampleState(t),
		"garbage":    Normalize(decode(t, `{"climate": {"albedo": 5}, "geology": {"heightField": {"width": 2, "height": 2, "values": [1, "a"]}}}`)),
	} {
		t.Run(name, func(t *testing.T) {
			data, err := Serialize(s)
			if err != nil {
				t.Fatalf("serialize: %v", err)
			}
			got, err := Deserialize(data)
			if err != nil {
				t.Fatalf("deserialize: %v", err)
			}
			if !reflect.DeepEqual(got, s) {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, s)
			}

			again, err := Serialize(got)
			if err != nil {
				t.Fatalf("re-serialize: %v", err)
			}
			if string(again) != string(data) {
				t.Fatalf("serialization is not canonical")
			}
		})
	}
}

func TestDeserialize_FutureVersion(t *testing.T) {
	_, err := Deserialize([]byte(`{"version": 2, "climate": {}}`))
	if KindOf(err) != KindUnsupportedVersion {
		t.Fatalf("err = %v, want unsupported version", err)
	}
	var pe *Error
	if !errors.As(err, &pe) || pe.Version != int64(2) {
		t.Fatalf("error does not carry the version: %#v", err)
	}
}

func TestDeserialize_MissingOrMalformedVersion(t *testing.T) {
	for _, payload := range []string{`{}`, `{"version": "1"}`, `{"version": 1.5}`, `[1]`, `null`} {
		_, err := Deserialize([]byte(payload))
		if KindOf(err) != KindUnsupportedVersion {
			t.Fatalf("%s: err = %v, want unsupported version", payload, err)
		}
	}
}

func TestDeserialize_ParseError(t *testing.T) {
	_, err := Deserialize([]byte(`{"version": 1,`))
	if KindOf(err) != KindParse {
		t.Fatalf("err = %v, want parse error", err)
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("parse error does not wrap the decoder error")
	}
}

func TestMigrate_CurrentVersionNormalizes(t *testing.T) {
	s, err := Migrate(decode(t, `{"version": 1, "climate": {"albedo": 5}}`))
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if s.Climate.Albedo != 1 || s.Version != CurrentVersion {
		t.Fatalf("state not normalized: %+v", s.Climate)
	}
}

func TestDeserialize_OutOfRangeNumberIsDefaulted(t *testing.T) {
	s, err := Deserialize([]byte(`{"version": 1, "climate": {"albedo": 1e400, "axialTilt": -1e999}}`))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	want := Default().Climate
	if s.Climate.Albedo != want.Albedo {
		t.Errorf("albedo = %v, want default %v", s.Climate.Albedo, want.Albedo)
	}
	if s.Climate.AxialTiltDeg != want.AxialTiltDeg {
		t.Errorf("axial tilt = %v, want default %v", s.Climate.AxialTiltDeg, want.AxialTiltDeg)
	}
}

func TestDeserialize_TrailingData(t *testing.T) {
	if _, err := Deserialize([]byte(`{"version": 1} {}`)); KindOf(err) != KindParse {
		t.Fatalf("err = %v, want parse error", err)
	}
}
