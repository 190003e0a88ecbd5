package planet

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return raw
}

func checkGrids(t *testing.T, s PlanetState) {
	t.Helper()
	hf := s.Geology.HeightField
	if len(hf.Values) != hf.Width*hf.Height {
		t.Fatalf("height field %dx%d has %d values", hf.Width, hf.Height, len(hf.Values))
	}
	if hf.Unit != HeightUnit {
		t.Fatalf("height field unit = %q", hf.Unit)
	}
	bm := s.Biosphere.BiomeMap
	if len(bm.Cells) != bm.Width*bm.Height {
		t.Fatalf("biome map %dx%d has %d cells", bm.Width, bm.Height, len(bm.Cells))
	}
	for i, c := range bm.Cells {
		if c.Biome == "" {
			t.Fatalf("cell %d has empty biome", i)
		}
	}
}

func TestDefault_IsValid(t *testing.T) {
	s := Default()
	if s.Version != CurrentVersion {
		t.Fatalf("version = %d", s.Version)
	}
	checkGrids(t, s)
	if s.Geology.HeightField.Width != 64 || s.Geology.HeightField.Height != 32 {
		t.Fatalf("default height field is %dx%d", s.Geology.HeightField.Width, s.Geology.HeightField.Height)
	}
	if len(s.Atmosphere.Composition) == 0 {
		t.Fatalf("default atmosphere has no gases")
	}
	if len(s.Civilization.PopulationCenters) != 0 || s.Civilization.TechLevel != TechNone {
		t.Fatalf("default civilization not empty: %+v", s.Civilization)
	}
	if !reflect.DeepEqual(Normalize(decode(t, mustJSON(t, s))), s) {
		t.Fatalf("default state is not a fixed point of Normalize")
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestNormalize_NonObjectInput(t *testing.T) {
	for _, raw := range []any{nil, "planet", 3.0, []any{1.0}, true} {
		if got := Normalize(raw); !reflect.DeepEqual(got, Default()) {
			t.Fatalf("Normalize(%v) did not return the default state", raw)
		}
	}
}

func TestNormalize_Clamping(t *testing.T) {
	s := Normalize(decode(t, `{
		"climate": {"albedo": 5, "axialTilt": 120, "greenhouseMultiplier": -2, "currentTime": -10, "yearLength": 0.2},
		"hydrology": {"oceanCoverage": -3, "iceCaps": {"north": 2, "south": -1}},
		"civilization": {"techLevel": "galactic", "pollutionIndex": 9},
		"geology": {"volcanism": -0.5}
	}`))

	if s.Climate.Albedo != 1 {
		t.Fatalf("albedo = %v, want 1", s.Climate.Albedo)
	}
	if s.Climate.AxialTiltDeg != 90 {
		t.Fatalf("axial tilt = %v, want 90", s.Climate.AxialTiltDeg)
	}
	if s.Climate.GreenhouseMultiplier != 0 || s.Climate.CurrentTime != 0 || s.Climate.YearLength != 1 {
		t.Fatalf("climate lower bounds not applied: %+v", s.Climate)
	}
	if s.Hydrology.OceanCoverage != 0 {
		t.Fatalf("ocean coverage = %v, want 0", s.Hydrology.OceanCoverage)
	}
	if s.Hydrology.IceCaps.North != 1 || s.Hydrology.IceCaps.South != 0 {
		t.Fatalf("ice caps = %+v", s.Hydrology.IceCaps)
	}
	if s.Civilization.TechLevel != TechNone {
		t.Fatalf("tech level = %q, want none", s.Civilization.TechLevel)
	}
	if s.Civilization.PollutionIndex != 1 || s.Geology.Volcanism != 0 {
		t.Fatalf("unit fields not clamped: pollution=%v volcanism=%v", s.Civilization.PollutionIndex, s.Geology.Volcanism)
	}
}

func TestNormalize_SectionDefaulting(t *testing.T) {
	s := Normalize(decode(t, `{"atmosphere": "thin", "climate": [1,2], "geology": null}`))
	if !reflect.DeepEqual(s.Atmosphere, defaultAtmosphere()) {
		t.Fatalf("atmosphere not defaulted: %+v", s.Atmosphere)
	}
	if s.Climate != defaultClimate() {
		t.Fatalf("climate not defaulted: %+v", s.Climate)
	}
	if !reflect.DeepEqual(s.Geology, defaultGeology()) {
		t.Fatalf("geology not defaulted")
	}
}

func TestNormalize_WrongTypedLeavesUseFieldDefaults(t *testing.T) {
	s := Normalize(decode(t, `{
		"climate": {"albedo": "bright", "yearLength": null},
		"atmosphere": {"composition": [{"gas": "CO2", "percentage": 96}], "surfacePressure": "high", "greenhouseCoefficient": false}
	}`))
	if s.Climate.Albedo != defaultAlbedo || s.Climate.YearLength != defaultYearLength {
		t.Fatalf("climate defaults not applied: %+v", s.Climate)
	}
	if s.Atmosphere.SurfacePressureKPa != defaultSurfacePressureKPa || s.Atmosphere.GreenhouseCoefficient != defaultGreenhouseCoefficient {
		t.Fatalf("atmosphere defaults not applied: %+v", s.Atmosphere)
	}
	if len(s.Atmosphere.Composition) != 1 || s.Atmosphere.Composition[0].Gas != "CO2" {
		t.Fatalf("composition = %+v", s.Atmosphere.Composition)
	}
}

func TestNormalize_UnconstrainedReals(t *testing.T) {
	s := Normalize(decode(t, `{
		"atmosphere": {"composition": [{"gas": "H2", "percentage": 150}], "surfacePressure": -4.5, "greenhouseCoefficient": 12.5},
		"geology": {"plates": [{"id": "p1", "driftRate": -7.25}]}
	}`))
	if s.Atmosphere.SurfacePressureKPa != -4.5 || s.Atmosphere.GreenhouseCoefficient != 12.5 {
		t.Fatalf("unconstrained reals were altered: %+v", s.Atmosphere)
	}
	if s.Atmosphere.Composition[0].Percentage != 100 {
		t.Fatalf("percentage = %v, want 100", s.Atmosphere.Composition[0].Percentage)
	}
	if s.Geology.Plates[0].DriftRateCmPerYear != -7.25 {
		t.Fatalf("drift rate = %v", s.Geology.Plates[0].DriftRateCmPerYear)
	}
}

func TestNormalize_DegenerateAtmosphereFallsBack(t *testing.T) {
	for _, in := range []string{
		`{"atmosphere": {"composition": []}}`,
		`{"atmosphere": {"composition": [{"gas": "", "percentage": 50}, {"percentage": 20}]}}`,
		`{"atmosphere": {"composition": [{"gas": "N2", "percentage": 0}, {"gas": "O2", "percentage": -5}]}}`,
		`{"atmosphere": {"composition": "air"}}`,
	} {
		s := Normalize(decode(t, in))
		if !reflect.DeepEqual(s.Atmosphere.Composition, defaultComposition()) {
			t.Fatalf("%s: composition = %+v", in, s.Atmosphere.Composition)
		}
	}
}

func TestNormalize_GridInvariant(t *testing.T) {
	cases := []struct {
		name  string
		input string
		w, h  int
	}{
		{"empty arrays", `{"geology": {"heightField": {"width": 4, "height": 3, "values": []}}, "biosphere": {"biomeMap": {"width": 4, "height": 3, "cells": []}}}`, 4, 3},
		{"oversized arrays", `{"geology": {"heightField": {"width": 2, "height": 2, "values": [1,2,3,4,5,6,7]}}, "biosphere": {"biomeMap": {"width": 2, "height": 2, "cells": [{"biome":"a"},{"biome":"b"},{"biome":"c"},{"biome":"d"},{"biome":"e"}]}}}`, 2, 2},
		{"missing dimensions", `{"geology": {"heightField": {"values": [1,2,3]}}, "biosphere": {"biomeMap": {"cells": [{"biome":"a"}]}}}`, DefaultGridWidth, DefaultGridHeight},
		{"bad dimensions", `{"geology": {"heightField": {"width": -3, "height": 2.5, "values": [1]}}, "biosphere": {"biomeMap": {"width": "10", "height": 1e9}}}`, DefaultGridWidth, DefaultGridHeight},
		{"missing grids", `{"geology": {}, "biosphere": {}}`, DefaultGridWidth, DefaultGridHeight},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Normalize(decode(t, tc.input))
			checkGrids(t, s)
			if s.Geology.HeightField.Width != tc.w || s.Geology.HeightField.Height != tc.h {
				t.Fatalf("height field is %dx%d, want %dx%d", s.Geology.HeightField.Width, s.Geology.HeightField.Height, tc.w, tc.h)
			}
			if s.Biosphere.BiomeMap.Width != tc.w || s.Biosphere.BiomeMap.Height != tc.h {
				t.Fatalf("biome map is %dx%d, want %dx%d", s.Biosphere.BiomeMap.Width, s.Biosphere.BiomeMap.Height, tc.w, tc.h)
			}
		})
	}
}

func TestNormalize_HeightFieldPadAndTruncate(t *testing.T) {
	s := Normalize(decode(t, `{"geology": {"heightField": {"width": 3, "height": 1, "unit": "feet", "values": [5, "x", 7.5, 9]}}}`))
	want := []float64{5, 0, 7.5}
	if !reflect.DeepEqual(s.Geology.HeightField.Values, want) {
		t.Fatalf("values = %v, want %v", s.Geology.HeightField.Values, want)
	}
	if s.Geology.HeightField.Unit != HeightUnit {
		t.Fatalf("unit = %q", s.Geology.HeightField.Unit)
	}

	s = Normalize(decode(t, `{"geology": {"heightField": {"width": 2, "height": 2, "values": [1]}}}`))
	if !reflect.DeepEqual(s.Geology.HeightField.Values, []float64{1, 0, 0, 0}) {
		t.Fatalf("values = %v", s.Geology.HeightField.Values)
	}
}

func TestNormalize_BiomeCells(t *testing.T) {
	s := Normalize(decode(t, `{"biosphere": {"biodiversityIndex": 3, "biomeMap": {"width": 3, "height": 1, "cells": [
		{"biome": "forest", "biodiversity": 0.8},
		{"biome": "", "biodiversity": 2},
		"junk"
	]}}}`))
	cells := s.Biosphere.BiomeMap.Cells
	if cells[0] != (BiomeCell{Biome: "forest", Biodiversity: 0.8}) {
		t.Fatalf("cell 0 = %+v", cells[0])
	}
	if cells[1] != (BiomeCell{Biome: defaultBiome, Biodiversity: 1}) {
		t.Fatalf("cell 1 = %+v", cells[1])
	}
	if cells[2] != defaultBiomeCell() {
		t.Fatalf("cell 2 = %+v", cells[2])
	}
	if s.Biosphere.BiodiversityIndex != 1 {
		t.Fatalf("biodiversity index = %v", s.Biosphere.BiodiversityIndex)
	}
}

func TestNormalize_DropsEntriesWithoutID(t *testing.T) {
	s := Normalize(decode(t, `{
		"geology": {"plates": [
			{"id": "p1", "name": "Pacifica", "type": "oceanic", "area": 1.7, "driftRate": 4},
			{"name": "nameless"},
			{"id": "", "type": "oceanic"},
			{"id": "p2", "type": "mantle"},
			17
		]},
		"hydrology": {"riverNetwork": {"seed": 9, "rivers": [
			{"id": "r1", "name": "Long", "lengthKm": -4, "source": {"latitude": 120, "longitude": -200}, "mouth": "sea"},
			{"id": 5, "name": "numeric id"}
		]}},
		"civilization": {"populationCenters": [
			{"id": "c1", "name": "Capital", "population": 1234.9, "kind": "city", "coordinates": {"latitude": 10, "longitude": 20}},
			{"id": "c2", "population": -50, "kind": "megacity"},
			{"name": "ghost town", "population": 10}
		], "techLevel": "digital"}
	}`))

	plates := s.Geology.Plates
	if len(plates) != 2 {
		t.Fatalf("plates = %+v", plates)
	}
	if plates[0] != (TectonicPlate{ID: "p1", Name: "Pacifica", Type: PlateOceanic, AreaFraction: 1, DriftRateCmPerYear: 4}) {
		t.Fatalf("plate 0 = %+v", plates[0])
	}
	if plates[1].Type != PlateContinental || plates[1].Name != "p2" {
		t.Fatalf("plate 1 = %+v", plates[1])
	}

	network := s.Hydrology.RiverNetwork
	if network.Seed == nil || *network.Seed != 9 {
		t.Fatalf("river seed = %v", network.Seed)
	}
	if len(network.Rivers) != 1 {
		t.Fatalf("rivers = %+v", network.Rivers)
	}
	r := network.Rivers[0]
	if r.LengthKm != 0 || r.Source != (Coordinates{Latitude: 90, Longitude: -180}) || r.Mouth != (Coordinates{}) {
		t.Fatalf("river = %+v", r)
	}

	centers := s.Civilization.PopulationCenters
	if len(centers) != 2 {
		t.Fatalf("centers = %+v", centers)
	}
	if centers[0].Population != 1234 || centers[0].Kind != KindCity {
		t.Fatalf("center 0 = %+v", centers[0])
	}
	if centers[1].Population != 0 || centers[1].Kind != KindOutpost || centers[1].Name != "c2" {
		t.Fatalf("center 1 = %+v", centers[1])
	}
	if s.Civilization.TechLevel != TechDigital {
		t.Fatalf("tech level = %q", s.Civilization.TechLevel)
	}
}

func TestNormalize_RiverSeedOptional(t *testing.T) {
	s := Normalize(decode(t, `{"hydrology": {"riverNetwork": {"seed": 1.5, "rivers": []}}}`))
	if s.Hydrology.RiverNetwork.Seed != nil {
		t.Fatalf("fractional seed accepted: %v", *s.Hydrology.RiverNetwork.Seed)
	}
}

func TestNormalizeState_ScrubsNonFinite(t *testing.T) {
	s := Default()
	s.Climate.Albedo = math.NaN()
	s.Atmosphere.SurfacePressureKPa = math.Inf(1)
	s.Geology.HeightField.Values[3] = math.Inf(-1)

	got := NormalizeState(s)
	if got.Climate.Albedo != 0 || got.Atmosphere.SurfacePressureKPa != 0 || got.Geology.HeightField.Values[3] != 0 {
		t.Fatalf("non-finite values survived: albedo=%v pressure=%v h=%v",
			got.Climate.Albedo, got.Atmosphere.SurfacePressureKPa, got.Geology.HeightField.Values[3])
	}
	if !math.IsNaN(s.Climate.Albedo) || !math.IsInf(s.Geology.HeightField.Values[3], -1) {
		t.Fatalf("input state was mutated")
	}
	if _, err := Serialize(got); err != nil {
		t.Fatalf("serialize normalized state: %v", err)
	}
}

func TestNormalizeState_Idempotent(t *testing.T) {
	s := Default()
	s.Climate.Albedo = 4
	s.Civilization.PopulationCenters = append(s.Civilization.PopulationCenters, PopulationCenter{ID: "", Name: "dropped"})

	once := NormalizeState(s)
	twice := NormalizeState(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("NormalizeState is not idempotent")
	}
	if once.Climate.Albedo != 1 || len(once.Civilization.PopulationCenters) != 0 {
		t.Fatalf("normalization not applied: %+v", once.Climate)
	}
}
