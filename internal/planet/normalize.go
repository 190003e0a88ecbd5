package planet

import (
	"encoding/json"
	"math"
	"reflect"
)

// Normalize coerces arbitrary decoded JSON into a valid current-version
// state. It never fails: malformed sections fall back to their defaults,
// out-of-range leaves are clamped and list entries without an id are dropped.
// The input's version tag is ignored; use Migrate to honor it.
func Normalize(raw any) PlanetState {
	obj, ok := object(raw)
	if !ok {
		return Default()
	}
	return PlanetState{
		Version:      CurrentVersion,
		Atmosphere:   normalizeAtmosphere(obj["atmosphere"]),
		Geology:      normalizeGeology(obj["geology"]),
		Hydrology:    normalizeHydrology(obj["hydrology"]),
		Biosphere:    normalizeBiosphere(obj["biosphere"]),
		Civilization: normalizeCivilization(obj["civilization"]),
		Climate:      normalizeClimate(obj["climate"]),
	}
}

// NormalizeState re-validates a typed state, e.g. one built by a generator or
// decoded from a request body.
func NormalizeState(s PlanetState) PlanetState {
	data, err := json.Marshal(s)
	if err != nil {
		// Only non-finite floats fail to encode.
		data, err = json.Marshal(withoutNonFinite(s))
		if err != nil {
			return Default()
		}
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Default()
	}
	return Normalize(raw)
}

func normalizeAtmosphere(v any) Atmosphere {
	obj, ok := object(v)
	if !ok {
		return defaultAtmosphere()
	}

	composition := make([]GasComponent, 0)
	total := 0.0
	for _, entry := range list(obj["composition"]) {
		e, ok := object(entry)
		if !ok {
			continue
		}
		gas := nonEmptyStringOr(e["gas"], "")
		if gas == "" {
			continue
		}
		pct := percentRule(e["percentage"])
		total += pct
		composition = append(composition, GasComponent{Gas: gas, Percentage: pct})
	}
	if len(composition) == 0 || total <= 0 {
		composition = defaultComposition()
	}

	return Atmosphere{
		Composition:           composition,
		SurfacePressureKPa:    finiteRule(defaultSurfacePressureKPa)(obj["surfacePressure"]),
		GreenhouseCoefficient: finiteRule(defaultGreenhouseCoefficient)(obj["greenhouseCoefficient"]),
	}
}

func normalizeGeology(v any) Geology {
	obj, ok := object(v)
	if !ok {
		return defaultGeology()
	}

	plates := make([]TectonicPlate, 0)
	for _, entry := range list(obj["plates"]) {
		e, ok := object(entry)
		if !ok {
			continue
		}
		id := nonEmptyStringOr(e["id"], "")
		if id == "" {
			continue
		}
		plates = append(plates, TectonicPlate{
			ID:                 id,
			Name:               nonEmptyStringOr(e["name"], id),
			Type:               oneOf(e["type"], plateTypes, PlateContinental),
			AreaFraction:       unitRule(e["area"]),
			DriftRateCmPerYear: driftRule(e["driftRate"]),
		})
	}

	return Geology{
		Plates:      plates,
		HeightField: normalizeHeightField(obj["heightField"]),
		Volcanism:   unitRule(obj["volcanism"]),
	}
}

func normalizeHeightField(v any) HeightField {
	obj, ok := object(v)
	if !ok {
		return defaultHeightField()
	}

	hf := NewHeightField(
		gridDimension(obj["width"], DefaultGridWidth),
		gridDimension(obj["height"], DefaultGridHeight),
	)
	// Extra samples are dropped; missing ones stay zero.
	for i, raw := range list(obj["values"]) {
		if i >= len(hf.Values) {
			break
		}
		hf.Values[i] = heightRule(raw)
	}
	return hf
}

func normalizeHydrology(v any) Hydrology {
	obj, ok := object(v)
	if !ok {
		return defaultHydrology()
	}
	return Hydrology{
		OceanCoverage: unitRule(obj["oceanCoverage"]),
		RiverNetwork:  normalizeRiverNetwork(obj["riverNetwork"]),
		IceCaps:       normalizeIceCaps(obj["iceCaps"]),
	}
}

func normalizeRiverNetwork(v any) RiverNetwork {
	obj, ok := object(v)
	if !ok {
		return defaultRiverNetwork()
	}

	network := RiverNetwork{Rivers: make([]River, 0)}
	if seed, ok := integer(obj["seed"]); ok {
		network.Seed = &seed
	}
	for _, entry := range list(obj["rivers"]) {
		e, ok := object(entry)
		if !ok {
			continue
		}
		id := nonEmptyStringOr(e["id"], "")
		if id == "" {
			continue
		}
		network.Rivers = append(network.Rivers, River{
			ID:       id,
			Name:     nonEmptyStringOr(e["name"], id),
			LengthKm: lengthRule(e["lengthKm"]),
			Source:   normalizeCoordinates(e["source"]),
			Mouth:    normalizeCoordinates(e["mouth"]),
		})
	}
	return network
}

func normalizeIceCaps(v any) IceCaps {
	obj, ok := object(v)
	if !ok {
		return defaultIceCaps()
	}
	return IceCaps{
		North: unitRule(obj["north"]),
		South: unitRule(obj["south"]),
	}
}

func normalizeCoordinates(v any) Coordinates {
	obj, ok := object(v)
	if !ok {
		return Coordinates{}
	}
	return Coordinates{
		Latitude:  latitudeRule(obj["latitude"]),
		Longitude: longitudeRule(obj["longitude"]),
	}
}

func normalizeBiosphere(v any) Biosphere {
	obj, ok := object(v)
	if !ok {
		return defaultBiosphere()
	}
	return Biosphere{
		BiomeMap:          normalizeBiomeMap(obj["biomeMap"]),
		BiodiversityIndex: unitRule(obj["biodiversityIndex"]),
	}
}

func normalizeBiomeMap(v any) BiomeMap {
	obj, ok := object(v)
	if !ok {
		return NewBiomeMap(DefaultGridWidth, DefaultGridHeight)
	}

	bm := NewBiomeMap(
		gridDimension(obj["width"], DefaultGridWidth),
		gridDimension(obj["height"], DefaultGridHeight),
	)
	for i, raw := range list(obj["cells"]) {
		if i >= len(bm.Cells) {
			break
		}
		cell, ok := object(raw)
		if !ok {
			continue
		}
		bm.Cells[i] = BiomeCell{
			Biome:        nonEmptyStringOr(cell["biome"], defaultBiome),
			Biodiversity: unitRule(cell["biodiversity"]),
		}
	}
	return bm
}

func normalizeCivilization(v any) Civilization {
	obj, ok := object(v)
	if !ok {
		return defaultCivilization()
	}

	centers := make([]PopulationCenter, 0)
	for _, entry := range list(obj["populationCenters"]) {
		e, ok := object(entry)
		if !ok {
			continue
		}
		id := nonEmptyStringOr(e["id"], "")
		if id == "" {
			continue
		}
		centers = append(centers, PopulationCenter{
			ID:          id,
			Name:        nonEmptyStringOr(e["name"], id),
			Population:  population(e["population"]),
			Kind:        oneOf(e["kind"], settlementKinds, KindOutpost),
			Coordinates: normalizeCoordinates(e["coordinates"]),
		})
	}

	return Civilization{
		PopulationCenters: centers,
		TechLevel:         oneOf(obj["techLevel"], techLevels, TechNone),
		PollutionIndex:    unitRule(obj["pollutionIndex"]),
	}
}

// population floors to a whole head count in [0, maxSafeInteger].
func population(v any) int64 {
	f, ok := number(v)
	if !ok || f <= 0 {
		return 0
	}
	return int64(clamp(f, 0, maxSafeInteger))
}

func normalizeClimate(v any) Climate {
	obj, ok := object(v)
	if !ok {
		return defaultClimate()
	}
	return Climate{
		AxialTiltDeg:         clampRule(0, 90, defaultAxialTilt)(obj["axialTilt"]),
		Albedo:               clampRule(0, 1, defaultAlbedo)(obj["albedo"]),
		GreenhouseMultiplier: atLeastRule(0, defaultGreenhouseMultiplier)(obj["greenhouseMultiplier"]),
		CurrentTime:          atLeastRule(0, 0)(obj["currentTime"]),
		YearLength:           atLeastRule(1, defaultYearLength)(obj["yearLength"]),
	}
}

// withoutNonFinite returns a deep copy of s with NaN and ±Inf replaced by zero.
func withoutNonFinite(s PlanetState) PlanetState {
	out := reflect.New(reflect.TypeOf(s)).Elem()
	copyFinite(out, reflect.ValueOf(s))
	return out.Interface().(PlanetState)
}

func copyFinite(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Float32, reflect.Float64:
		f := src.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			f = 0
		}
		dst.SetFloat(f)
	case reflect.Struct:
		for i := 0; i < src.NumField(); i++ {
			copyFinite(dst.Field(i), src.Field(i))
		}
	case reflect.Slice:
		if src.IsNil() {
			return
		}
		dst.Set(reflect.MakeSlice(src.Type(), src.Len(), src.Len()))
		for i := 0; i < src.Len(); i++ {
			copyFinite(dst.Index(i), src.Index(i))
		}
	case reflect.Pointer:
		if src.IsNil() {
			return
		}
		dst.Set(reflect.New(src.Type().Elem()))
		copyFinite(dst.Elem(), src.Elem())
	default:
		dst.Set(src)
	}
}
