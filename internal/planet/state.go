// Package planet defines the versioned planet state aggregate together with
// its default construction, normalization of untrusted input, migration and
// JSON (de)serialization.
package planet

// CurrentVersion is the planet state schema version this build reads and writes.
const CurrentVersion = 1

// Grid bounds shared by the height field and the biome map.
const (
	DefaultGridWidth  = 64
	DefaultGridHeight = 32
	MaxGridDimension  = 2048
)

// HeightUnit is the only unit a height field is stored in.
const HeightUnit = "meters"

// PlanetState is the root aggregate handed between the UI layer, the
// generator and the save slot store. It is replaced wholesale, never patched.
type PlanetState struct {
	Version      int          `json:"version"`
	Atmosphere   Atmosphere   `json:"atmosphere"`
	Geology      Geology      `json:"geology"`
	Hydrology    Hydrology    `json:"hydrology"`
	Biosphere    Biosphere    `json:"biosphere"`
	Civilization Civilization `json:"civilization"`
	Climate      Climate      `json:"climate"`
}

// GasComponent is one entry of the atmospheric mix.
type GasComponent struct {
	Gas        string  `json:"gas"`
	Percentage float64 `json:"percentage"` // 0–100
}

type Atmosphere struct {
	Composition           []GasComponent `json:"composition"`
	SurfacePressureKPa    float64        `json:"surfacePressure"`
	GreenhouseCoefficient float64        `json:"greenhouseCoefficient"`
}

// PlateType classifies a tectonic plate.
type PlateType string

const (
	PlateContinental PlateType = "continental"
	PlateOceanic     PlateType = "oceanic"
)

var plateTypes = []PlateType{PlateContinental, PlateOceanic}

type TectonicPlate struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Type               PlateType `json:"type"`
	AreaFraction       float64   `json:"area"`      // 0–1
	DriftRateCmPerYear float64   `json:"driftRate"` // cm/yr
}

// HeightField is a row-major grid of elevation samples.
// len(Values) == Width*Height always holds for a normalized state.
type HeightField struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Unit   string    `json:"unit"`
	Values []float64 `json:"values"`
}

// At returns the sample at column x, row y.
func (h HeightField) At(x, y int) float64 {
	return h.Values[y*h.Width+x]
}

type Geology struct {
	Plates      []TectonicPlate `json:"plates"`
	HeightField HeightField     `json:"heightField"`
	Volcanism   float64         `json:"volcanism"` // 0–1
}

// Coordinates are geographic degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // -90–90
	Longitude float64 `json:"longitude"` // -180–180
}

type River struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	LengthKm float64     `json:"lengthKm"`
	Source   Coordinates `json:"source"`
	Mouth    Coordinates `json:"mouth"`
}

type RiverNetwork struct {
	Seed   *int64  `json:"seed,omitempty"`
	Rivers []River `json:"rivers"`
}

type IceCaps struct {
	North float64 `json:"north"` // 0–1
	South float64 `json:"south"` // 0–1
}

type Hydrology struct {
	OceanCoverage float64      `json:"oceanCoverage"` // 0–1
	RiverNetwork  RiverNetwork `json:"riverNetwork"`
	IceCaps       IceCaps      `json:"iceCaps"`
}

type BiomeCell struct {
	Biome        string  `json:"biome"`
	Biodiversity float64 `json:"biodiversity"` // 0–1
}

// BiomeMap is a row-major grid of biome cells.
// len(Cells) == Width*Height always holds for a normalized state.
type BiomeMap struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Cells  []BiomeCell `json:"cells"`
}

type Biosphere struct {
	BiomeMap          BiomeMap `json:"biomeMap"`
	BiodiversityIndex float64  `json:"biodiversityIndex"` // 0–1
}

// SettlementKind sizes a population center.
type SettlementKind string

const (
	KindOutpost    SettlementKind = "outpost"
	KindSettlement SettlementKind = "settlement"
	KindCity       SettlementKind = "city"
)

var settlementKinds = []SettlementKind{KindOutpost, KindSettlement, KindCity}

type PopulationCenter struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Population  int64          `json:"population"`
	Kind        SettlementKind `json:"kind"`
	Coordinates Coordinates    `json:"coordinates"`
}

// TechLevel is the civilization's technological stage.
type TechLevel string

const (
	TechNone        TechLevel = "none"
	TechTribal      TechLevel = "tribal"
	TechAgrarian    TechLevel = "agrarian"
	TechIndustrial  TechLevel = "industrial"
	TechDigital     TechLevel = "digital"
	TechSpacefaring TechLevel = "spacefaring"
)

var techLevels = []TechLevel{TechNone, TechTribal, TechAgrarian, TechIndustrial, TechDigital, TechSpacefaring}

type Civilization struct {
	PopulationCenters []PopulationCenter `json:"populationCenters"`
	TechLevel         TechLevel          `json:"techLevel"`
	PollutionIndex    float64            `json:"pollutionIndex"` // 0–1
}

type Climate struct {
	AxialTiltDeg         float64 `json:"axialTilt"`            // 0–90
	Albedo               float64 `json:"albedo"`               // 0–1
	GreenhouseMultiplier float64 `json:"greenhouseMultiplier"` // >= 0
	CurrentTime          float64 `json:"currentTime"`          // >= 0
	YearLength           float64 `json:"yearLength"`           // >= 1
}
