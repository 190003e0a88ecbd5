// Procedural planet generation using 4D sphere-embedded Perlin fBm for
// elevation and opensimplex layers for moisture and temperature. Derives the
// biome map, tectonic plates, rivers and optional settlements, then returns
// a normalized planet state.
package terrain

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/planet-core/internal/config"
	"github.com/talgya/planet-core/internal/noise"
	"github.com/talgya/planet-core/internal/planet"
)

// GenConfig holds planet generation parameters.
type GenConfig struct {
	Seed            int64
	Width           int     // Height field columns (longitude)
	Height          int     // Height field rows (latitude)
	Octaves         int     // fBm octaves, at least 1
	Persistence     float64 // Amplitude falloff per octave
	Lacunarity      float64 // Frequency growth per octave
	Frequency       float64 // Base frequency of the sphere embedding
	AmplitudeMeters float64 // fBm output 1.0 maps to this elevation
	SeaLevel        float64 // Meters; cells below are ocean
	Plates          int
	Rivers          int // Upper bound; fewer are produced on flat worlds
	Settlements     int // Population centers to seed; 0 leaves the planet uninhabited
	PlanetRadiusKm  float64
}

// DefaultGenConfig returns an Earth-sized configuration on the default grid.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:            42,
		Width:           planet.DefaultGridWidth,
		Height:          planet.DefaultGridHeight,
		Octaves:         6,
		Persistence:     0.5,
		Lacunarity:      2.0,
		Frequency:       1.5,
		AmplitudeMeters: 8000,
		SeaLevel:        0,
		Plates:          7,
		Rivers:          12,
		PlanetRadiusKm:  6371,
	}
}

// FromConfig overlays the configured terrain settings on the defaults.
func FromConfig(c config.TerrainConfig) GenConfig {
	g := DefaultGenConfig()
	g.Seed = c.Seed
	g.Width = c.Width
	g.Height = c.Height
	g.Octaves = c.Octaves
	g.Persistence = c.Persistence
	g.Lacunarity = c.Lacunarity
	g.Frequency = c.Frequency
	g.Plates = c.Plates
	g.Rivers = c.Rivers
	return g
}

// Validate reports parameters the generator cannot work with.
func (c GenConfig) Validate() error {
	var errs []error
	if c.Octaves < 1 || c.Octaves > config.MaxOctaves {
		errs = append(errs, fmt.Errorf("octaves must be in [1, %d], got %d", config.MaxOctaves, c.Octaves))
	}
	gridOK := c.Width >= 1 && c.Height >= 1 && c.Width <= planet.MaxGridDimension && c.Height <= planet.MaxGridDimension
	if !gridOK {
		errs = append(errs, fmt.Errorf("grid %dx%d outside [1, %d]", c.Width, c.Height, planet.MaxGridDimension))
	}
	if c.Plates < 0 || c.Plates > config.MaxPlates {
		errs = append(errs, fmt.Errorf("plates must be in [0, %d], got %d", config.MaxPlates, c.Plates))
	}
	if c.Rivers < 0 || c.Settlements < 0 {
		errs = append(errs, errors.New("rivers and settlements must not be negative"))
	} else if gridOK && (c.Rivers > c.Width*c.Height || c.Settlements > c.Width*c.Height) {
		errs = append(errs, fmt.Errorf("rivers and settlements must not exceed the %d grid cells", c.Width*c.Height))
	}
	if !(c.AmplitudeMeters > 0) || !(c.PlanetRadiusKm > 0) {
		errs = append(errs, errors.New("amplitude and planet radius must be positive"))
	}
	if math.IsNaN(c.Frequency) || math.IsNaN(c.SeaLevel) || math.IsNaN(c.Persistence) || math.IsNaN(c.Lacunarity) {
		errs = append(errs, errors.New("noise parameters must be numbers"))
	}
	return errors.Join(errs...)
}

// surface is the per-cell working data shared by the derivation passes.
type surface struct {
	cfg       GenConfig
	grid      grid
	elevation []float64 // meters
	moisture  []float64 // 0–1
	temp      []float64 // 0–1, 0 is polar
}

func (s *surface) ocean(i int) bool {
	return s.elevation[i] < s.cfg.SeaLevel
}

// Generate builds a complete planet state. The same config always yields
// the same state.
func Generate(cfg GenConfig) (planet.PlanetState, error) {
	if err := cfg.Validate(); err != nil {
		return planet.PlanetState{}, fmt.Errorf("invalid terrain config: %w", err)
	}

	s := sampleSurface(cfg)

	state := planet.Default()
	state.Geology.HeightField = planet.HeightField{
		Width:  cfg.Width,
		Height: cfg.Height,
		Unit:   planet.HeightUnit,
		Values: s.elevation,
	}
	state.Geology.Volcanism = s.roughness()

	biomes := s.biomeMap()
	state.Biosphere.BiomeMap = biomes
	state.Biosphere.BiodiversityIndex = biodiversityIndex(biomes.Cells)

	state.Hydrology.OceanCoverage = s.oceanCoverage()
	state.Hydrology.IceCaps = s.iceCaps()

	// Each pass gets its own stream so changing one count leaves the others intact.
	state.Geology.Plates = s.placePlates(rand.New(rand.NewSource(cfg.Seed + 300)))
	seed := cfg.Seed
	state.Hydrology.RiverNetwork = planet.RiverNetwork{
		Seed:   &seed,
		Rivers: s.placeRivers(rand.New(rand.NewSource(cfg.Seed + 100))),
	}
	centers := s.placeSettlements(rand.New(rand.NewSource(cfg.Seed+200)), biomes.Cells, state.Hydrology.RiverNetwork.Rivers)
	state.Civilization.PopulationCenters = centers
	if len(centers) > 0 {
		state.Civilization.TechLevel = planet.TechAgrarian
	}

	return planet.NormalizeState(state), nil
}

func sampleSurface(cfg GenConfig) *surface {
	g := grid{w: cfg.Width, h: cfg.Height}
	n := g.w * g.h
	s := &surface{
		cfg:       cfg,
		grid:      g,
		elevation: make([]float64, n),
		moisture:  make([]float64, n),
		temp:      make([]float64, n),
	}

	elevNoise := noise.NewGenerator(cfg.Seed)
	params := noise.SphereParams{
		Octaves:   noise.Octaves{Count: cfg.Octaves, Persistence: cfg.Persistence, Lacunarity: cfg.Lacunarity},
		Frequency: cfg.Frequency,
	}
	rainNoise := opensimplex.NewNormalized(cfg.Seed + 1)
	tempNoise := opensimplex.New(cfg.Seed + 2)

	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			i := g.index(x, y)
			lat, lon := g.center(x, y)
			ux, uy, uz := noise.LatLonToUnit(lat, lon)

			elev := elevNoise.SampleSphere(ux, uy, uz, params) * cfg.AmplitudeMeters
			s.elevation[i] = elev

			s.moisture[i] = octaveNoise3(rainNoise, ux, uy, uz, 3, 1.8, 0.5)

			// Temperature falls with latitude and with height above sea level.
			t := 1.0 - math.Abs(lat)/90
			if elev > cfg.SeaLevel {
				t -= (elev - cfg.SeaLevel) / cfg.AmplitudeMeters * 0.5
			}
			t += tempNoise.Eval3(ux*2.5, uy*2.5, uz*2.5) * 0.1
			s.temp[i] = clamp01(t)
		}
	}
	return s
}

func (s *surface) oceanCoverage() float64 {
	below := 0
	for i := range s.elevation {
		if s.ocean(i) {
			below++
		}
	}
	return float64(below) / float64(len(s.elevation))
}

// iceCaps is the frozen fraction of each hemisphere.
func (s *surface) iceCaps() planet.IceCaps {
	var north, south, northCells, southCells int
	for y := 0; y < s.grid.h; y++ {
		lat, _ := s.grid.center(0, y)
		for x := 0; x < s.grid.w; x++ {
			frozen := s.temp[s.grid.index(x, y)] < iceTemp
			if lat >= 0 {
				northCells++
				if frozen {
					north++
				}
			} else {
				southCells++
				if frozen {
					south++
				}
			}
		}
	}
	return planet.IceCaps{North: ratio(north, northCells), South: ratio(south, southCells)}
}

// roughness maps the mean slope between horizontal neighbours to a 0–1
// volcanism index.
func (s *surface) roughness() float64 {
	if s.grid.w < 2 {
		return 0
	}
	total := 0.0
	for y := 0; y < s.grid.h; y++ {
		for x := 0; x < s.grid.w; x++ {
			a := s.elevation[s.grid.index(x, y)]
			b := s.elevation[s.grid.index((x+1)%s.grid.w, y)]
			total += math.Abs(a - b)
		}
	}
	mean := total / float64(s.grid.w*s.grid.h) / s.cfg.AmplitudeMeters
	return clamp01(mean * 4)
}

// octaveNoise3 generates fractal noise by layering multiple frequencies, in
// [0, 1] for a normalized source.
func octaveNoise3(n opensimplex.Noise, x, y, z float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += n.Eval3(x*frequency, y*frequency, z*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
