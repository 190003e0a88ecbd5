package terrain

import "github.com/talgya/planet-core/internal/planet"

// Biome names written into the biome map.
const (
	BiomeOcean           = "ocean"
	BiomeIce             = "ice"
	BiomeTundra          = "tundra"
	BiomeTaiga           = "taiga"
	BiomeTemperateForest = "temperate_forest"
	BiomeGrassland       = "grassland"
	BiomeDesert          = "desert"
	BiomeSavanna         = "savanna"
	BiomeRainforest      = "rainforest"
	BiomeMountain        = "mountain"
)

// Cells colder than this freeze over, on land or sea.
const iceTemp = 0.12

// mountainLine is the share of the amplitude above sea level where land
// becomes mountain.
const mountainLine = 0.45

var biomeDiversity = map[string]float64{
	BiomeOcean:           0.5,
	BiomeIce:             0.02,
	BiomeTundra:          0.15,
	BiomeTaiga:           0.4,
	BiomeTemperateForest: 0.7,
	BiomeGrassland:       0.5,
	BiomeDesert:          0.1,
	BiomeSavanna:         0.55,
	BiomeRainforest:      0.95,
	BiomeMountain:        0.25,
}

// classify determines the biome from environmental parameters.
func classify(elevAboveSea, amplitude, moisture, temp float64) string {
	if temp < iceTemp {
		return BiomeIce
	}
	if elevAboveSea < 0 {
		return BiomeOcean
	}
	if elevAboveSea > amplitude*mountainLine {
		return BiomeMountain
	}
	switch {
	case temp < 0.3:
		return BiomeTundra
	case temp < 0.45:
		if moisture < 0.35 {
			return BiomeGrassland
		}
		return BiomeTaiga
	case temp < 0.7:
		if moisture < 0.3 {
			return BiomeDesert
		}
		if moisture < 0.55 {
			return BiomeGrassland
		}
		return BiomeTemperateForest
	default:
		if moisture < 0.3 {
			return BiomeDesert
		}
		if moisture < 0.55 {
			return BiomeSavanna
		}
		return BiomeRainforest
	}
}

func (s *surface) biomeMap() planet.BiomeMap {
	cells := make([]planet.BiomeCell, len(s.elevation))
	for i := range cells {
		biome := classify(s.elevation[i]-s.cfg.SeaLevel, s.cfg.AmplitudeMeters, s.moisture[i], s.temp[i])
		cells[i] = planet.BiomeCell{
			Biome:        biome,
			Biodiversity: clamp01(biomeDiversity[biome] * (0.8 + 0.2*s.moisture[i])),
		}
	}
	return planet.BiomeMap{Width: s.grid.w, Height: s.grid.h, Cells: cells}
}

func biodiversityIndex(cells []planet.BiomeCell) float64 {
	if len(cells) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range cells {
		total += c.Biodiversity
	}
	return total / float64(len(cells))
}
