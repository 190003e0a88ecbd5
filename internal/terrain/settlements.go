package terrain

import (
	"math"
	"math/rand"
	"sort"

	"github.com/talgya/planet-core/internal/planet"
)

// Minimum great-circle spacing between population centers, in km, by kind.
var minSpacingKm = map[planet.SettlementKind]float64{
	planet.KindCity:       1500,
	planet.KindSettlement: 700,
	planet.KindOutpost:    300,
}

var biomeAppeal = map[string]float64{
	BiomeGrassland:       3.0,
	BiomeTemperateForest: 2.5,
	BiomeSavanna:         2.0,
	BiomeRainforest:      1.5,
	BiomeTaiga:           1.2,
	BiomeDesert:          0.5,
	BiomeTundra:          0.5,
	BiomeMountain:        0.3,
}

// placeSettlements ranks land cells by desirability and seeds population
// centers at the best ones: roughly a fifth cities, two fifths settlements
// and the rest outposts.
func (s *surface) placeSettlements(rng *rand.Rand, cells []planet.BiomeCell, rivers []planet.River) []planet.PopulationCenter {
	centers := []planet.PopulationCenter{}
	if s.cfg.Settlements == 0 {
		return centers
	}

	nearRiver := make(map[int]bool)
	for _, r := range rivers {
		nearRiver[s.cellAt(r.Mouth.Latitude, r.Mouth.Longitude)] = true
		nearRiver[s.cellAt(r.Source.Latitude, r.Source.Longitude)] = true
	}

	type scored struct {
		cell  int
		score float64
	}
	var candidates []scored
	for i, c := range cells {
		if score := s.settlementScore(i, c, nearRiver); score > 0 {
			candidates = append(candidates, scored{i, score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	cities := max(1, s.cfg.Settlements/5)
	towns := max(0, s.cfg.Settlements*2/5)
	names := generateNames(rng, s.cfg.Settlements)

	var placed []planet.Coordinates
	tooClose := func(at planet.Coordinates, kind planet.SettlementKind) bool {
		for _, p := range placed {
			if centralAngle(at.Latitude, at.Longitude, p.Latitude, p.Longitude)*s.cfg.PlanetRadiusKm < minSpacingKm[kind] {
				return true
			}
		}
		return false
	}

	taken := make(map[int]bool)
	for _, kind := range []planet.SettlementKind{planet.KindCity, planet.KindSettlement, planet.KindOutpost} {
		quota := s.cfg.Settlements - len(centers)
		switch kind {
		case planet.KindCity:
			quota = min(quota, cities)
		case planet.KindSettlement:
			quota = min(quota, towns)
		}
		for _, c := range candidates {
			if quota == 0 {
				break
			}
			at := s.coordinates(c.cell)
			if taken[c.cell] || tooClose(at, kind) {
				continue
			}
			taken[c.cell] = true
			placed = append(placed, at)
			n := len(centers)
			centers = append(centers, planet.PopulationCenter{
				ID:          featureID("center", s.cfg.Seed, n),
				Name:        names[n],
				Population:  populationFor(kind, rng),
				Kind:        kind,
				Coordinates: at,
			})
			quota--
		}
	}
	return centers
}

// settlementScore prefers temperate land near the coast or a river.
func (s *surface) settlementScore(i int, c planet.BiomeCell, nearRiver map[int]bool) float64 {
	appeal, ok := biomeAppeal[c.Biome]
	if !ok {
		return 0
	}
	score := appeal + c.Biodiversity

	coastal := false
	for _, nc := range s.grid.neighbors(i) {
		if s.ocean(nc) {
			coastal = true
		}
		if nearRiver[nc] {
			score += 0.5
		}
	}
	if coastal {
		score += 1.0
	}
	if nearRiver[i] {
		score += 1.0
	}

	// Lowlands are easier to farm.
	score += math.Max(0, 1-(s.elevation[i]-s.cfg.SeaLevel)/s.cfg.AmplitudeMeters*2)
	return score
}

// populationFor returns an initial population for a settlement kind.
func populationFor(kind planet.SettlementKind, rng *rand.Rand) int64 {
	switch kind {
	case planet.KindCity:
		return 100_000 + rng.Int63n(900_000)
	case planet.KindSettlement:
		return 5_000 + rng.Int63n(45_000)
	default:
		return 50 + rng.Int63n(950)
	}
}
