package terrain

import (
	"math/rand"

	"github.com/talgya/planet-core/internal/planet"
)

// highland is the share of the amplitude above sea level a river source
// must reach.
const highland = 0.2

// placeRivers traces paths from high elevation down to the sea.
func (s *surface) placeRivers(rng *rand.Rand) []planet.River {
	rivers := []planet.River{}
	if s.cfg.Rivers == 0 {
		return rivers
	}

	var sources []int
	for i, e := range s.elevation {
		if e-s.cfg.SeaLevel > s.cfg.AmplitudeMeters*highland && s.temp[i] >= iceTemp {
			sources = append(sources, i)
		}
	}
	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})

	names := generateNames(rng, s.cfg.Rivers)
	claimed := make(map[int]bool)
	for _, start := range sources {
		if len(rivers) >= s.cfg.Rivers {
			break
		}
		if claimed[start] {
			continue
		}
		path, ok := s.traceRiver(start)
		if !ok {
			continue
		}
		for _, c := range path {
			claimed[c] = true
		}

		n := len(rivers)
		rivers = append(rivers, planet.River{
			ID:       featureID("river", s.cfg.Seed, n),
			Name:     names[n] + " River",
			LengthKm: s.pathLengthKm(path),
			Source:   s.coordinates(path[0]),
			Mouth:    s.coordinates(path[len(path)-1]),
		})
	}
	return rivers
}

// traceRiver follows the steepest descent from a source cell. It succeeds
// only when the path reaches an ocean cell; rivers that end in a basin
// would form a lake and are discarded.
func (s *surface) traceRiver(start int) ([]int, bool) {
	current := start
	visited := map[int]bool{}
	path := []int{}
	maxSteps := s.grid.w + s.grid.h

	for step := 0; step < maxSteps; step++ {
		visited[current] = true
		path = append(path, current)
		if s.ocean(current) {
			return path, len(path) >= 2
		}

		best := -1
		bestElev := s.elevation[current]
		for _, nc := range s.grid.neighbors(current) {
			if visited[nc] {
				continue
			}
			if s.elevation[nc] < bestElev {
				bestElev = s.elevation[nc]
				best = nc
			}
		}
		if best < 0 {
			return nil, false
		}
		current = best
	}
	return nil, false
}

func (s *surface) coordinates(i int) planet.Coordinates {
	lat, lon := s.grid.center(s.grid.coords(i))
	return planet.Coordinates{Latitude: lat, Longitude: lon}
}

// pathLengthKm sums great-circle distances between successive cell centres.
func (s *surface) pathLengthKm(path []int) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		a, b := s.coordinates(path[i-1]), s.coordinates(path[i])
		total += centralAngle(a.Latitude, a.Longitude, b.Latitude, b.Longitude) * s.cfg.PlanetRadiusKm
	}
	return total
}
