package terrain

import (
	"math"
	"math/rand"

	"github.com/talgya/planet-core/internal/planet"
)

// placePlates scatters plate centres over the sphere and assigns every cell
// to the nearest one. Area fractions are weighted by cell area and sum to 1.
func (s *surface) placePlates(rng *rand.Rand) []planet.TectonicPlate {
	n := s.cfg.Plates
	if n == 0 {
		return []planet.TectonicPlate{}
	}

	type centre struct{ lat, lon float64 }
	centres := make([]centre, n)
	for i := range centres {
		// Uniform on the sphere: latitude from asin of a uniform sine.
		centres[i] = centre{
			lat: math.Asin(rng.Float64()*2-1) * 180 / math.Pi,
			lon: rng.Float64()*360 - 180,
		}
	}

	area := make([]float64, n)
	total := 0.0
	for y := 0; y < s.grid.h; y++ {
		w := s.grid.cellArea(y)
		for x := 0; x < s.grid.w; x++ {
			lat, lon := s.grid.center(x, y)
			best, bestDist := 0, math.Inf(1)
			for i, c := range centres {
				if d := centralAngle(lat, lon, c.lat, c.lon); d < bestDist {
					best, bestDist = i, d
				}
			}
			area[best] += w
			total += w
		}
	}

	names := generateNames(rng, n)
	plates := make([]planet.TectonicPlate, n)
	for i, c := range centres {
		kind := planet.PlateContinental
		if s.ocean(s.cellAt(c.lat, c.lon)) {
			kind = planet.PlateOceanic
		}
		plates[i] = planet.TectonicPlate{
			ID:                 featureID("plate", s.cfg.Seed, i),
			Name:               names[i] + " Plate",
			Type:               kind,
			AreaFraction:       area[i] / total,
			DriftRateCmPerYear: 1 + rng.Float64()*9,
		}
	}
	return plates
}

// cellAt returns the index of the cell containing a geographic point.
func (s *surface) cellAt(lat, lon float64) int {
	x := int((lon + 180) / 360 * float64(s.grid.w))
	y := int((90 - lat) / 180 * float64(s.grid.h))
	x = min(max(x, 0), s.grid.w-1)
	y = min(max(y, 0), s.grid.h-1)
	return s.grid.index(x, y)
}
