package noise

import "math"

// Octaves holds the fBm summation parameters.
type Octaves struct {
	Count       int
	Persistence float64
	Lacunarity  float64
}

// DefaultOctaves returns the octave settings used for planet terrain.
func DefaultOctaves() Octaves {
	return Octaves{Count: 6, Persistence: 0.5, Lacunarity: 2.0}
}

// SphereParams controls how a point on a sphere is embedded into 4D noise space.
type SphereParams struct {
	Octaves   Octaves
	Frequency float64 // Scale applied to the embedded coordinates
	Slice     float64 // Offset along the fourth axis; selects an independent field
}

// SampleSphere returns fBm noise in [-1, 1] for the sphere-surface direction
// (x, y, z). The direction need not be unit length.
//
// The point is expressed as azimuth and polar angles and re-embedded as
// continuous 4D coordinates: the angle pair drives the first three axes and
// the fourth axis is derived from the polar angle plus the slice offset.
// Sampling the embedding rather than the raw angles keeps the field free of
// seams at the antimeridian and of pinching at the poles.
func (g *Generator) SampleSphere(x, y, z float64, p SphereParams) float64 {
	r := math.Sqrt(x*x + y*y + z*z)
	if r == 0 {
		return g.FBM(0, 0, 0, p.Slice, p.Octaves.Count, p.Octaves.Persistence, p.Octaves.Lacunarity)
	}

	azimuth := math.Atan2(z, x)
	polar := math.Acos(clampUnit(y / r))

	sinPolar := math.Sin(polar)
	qx := math.Cos(azimuth) * sinPolar * p.Frequency
	qy := math.Sin(azimuth) * sinPolar * p.Frequency
	qz := math.Cos(polar) * p.Frequency
	qw := p.Slice + math.Cos(2*polar)*0.5*p.Frequency

	return g.FBM(qx, qy, qz, qw, p.Octaves.Count, p.Octaves.Persistence, p.Octaves.Lacunarity)
}

// LatLonToUnit converts geographic degrees to a unit direction with +y at the
// north pole.
func LatLonToUnit(latDeg, lonDeg float64) (x, y, z float64) {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	c := math.Cos(lat)
	return c * math.Cos(lon), math.Sin(lat), c * math.Sin(lon)
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
