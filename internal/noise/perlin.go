// Package noise implements seeded 4D gradient noise and fractional Brownian
// motion for procedural planet terrain.
// Each Generator owns its permutation table, so generators with different
// seeds can be used concurrently.
package noise

import "math"

const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// Generator produces deterministic 4D Perlin noise from a seed.
type Generator struct {
	seed int64
	perm [512]int
}

// NewGenerator creates a generator whose permutation table is derived from seed.
func NewGenerator(seed int64) *Generator {
	g := &Generator{}
	g.Initialize(seed)
	return g
}

// Initialize rebuilds the permutation table for seed. The same seed always
// yields the same table and therefore the same noise.
func (g *Generator) Initialize(seed int64) {
	g.seed = seed

	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates driven by a linear congruential sequence.
	state := ((seed % lcgModulus) + lcgModulus) % lcgModulus
	for i := 255; i > 0; i-- {
		state = (state*lcgMultiplier + lcgIncrement) % lcgModulus
		j := int(math.Floor(float64(state) / lcgModulus * float64(i+1)))
		p[i], p[j] = p[j], p[i]
	}

	for i := 0; i < 512; i++ {
		g.perm[i] = p[i&255]
	}
}

// Seed returns the seed the table was built from.
func (g *Generator) Seed() int64 {
	return g.seed
}

// fade applies the quintic smoothstep t³(t(6t−15)+10).
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad4 dots (x, y, z, w) with one of the 16 hypercube corner directions
// (±1, ±1, ±1, ±1) selected by the low four bits of hash.
func grad4(hash int, x, y, z, w float64) float64 {
	h := hash & 15
	if h&1 != 0 {
		x = -x
	}
	if h&2 != 0 {
		y = -y
	}
	if h&4 != 0 {
		z = -z
	}
	if h&8 != 0 {
		w = -w
	}
	return x + y + z + w
}

// Noise4D returns gradient noise at (x, y, z, w), approximately in [-1, 1].
func (g *Generator) Noise4D(x, y, z, w float64) float64 {
	fx, fy, fz, fw := math.Floor(x), math.Floor(y), math.Floor(z), math.Floor(w)

	X := int(fx) & 255
	Y := int(fy) & 255
	Z := int(fz) & 255
	W := int(fw) & 255

	x -= fx
	y -= fy
	z -= fz
	w -= fw

	u, v, s, t := fade(x), fade(y), fade(z), fade(w)

	p := &g.perm
	hash := func(i, j, k, l int) int {
		return p[p[p[p[X+i]+Y+j]+Z+k]+W+l]
	}
	corner := func(i, j, k, l int) float64 {
		return grad4(hash(i, j, k, l), x-float64(i), y-float64(j), z-float64(k), w-float64(l))
	}

	// Interpolate along x, then y, then z, then w.
	var zw [2][2]float64
	for l := 0; l < 2; l++ {
		for k := 0; k < 2; k++ {
			y0 := lerp(u, corner(0, 0, k, l), corner(1, 0, k, l))
			y1 := lerp(u, corner(0, 1, k, l), corner(1, 1, k, l))
			zw[l][k] = lerp(v, y0, y1)
		}
	}
	w0 := lerp(s, zw[0][0], zw[0][1])
	w1 := lerp(s, zw[1][0], zw[1][1])

	return lerp(t, w0, w1) * 0.5
}

// FBM sums octaves of Noise4D at rising frequency and falling amplitude,
// normalized by the total amplitude so the result stays in [-1, 1].
// Callers must pass octaves >= 1; fewer octaves yield 0.
func (g *Generator) FBM(x, y, z, w float64, octaves int, persistence, lacunarity float64) float64 {
	total := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += g.Noise4D(x*frequency, y*frequency, z*frequency, w*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}

	if maxVal == 0 {
		return 0
	}
	n := total / maxVal
	if n > 1 {
		return 1
	}
	if n < -1 {
		return -1
	}
	return n
}
