package terrain

import "math"

// grid is an equirectangular lat/lon raster, row 0 at the north pole.
// Columns wrap around the antimeridian; rows do not wrap over the poles.
type grid struct {
	w, h int
}

func (g grid) index(x, y int) int {
	return y*g.w + x
}

func (g grid) coords(i int) (x, y int) {
	return i % g.w, i / g.w
}

// center returns the latitude and longitude of a cell centre in degrees.
func (g grid) center(x, y int) (lat, lon float64) {
	lat = 90 - (float64(y)+0.5)*180/float64(g.h)
	lon = -180 + (float64(x)+0.5)*360/float64(g.w)
	return lat, lon
}

// neighbors returns the indices of the up to eight cells around i.
func (g grid) neighbors(i int) []int {
	x, y := g.coords(i)
	out := make([]int, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		ny := y + dy
		if ny < 0 || ny >= g.h {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := (x + dx + g.w) % g.w
			j := g.index(nx, ny)
			if j != i && !contains(out, j) {
				out = append(out, j)
			}
		}
	}
	return out
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// cellArea is the relative surface area of a cell in row y.
func (g grid) cellArea(y int) float64 {
	lat, _ := g.center(0, y)
	return math.Cos(lat * math.Pi / 180)
}

// centralAngle is the great-circle angle in radians between two points
// given in degrees.
func centralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
