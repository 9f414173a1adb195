package hexrelief

import (
	"fmt"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

// noiseFrequency is how many noise features span the sample area
const noiseFrequency = 3.0

// NoiseControlPoints scatters n control points over a resolution sized
// square with elevations between low & high taken from seeded simplex
// noise. The same arguments always return the same points.
//
// Points in the top & bottom fifth of the range are typed Peak & Pit.
func NoiseControlPoints(seed int64, n, resolution int, low, high float64) []ControlPoint {
	rng := rand.New(rand.NewSource(seed))
	noise := opensimplex.NewNormalized(seed)

	out := make([]ControlPoint, 0, n)
	span := high - low
	for i := 0; i < n; i++ {
		x := rng.Float64() * float64(resolution-1)
		y := rng.Float64() * float64(resolution-1)

		v := noise.Eval2(x/float64(resolution)*noiseFrequency, y/float64(resolution)*noiseFrequency)
		elev := low + v*span

		typ := Spot
		switch {
		case v >= 0.8:
			typ = Peak
		case v <= 0.2:
			typ = Pit
		}

		out = append(out, ControlPoint{
			ID:        fmt.Sprintf("cp-%d", i),
			X:         x,
			Y:         y,
			Elevation: elev,
			Type:      typ,
		})
	}
	return out
}

// NoiseHexElevations returns a hexagon of hexes within radius of 0,0 with
// elevations between low & high from seeded simplex noise. scale is the
// number of hexes per noise feature.
func NoiseHexElevations(seed int64, radius int, scale, low, high float64) map[Hex]float64 {
	if scale <= 0 {
		scale = 8
	}
	noise := opensimplex.NewNormalized(seed)

	out := map[Hex]float64{}
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			h := Hex{Q: q, R: r}
			if -q-r < -radius || -q-r > radius {
				continue
			}
			x, y := h.Center(1)
			out[h] = low + noise.Eval2(x/scale, y/scale)*(high-low)
		}
	}
	return out
}
