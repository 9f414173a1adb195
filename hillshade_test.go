package hexrelief

import (
	"math"
	"testing"

	"github.com/ojrac/opensimplex-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(w, h int, fn func(x, y int) float32) []float32 {
	out := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = fn(x, y)
		}
	}
	return out
}

func TestHillshadeBounds(t *testing.T) {
	w, h := 48, 32
	configs := []*HillshadeConfig{
		DefaultHillshadeConfig(),
		{Azimuth: 0, Altitude: 0, ZFactor: 50},
		{Azimuth: 90, Altitude: 90, ZFactor: -3},
		{Azimuth: 720, Altitude: -30, ZFactor: 0.01, CellSize: 0.1},
	}

	for seed := int64(0); seed < 4; seed++ {
		noise := opensimplex.New(seed)
		raster := ramp(w, h, func(x, y int) float32 {
			return float32(noise.Eval2(float64(x)/7, float64(y)/7) * 1000)
		})

		for _, cfg := range configs {
			shade := NewHillshadeCalculator(cfg).Calculate(raster, w, h)
			require.Len(t, shade, w*h)
			for _, v := range shade {
				assert.True(t, v >= 0 && v <= 255)
			}
		}
	}
}

func TestHillshadeFlatAndFacing(t *testing.T) {
	w, h := 8, 8
	calc := NewHillshadeCalculator(nil)

	flat := calc.Calculate(make([]float32, w*h), w, h)
	for _, v := range flat {
		assert.Equal(t, uint8(180), v) // 255 * cos(45)
	}

	risingEast := calc.Calculate(ramp(w, h, func(x, y int) float32 { return float32(x * 10) }), w, h)
	fallingEast := calc.Calculate(ramp(w, h, func(x, y int) float32 { return float32(-x * 10) }), w, h)

	// light comes from the north west, so west facing slopes are lit
	centre := 4*w + 4
	assert.Equal(t, uint8(145), risingEast[centre])
	assert.Equal(t, uint8(0), fallingEast[centre])
}

func TestHillshadeNaNIsDark(t *testing.T) {
	raster := ramp(3, 3, func(x, y int) float32 { return float32(math.NaN()) })
	for _, v := range NewHillshadeCalculator(nil).Calculate(raster, 3, 3) {
		assert.Equal(t, uint8(0), v)
	}
}

func TestSlopeAndAspect(t *testing.T) {
	w, h := 6, 6
	calc := NewHillshadeCalculator(nil)
	centre := 3*w + 3

	east := ramp(w, h, func(x, y int) float32 { return float32(x * 10) })
	slope := calc.Slope(east, w, h)
	assert.InDelta(t, 84.29, slope[centre], 0.01)
	assert.InDelta(t, 180, calc.Aspect(east, w, h)[centre], 0.01)

	west := ramp(w, h, func(x, y int) float32 { return float32(-x * 10) })
	assert.InDelta(t, 0, calc.Aspect(west, w, h)[centre], 0.01)

	south := ramp(w, h, func(x, y int) float32 { return float32(y * 10) })
	assert.InDelta(t, 90, calc.Aspect(south, w, h)[centre], 0.01)

	north := ramp(w, h, func(x, y int) float32 { return float32(-y * 10) })
	assert.InDelta(t, 270, calc.Aspect(north, w, h)[centre], 0.01)

	for _, v := range calc.Slope(make([]float32, w*h), w, h) {
		assert.Equal(t, float32(0), v)
	}
	for _, v := range calc.Aspect(make([]float32, w*h), w, h) {
		assert.Equal(t, float32(0), v)
	}
}

func TestHillshadeClampsBorders(t *testing.T) {
	// a ramp has the same gradient at the edge as in the middle, just halved
	// by the clamped neighbour
	w, h := 5, 5
	east := ramp(w, h, func(x, y int) float32 { return float32(x * 8) })
	slope := NewHillshadeCalculator(nil).Slope(east, w, h)

	mid := math.Atan(8) * 180 / math.Pi
	edge := math.Atan(4) * 180 / math.Pi
	assert.InDelta(t, mid, slope[2*w+2], 0.01)
	assert.InDelta(t, edge, slope[2*w+0], 0.01)
	assert.InDelta(t, edge, slope[2*w+4], 0.01)
}

func TestHillshadeInvalidRaster(t *testing.T) {
	calc := NewHillshadeCalculator(nil)
	assert.Nil(t, calc.Calculate([]float32{1, 2}, 2, 2))
	assert.Nil(t, calc.Slope(nil, 1, 1))
	assert.Nil(t, calc.Aspect([]float32{1}, 0, 1))
}
