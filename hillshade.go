package hexrelief

import (
	"log/slog"
	"time"

	"github.com/chewxy/math32"
)

const (
	deg2rad = math32.Pi / 180
	rad2deg = 180 / math32.Pi
)

// HillshadeCalculator lights a raster from a single distant light source.
type HillshadeCalculator struct {
	cfg *HillshadeConfig
	log *slog.Logger
}

// NewHillshadeCalculator returns a calculator, nil cfg uses DefaultHillshadeConfig().
func NewHillshadeCalculator(cfg *HillshadeConfig) *HillshadeCalculator {
	return newHillshadeCalculator(cfg, nil)
}

func newHillshadeCalculator(cfg *HillshadeConfig, log *slog.Logger) *HillshadeCalculator {
	return &HillshadeCalculator{cfg: cfg.withDefaults(), log: componentLogger(log, modHillshade)}
}

// gradient is the (z scaled) sobel gradient at x,y. Edge pixels reuse the
// nearest in-bounds neighbour.
func (h *HillshadeCalculator) gradient(raster []float32, width, height, x, y int) (float32, float32) {
	at := func(dx, dy int) float32 {
		px, py := x+dx, y+dy
		if px < 0 {
			px = 0
		} else if px >= width {
			px = width - 1
		}
		if py < 0 {
			py = 0
		} else if py >= height {
			py = height - 1
		}
		return raster[py*width+px]
	}

	// a b c
	// d e f
	// g h i
	a, b, c := at(-1, -1), at(0, -1), at(1, -1)
	d, f := at(-1, 0), at(1, 0)
	g, hh, i := at(-1, 1), at(0, 1), at(1, 1)

	scale := float32(h.cfg.ZFactor) / (8 * float32(h.cfg.CellSize))
	dzdx := ((c + 2*f + i) - (a + 2*d + g)) * scale
	dzdy := ((g + 2*hh + i) - (a + 2*b + c)) * scale
	return dzdx, dzdy
}

// valid returns if the raster has at least width*height values
func validRaster(raster []float32, width, height int) bool {
	return width > 0 && height > 0 && len(raster) >= width*height
}

// Calculate returns a row-major raster of light intensity in [0, 255].
// An invalid raster (fewer than width*height values) yields nil.
func (h *HillshadeCalculator) Calculate(raster []float32, width, height int) []uint8 {
	if !validRaster(raster, width, height) {
		return nil
	}
	start := time.Now()

	zenith := (90 - float32(h.cfg.Altitude)) * deg2rad
	azimuth := (360 - float32(h.cfg.Azimuth) + 90) * deg2rad // compass to maths angle
	cosZen, sinZen := math32.Cos(zenith), math32.Sin(zenith)

	out := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dzdx, dzdy := h.gradient(raster, width, height, x, y)

			slope := math32.Atan(math32.Hypot(dzdx, dzdy))
			aspect := math32.Atan2(dzdy, -dzdx)

			v := 255 * (cosZen*math32.Cos(slope) + sinZen*math32.Sin(slope)*math32.Cos(azimuth-aspect))
			out[y*width+x] = toByte(v)
		}
	}

	h.log.Debug("calculated hillshade", "width", width, "height", height, "elapsed", time.Since(start))
	return out
}

// Slope returns the steepness of each pixel in degrees [0, 90).
func (h *HillshadeCalculator) Slope(raster []float32, width, height int) []float32 {
	if !validRaster(raster, width, height) {
		return nil
	}
	out := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dzdx, dzdy := h.gradient(raster, width, height, x, y)
			out[y*width+x] = math32.Atan(math32.Hypot(dzdx, dzdy)) * rad2deg
		}
	}
	return out
}

// Aspect returns the direction each pixel faces in degrees [0, 360), measured
// the same way as the light azimuth is converted (maths angle of the
// downhill direction). Flat pixels have aspect 0.
func (h *HillshadeCalculator) Aspect(raster []float32, width, height int) []float32 {
	if !validRaster(raster, width, height) {
		return nil
	}
	out := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dzdx, dzdy := h.gradient(raster, width, height, x, y)
			if dzdx == 0 && dzdy == 0 {
				continue
			}
			a := math32.Atan2(dzdy, -dzdx) * rad2deg
			if a < 0 {
				a += 360
			}
			if a >= 360 {
				a -= 360
			}
			out[y*width+x] = a
		}
	}
	return out
}

// toByte rounds & clamps v to [0, 255]
func toByte(v float32) uint8 {
	if math32.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math32.Floor(v + 0.5))
}
