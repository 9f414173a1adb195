package hexrelief

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
)

// module names used as the "module" attribute on component loggers
const (
	modField     = "elevation-field"
	modContour   = "contour-generator"
	modHillshade = "hillshade"
	modWatershed = "watershed"
	modRiver     = "river-extractor"
	modFlow      = "flow-analysis"
	modTerrain   = "terrain"
)

// orDiscard returns l, or a logger that drops everything if l is nil
func orDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// componentLogger derives a child logger tagged with the component name
func componentLogger(l *slog.Logger, module string) *slog.Logger {
	return orDiscard(l).With("module", module)
}

// savePNG to disk
func savePNG(fpath string, in image.Image) error {
	buff := new(bytes.Buffer)
	err := png.Encode(buff, in)
	if err != nil {
		return err
	}
	return os.WriteFile(fpath, buff.Bytes(), 0644)
}

// clamp v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// minmax returns the smallest & largest finite values in a raster.
// Returns 0, 0 if there are none.
func minmax(raster []float32) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range raster {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// maxint returns the highest of two ints
func maxint(a, b int) int {
	if a > b {
		return a
	}
	return b
}
