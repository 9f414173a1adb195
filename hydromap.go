package hexrelief

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/voidshard/hexrelief/internal/flow"
)

// HydroMap draws a Hydrology as pointy-top hexes, filled by basin with
// rivers on top.
type HydroMap interface {
	// Save with the DefaultScheme
	Save(fpath string) error

	// SaveAdv saves as an image with the given color scheme
	SaveAdv(fpath string, scheme *ColourScheme) error

	// CustomImage returns an image with the given color scheme
	CustomImage(scheme *ColourScheme) (image.Image, error)

	// Bounds of the image, in pixels
	Bounds() image.Rectangle
}

type hydroImage struct {
	size   float64 // hex circumradius in pixels
	basins WatershedMap
	hexes  []Hex
	rivers *RiverNetwork

	// offset moves hex space so every corner lands inside bounds
	offsetX, offsetY float64
	bounds           image.Rectangle
}

func newHydroImage(size float64, hexes []Hex, basins WatershedMap, rivers *RiverNetwork) *hydroImage {
	if size <= 0 {
		size = 10
	}
	h := &hydroImage{size: size, basins: basins, hexes: hexes, rivers: rivers}
	if len(hexes) == 0 {
		h.bounds = image.Rect(0, 0, 1, 1)
		return h
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, hx := range hexes {
		for _, c := range hx.Corners(size) {
			minX, maxX = math.Min(minX, c[0]), math.Max(maxX, c[0])
			minY, maxY = math.Min(minY, c[1]), math.Max(maxY, c[1])
		}
	}

	h.offsetX = size - minX
	h.offsetY = size - minY
	h.bounds = image.Rect(0, 0, int(math.Ceil(maxX-minX+2*size)), int(math.Ceil(maxY-minY+2*size)))
	return h
}

// Bounds of the image
func (h *hydroImage) Bounds() image.Rectangle {
	return h.bounds
}

// Save with the default scheme
func (h *hydroImage) Save(fpath string) error {
	return h.SaveAdv(fpath, DefaultScheme())
}

// SaveAdv renders & writes a PNG
func (h *hydroImage) SaveAdv(fpath string, scheme *ColourScheme) error {
	return h.draw(scheme).SavePNG(fpath)
}

// CustomImage renders with the given scheme
func (h *hydroImage) CustomImage(scheme *ColourScheme) (image.Image, error) {
	return h.draw(scheme).Image(), nil
}

func (h *hydroImage) draw(scheme *ColourScheme) *gg.Context {
	if scheme == nil {
		scheme = DefaultScheme()
	}

	ctx := gg.NewContext(h.bounds.Dx(), h.bounds.Dy())
	ctx.SetColor(color.White)
	ctx.Clear()

	for _, hx := range h.hexes {
		corners := hx.Corners(h.size)
		ctx.NewSubPath()
		for _, c := range corners {
			ctx.LineTo(c[0]+h.offsetX, c[1]+h.offsetY)
		}
		ctx.ClosePath()

		ctx.SetColor(basinColour(scheme, h.basins[hx]))
		if scheme.Hexes != nil {
			ctx.FillPreserve()
			ctx.SetColor(scheme.Hexes)
			ctx.SetLineWidth(0.5)
			ctx.Stroke()
		} else {
			ctx.Fill()
		}
	}

	if h.rivers == nil || scheme.Rivers == nil {
		return ctx
	}

	ctx.SetColor(scheme.Rivers)
	ctx.SetLineCapRound()
	for _, seg := range h.rivers.Segments {
		n := len(seg.Path)
		for i := 1; i < n; i++ {
			// taper from WidthStart to WidthEnd along the segment
			t := float64(i) / float64(n-1)
			w := seg.WidthStart + (seg.WidthEnd-seg.WidthStart)*t

			ax, ay := seg.Path[i-1].Center(h.size)
			bx, by := seg.Path[i].Center(h.size)
			ctx.SetLineWidth(w * h.size / 20)
			ctx.DrawLine(ax+h.offsetX, ay+h.offsetY, bx+h.offsetX, by+h.offsetY)
			ctx.Stroke()
		}
	}

	return ctx
}

// basinColour picks a palette colour by id, unassigned hexes are white
func basinColour(scheme *ColourScheme, id int) color.Color {
	if id < 1 || len(scheme.Basins) == 0 {
		return color.White
	}
	return scheme.Basins[(id-1)%len(scheme.Basins)]
}

// sortedHexes returns the keys of elevations ordered by q then r
func sortedHexes(elevations map[Hex]float64) []Hex {
	return flow.SortedKeys(elevations)
}
