package hexrelief

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/voidshard/hexrelief/internal/encoding"
	"github.com/voidshard/hexrelief/internal/line"

	"github.com/boljen/go-bitmap"
	"github.com/fogleman/gg"
	"github.com/unixpickle/model3d/model2d"
	"golang.org/x/image/colornames"
)

const (
	// bit numbers for our bitmap
	bitContour      = 0
	bitMajorContour = 1
	bitControlPoint = 2
)

// ReliefMap is a graphical representation of a Relief
type ReliefMap interface {
	// Save as custom file in a format defined by the library
	Save(fpath string) error

	// SaveAdv saves as an image with the given color scheme
	SaveAdv(fpath string, scheme *ColourScheme) error

	// CustomImage returns an image with the given color scheme
	CustomImage(scheme *ColourScheme) (image.Image, error)

	// Bounds of the map, matching the elevation raster
	Bounds() image.Rectangle

	// Elevation & Shade return the raster & hillshade value at x,y
	Elevation(x, y int) (float32, error)
	Shade(x, y int) (uint8, error)

	IsContour(x, y int) bool
	IsMajorContour(x, y int) bool
	IsControlPoint(x, y int) bool
}

// reliefImage is a particular implementation of ReliefMap using a RGBA64
type reliefImage struct {
	// RGBA64 where each pixel of 64 bits is split via
	//
	// R [16 bits]
	// G [16 bits]
	//   32-1 [32 bits] -> float32 elevation, R holds the significant bits
	// B [16 bits]
	//   16-9 [8 bits] -> hillshade 0-255
	//    8-1 [8 bits] -> bitmap (true if set, false if not)
	//       bit 0 -> isContour
	//       bit 1 -> isMajorContour
	//       bit 2 -> isControlPoint
	//       bit 3-7 -> unused
	// A [16 bits]
	//   always opaque, so PNG encoding keeps every other bit intact
	im *image.RGBA64
}

// ColourStop is one step of a hypsometric colour ramp
type ColourStop struct {
	Elevation float64
	Colour    color.Color
}

// ColourScheme defines how a ReliefMap or HydroMap should be coloured.
type ColourScheme struct {
	// Ramp is interpolated by elevation, it needn't be sorted
	Ramp []ColourStop

	// ShadeStrength 0-1 is how much hillshade darkens the ramp colour
	ShadeStrength float64

	Contours      color.Color
	MajorContours color.Color
	ControlPoints color.Color

	// Basins are cycled through by basin id, Rivers colour river segments
	Basins []color.Color
	Rivers color.Color
	Hexes  color.Color // hex outlines, nil to skip
}

// DefaultScheme returns a reasonable default ColourScheme.
func DefaultScheme() *ColourScheme {
	return &ColourScheme{
		Ramp: []ColourStop{
			{-1000, colornames.Navy},
			{-1, colornames.Steelblue},
			{0, colornames.Darkseagreen},
			{200, colornames.Olivedrab},
			{500, colornames.Darkkhaki},
			{1000, colornames.Sienna},
			{2000, colornames.Snow},
		},
		ShadeStrength: 0.6,
		Contours:      colornames.Saddlebrown,
		MajorContours: colornames.Black,
		ControlPoints: colornames.Crimson,
		Basins: []color.Color{
			colornames.Lightgreen,
			colornames.Wheat,
			colornames.Lightsteelblue,
			colornames.Thistle,
			colornames.Palegoldenrod,
			colornames.Mediumaquamarine,
			colornames.Lightsalmon,
			colornames.Lightgray,
		},
		Rivers: colornames.Royalblue,
		Hexes:  colornames.Dimgray,
	}
}

// newReliefImage paints the raster, hillshade & features into a new map.
// shade may be nil.
func newReliefImage(raster []float32, width, height int, shade []uint8, contours []*ContourPath, points []ControlPoint) *reliefImage {
	c := &reliefImage{im: image.NewRGBA64(image.Rect(0, 0, width, height))}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			var s uint8
			if i < len(shade) {
				s = shade[i]
			}
			hi, lo := encoding.SplitFloat32(raster[i])
			c.im.SetRGBA64(x, y, color.RGBA64{R: hi, G: lo, B: encoding.Merge8(s, 0), A: 0xffff})
		}
	}

	for _, p := range contours {
		bits := []int{bitContour}
		if p.Major {
			bits = append(bits, bitMajorContour)
		}
		for _, pt := range line.Polyline(toPixels(p.Points), p.Closed) {
			c.setBits(pt.X, pt.Y, bits...)
		}
	}

	for _, p := range points {
		c.setBits(int(math.Round(p.X)), int(math.Round(p.Y)), bitControlPoint)
	}

	return c
}

// toPixels rounds contour coords to the nearest pixel
func toPixels(in []model2d.Coord) []image.Point {
	out := make([]image.Point, len(in))
	for i, c := range in {
		out[i] = image.Pt(int(math.Round(c.X)), int(math.Round(c.Y)))
	}
	return out
}

// Bounds of the map
func (c *reliefImage) Bounds() image.Rectangle {
	return c.im.Bounds()
}

// Save the ReliefMap as is to disk
func (c *reliefImage) Save(fpath string) error {
	return savePNG(fpath, c.im)
}

// CustomImage returns the ReliefMap coloured with the given Scheme
func (c *reliefImage) CustomImage(scheme *ColourScheme) (image.Image, error) {
	if scheme == nil {
		scheme = DefaultScheme()
	}
	ramp := make([]ColourStop, len(scheme.Ramp))
	copy(ramp, scheme.Ramp)
	sort.SliceStable(ramp, func(i, j int) bool { return ramp[i].Elevation < ramp[j].Elevation })

	bnds := c.im.Bounds()
	im := image.NewRGBA(bnds)

	for dy := bnds.Min.Y; dy < bnds.Max.Y; dy++ {
		for dx := bnds.Min.X; dx < bnds.Max.X; dx++ {
			bm := c.getBM(dx, dy)

			if bm.Get(bitControlPoint) && scheme.ControlPoints != nil {
				im.Set(dx, dy, scheme.ControlPoints)
				continue
			} else if bm.Get(bitMajorContour) && scheme.MajorContours != nil {
				im.Set(dx, dy, scheme.MajorContours)
				continue
			} else if bm.Get(bitContour) && scheme.Contours != nil {
				im.Set(dx, dy, scheme.Contours)
				continue
			}

			elev, err := c.Elevation(dx, dy)
			if err != nil {
				return nil, err
			}
			shade, err := c.Shade(dx, dy)
			if err != nil {
				return nil, err
			}
			im.Set(dx, dy, shaded(rampColour(ramp, float64(elev)), shade, scheme.ShadeStrength))
		}
	}

	return im, nil
}

// SaveAdv essentially saves the ReliefMap using the given scheme to disk.
// Essentially sugar around "CustomImage()" followed by writing out a PNG.
func (c *reliefImage) SaveAdv(fpath string, scheme *ColourScheme) error {
	im, err := c.CustomImage(scheme)
	if err != nil {
		return err
	}
	ctx := gg.NewContextForRGBA(im.(*image.RGBA))
	return ctx.SavePNG(fpath)
}

// Elevation returns the raster value at x,y
func (c *reliefImage) Elevation(x, y int) (float32, error) {
	if c.isOutOfBounds(x, y) {
		return 0, fmt.Errorf("(%d,%d) is out of bounds", x, y)
	}
	v := c.im.RGBA64At(x, y)
	return encoding.MergeFloat32(v.R, v.G), nil
}

// Shade returns the hillshade value at x,y
func (c *reliefImage) Shade(x, y int) (uint8, error) {
	if c.isOutOfBounds(x, y) {
		return 0, fmt.Errorf("(%d,%d) is out of bounds", x, y)
	}
	shade, _ := encoding.Split16(c.im.RGBA64At(x, y).B)
	return shade, nil
}

// IsContour returns if any contour line passes through x,y
func (c *reliefImage) IsContour(x, y int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bitContour)
}

// IsMajorContour returns if a major contour line passes through x,y
func (c *reliefImage) IsMajorContour(x, y int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bitMajorContour)
}

// IsControlPoint returns if a control point sits on x,y
func (c *reliefImage) IsControlPoint(x, y int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bitControlPoint)
}

// setBits sets the given bitmap bits at x,y, ignoring out of bounds pixels
func (c *reliefImage) setBits(x, y int, bits ...int) {
	if c.isOutOfBounds(x, y) {
		return
	}
	bm := c.getBM(x, y)
	for _, b := range bits {
		bm.Set(b, true)
	}
	c.setBM(x, y, bm)
}

// setBM sets the 8 bit bitmap at x,y
func (c *reliefImage) setBM(x, y int, bm bitmap.Bitmap) {
	num := encoding.FromBytes8(bm.Data(true))

	current := c.im.RGBA64At(x, y)
	shade, _ := encoding.Split16(current.B)
	current.B = encoding.Merge8(shade, num)

	c.im.SetRGBA64(x, y, current)
}

// getBM gets the 8 bit bitmap at x,y
func (c *reliefImage) getBM(x, y int) bitmap.Bitmap {
	_, bmdata := encoding.Split16(c.im.RGBA64At(x, y).B)
	return bitmap.Bitmap(encoding.ToBytes8(bmdata))
}

// isOutOfBounds determines if x,y is outside of the image area
func (c *reliefImage) isOutOfBounds(x, y int) bool {
	return !image.Pt(x, y).In(c.im.Bounds())
}

// rampColour linearly interpolates between the stops either side of elev.
// ramp must be sorted.
func rampColour(ramp []ColourStop, elev float64) color.Color {
	if len(ramp) == 0 {
		return color.Gray{Y: 128}
	}
	if math.IsNaN(elev) || elev <= ramp[0].Elevation {
		return ramp[0].Colour
	}
	for i := 1; i < len(ramp); i++ {
		hi := ramp[i]
		if elev > hi.Elevation {
			continue
		}
		lo := ramp[i-1]
		t := (elev - lo.Elevation) / (hi.Elevation - lo.Elevation)
		return lerpColour(lo.Colour, hi.Colour, t)
	}
	return ramp[len(ramp)-1].Colour
}

func lerpColour(a, b color.Color, t float64) color.RGBA {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	mix := func(x, y uint32) uint8 {
		return uint8((float64(x)*(1-t) + float64(y)*t) / 257)
	}
	return color.RGBA{R: mix(ar, br), G: mix(ag, bg), B: mix(ab, bb), A: 255}
}

// shaded darkens col by shade, strength 0 leaves col unchanged
func shaded(col color.Color, shade uint8, strength float64) color.RGBA {
	f := 1 - clamp(strength, 0, 1)*(1-float64(shade)/255)
	r, g, b, _ := col.RGBA()
	return color.RGBA{
		R: uint8(float64(r>>8) * f),
		G: uint8(float64(g>>8) * f),
		B: uint8(float64(b>>8) * f),
		A: 255,
	}
}
