package hexrelief

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/model3d/model2d"
	"golang.org/x/image/colornames"
)

func smallRelief() *reliefImage {
	raster := []float32{
		-12.5, 0, 1, 2,
		3, 4, 5, 6,
		7, 8, 9, 10,
		11, 12, 13, 1234.75,
	}
	shade := make([]uint8, len(raster))
	for i := range shade {
		shade[i] = uint8(i * 10)
	}
	contours := []*ContourPath{
		{Elevation: 5, Points: []model2d.Coord{{X: 0, Y: 1}, {X: 3.2, Y: 0.9}}, Major: true},
	}
	points := []ControlPoint{{ID: "p", X: 2.4, Y: 2.6}}
	return newReliefImage(raster, 4, 4, shade, contours, points)
}

func TestReliefImageReaders(t *testing.T) {
	m := smallRelief()
	assert.Equal(t, image.Rect(0, 0, 4, 4), m.Bounds())

	elev, err := m.Elevation(0, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(-12.5), elev)

	elev, err = m.Elevation(3, 3)
	require.NoError(t, err)
	assert.Equal(t, float32(1234.75), elev)

	shade, err := m.Shade(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(90), shade)

	for x := 0; x < 4; x++ {
		assert.True(t, m.IsContour(x, 1), "x=%d", x)
		assert.True(t, m.IsMajorContour(x, 1), "x=%d", x)
		assert.False(t, m.IsContour(x, 2), "x=%d", x)
	}
	assert.True(t, m.IsControlPoint(2, 3))
	assert.False(t, m.IsControlPoint(2, 2))

	// setting flags leaves the shade alone
	shade, err = m.Shade(2, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(60), shade)

	_, err = m.Elevation(-1, 0)
	assert.Error(t, err)
	_, err = m.Shade(0, 4)
	assert.Error(t, err)
	assert.False(t, m.IsContour(4, 1))
}

func TestReliefImageCustomImage(t *testing.T) {
	m := smallRelief()
	scheme := DefaultScheme()

	im, err := m.CustomImage(scheme)
	require.NoError(t, err)
	assert.Equal(t, m.Bounds(), im.Bounds())

	assert.Equal(t, rgba(scheme.MajorContours), rgba(im.At(0, 1)))
	assert.Equal(t, rgba(scheme.ControlPoints), rgba(im.At(2, 3)))

	// no contour colours falls through to the ramp
	scheme.Contours, scheme.MajorContours = nil, nil
	im, err = m.CustomImage(scheme)
	require.NoError(t, err)
	assert.NotEqual(t, rgba(colornames.Black), rgba(im.At(0, 1)))
}

func TestReliefImageSaveIsLossless(t *testing.T) {
	m := smallRelief()
	fpath := filepath.Join(t.TempDir(), "relief.png")
	require.NoError(t, m.Save(fpath))

	f, err := os.Open(fpath)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)

	loaded := &reliefImage{im: decoded.(*image.RGBA64)}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want, _ := m.Elevation(x, y)
			got, err := loaded.Elevation(x, y)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, m.IsContour(x, y), loaded.IsContour(x, y))
		}
	}

	require.NoError(t, m.SaveAdv(filepath.Join(t.TempDir(), "styled.png"), nil))
}

func TestRampColour(t *testing.T) {
	ramp := []ColourStop{{0, colornames.Black}, {100, colornames.White}}

	assert.Equal(t, rgba(colornames.Black), rgba(rampColour(ramp, -50)))
	assert.Equal(t, rgba(colornames.White), rgba(rampColour(ramp, 500)))
	assert.Equal(t, color.RGBA{127, 127, 127, 255}, rgba(rampColour(ramp, 50)))
	assert.Equal(t, rgba(colornames.Black), rgba(rampColour(ramp, 0)))
	assert.Equal(t, color.RGBA{128, 128, 128, 255}, rgba(rampColour(nil, 50)))
}

func TestShaded(t *testing.T) {
	col := color.RGBA{200, 100, 50, 255}
	assert.Equal(t, col, shaded(col, 0, 0))
	assert.Equal(t, col, shaded(col, 255, 1))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, shaded(col, 0, 1))
	assert.Equal(t, color.RGBA{100, 50, 25, 255}, shaded(col, 0, 0.5))
}

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}
