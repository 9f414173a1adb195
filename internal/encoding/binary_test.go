package encoding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat32Halves(t *testing.T) {
	for _, f := range []float32{0, -0.5, 1, 1234.5678, -9999.25, math.MaxFloat32, float32(math.Inf(-1))} {
		hi, lo := SplitFloat32(f)
		assert.Equal(t, f, MergeFloat32(hi, lo))
	}

	hi, lo := SplitFloat32(float32(math.NaN()))
	assert.True(t, math.IsNaN(float64(MergeFloat32(hi, lo))))
}

func TestSplitMerge(t *testing.T) {
	a, b := Split32(0xDEADBEEF)
	assert.Equal(t, uint16(0xDEAD), a)
	assert.Equal(t, uint16(0xBEEF), b)
	assert.Equal(t, uint32(0xDEADBEEF), Merge16(a, b))

	hi, lo := Split16(0xABCD)
	assert.Equal(t, uint8(0xAB), hi)
	assert.Equal(t, uint8(0xCD), lo)
	assert.Equal(t, uint16(0xABCD), Merge8(hi, lo))
}

func TestBytes8(t *testing.T) {
	assert.Equal(t, uint8(0x05), FromBytes8(ToBytes8(0x05)))
	assert.Equal(t, uint8(0), FromBytes8(nil))
}
