package hexrelief

import (
	"testing"

	"github.com/ojrac/opensimplex-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hexRow builds a single row of hexes (r = 0) with the given elevations
func hexRow(elev ...float64) map[Hex]float64 {
	out := map[Hex]float64{}
	for q, e := range elev {
		out[Hex{Q: q, R: 0}] = e
	}
	return out
}

func noiseHexes(seed int64, radius int) map[Hex]float64 {
	noise := opensimplex.NewNormalized(seed)
	out := map[Hex]float64{}
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			if abs(q+r) > radius {
				continue
			}
			out[Hex{Q: q, R: r}] = noise.Eval2(float64(q)/4, float64(r)/4) * 100
		}
	}
	return out
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func TestPourPoints(t *testing.T) {
	w := NewWatershedCalculator(&WatershedConfig{MinElevationDiff: 0.1, DefaultElevation: 1000})
	pours := w.PourPoints(hexRow(0, 5, 10, 6, 2))
	assert.Equal(t, []Hex{{Q: 0, R: 0}, {Q: 4, R: 0}}, pours)

	// with sea all around every hex above sea level drains off the edge
	sea := NewWatershedCalculator(nil)
	assert.Empty(t, sea.PourPoints(hexRow(5, 6, 7)))

	// ... unless it's barely above it
	assert.Equal(t, []Hex{{Q: 0, R: 0}}, sea.PourPoints(hexRow(0.05, 6, 7)))
}

func TestTwoBasins(t *testing.T) {
	for _, strategy := range []FloodStrategy{Sequential, PriorityFlood} {
		w := NewWatershedCalculator(&WatershedConfig{MinElevationDiff: 0.1, DefaultElevation: 1000, Strategy: strategy})
		ws := w.Calculate(hexRow(0, 5, 10, 6, 2))

		assert.Equal(t, WatershedMap{
			{Q: 0, R: 0}: 1,
			{Q: 1, R: 0}: 1,
			{Q: 2, R: 0}: 1,
			{Q: 3, R: 0}: 2,
			{Q: 4, R: 0}: 2,
		}, ws, strategy)
		assert.Equal(t, map[int]int{1: 3, 2: 2}, BasinSizes(ws))
	}
}

func TestSequentialFloodIsOrderDependent(t *testing.T) {
	elev := hexRow(0, 1, 2, 3, 4, 4.5, 0.5)
	ridge := Hex{Q: 5, R: 0}

	seq := NewWatershedCalculator(&WatershedConfig{MinElevationDiff: 0.1, DefaultElevation: 1000})
	pri := NewWatershedCalculator(&WatershedConfig{MinElevationDiff: 0.1, DefaultElevation: 1000, Strategy: PriorityFlood})

	// the first (lowest) pour point's flood climbs all the way over the ridge
	assert.Equal(t, 1, seq.Calculate(elev)[ridge])

	// a global flood reaches the ridge from the closer, second, pit first
	assert.Equal(t, 2, pri.Calculate(elev)[ridge])
}

func TestWatershedTotality(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		elev := noiseHexes(seed, 8)
		for _, cfg := range []*WatershedConfig{
			nil,
			{MinElevationDiff: 0.1, DefaultElevation: -1000},
			{MinElevationDiff: 5, DefaultElevation: 50, Strategy: PriorityFlood},
			{MinElevationDiff: 0, Strategy: PriorityFlood},
		} {
			ws := NewWatershedCalculator(cfg).Calculate(elev)
			require.Len(t, ws, len(elev))
			for h := range elev {
				id, ok := ws[h]
				assert.True(t, ok, h.Key())
				assert.GreaterOrEqual(t, id, 1)
			}

			total := 0
			for _, n := range BasinSizes(ws) {
				total += n
			}
			assert.Equal(t, len(elev), total)
		}
	}
}

func TestWatershedWithoutPourPoints(t *testing.T) {
	// an island entirely above sea level drains off every edge
	w := NewWatershedCalculator(nil)
	elev := hexRow(10, 20, 15)
	require.Empty(t, w.PourPoints(elev))

	ws := w.Calculate(elev)
	assert.Len(t, ws, 3)
	assert.Equal(t, 1, ws[Hex{Q: 0, R: 0}]) // lowest hex seeds the first outlet basin
}

func TestWatershedEmpty(t *testing.T) {
	assert.Empty(t, NewWatershedCalculator(nil).Calculate(nil))
	assert.Empty(t, NewWatershedCalculator(nil).PourPoints(map[Hex]float64{}))
}

func TestFloodStrategyText(t *testing.T) {
	var f FloodStrategy
	require.NoError(t, f.UnmarshalText([]byte("Priority-Flood")))
	assert.Equal(t, PriorityFlood, f)

	require.NoError(t, f.UnmarshalText(nil))
	assert.Equal(t, Sequential, f)

	err := f.UnmarshalText([]byte("sequental"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean sequential")
}
