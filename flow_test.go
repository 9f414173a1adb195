package hexrelief

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ FlowAnalyzer = &D8Analyzer{}

// valley is a V shaped strip: two slopes draining into a channel that runs
// east to a low outlet.
func valley() map[Hex]float64 {
	elev := map[Hex]float64{}
	for q := 0; q < 6; q++ {
		channel := float64(60 - q*10)
		elev[Hex{Q: q, R: 0}] = channel
		elev[Hex{Q: q, R: -1}] = channel + 30
		elev[Hex{Q: q, R: 1}] = channel + 30
	}
	return elev
}

func TestD8AnalyzerValley(t *testing.T) {
	a := NewD8Analyzer(&FlowConfig{MinSlope: 0.1, DefaultElevation: 1000})
	dirs, acc, err := a.Analyze(valley())
	require.NoError(t, err)
	require.Len(t, dirs, 18)
	require.Len(t, acc, 18)

	// the channel runs east into the outlet at q=5 which has nowhere lower to go
	for q := 0; q < 5; q++ {
		assert.Equal(t, East, dirs[Hex{Q: q, R: 0}], "q=%d", q)
	}
	assert.Equal(t, NoFlow, dirs[Hex{Q: 5, R: 0}])

	// the whole strip drains through the outlet
	assert.Equal(t, 18.0, acc[Hex{Q: 5, R: 0}])
	for h, v := range acc {
		assert.GreaterOrEqual(t, v, 1.0, h.Key())
	}

	path := a.TraceFlowPath(Hex{Q: 0, R: 0}, dirs)
	assert.Len(t, path, 6)
	assert.Equal(t, Hex{Q: 5, R: 0}, path[len(path)-1])
}

func TestD8AnalyzerSeededFlatsAreReproducible(t *testing.T) {
	flat := map[Hex]float64{}
	for q := -3; q <= 3; q++ {
		for r := -3; r <= 3; r++ {
			flat[Hex{Q: q, R: r}] = 10
		}
	}
	flat[Hex{Q: 0, R: 0}] = 50

	cfg := &FlowConfig{MinSlope: 0.1, DefaultElevation: 10, RandomFlats: true, Seed: 42}
	first := NewD8Analyzer(cfg).Directions(flat)
	second := NewD8Analyzer(cfg).Directions(flat)
	assert.Equal(t, first, second)

	// the raised centre drains, all its neighbours are equally low
	assert.NotEqual(t, NoFlow, first[Hex{Q: 0, R: 0}])
}

func TestD8AccumulationSurvivesCycles(t *testing.T) {
	dirs := FlowDirectionMap{
		{Q: 0, R: 0}: East,
		{Q: 1, R: 0}: West,
		{Q: 3, R: 0}: NoFlow,
	}
	acc := NewD8Analyzer(nil).Accumulation(dirs)
	assert.Equal(t, FlowAccumulationMap{{Q: 0, R: 0}: 1, {Q: 1, R: 0}: 1, {Q: 3, R: 0}: 1}, acc)

	path := NewD8Analyzer(nil).TraceFlowPath(Hex{}, dirs)
	assert.Len(t, path, 2)
}

func TestHexesAboveAndStats(t *testing.T) {
	dirs := FlowDirectionMap{
		{Q: 0, R: 0}: East,
		{Q: 1, R: 0}: East,
		{Q: 2, R: 0}: NoFlow,
		{Q: 2, R: 1}: NorthEast,
		{Q: 3, R: 0}: NoFlow,
	}
	acc := FlowAccumulationMap{
		{Q: 0, R: 0}: 1,
		{Q: 1, R: 0}: 2,
		{Q: 2, R: 0}: 3,
		{Q: 2, R: 1}: 1,
		{Q: 3, R: 0}: 2,
	}

	assert.Equal(t, []Hex{{Q: 1, R: 0}, {Q: 2, R: 0}, {Q: 3, R: 0}}, HexesAbove(acc, 2))

	s := NewFlowStats(dirs, acc)
	assert.Equal(t, 5, s.TotalHexes)
	assert.Equal(t, 3, s.FlowingHexCount)
	assert.Equal(t, 2, s.PourPointCount)
	assert.Equal(t, [6]int{2, 1, 0, 0, 0, 0}, s.DirectionDistribution)
	assert.Equal(t, 1.0, s.MinAccumulation)
	assert.Equal(t, 3.0, s.MaxAccumulation)
	assert.Equal(t, Hex{Q: 2, R: 0}, *s.MaxAccumulationHex)
	assert.InDelta(t, 1.8, s.AverageAccumulation, 1e-9)

	empty := NewFlowStats(nil, nil)
	assert.Equal(t, 0, empty.TotalHexes)
	assert.Nil(t, empty.MaxAccumulationHex)
}
