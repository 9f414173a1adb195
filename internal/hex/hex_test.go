package hex

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	for _, c := range []Coord{{0, 0}, {3, -7}, {-12, 4}, {-1, -1}, {1000, 2000}} {
		parsed, err := ParseKey(c.Key())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestParseKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "1", "1,2,3", "a,b", "1, 2", "+1,2", "01,2", "1.5,2", ",", "1,"} {
		_, err := ParseKey(key)
		assert.Error(t, err, key)
		assert.True(t, errors.Is(err, ErrMalformedKey), key)
	}
}

func TestMapKeysMarshalAsStrings(t *testing.T) {
	in := map[Coord]float64{{1, -2}: 3.5, {0, 0}: 1}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"0,0":1,"1,-2":3.5}`, string(data))

	out := map[Coord]float64{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestNeighborsAndDirections(t *testing.T) {
	origin := Coord{2, 3}
	for i, n := range origin.Neighbors() {
		assert.Equal(t, 1, Distance(origin, n))

		d, ok := origin.DirectionTo(n)
		require.True(t, ok)
		assert.Equal(t, Direction(i), d)

		back, ok := origin.Neighbor(d)
		require.True(t, ok)
		assert.Equal(t, n, back)
	}

	_, ok := origin.Neighbor(NoFlow)
	assert.False(t, ok)

	_, ok = origin.DirectionTo(Coord{5, 5})
	assert.False(t, ok)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, Distance(Coord{1, 1}, Coord{1, 1}))
	assert.Equal(t, 3, Distance(Coord{0, 0}, Coord{3, -3}))
	assert.Equal(t, 4, Distance(Coord{-2, 0}, Coord{2, 0}))
}
