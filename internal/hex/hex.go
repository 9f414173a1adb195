package hex

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedKey is returned when a key string cannot be turned back into
	// a (q, r) coordinate.
	ErrMalformedKey = errors.New("malformed hex key")
)

// Direction indexes the six neighbours of a hex, clockwise from East.
// NoFlow marks "no direction" (eg. a pour point).
type Direction int8

const (
	NoFlow    Direction = -1
	East      Direction = 0
	NorthEast Direction = 1
	NorthWest Direction = 2
	West      Direction = 3
	SouthWest Direction = 4
	SouthEast Direction = 5
)

// offsets are the axial deltas for each Direction
var offsets = [6]Coord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Valid returns if d points at a neighbour
func (d Direction) Valid() bool {
	return d >= 0 && d < 6
}

// Coord is an axial (q, r) hex coordinate. It is comparable and intended
// to be used directly as a map key.
type Coord struct {
	Q int
	R int
}

// S is the implied third cube coordinate
func (c Coord) S() int {
	return -c.Q - c.R
}

// Key returns the canonical "q,r" encoding of c.
func (c Coord) Key() string {
	return strconv.Itoa(c.Q) + "," + strconv.Itoa(c.R)
}

// String is Key
func (c Coord) String() string {
	return c.Key()
}

// ParseKey turns a "q,r" key back into a Coord. Only the canonical form
// produced by Key is accepted, so parse(key(c)) == c for every c.
func ParseKey(key string) (Coord, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return Coord{}, errors.Wrapf(ErrMalformedKey, "%q (expected \"q,r\")", key)
	}

	q, err := strconv.Atoi(parts[0])
	if err != nil || strconv.Itoa(q) != parts[0] {
		return Coord{}, errors.Wrapf(ErrMalformedKey, "%q has bad q component", key)
	}
	r, err := strconv.Atoi(parts[1])
	if err != nil || strconv.Itoa(r) != parts[1] {
		return Coord{}, errors.Wrapf(ErrMalformedKey, "%q has bad r component", key)
	}

	return Coord{Q: q, R: r}, nil
}

// MarshalText lets maps keyed by Coord serialise as json objects.
func (c Coord) MarshalText() ([]byte, error) {
	return []byte(c.Key()), nil
}

// UnmarshalText is the inverse of MarshalText
func (c *Coord) UnmarshalText(data []byte) error {
	parsed, err := ParseKey(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Neighbors returns all six adjacent coords, indexed by Direction.
func (c Coord) Neighbors() [6]Coord {
	var out [6]Coord
	for i, o := range offsets {
		out[i] = Coord{Q: c.Q + o.Q, R: c.R + o.R}
	}
	return out
}

// Neighbor returns the coord one step in direction d.
// False if d is NoFlow (or otherwise out of range).
func (c Coord) Neighbor(d Direction) (Coord, bool) {
	if !d.Valid() {
		return Coord{}, false
	}
	o := offsets[d]
	return Coord{Q: c.Q + o.Q, R: c.R + o.R}, true
}

// DirectionTo returns the direction from c to an adjacent coord.
func (c Coord) DirectionTo(other Coord) (Direction, bool) {
	dq, dr := other.Q-c.Q, other.R-c.R
	for i, o := range offsets {
		if o.Q == dq && o.R == dr {
			return Direction(i), true
		}
	}
	return NoFlow, false
}

// Distance in hex steps between a & b
func Distance(a, b Coord) int {
	return maxint(absint(a.Q-b.Q), maxint(absint(a.R-b.R), absint(a.S()-b.S())))
}

// Center returns the pixel centre of c for pointy-top hexes of the given
// circumradius, with 0,0 at the centre of the origin hex.
func (c Coord) Center(size float64) (float64, float64) {
	x := size * (math.Sqrt(3)*float64(c.Q) + math.Sqrt(3)/2*float64(c.R))
	y := size * (1.5 * float64(c.R))
	return x, y
}

// Corners returns the six pointy-top corner positions around Center.
func (c Coord) Corners(size float64) [6][2]float64 {
	cx, cy := c.Center(size)
	var out [6][2]float64
	for i := 0; i < 6; i++ {
		angle := math.Pi / 180 * float64(60*i-30)
		out[i] = [2]float64{cx + size*math.Cos(angle), cy + size*math.Sin(angle)}
	}
	return out
}

// GoString is handy in test failure output
func (c Coord) GoString() string {
	return fmt.Sprintf("hex.Coord{%d,%d}", c.Q, c.R)
}

func absint(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func maxint(a, b int) int {
	if a > b {
		return a
	}
	return b
}
