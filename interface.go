package hexrelief

import (
	"github.com/voidshard/hexrelief/internal/hex"
)

// Hex is an axial (q, r) hex coordinate, usable directly as a map key.
// Maps keyed by Hex marshal to json objects keyed "q,r".
type Hex = hex.Coord

// Direction is one of the six hex neighbours, or NoFlow.
type Direction = hex.Direction

const (
	NoFlow    = hex.NoFlow
	East      = hex.East
	NorthEast = hex.NorthEast
	NorthWest = hex.NorthWest
	West      = hex.West
	SouthWest = hex.SouthWest
	SouthEast = hex.SouthEast
)

var (
	// ErrMalformedKey is returned when a hex key is not of the form "q,r".
	ErrMalformedKey = hex.ErrMalformedKey
)

// ParseHexKey turns a "q,r" key (as produced by Hex.Key) back into a Hex.
func ParseHexKey(key string) (Hex, error) {
	return hex.ParseKey(key)
}

// FlowDirectionMap gives the direction water leaves each hex.
// A hex mapped to NoFlow (or absent) is a pour point.
type FlowDirectionMap map[Hex]Direction

// FlowAccumulationMap gives the number of hexes (inclusive) draining
// through each hex.
type FlowAccumulationMap map[Hex]float64

// WatershedMap gives the drainage basin id of each hex. Ids start at 1.
type WatershedMap map[Hex]int

// FlowAnalyzer turns a sparse hex elevation map into flow directions and
// flow accumulation. The hydrology components assume, but do not check,
// that following directions always terminates & that accumulation is
// consistent with direction.
//
// D8Analyzer is the bundled implementation, callers may supply their own.
type FlowAnalyzer interface {
	Analyze(elevations map[Hex]float64) (FlowDirectionMap, FlowAccumulationMap, error)
}
