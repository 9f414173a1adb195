package hexrelief

import (
	"github.com/unixpickle/model3d/model2d"
)

// ControlPoint is an author placed elevation sample.
type ControlPoint struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Elevation float64   `json:"elevation"`
	Type      PointType `json:"type,omitempty"`
}

// ContourPath is a single iso-elevation line in raster pixel space.
// Closed paths do not repeat their first point at the end.
type ContourPath struct {
	Elevation float64
	Points    []model2d.Coord
	Closed    bool
	Major     bool `json:",omitempty"`
}

// RiverSegment is a run of river hexes between a source or confluence and
// the next confluence, pour point or the end of the river.
type RiverSegment struct {
	ID string

	// Path runs downstream. A segment that ends at a confluence includes
	// the confluence hex as its last element.
	Path []Hex

	// Order is the Strahler stream order, 1 for headwaters.
	Order int

	AccumulationStart float64
	AccumulationEnd   float64
	WidthStart        float64
	WidthEnd          float64

	// TributaryIDs are the segments whose path ends where this one starts.
	TributaryIDs []string `json:",omitempty"`
}

// Start is the first (most upstream) hex of the segment
func (s *RiverSegment) Start() Hex {
	return s.Path[0]
}

// End is the last (most downstream) hex of the segment
func (s *RiverSegment) End() Hex {
	return s.Path[len(s.Path)-1]
}

// RiverNetwork is the full set of river segments extracted from a flow map.
type RiverNetwork struct {
	Segments        []*RiverSegment
	TotalRiverHexes int
	MaxOrder        int
	Threshold       float64
}

// RiverStats summarises a RiverNetwork
type RiverStats struct {
	SegmentCount          int
	TotalRiverHexes       int
	MaxOrder              int
	HeadwaterCount        int // segments of order 1
	ConfluenceCount       int // segments fed by more than one tributary
	MainStemCount         int // segments of the max order
	AverageSegmentLength  float64
	LongestSegmentLength  int
	SegmentsByStreamOrder map[int]int
}

// FlowStats summarises a FlowDirectionMap & FlowAccumulationMap.
type FlowStats struct {
	TotalHexes            int
	FlowingHexCount       int
	PourPointCount        int
	DirectionDistribution [6]int

	MinAccumulation     float64
	MaxAccumulation     float64
	AverageAccumulation float64
	MaxAccumulationHex  *Hex `json:",omitempty"`
}

// HydrologyStats holds counts about a Hydrology run.
type HydrologyStats struct {
	Hexes      int
	Basins     int
	BasinSizes map[int]int
	Flow       *FlowStats
	Rivers     *RiverStats
}
