package hexrelief

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownValue is returned when text does not name a known option
	// (interpolation method, point type, flood strategy).
	ErrUnknownValue = errors.New("unknown value")
)

// PointType indicates what sort of feature a ControlPoint marks.
// It does not change the interpolation, it's a hint for editors & renderers.
type PointType string

const (
	Spot   PointType = "spot"   // plain spot height
	Peak   PointType = "peak"   // summit
	Pit    PointType = "pit"    // local low, sinkhole, crater
	Saddle PointType = "saddle" // pass between two peaks
	Ridge  PointType = "ridge"  // point along a ridge line
)

// Interpolation selects the kernel used to spread control points over the raster.
type Interpolation string

const (
	RBF Interpolation = "rbf" // gaussian radial basis, smooth rolling terrain
	IDW Interpolation = "idw" // inverse distance weighting, passes exactly through points
)

// FloodStrategy selects how the watershed calculator grows basins.
type FloodStrategy string

const (
	// Sequential floods from each pour point in turn. Earlier pour points
	// may claim hexes a later, lower, pour point would have taken.
	Sequential FloodStrategy = "sequential"

	// PriorityFlood grows every basin at once, always expanding the lowest
	// frontier hex across all basins.
	PriorityFlood FloodStrategy = "priority-flood"
)

var (
	allPointTypes      = []string{string(Spot), string(Peak), string(Pit), string(Saddle), string(Ridge)}
	allInterpolations  = []string{string(RBF), string(IDW)}
	allFloodStrategies = []string{string(Sequential), string(PriorityFlood)}
)

// AllPointTypes returns all known PointType values
func AllPointTypes() []PointType {
	out := make([]PointType, len(allPointTypes))
	for i, p := range allPointTypes {
		out[i] = PointType(p)
	}
	return out
}

// UnmarshalText accepts any known point type (case insensitive).
// Empty text is a Spot.
func (p *PointType) UnmarshalText(data []byte) error {
	v, err := parseEnum("point type", string(data), string(Spot), allPointTypes)
	if err != nil {
		return err
	}
	*p = PointType(v)
	return nil
}

// UnmarshalText accepts "rbf" or "idw" (case insensitive). Empty text is RBF.
func (i *Interpolation) UnmarshalText(data []byte) error {
	v, err := parseEnum("interpolation", string(data), string(RBF), allInterpolations)
	if err != nil {
		return err
	}
	*i = Interpolation(v)
	return nil
}

// UnmarshalText accepts a known flood strategy. Empty text is Sequential.
func (f *FloodStrategy) UnmarshalText(data []byte) error {
	v, err := parseEnum("flood strategy", string(data), string(Sequential), allFloodStrategies)
	if err != nil {
		return err
	}
	*f = FloodStrategy(v)
	return nil
}

// parseEnum matches in against known values, suggesting the closest ones
// when nothing matches.
func parseEnum(kind, in, fallback string, known []string) (string, error) {
	in = strings.ToLower(strings.TrimSpace(in))
	if in == "" {
		return fallback, nil
	}
	for _, k := range known {
		if k == in {
			return k, nil
		}
	}

	if near := suggest(in, known); len(near) > 0 {
		return "", errors.Wrapf(ErrUnknownValue, "%s %q, did you mean %s?", kind, in, strings.Join(near, " or "))
	}
	return "", errors.Wrapf(ErrUnknownValue, "%s %q, expected one of %s", kind, in, strings.Join(known, ", "))
}

// suggest returns known values within a small edit distance of in,
// closest first.
func suggest(in string, known []string) []string {
	type candidate struct {
		value string
		dist  int
	}

	cands := []candidate{}
	for _, k := range known {
		dist := levenshtein.ComputeDistance(in, k)
		if dist > editLimit(len(k)) {
			continue
		}
		cands = append(cands, candidate{value: k, dist: dist})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].dist < cands[j].dist
	})

	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.value
	}
	return out
}

func editLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
