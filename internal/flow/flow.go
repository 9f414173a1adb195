// Package flow computes D8-style flow direction & flow accumulation over a
// sparse hex elevation map.
package flow

import (
	"math"
	"math/rand"
	"sort"

	"github.com/voidshard/hexrelief/internal/hex"
)

// Settings for Directions.
type Settings struct {
	MinSlope         float64 // a neighbour must be at least this much lower to receive flow
	DefaultElevation float64 // elevation assumed for unpainted neighbours
	RandomFlats      bool    // break ties between equally steep neighbours at random
	Seed             int64
}

// Directions picks, for every hex in elevations, the neighbour with the
// steepest descent (exceeding MinSlope). Hexes without one get hex.NoFlow.
func Directions(elevations map[hex.Coord]float64, s Settings) map[hex.Coord]hex.Direction {
	rng := rand.New(rand.NewSource(s.Seed))
	out := make(map[hex.Coord]hex.Direction, len(elevations))

	// iterate in a fixed order so seeded tie breaks are reproducible
	for _, c := range SortedKeys(elevations) {
		elev := elevations[c]

		steepest := hex.NoFlow
		maxDescent := s.MinSlope

		for i, n := range c.Neighbors() {
			nelev, ok := elevations[n]
			if !ok {
				nelev = s.DefaultElevation
			}
			descent := elev - nelev

			if descent > maxDescent {
				maxDescent = descent
				steepest = hex.Direction(i)
			} else if descent == maxDescent && steepest != hex.NoFlow && s.RandomFlats {
				if rng.Float64() < 0.5 {
					steepest = hex.Direction(i)
				}
			}
		}

		out[c] = steepest
	}

	return out
}

// Inflows builds the reverse flow graph: for each hex, the hexes whose
// direction points at it. Every key of dirs is present in the result, as is
// any hex outside dirs that something drains into (a pour point left out of
// the map).
func Inflows(dirs map[hex.Coord]hex.Direction) map[hex.Coord][]hex.Coord {
	in := make(map[hex.Coord][]hex.Coord, len(dirs))
	for c := range dirs {
		in[c] = nil
	}
	for _, c := range SortedKeys(dirs) {
		down, ok := c.Neighbor(dirs[c])
		if !ok {
			continue
		}
		in[down] = append(in[down], c)
	}
	return in
}

// Accumulate returns, per hex, base (the hex itself) plus the accumulation of
// everything draining into it. Hexes are processed headwaters first (Kahn).
// The second return value is the number of hexes that could not be ordered
// because they sit on (or downstream of) a direction cycle.
func Accumulate(dirs map[hex.Coord]hex.Direction, base float64) (map[hex.Coord]float64, int) {
	inflows := Inflows(dirs)

	// only hexes in dirs are accumulated, flow off the map is dropped
	degree := make(map[hex.Coord]int, len(dirs))
	queue := []hex.Coord{}
	for _, c := range SortedKeys(dirs) {
		degree[c] = len(inflows[c])
		if degree[c] == 0 {
			queue = append(queue, c)
		}
	}

	acc := make(map[hex.Coord]float64, len(dirs))
	sorted := 0
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		sorted++

		total := base
		for _, up := range inflows[c] {
			total += acc[up]
		}
		acc[c] = total

		down, ok := c.Neighbor(dirs[c])
		if !ok {
			continue
		}
		if _, known := degree[down]; !known {
			continue
		}
		degree[down]--
		if degree[down] == 0 {
			queue = append(queue, down)
		}
	}

	return acc, len(dirs) - sorted
}

// Trace follows directions from start until a hex with no direction, a
// revisit (cycle) or maxSteps. The bool is false if a cycle stopped the trace.
func Trace(start hex.Coord, dirs map[hex.Coord]hex.Direction, maxSteps int) ([]hex.Coord, bool) {
	path := []hex.Coord{start}
	seen := map[hex.Coord]bool{start: true}
	current := start

	for step := 0; step < maxSteps; step++ {
		d, ok := dirs[current]
		if !ok {
			break
		}
		down, ok := current.Neighbor(d)
		if !ok {
			break
		}
		if seen[down] {
			return path, false
		}
		seen[down] = true
		path = append(path, down)
		current = down
	}

	return path, true
}

// Width maps accumulation to a river width: logarithmic growth clamped
// to [min, max].
func Width(accumulation, min, max, factor float64) float64 {
	w := min + math.Log2(math.Max(1, accumulation))*factor
	return math.Min(math.Max(w, min), max)
}

// SortedKeys returns the keys of m ordered by q then r.
func SortedKeys[V any](m map[hex.Coord]V) []hex.Coord {
	keys := make([]hex.Coord, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Q != keys[j].Q {
			return keys[i].Q < keys[j].Q
		}
		return keys[i].R < keys[j].R
	})
	return keys
}
