package spatial

import (
	"sort"

	"github.com/unixpickle/model3d/model2d"
)

// tieEpsilon is the distance under which two candidates count as equally near
const tieEpsilon = 1e-9

// NearestIndex finds the closest labelled point to a query position.
// Ties between equidistant points, including several labels at the same
// position, go to the lexically smallest label.
type NearestIndex struct {
	tree   *model2d.CoordTree
	labels map[model2d.Coord][]string
}

// NewNearestIndex builds an index over the given labelled points.
func NewNearestIndex(points map[string]model2d.Coord) *NearestIndex {
	labels := map[model2d.Coord][]string{}
	coords := []model2d.Coord{}
	for id, c := range points {
		if _, ok := labels[c]; !ok {
			coords = append(coords, c)
		}
		labels[c] = append(labels[c], id)
	}
	for _, ids := range labels {
		sort.Strings(ids)
	}
	n := &NearestIndex{labels: labels}
	if len(coords) > 0 {
		n.tree = model2d.NewCoordTree(coords)
	}
	return n
}

// Nearest returns the label of the closest point within maxDist (inclusive)
// of c, along with its distance.
func (n *NearestIndex) Nearest(c model2d.Coord, maxDist float64) (string, float64, bool) {
	if n == nil || n.tree == nil {
		return "", 0, false
	}

	found := n.tree.KNN(1, c)
	if len(found) == 0 {
		return "", 0, false
	}

	dist := found[0].Dist(c)
	if dist > maxDist {
		return "", 0, false
	}

	best := n.labels[found[0]][0]
	for _, p := range n.within(c, dist+tieEpsilon) {
		if id := n.labels[p][0]; id < best {
			best = id
		}
	}
	return best, dist, true
}

// within returns every indexed coord no further than r from c, growing the
// KNN query until it reaches past r.
func (n *NearestIndex) within(c model2d.Coord, r float64) []model2d.Coord {
	for k := 2; ; k++ {
		found := n.tree.KNN(k, c)
		if len(found) < k {
			return found
		}
		if found[len(found)-1].Dist(c) > r {
			return found[:len(found)-1]
		}
	}
}
