// Package spatial holds small lookup structures used when joining contour
// segments and when searching for control points.
package spatial

import (
	"math"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model2d"
)

type cellKey struct {
	X int64
	Y int64
}

// EndpointHash indexes segment ends by position so that "which unused
// segment touches this point" is a constant time lookup.
//
// Positions are bucketed by rounding to the tolerance; lookups check the
// 3x3 buckets around a point so two ends within tolerance of each other
// are always found even when they round into different buckets.
type EndpointHash struct {
	tolerance float64
	buckets   map[cellKey][]int

	segments []model2d.Segment
	used     []bool
}

// NewEndpointHash indexes both ends of every segment.
func NewEndpointHash(segments []model2d.Segment, tolerance float64) *EndpointHash {
	h := &EndpointHash{
		tolerance: tolerance,
		buckets:   map[cellKey][]int{},
		segments:  segments,
		used:      make([]bool, len(segments)),
	}
	for i, s := range segments {
		for _, end := range s {
			k := h.key(end)
			h.buckets[k] = append(h.buckets[k], i)
		}
	}
	return h
}

func (h *EndpointHash) key(c model2d.Coord) cellKey {
	return cellKey{
		X: int64(math.Round(c.X / h.tolerance)),
		Y: int64(math.Round(c.Y / h.tolerance)),
	}
}

// Len is the number of indexed segments
func (h *EndpointHash) Len() int {
	return len(h.segments)
}

// Used returns if segment i has been consumed
func (h *EndpointHash) Used(i int) bool {
	return h.used[i]
}

// Take marks segment i as consumed and drops it from the index.
func (h *EndpointHash) Take(i int) model2d.Segment {
	h.used[i] = true
	for _, end := range h.segments[i] {
		k := h.key(end)
		bucket := h.buckets[k]
		for j := 0; j < len(bucket); j++ {
			if bucket[j] == i {
				essentials.UnorderedDelete(&bucket, j)
				j--
			}
		}
		if len(bucket) == 0 {
			delete(h.buckets, k)
		} else {
			h.buckets[k] = bucket
		}
	}
	return h.segments[i]
}

// Match finds the lowest numbered unused segment with an end within
// tolerance of c. It returns the segment index and the coordinate at the
// segment's *other* end, the point a path grows to when it is attached.
func (h *EndpointHash) Match(c model2d.Coord) (int, model2d.Coord, bool) {
	k := h.key(c)

	best := -1
	var far model2d.Coord

	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, i := range h.buckets[cellKey{X: k.X + dx, Y: k.Y + dy}] {
				if h.used[i] || (best >= 0 && i >= best) {
					continue
				}
				s := h.segments[i]
				if Near(s[0], c, h.tolerance) {
					best, far = i, s[1]
				} else if Near(s[1], c, h.tolerance) {
					best, far = i, s[0]
				}
			}
		}
	}

	return best, far, best >= 0
}

// Near returns if a & b are within tol of each other on both axes
func Near(a, b model2d.Coord, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol
}
