package hexrelief

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/voidshard/hexrelief/internal/flow"
)

var (
	// ErrTributaryCycle implies the river segments feed into each other in
	// a loop, so no stream order can be given. This can only happen if the
	// flow directions themselves contain a cycle.
	ErrTributaryCycle = errors.New("cycle in river tributary graph")
)

// RiverNetworkExtractor turns flow maps into a ranked network of river
// segments.
type RiverNetworkExtractor struct {
	cfg *RiverConfig
	log *slog.Logger
}

// NewRiverNetworkExtractor returns an extractor, nil cfg uses DefaultRiverConfig().
func NewRiverNetworkExtractor(cfg *RiverConfig) *RiverNetworkExtractor {
	return newRiverNetworkExtractor(cfg, nil)
}

func newRiverNetworkExtractor(cfg *RiverConfig, log *slog.Logger) *RiverNetworkExtractor {
	return &RiverNetworkExtractor{cfg: cfg.withDefaults(), log: componentLogger(log, modRiver)}
}

// Width returns the river width for the given accumulation, clamped to
// [MinWidth, MaxWidth].
func (r *RiverNetworkExtractor) Width(accumulation float64) float64 {
	if r.cfg.Width != nil {
		return clamp(r.cfg.Width(accumulation), r.cfg.MinWidth, r.cfg.MaxWidth)
	}
	return flow.Width(accumulation, r.cfg.MinWidth, r.cfg.MaxWidth, r.cfg.WidthFactor)
}

// Extract finds every hex with accumulation >= Threshold and splits them
// into segments.
//
// Segments start at sources (river hexes nothing river-like flows into) and
// run downstream until a pour point, the river falling below threshold, or
// a confluence. A segment ending at a confluence includes the confluence
// hex, which then starts a new segment of its own.
//
// The network is returned even if stream ordering fails, alongside
// ErrTributaryCycle.
func (r *RiverNetworkExtractor) Extract(dirs FlowDirectionMap, acc FlowAccumulationMap) (*RiverNetwork, error) {
	start := time.Now()
	network := &RiverNetwork{Segments: []*RiverSegment{}, Threshold: r.cfg.Threshold}

	river := map[Hex]bool{}
	for h, v := range acc {
		if v >= r.cfg.Threshold {
			river[h] = true
		}
	}
	network.TotalRiverHexes = len(river)
	if len(river) == 0 {
		r.log.Info("no river hexes", "threshold", r.cfg.Threshold)
		return network, nil
	}

	// upstream river neighbours of each river hex
	upstream := map[Hex][]Hex{}
	for down, ups := range flow.Inflows(dirs) {
		if !river[down] {
			continue
		}
		for _, u := range ups {
			if river[u] {
				upstream[down] = append(upstream[down], u)
			}
		}
	}

	queue := []Hex{}
	for _, h := range flow.SortedKeys(river) {
		if len(upstream[h]) == 0 {
			queue = append(queue, h)
		}
	}
	sources := len(queue)

	processed := map[Hex]bool{}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if processed[h] {
			continue
		}

		path, confluence := r.trace(h, dirs, river, upstream, processed)
		if confluence {
			queue = append(queue, path[len(path)-1])
		}
		network.Segments = append(network.Segments, r.newSegment(len(network.Segments), path, acc))
	}

	if unreached := len(river) - len(processed); unreached > 0 {
		r.log.Warn("river hexes not reached from any source", "hexes", unreached)
	}

	LinkTributaries(network.Segments)
	maxOrder, err := AssignStreamOrders(network.Segments)
	network.MaxOrder = maxOrder

	r.log.Info("extracted river network",
		"threshold", r.cfg.Threshold,
		"riverHexes", network.TotalRiverHexes,
		"sources", sources,
		"segments", len(network.Segments),
		"maxOrder", maxOrder,
		"elapsed", time.Since(start),
	)
	return network, err
}

// trace follows flow downstream from h. The bool is true if the path ends
// at (and includes) a confluence.
func (r *RiverNetworkExtractor) trace(h Hex, dirs FlowDirectionMap, river map[Hex]bool, upstream map[Hex][]Hex, processed map[Hex]bool) ([]Hex, bool) {
	path := []Hex{h}
	cur := h
	for {
		processed[cur] = true

		d, ok := dirs[cur]
		if !ok {
			return path, false
		}
		down, ok := cur.Neighbor(d)
		if !ok || !river[down] {
			return path, false // pour point, or the river ends
		}
		if len(upstream[down]) > 1 {
			return append(path, down), !processed[down]
		}
		if processed[down] {
			return path, false // loops back into itself
		}

		path = append(path, down)
		cur = down
	}
}

func (r *RiverNetworkExtractor) newSegment(n int, path []Hex, acc FlowAccumulationMap) *RiverSegment {
	accStart := acc[path[0]]
	if accStart == 0 {
		accStart = r.cfg.Threshold
	}
	accEnd := acc[path[len(path)-1]]
	if accEnd == 0 {
		accEnd = r.cfg.Threshold
	}

	return &RiverSegment{
		ID:                fmt.Sprintf("river-%d", n),
		Path:              path,
		Order:             1,
		AccumulationStart: accStart,
		AccumulationEnd:   accEnd,
		WidthStart:        r.Width(accStart),
		WidthEnd:          r.Width(accEnd),
		TributaryIDs:      []string{},
	}
}

// LinkTributaries sets TributaryIDs of every segment to the segments whose
// path ends at its first hex.
func LinkTributaries(segments []*RiverSegment) {
	ends := map[Hex][]string{}
	for _, s := range segments {
		if len(s.Path) == 0 {
			continue
		}
		ends[s.End()] = append(ends[s.End()], s.ID)
	}

	for _, s := range segments {
		s.TributaryIDs = []string{}
		if len(s.Path) == 0 {
			continue
		}
		for _, id := range ends[s.Start()] {
			if id != s.ID {
				s.TributaryIDs = append(s.TributaryIDs, id)
			}
		}
	}
}

// AssignStreamOrders sets the Strahler order of every segment from its
// TributaryIDs & returns the highest order.
//
// Headwaters (no tributaries) are order 1. Otherwise a segment takes the
// highest order among its tributaries, plus one if two or more share it.
// Unknown tributary ids are ignored. Returns ErrTributaryCycle if a segment
// is (indirectly) its own tributary.
func AssignStreamOrders(segments []*RiverSegment) (int, error) {
	const (
		visiting = 1
		done     = 2
	)

	byID := make(map[string]*RiverSegment, len(segments))
	for _, s := range segments {
		byID[s.ID] = s
	}

	type frame struct {
		seg  *RiverSegment
		next int
	}

	state := map[string]int{}
	maxOrder := 0

	for _, root := range segments {
		if state[root.ID] == done {
			continue
		}

		state[root.ID] = visiting
		stack := []*frame{{seg: root}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]

			if top.next < len(top.seg.TributaryIDs) {
				id := top.seg.TributaryIDs[top.next]
				top.next++

				trib, ok := byID[id]
				if !ok {
					continue
				}
				switch state[id] {
				case visiting:
					return maxOrder, errors.Wrapf(ErrTributaryCycle, "segment %s feeds back into itself", id)
				case done:
					continue
				}
				state[id] = visiting
				stack = append(stack, &frame{seg: trib})
				continue
			}

			top.seg.Order = strahler(top.seg, byID)
			if top.seg.Order > maxOrder {
				maxOrder = top.seg.Order
			}
			state[top.seg.ID] = done
			stack = stack[:len(stack)-1]
		}
	}

	return maxOrder, nil
}

// strahler is the order of s given its tributaries are already ordered
func strahler(s *RiverSegment, byID map[string]*RiverSegment) int {
	highest, count := 0, 0
	for _, id := range s.TributaryIDs {
		trib, ok := byID[id]
		if !ok {
			continue
		}
		switch {
		case trib.Order > highest:
			highest, count = trib.Order, 1
		case trib.Order == highest:
			count++
		}
	}

	if highest == 0 {
		return 1
	}
	if count > 1 {
		return highest + 1
	}
	return highest
}

// Stats summarises the network.
func (n *RiverNetwork) Stats() *RiverStats {
	s := &RiverStats{
		SegmentCount:          len(n.Segments),
		TotalRiverHexes:       n.TotalRiverHexes,
		MaxOrder:              n.MaxOrder,
		SegmentsByStreamOrder: map[int]int{},
	}
	if len(n.Segments) == 0 {
		return s
	}

	total := 0
	for _, seg := range n.Segments {
		total += len(seg.Path)
		s.LongestSegmentLength = maxint(s.LongestSegmentLength, len(seg.Path))
		s.SegmentsByStreamOrder[seg.Order]++

		if seg.Order == 1 {
			s.HeadwaterCount++
		}
		if len(seg.TributaryIDs) > 1 {
			s.ConfluenceCount++
		}
		if seg.Order == n.MaxOrder {
			s.MainStemCount++
		}
	}
	s.AverageSegmentLength = float64(total) / float64(len(n.Segments))
	return s
}

// Segment returns the segment with the given id
func (n *RiverNetwork) Segment(id string) (*RiverSegment, bool) {
	for _, s := range n.Segments {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}
