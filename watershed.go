package hexrelief

import (
	"container/heap"
	"log/slog"
	"sort"
	"time"

	"github.com/voidshard/hexrelief/internal/flow"
)

// WatershedCalculator divides a hex elevation map into drainage basins.
type WatershedCalculator struct {
	cfg *WatershedConfig
	log *slog.Logger
}

// NewWatershedCalculator returns a calculator, nil cfg uses DefaultWatershedConfig().
func NewWatershedCalculator(cfg *WatershedConfig) *WatershedCalculator {
	return newWatershedCalculator(cfg, nil)
}

func newWatershedCalculator(cfg *WatershedConfig, log *slog.Logger) *WatershedCalculator {
	return &WatershedCalculator{cfg: cfg.withDefaults(), log: componentLogger(log, modWatershed)}
}

// PourPoints returns hexes with no downslope neighbour, lowest first (ties
// by q then r).
//
// A neighbour is downslope if it is at least MinElevationDiff lower, or if
// it has no data and this hex is more than MinElevationDiff above
// DefaultElevation.
func (w *WatershedCalculator) PourPoints(elevations map[Hex]float64) []Hex {
	out := []Hex{}
	for _, h := range flow.SortedKeys(elevations) {
		if !w.hasDownslope(h, elevations) {
			out = append(out, h)
		}
	}
	sortByElevation(out, elevations)
	return out
}

func (w *WatershedCalculator) hasDownslope(h Hex, elevations map[Hex]float64) bool {
	elev := elevations[h]
	for _, n := range h.Neighbors() {
		nelev, ok := elevations[n]
		if !ok {
			if elev > w.cfg.DefaultElevation+w.cfg.MinElevationDiff {
				return true
			}
			continue
		}
		if nelev <= elev-w.cfg.MinElevationDiff {
			return true
		}
	}
	return false
}

// Calculate assigns every hex in elevations to a basin. Basin ids start at
// 1 and follow pour point order.
//
// Hexes that no pour point's flood reaches (they drain off the painted
// area) seed further basins of their own, lowest first, so every input hex
// always appears in the result.
func (w *WatershedCalculator) Calculate(elevations map[Hex]float64) WatershedMap {
	start := time.Now()
	out := WatershedMap{}
	if len(elevations) == 0 {
		return out
	}

	pours := w.PourPoints(elevations)

	switch w.cfg.Strategy {
	case PriorityFlood:
		w.priorityFlood(pours, elevations, out)
	default:
		for i, p := range pours {
			w.priorityFlood([]Hex{p}, elevations, out, i+1)
		}
	}

	pourCount := len(pours)
	outlets := 0
	if len(out) < len(elevations) {
		rest := []Hex{}
		for _, h := range flow.SortedKeys(elevations) {
			if _, ok := out[h]; !ok {
				rest = append(rest, h)
			}
		}
		sortByElevation(rest, elevations)

		next := pourCount + 1
		for _, h := range rest {
			if _, ok := out[h]; ok {
				continue
			}
			w.priorityFlood([]Hex{h}, elevations, out, next)
			next++
			outlets++
		}
	}

	w.log.Info("calculated watersheds",
		"hexes", len(elevations),
		"pourPoints", pourCount,
		"outletBasins", outlets,
		"strategy", w.cfg.Strategy,
		"elapsed", time.Since(start),
	)
	return out
}

// priorityFlood grows basins from seeds, always expanding the lowest
// frontier hex. Seeds get ids from ids, or 1.. in order if not given.
// A hex joins the basin of whichever frontier reaches it first; a
// neighbour is only entered if it is no more than MinElevationDiff below
// the hex being expanded.
func (w *WatershedCalculator) priorityFlood(seeds []Hex, elevations map[Hex]float64, out WatershedMap, ids ...int) {
	pq := &hexQueue{}
	for i, s := range seeds {
		if _, done := out[s]; done {
			continue
		}
		id := i + 1
		if i < len(ids) {
			id = ids[i]
		}
		heap.Push(pq, &queued{hex: s, elevation: elevations[s], basin: id, order: pq.next()})
	}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*queued)
		if _, done := out[cur.hex]; done {
			continue
		}
		out[cur.hex] = cur.basin

		for _, n := range cur.hex.Neighbors() {
			if _, done := out[n]; done {
				continue
			}
			nelev, ok := elevations[n]
			if !ok {
				continue
			}
			if nelev < cur.elevation-w.cfg.MinElevationDiff {
				continue // belongs to some lower basin
			}
			heap.Push(pq, &queued{hex: n, elevation: nelev, basin: cur.basin, order: pq.next()})
		}
	}
}

// BasinSizes counts hexes per basin id.
func BasinSizes(ws WatershedMap) map[int]int {
	out := map[int]int{}
	for _, id := range ws {
		out[id]++
	}
	return out
}

// sortByElevation sorts hexes lowest first, ties by q then r
func sortByElevation(in []Hex, elevations map[Hex]float64) {
	sort.SliceStable(in, func(i, j int) bool {
		ei, ej := elevations[in[i]], elevations[in[j]]
		if ei != ej {
			return ei < ej
		}
		if in[i].Q != in[j].Q {
			return in[i].Q < in[j].Q
		}
		return in[i].R < in[j].R
	})
}

// queued is a flood frontier entry
type queued struct {
	hex       Hex
	elevation float64
	basin     int
	order     int // insertion order, keeps pops deterministic on ties
}

// hexQueue is a min-heap of frontier hexes by elevation
type hexQueue struct {
	items []*queued
	count int
}

func (q *hexQueue) next() int {
	q.count++
	return q.count
}

func (q *hexQueue) Len() int { return len(q.items) }

func (q *hexQueue) Less(i, j int) bool {
	if q.items[i].elevation != q.items[j].elevation {
		return q.items[i].elevation < q.items[j].elevation
	}
	return q.items[i].order < q.items[j].order
}

func (q *hexQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *hexQueue) Push(x interface{}) { q.items = append(q.items, x.(*queued)) }

func (q *hexQueue) Pop() interface{} {
	n := len(q.items)
	item := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return item
}
