package hexrelief

import (
	"log/slog"
	"math"
	"time"

	"github.com/voidshard/hexrelief/internal/flow"
)

// D8Analyzer is a FlowAnalyzer sending all water from a hex to its single
// steepest downhill neighbour (the hex version of D8 routing).
type D8Analyzer struct {
	cfg *FlowConfig
	log *slog.Logger
}

// NewD8Analyzer returns an analyzer, nil cfg uses DefaultFlowConfig().
func NewD8Analyzer(cfg *FlowConfig) *D8Analyzer {
	return newD8Analyzer(cfg, nil)
}

func newD8Analyzer(cfg *FlowConfig, log *slog.Logger) *D8Analyzer {
	return &D8Analyzer{cfg: cfg.withDefaults(), log: componentLogger(log, modFlow)}
}

// Analyze implements FlowAnalyzer.
func (a *D8Analyzer) Analyze(elevations map[Hex]float64) (FlowDirectionMap, FlowAccumulationMap, error) {
	dirs := a.Directions(elevations)
	return dirs, a.Accumulation(dirs), nil
}

// Directions returns the steepest descent direction of every hex, NoFlow
// for pour points. Unpainted neighbours count as DefaultElevation.
func (a *D8Analyzer) Directions(elevations map[Hex]float64) FlowDirectionMap {
	start := time.Now()
	dirs := flow.Directions(elevations, flow.Settings{
		MinSlope:         a.cfg.MinSlope,
		DefaultElevation: a.cfg.DefaultElevation,
		RandomFlats:      a.cfg.RandomFlats,
		Seed:             a.cfg.Seed,
	})

	pour := 0
	for _, d := range dirs {
		if d == NoFlow {
			pour++
		}
	}
	a.log.Debug("calculated flow directions", "hexes", len(dirs), "pourPoints", pour, "elapsed", time.Since(start))
	return dirs
}

// Accumulation counts, for every hex, itself plus every hex upstream of it.
// Hexes caught in a direction cycle are left with just their own count.
func (a *D8Analyzer) Accumulation(dirs FlowDirectionMap) FlowAccumulationMap {
	start := time.Now()
	acc, unsorted := flow.Accumulate(dirs, 1)

	if unsorted > 0 {
		a.log.Warn("flow directions contain cycles", "hexes", unsorted)
		for h := range dirs {
			if _, ok := acc[h]; !ok {
				acc[h] = 1
			}
		}
	}

	a.log.Debug("calculated flow accumulation", "hexes", len(acc), "elapsed", time.Since(start))
	return acc
}

// TraceFlowPath follows flow from start until a pour point, the edge of the
// data or MaxTraceSteps. A cycle stops the trace early (and is logged).
func (a *D8Analyzer) TraceFlowPath(start Hex, dirs FlowDirectionMap) []Hex {
	path, ok := flow.Trace(start, dirs, a.cfg.MaxTraceSteps)
	if !ok {
		a.log.Warn("flow path loops back on itself", "start", start.Key(), "length", len(path))
	}
	return path
}

// HexesAbove returns hexes with accumulation >= threshold, ordered by q, r.
func HexesAbove(acc FlowAccumulationMap, threshold float64) []Hex {
	out := []Hex{}
	for _, h := range flow.SortedKeys(acc) {
		if acc[h] >= threshold {
			out = append(out, h)
		}
	}
	return out
}

// NewFlowStats summarises flow maps. Either map may be nil.
func NewFlowStats(dirs FlowDirectionMap, acc FlowAccumulationMap) *FlowStats {
	s := &FlowStats{TotalHexes: len(dirs)}
	for _, d := range dirs {
		if d.Valid() {
			s.FlowingHexCount++
			s.DirectionDistribution[d]++
		} else {
			s.PourPointCount++
		}
	}

	if len(acc) == 0 {
		return s
	}

	s.MinAccumulation = math.Inf(1)
	sum := 0.0
	for _, h := range flow.SortedKeys(acc) {
		v := acc[h]
		sum += v
		if v < s.MinAccumulation {
			s.MinAccumulation = v
		}
		if s.MaxAccumulationHex == nil || v > s.MaxAccumulation {
			hx := h
			s.MaxAccumulation = v
			s.MaxAccumulationHex = &hx
		}
	}
	s.AverageAccumulation = sum / float64(len(acc))
	return s
}
