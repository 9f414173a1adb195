package hexrelief

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Terrain holds an elevation field plus every component configured from
// one Config, & runs the relief and hydrology pipelines.
type Terrain struct {
	cfg *Config
	log *slog.Logger

	// Field holds the control points the relief pipeline renders.
	Field *ElevationField

	contours   *ContourGenerator
	hillshade  *HillshadeCalculator
	watersheds *WatershedCalculator
	rivers     *RiverNetworkExtractor
	flow       FlowAnalyzer
}

// Relief is one render of the elevation field
type Relief struct {
	Width         int
	Height        int
	Checksum      string
	MinElevation  float64
	MaxElevation  float64
	ControlPoints []ControlPoint
	Contours      []*ContourPath
	Stats         *ReliefStats `json:",omitempty"`

	raster    []float32
	hillshade []uint8
	rmap      *reliefImage
}

// ReliefStats holds counts about a Relief
type ReliefStats struct {
	ControlPoints  int
	Contours       int
	MajorContours  int
	ClosedContours int
	ContourPoints  int
}

// Hydrology is the result of running flow analysis, watersheds & river
// extraction over one hex elevation map.
type Hydrology struct {
	Directions   FlowDirectionMap
	Accumulation FlowAccumulationMap
	Watersheds   WatershedMap
	Rivers       *RiverNetwork
	Stats        *HydrologyStats `json:",omitempty"`

	hexes []Hex
}

// New creates a Terrain from cfg, nil uses DefaultConfig(). Flow analysis
// uses a D8Analyzer unless replaced with SetFlowAnalyzer.
func New(cfg *Config) *Terrain {
	cfg = cfg.withDefaults()
	return &Terrain{
		cfg:        cfg,
		log:        componentLogger(cfg.Logger, modTerrain),
		Field:      newElevationField(cfg.Field, cfg.Logger),
		contours:   newContourGenerator(cfg.Contour, cfg.Logger),
		hillshade:  newHillshadeCalculator(cfg.Hillshade, cfg.Logger),
		watersheds: newWatershedCalculator(cfg.Watershed, cfg.Logger),
		rivers:     newRiverNetworkExtractor(cfg.River, cfg.Logger),
		flow:       newD8Analyzer(cfg.Flow, cfg.Logger),
	}
}

// SetFlowAnalyzer replaces the flow analysis used by Hydrology. nil
// restores the bundled D8Analyzer.
func (t *Terrain) SetFlowAnalyzer(a FlowAnalyzer) {
	if a == nil {
		a = newD8Analyzer(t.cfg.Flow, t.cfg.Logger)
	}
	t.flow = a
}

// Relief snapshots the field's raster then computes contours & hillshade
// from it concurrently.
func (t *Terrain) Relief(ctx context.Context) (*Relief, error) {
	start := time.Now()
	snap := t.Field.snapshot()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &Relief{
		Width:         snap.size,
		Height:        snap.size,
		Checksum:      snap.checksum,
		ControlPoints: snap.points,
		raster:        snap.grid,
	}
	r.MinElevation, r.MaxElevation = minmax(snap.grid)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		paths, err := t.contours.GenerateContext(gctx, snap.grid, snap.size, snap.size)
		if err != nil {
			return errors.Wrap(err, "contours")
		}
		r.Contours = paths
		return nil
	})
	g.Go(func() error {
		r.hillshade = t.hillshade.Calculate(snap.grid, snap.size, snap.size)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Stats = newReliefStats(r)
	r.rmap = newReliefImage(r.raster, r.Width, r.Height, r.hillshade, r.Contours, r.ControlPoints)

	t.log.Info("rendered relief",
		"checksum", r.Checksum,
		"contours", r.Stats.Contours,
		"elapsed", time.Since(start),
	)
	return r, nil
}

// Hydrology runs flow analysis then river extraction, while watersheds are
// computed alongside.
func (t *Terrain) Hydrology(ctx context.Context, elevations map[Hex]float64) (*Hydrology, error) {
	start := time.Now()
	h := &Hydrology{hexes: sortedHexes(elevations)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dirs, acc, err := t.flow.Analyze(elevations)
		if err != nil {
			return errors.Wrap(err, "flow analysis")
		}
		h.Directions, h.Accumulation = dirs, acc
		if err := gctx.Err(); err != nil {
			return err
		}

		network, err := t.rivers.Extract(dirs, acc)
		if err != nil {
			return errors.Wrap(err, "river extraction")
		}
		h.Rivers = network
		return nil
	})
	g.Go(func() error {
		h.Watersheds = t.watersheds.Calculate(elevations)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h.Stats = newHydrologyStats(h)
	t.log.Info("computed hydrology",
		"hexes", h.Stats.Hexes,
		"basins", h.Stats.Basins,
		"rivers", h.Stats.Rivers.SegmentCount,
		"elapsed", time.Since(start),
	)
	return h, nil
}

// JSON returns the relief as json.
func (r *Relief) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// SaveJSON writes a json file to the given path.
func (r *Relief) SaveJSON(fpath string) error {
	return saveJSON(fpath, r)
}

// Map returns the relief as an image.
// The map essentially holds the same data but saved graphically rather than in
// Go structs.
//
// A Relief decoded from json carries no image & returns nil.
func (r *Relief) Map() ReliefMap {
	if r.rmap == nil {
		return nil
	}
	return r.rmap
}

// Raster returns the row-major elevation raster the relief was built from.
func (r *Relief) Raster() []float32 {
	return r.raster
}

// Hillshade returns the row-major hillshade, one byte per raster pixel.
func (r *Relief) Hillshade() []uint8 {
	return r.hillshade
}

// JSON returns the hydrology as json, maps are keyed by "q,r".
func (h *Hydrology) JSON() ([]byte, error) {
	return json.Marshal(h)
}

// SaveJSON writes a json file to the given path.
func (h *Hydrology) SaveJSON(fpath string) error {
	return saveJSON(fpath, h)
}

// Map renders the hexes with the given circumradius in pixels.
func (h *Hydrology) Map(hexSize float64) HydroMap {
	return newHydroImage(hexSize, h.hexes, h.Watersheds, h.Rivers)
}

func newReliefStats(r *Relief) *ReliefStats {
	s := &ReliefStats{ControlPoints: len(r.ControlPoints), Contours: len(r.Contours)}
	for _, p := range r.Contours {
		if p.Major {
			s.MajorContours++
		}
		if p.Closed {
			s.ClosedContours++
		}
		s.ContourPoints += len(p.Points)
	}
	return s
}

func newHydrologyStats(h *Hydrology) *HydrologyStats {
	sizes := BasinSizes(h.Watersheds)
	return &HydrologyStats{
		Hexes:      len(h.hexes),
		Basins:     len(sizes),
		BasinSizes: sizes,
		Flow:       NewFlowStats(h.Directions, h.Accumulation),
		Rivers:     h.Rivers.Stats(),
	}
}

func saveJSON(fpath string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(fpath, data, 0644)
}
