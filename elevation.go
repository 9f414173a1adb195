package hexrelief

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/hexrelief/internal/spatial"
)

const (
	// idwExactDist is how close a cell must be to a control point for IDW
	// to return the point's elevation as is
	idwExactDist = 0.01

	// minWeightSum below which a cell is considered to have no data
	minWeightSum = 1e-10
)

// ElevationField owns a set of sparse control points and lazily
// interpolates them into a dense, square, row-major raster.
//
// All methods are safe for concurrent use.
type ElevationField struct {
	mu  sync.Mutex
	log *slog.Logger
	cfg *FieldConfig

	points map[string]ControlPoint

	cache   fieldCache
	nearest *spatial.NearestIndex
}

// fieldCache is the derived raster. It's valid only when checksum is set,
// every mutation clears it.
type fieldCache struct {
	checksum string
	grid     []float32
}

// NewElevationField returns an empty field. A nil cfg uses DefaultFieldConfig().
func NewElevationField(cfg *FieldConfig) *ElevationField {
	return newElevationField(cfg, nil)
}

func newElevationField(cfg *FieldConfig, log *slog.Logger) *ElevationField {
	return &ElevationField{
		log:    componentLogger(log, modField),
		cfg:    cfg.withDefaults(),
		points: map[string]ControlPoint{},
	}
}

// SetConfig changes the interpolation settings, invalidating the cache.
func (f *ElevationField) SetConfig(cfg *FieldConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg.withDefaults()
	f.invalidate()
}

// Config returns a copy of the field's current settings
func (f *ElevationField) Config() FieldConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.cfg
}

// Resolution is the width & height of the raster
func (f *ElevationField) Resolution() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.Resolution
}

// AddControlPoint adds p, replacing any existing point with the same ID.
func (f *ElevationField) AddControlPoint(p ControlPoint) {
	if p.Type == "" {
		p.Type = Spot
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.points[p.ID] = p
	f.invalidate()
}

// UpdateElevation sets the elevation of an existing point.
// Returns false if there is no point with the given id.
func (f *ElevationField) UpdateElevation(id string, elevation float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.points[id]
	if !ok {
		return false
	}
	p.Elevation = elevation
	f.points[id] = p
	f.invalidate()
	return true
}

// RemoveControlPoint returns false if there was no such point.
func (f *ElevationField) RemoveControlPoint(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.points[id]; !ok {
		return false
	}
	delete(f.points, id)
	f.invalidate()
	return true
}

// Clear removes all control points
func (f *ElevationField) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.points = map[string]ControlPoint{}
	f.invalidate()
}

// ControlPoints returns a copy of all points, ordered by id.
func (f *ElevationField) ControlPoints() []ControlPoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedPoints()
}

// Len is the number of control points
func (f *ElevationField) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.points)
}

// FindNearestControlPoint returns the point closest to x,y provided it is
// no further than maxDist away.
func (f *ElevationField) FindNearestControlPoint(x, y, maxDist float64) (ControlPoint, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.nearest == nil {
		pts := make(map[string]model2d.Coord, len(f.points))
		for id, p := range f.points {
			pts[id] = model2d.Coord{X: p.X, Y: p.Y}
		}
		f.nearest = spatial.NewNearestIndex(pts)
	}

	id, _, ok := f.nearest.Nearest(model2d.Coord{X: x, Y: y}, maxDist)
	if !ok {
		return ControlPoint{}, false
	}
	return f.points[id], true
}

// GetElevation bilinearly samples the raster at x,y.
// Returns false if x,y falls outside of [0, resolution).
func (f *ElevationField) GetElevation(x, y float64) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := f.cfg.Resolution
	if math.IsNaN(x) || math.IsNaN(y) || x < 0 || y < 0 || x >= float64(res) || y >= float64(res) {
		return 0, false
	}

	grid := f.ensureCache()
	return float64(bilinear(grid, res, res, float32(x), float32(y))), true
}

// GetCachedGrid returns the row-major raster (resolution * resolution),
// regenerating it first if needed. The slice must not be modified; it is
// replaced, never written to, when the field changes.
func (f *ElevationField) GetCachedGrid() []float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ensureCache()
}

// Raster returns the raster & its dimensions in one consistent snapshot.
func (f *ElevationField) Raster() ([]float32, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	grid := f.ensureCache()
	return grid, f.cfg.Resolution, f.cfg.Resolution
}

// fieldSnapshot is a raster with the checksum & control points it was
// built from, all read under one lock.
type fieldSnapshot struct {
	grid     []float32
	size     int
	checksum string
	points   []ControlPoint
}

func (f *ElevationField) snapshot() fieldSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	grid := f.ensureCache()
	return fieldSnapshot{grid: grid, size: f.cfg.Resolution, checksum: f.cache.checksum, points: f.sortedPoints()}
}

// Checksum returns the checksum the cached raster was built from, or ""
// if the cache has been invalidated and not yet rebuilt.
func (f *ElevationField) Checksum() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cache.checksum
}

// ToJSON returns the control points as a json list, ordered by id.
func (f *ElevationField) ToJSON() ([]byte, error) {
	return json.Marshal(f.ControlPoints())
}

// FromJSON replaces all control points with those in data (as written by
// ToJSON). On error the field is left unchanged.
func (f *ElevationField) FromJSON(data []byte) error {
	pts := []ControlPoint{}
	err := json.Unmarshal(data, &pts)
	if err != nil {
		return errors.Wrap(err, "failed to decode control points")
	}

	next := make(map[string]ControlPoint, len(pts))
	for _, p := range pts {
		if p.Type == "" {
			p.Type = Spot
		}
		next[p.ID] = p
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = next
	f.invalidate()
	return nil
}

// invalidate drops derived data, must hold f.mu
func (f *ElevationField) invalidate() {
	f.cache.checksum = ""
	f.nearest = nil
}

// sortedPoints must hold f.mu
func (f *ElevationField) sortedPoints() []ControlPoint {
	out := make([]ControlPoint, 0, len(f.points))
	for _, p := range f.points {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// checksum hashes the point set & kernel settings, must hold f.mu
func (f *ElevationField) checksum(pts []ControlPoint) string {
	h := fnv.New64a()
	for _, p := range pts {
		fmt.Fprintf(h, "%s,%s,%s,%s;", p.ID, ftoa(p.X), ftoa(p.Y), ftoa(p.Elevation))
	}
	fmt.Fprintf(h, "|%d,%s,%s,%s,%s,%s",
		f.cfg.Resolution, f.cfg.Method, ftoa(f.cfg.Sigma), ftoa(f.cfg.Power), ftoa(f.cfg.SeaLevel), ftoa(f.cfg.SeaLevelWeight),
	)
	return strconv.FormatUint(h.Sum64(), 16)
}

// ensureCache regenerates the raster if required, must hold f.mu
func (f *ElevationField) ensureCache() []float32 {
	if f.cache.checksum != "" && f.cache.grid != nil {
		return f.cache.grid
	}

	start := time.Now()
	pts := f.sortedPoints()
	sum := f.checksum(pts)

	f.cache.grid = interpolate(pts, f.cfg)
	f.cache.checksum = sum

	f.log.Debug("regenerated elevation raster",
		"points", len(pts),
		"resolution", f.cfg.Resolution,
		"method", f.cfg.Method,
		"elapsed", time.Since(start),
	)
	return f.cache.grid
}

// interpolate builds a fresh raster from the given points
func interpolate(pts []ControlPoint, cfg *FieldConfig) []float32 {
	res := cfg.Resolution
	grid := make([]float32, res*res)

	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			grid[y*res+x] = float32(cellValue(float64(x), float64(y), pts, cfg))
		}
	}

	return grid
}

// cellValue is the interpolated elevation at a single raster position
func cellValue(x, y float64, pts []ControlPoint, cfg *FieldConfig) float64 {
	sigma2 := cfg.Sigma * cfg.Sigma

	// the sea level anchor only applies to IDW, RBF is a plain weighted average
	var total, weights float64
	if cfg.Method == IDW {
		total, weights = cfg.SeaLevel*cfg.SeaLevelWeight, cfg.SeaLevelWeight
	}

	for _, p := range pts {
		dx, dy := x-p.X, y-p.Y
		d2 := dx*dx + dy*dy

		var w float64
		switch cfg.Method {
		case IDW:
			d := math.Sqrt(d2)
			if d < idwExactDist {
				return p.Elevation
			}
			w = 1 / math.Pow(d, cfg.Power)
		default:
			w = math.Exp(-d2 / sigma2)
		}

		total += w * p.Elevation
		weights += w
	}

	if weights < minWeightSum {
		return 0
	}
	return total / weights
}

// bilinear samples a row-major raster at fractional x,y (assumed in bounds)
func bilinear(grid []float32, w, h int, x, y float32) float32 {
	x0, y0 := int(math32.Floor(x)), int(math32.Floor(y))
	// float32 rounding can push a value just below w up to w
	if x0 >= w {
		x0 = w - 1
	}
	if y0 >= h {
		y0 = h - 1
	}
	x1, y1 := x0+1, y0+1
	if x1 >= w {
		x1 = w - 1
	}
	if y1 >= h {
		y1 = h - 1
	}
	fx, fy := x-float32(x0), y-float32(y0)

	v00 := grid[y0*w+x0]
	v10 := grid[y0*w+x1]
	v01 := grid[y1*w+x0]
	v11 := grid[y1*w+x1]

	top := v00*(1-fx) + v10*fx
	bottom := v01*(1-fx) + v11*fx
	return top*(1-fy) + bottom*fy
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
