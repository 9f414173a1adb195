package hexrelief

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/unixpickle/model3d/model2d"

	"github.com/voidshard/hexrelief/internal/spatial"
)

const (
	// joinTolerance is how close two segment ends must be to be joined
	joinTolerance = 0.01

	// flatEdge is the corner difference under which an edge crossing is
	// placed at the edge midpoint
	flatEdge = 0.001

	// maxLevels caps how many levels an interval may produce
	maxLevels = 10000
)

// ContourGenerator extracts iso-elevation lines from a raster using
// marching squares.
type ContourGenerator struct {
	cfg *ContourConfig
	log *slog.Logger
}

// NewContourGenerator returns a generator, nil cfg uses DefaultContourConfig().
func NewContourGenerator(cfg *ContourConfig) *ContourGenerator {
	return newContourGenerator(cfg, nil)
}

func newContourGenerator(cfg *ContourConfig, log *slog.Logger) *ContourGenerator {
	return &ContourGenerator{cfg: cfg.withDefaults(), log: componentLogger(log, modContour)}
}

// Generate returns contour paths for every level over a row-major raster.
// A raster smaller than width*height (or under 2x2) yields no paths.
func (g *ContourGenerator) Generate(raster []float32, width, height int) []*ContourPath {
	paths, _ := g.GenerateContext(context.Background(), raster, width, height)
	return paths
}

// GenerateContext is Generate but stops between levels if ctx is done.
func (g *ContourGenerator) GenerateContext(ctx context.Context, raster []float32, width, height int) ([]*ContourPath, error) {
	if width < 2 || height < 2 || len(raster) < width*height {
		return nil, nil
	}

	start := time.Now()
	levels := g.Levels(raster)

	all := []*ContourPath{}
	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		segments := marchingSquares(raster, width, height, level)
		for _, pts := range joinSegments(segments) {
			closed := len(pts) > 2 && spatial.Near(pts[0], pts[len(pts)-1], joinTolerance)
			if closed {
				pts = pts[:len(pts)-1]
			}
			all = append(all, &ContourPath{
				Elevation: level,
				Points:    chaikin(pts, closed, g.cfg.Smoothing),
				Closed:    closed,
				Major:     g.isMajor(level),
			})
		}
	}

	g.log.Info("generated contours",
		"levels", len(levels),
		"paths", len(all),
		"width", width,
		"height", height,
		"elapsed", time.Since(start),
	)
	return all, nil
}

// Levels returns the elevations Generate will trace for the given raster.
func (g *ContourGenerator) Levels(raster []float32) []float64 {
	if len(g.cfg.Levels) > 0 {
		out := append([]float64{}, g.cfg.Levels...)
		sort.Float64s(out)
		return out
	}

	lo, hi := minmax(raster)
	interval := g.cfg.Interval

	rangeMin := math.Floor(lo/interval) * interval
	if g.cfg.MinElevation != nil {
		rangeMin = *g.cfg.MinElevation
	}
	rangeMax := math.Ceil(hi/interval) * interval
	if g.cfg.MaxElevation != nil {
		rangeMax = *g.cfg.MaxElevation
	}

	count := (rangeMax - rangeMin) / interval
	if math.IsNaN(count) || math.IsInf(count, 0) || count > maxLevels {
		g.log.Warn("contour range too large, no levels generated",
			"min", rangeMin, "max", rangeMax, "interval", interval,
		)
		return nil
	}

	levels := []float64{}
	for i := 0; ; i++ {
		level := rangeMin + float64(i)*interval
		if level > rangeMax+interval*1e-9 {
			break
		}
		levels = append(levels, level)
	}
	return levels
}

// isMajor returns if level is a multiple of the major interval
func (g *ContourGenerator) isMajor(level float64) bool {
	if g.cfg.MajorInterval <= 0 {
		return false
	}
	return math.Abs(math.Remainder(level, g.cfg.MajorInterval)) < 1e-6
}

// marchingSquares returns the unjoined contour segments at level
func marchingSquares(raster []float32, width, height int, level float64) []model2d.Segment {
	segments := []model2d.Segment{}
	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			a := float64(raster[y*width+x])       // top left
			b := float64(raster[y*width+x+1])     // top right
			c := float64(raster[(y+1)*width+x+1]) // bottom right
			d := float64(raster[(y+1)*width+x])   // bottom left
			segments = append(segments, cellSegments(x, y, a, b, c, d, level)...)
		}
	}
	return segments
}

// cellCase is the 4 bit corner code of a cell, a = bit 0 through d = bit 3
func cellCase(a, b, c, d, level float64) int {
	code := 0
	if a >= level {
		code |= 1
	}
	if b >= level {
		code |= 2
	}
	if c >= level {
		code |= 4
	}
	if d >= level {
		code |= 8
	}
	return code
}

// cellSegments returns the 0, 1 or 2 segments crossing the cell whose top
// left corner is x,y.
func cellSegments(x, y int, a, b, c, d, level float64) []model2d.Segment {
	code := cellCase(a, b, c, d, level)
	if code == 0 || code == 15 {
		return nil
	}

	fx, fy := float64(x), float64(y)
	crossing := func(v1, v2 float64) float64 {
		if math.Abs(v2-v1) < flatEdge {
			return 0.5
		}
		return (level - v1) / (v2 - v1)
	}

	top := model2d.Coord{X: fx + crossing(a, b), Y: fy}
	right := model2d.Coord{X: fx + 1, Y: fy + crossing(b, c)}
	bottom := model2d.Coord{X: fx + crossing(d, c), Y: fy + 1}
	left := model2d.Coord{X: fx, Y: fy + crossing(a, d)}

	seg := func(p, q model2d.Coord) model2d.Segment {
		return model2d.Segment{p, q}
	}

	switch code {
	case 1:
		return []model2d.Segment{seg(left, top)}
	case 14:
		return []model2d.Segment{seg(top, left)}
	case 2:
		return []model2d.Segment{seg(top, right)}
	case 13:
		return []model2d.Segment{seg(right, top)}
	case 3:
		return []model2d.Segment{seg(left, right)}
	case 12:
		return []model2d.Segment{seg(right, left)}
	case 4:
		return []model2d.Segment{seg(right, bottom)}
	case 11:
		return []model2d.Segment{seg(bottom, right)}
	case 6:
		return []model2d.Segment{seg(top, bottom)}
	case 9:
		return []model2d.Segment{seg(bottom, top)}
	case 7:
		return []model2d.Segment{seg(left, bottom)}
	case 8:
		return []model2d.Segment{seg(bottom, left)}
	case 5, 10:
		// saddle: a high centre joins the two high corners, so the
		// segments cut off the two low ones
		centreHigh := (a+b+c+d)/4 >= level
		if code == 5 {
			if centreHigh {
				return []model2d.Segment{seg(left, bottom), seg(top, right)}
			}
			return []model2d.Segment{seg(left, top), seg(right, bottom)}
		}
		if centreHigh {
			return []model2d.Segment{seg(top, left), seg(bottom, right)}
		}
		return []model2d.Segment{seg(bottom, left), seg(right, top)}
	}
	return nil
}

// joinSegments chains segments that share ends into polylines. Each
// polyline grows from its tail, then (if it didn't close) from its head.
// A closed ring's last point repeats its first.
func joinSegments(segments []model2d.Segment) [][]model2d.Coord {
	idx := spatial.NewEndpointHash(segments, joinTolerance)
	out := [][]model2d.Coord{}

	for i := 0; i < idx.Len(); i++ {
		if idx.Used(i) {
			continue
		}
		first := idx.Take(i)
		path := []model2d.Coord{first[0], first[1]}

		isClosed := func() bool {
			return len(path) > 2 && spatial.Near(path[0], path[len(path)-1], joinTolerance)
		}

		for !isClosed() {
			j, far, ok := idx.Match(path[len(path)-1])
			if !ok {
				break
			}
			idx.Take(j)
			path = append(path, far)
		}

		if !isClosed() {
			head := []model2d.Coord{}
			tip := path[0]
			for {
				j, far, ok := idx.Match(tip)
				if !ok {
					break
				}
				idx.Take(j)
				head = append(head, far)
				tip = far
			}
			if len(head) > 0 {
				joined := make([]model2d.Coord, 0, len(head)+len(path))
				for k := len(head) - 1; k >= 0; k-- {
					joined = append(joined, head[k])
				}
				path = append(joined, path...)
			}
		}

		out = append(out, path)
	}

	return out
}

// chaikin applies corner cutting iterations times. Every edge is replaced
// by points 1/4 and 3/4 along it; closed rings include the wrap edge.
func chaikin(pts []model2d.Coord, closed bool, iterations int) []model2d.Coord {
	if closed && len(pts) < 3 {
		closed = false
	}
	for iter := 0; iter < iterations && len(pts) > 1; iter++ {
		edges := len(pts) - 1
		if closed {
			edges = len(pts)
		}

		smoothed := make([]model2d.Coord, 0, edges*2)
		for i := 0; i < edges; i++ {
			p1, p2 := pts[i], pts[(i+1)%len(pts)]
			smoothed = append(smoothed,
				p1.Scale(0.75).Add(p2.Scale(0.25)),
				p1.Scale(0.25).Add(p2.Scale(0.75)),
			)
		}
		pts = smoothed
	}
	return pts
}
