package hexrelief

import (
	"log/slog"
)

// Config groups the settings of every component. Any nil section is
// replaced by its Default...Config().
type Config struct {
	Field     *FieldConfig
	Contour   *ContourConfig
	Hillshade *HillshadeConfig
	Watershed *WatershedConfig
	River     *RiverConfig
	Flow      *FlowConfig

	// Logger receives structured progress lines from each component.
	// Nothing is logged if not given.
	Logger *slog.Logger
}

// FieldConfig configures how an ElevationField turns control points into
// a dense raster.
type FieldConfig struct {
	// Resolution is the width & height of the (square) raster in pixels.
	// Control point x,y are given in the same pixel space.
	Resolution int // default 200 if 0

	// Method is the interpolation kernel, RBF if not given.
	Method Interpolation `json:",omitempty"`

	// Sigma is the RBF falloff distance in pixels; larger values give
	// broader, smoother hills.
	Sigma float64 // default 20 if 0

	// Power is the IDW distance exponent.
	Power float64 // default 2 if 0

	// SeaLevel is the elevation an IDW surface relaxes toward far from any
	// control point. With no control points an IDW raster is all SeaLevel.
	SeaLevel float64

	// SeaLevelWeight is the weight of an implicit SeaLevel sample mixed into
	// every IDW cell. Zero turns the anchor off so that distant cells take
	// the plain weighted average of the control points. RBF ignores it.
	SeaLevelWeight float64
}

// ContourConfig configures contour line extraction.
type ContourConfig struct {
	// Interval between contour levels.
	Interval float64 // default 100 if 0

	// MajorInterval marks levels that are a multiple of it as Major
	// (typically drawn thicker). Less than 0 disables major contours.
	MajorInterval float64 // default 500 if 0

	// Smoothing is the number of Chaikin corner cutting passes, 0 for none.
	Smoothing int

	// MinElevation & MaxElevation override the raster's own range
	// when working out which levels to generate.
	MinElevation *float64 `json:",omitempty"`
	MaxElevation *float64 `json:",omitempty"`

	// Levels, if given, is used instead of stepping by Interval.
	Levels []float64 `json:",omitempty"`
}

// HillshadeConfig configures the light source used for shaded relief.
// Angles are in degrees.
type HillshadeConfig struct {
	// Azimuth is the compass direction the light comes from (0 = north,
	// clockwise).
	Azimuth float64

	// Altitude is the angle of the light above the horizon.
	Altitude float64

	// ZFactor exaggerates (or flattens) vertical relief.
	ZFactor float64 // default 1 if 0

	// CellSize is the horizontal size of a pixel in elevation units.
	CellSize float64 // default 1 if 0
}

// WatershedConfig configures drainage basin detection over the hex grid.
type WatershedConfig struct {
	// MinElevationDiff is how much lower a neighbour must be to count as
	// downslope. Also how far below the current hex a flood may step.
	MinElevationDiff float64

	// DefaultElevation is assumed for hexes without data (eg. sea).
	DefaultElevation float64

	// Strategy decides how basins grow, Sequential if not given.
	Strategy FloodStrategy `json:",omitempty"`
}

// WidthFunc maps flow accumulation to a river width. Results are always
// clamped to the configured min / max width.
type WidthFunc func(accumulation float64) float64

// RiverConfig configures river network extraction.
type RiverConfig struct {
	// Threshold is the flow accumulation (upstream hexes, inclusive) a hex
	// needs to be considered part of a river.
	Threshold float64 // default 5 if 0

	MinWidth    float64 // default 2 if 0
	MaxWidth    float64 // default 20 if 0
	WidthFactor float64 // default 2 if 0

	// Width overrides the default logarithmic width curve
	// (MinWidth + log2(accumulation) * WidthFactor).
	Width WidthFunc `json:"-"`
}

// FlowConfig configures the bundled D8Analyzer.
type FlowConfig struct {
	// MinSlope is how much lower a neighbour must be to receive flow.
	MinSlope float64

	// DefaultElevation is assumed for hexes without data.
	DefaultElevation float64

	// RandomFlats breaks ties between equally steep neighbours at random
	// (seeded by Seed) rather than taking the first in direction order.
	RandomFlats bool
	Seed        int64

	// MaxTraceSteps bounds TraceFlowPath.
	MaxTraceSteps int // default 1000 if 0
}

// DefaultConfig returns a Config with every section set to its defaults.
func DefaultConfig() *Config {
	return &Config{
		Field:     DefaultFieldConfig(),
		Contour:   DefaultContourConfig(),
		Hillshade: DefaultHillshadeConfig(),
		Watershed: DefaultWatershedConfig(),
		River:     DefaultRiverConfig(),
		Flow:      DefaultFlowConfig(),
	}
}

// DefaultFieldConfig returns default raster settings.
func DefaultFieldConfig() *FieldConfig {
	return &FieldConfig{
		Resolution:     200,
		Method:         RBF,
		Sigma:          20,
		Power:          2,
		SeaLevel:       0,
		SeaLevelWeight: 1e-4,
	}
}

// DefaultContourConfig returns default contour settings.
func DefaultContourConfig() *ContourConfig {
	return &ContourConfig{
		Interval:      100,
		MajorInterval: 500,
		Smoothing:     1,
	}
}

// DefaultHillshadeConfig returns a light from the north west, 45 degrees up.
func DefaultHillshadeConfig() *HillshadeConfig {
	return &HillshadeConfig{
		Azimuth:  315,
		Altitude: 45,
		ZFactor:  1,
		CellSize: 1,
	}
}

// DefaultWatershedConfig returns default watershed settings.
func DefaultWatershedConfig() *WatershedConfig {
	return &WatershedConfig{
		MinElevationDiff: 0.1,
		DefaultElevation: 0,
		Strategy:         Sequential,
	}
}

// DefaultRiverConfig returns default river settings.
func DefaultRiverConfig() *RiverConfig {
	return &RiverConfig{
		Threshold:   5,
		MinWidth:    2,
		MaxWidth:    20,
		WidthFactor: 2,
	}
}

// DefaultFlowConfig returns default flow settings.
func DefaultFlowConfig() *FlowConfig {
	return &FlowConfig{
		MinSlope:      0.1,
		MaxTraceSteps: 1000,
	}
}

// withDefaults returns a copy of c with nil sections & unset fields filled in.
func (c *Config) withDefaults() *Config {
	out := &Config{}
	if c != nil {
		*out = *c
	}
	out.Field = out.Field.withDefaults()
	out.Contour = out.Contour.withDefaults()
	out.Hillshade = out.Hillshade.withDefaults()
	out.Watershed = out.Watershed.withDefaults()
	out.River = out.River.withDefaults()
	out.Flow = out.Flow.withDefaults()
	out.Logger = orDiscard(out.Logger)
	return out
}

func (c *FieldConfig) withDefaults() *FieldConfig {
	def := DefaultFieldConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.Resolution <= 0 {
		out.Resolution = def.Resolution
	}
	if out.Method == "" {
		out.Method = def.Method
	}
	if out.Sigma <= 0 {
		out.Sigma = def.Sigma
	}
	if out.Power <= 0 {
		out.Power = def.Power
	}
	if out.SeaLevelWeight < 0 {
		out.SeaLevelWeight = 0
	}
	return &out
}

func (c *ContourConfig) withDefaults() *ContourConfig {
	def := DefaultContourConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.Interval <= 0 {
		out.Interval = def.Interval
	}
	if out.MajorInterval == 0 {
		out.MajorInterval = def.MajorInterval
	}
	if out.Smoothing < 0 {
		out.Smoothing = 0
	}
	return &out
}

func (c *HillshadeConfig) withDefaults() *HillshadeConfig {
	def := DefaultHillshadeConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.ZFactor == 0 {
		out.ZFactor = def.ZFactor
	}
	if out.CellSize <= 0 {
		out.CellSize = def.CellSize
	}
	return &out
}

func (c *WatershedConfig) withDefaults() *WatershedConfig {
	def := DefaultWatershedConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.Strategy == "" {
		out.Strategy = def.Strategy
	}
	return &out
}

func (c *RiverConfig) withDefaults() *RiverConfig {
	def := DefaultRiverConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.Threshold <= 0 {
		out.Threshold = def.Threshold
	}
	if out.MinWidth <= 0 {
		out.MinWidth = def.MinWidth
	}
	if out.MaxWidth <= 0 {
		out.MaxWidth = def.MaxWidth
	}
	if out.MaxWidth < out.MinWidth {
		out.MaxWidth = out.MinWidth
	}
	if out.WidthFactor <= 0 {
		out.WidthFactor = def.WidthFactor
	}
	return &out
}

func (c *FlowConfig) withDefaults() *FlowConfig {
	def := DefaultFlowConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.MaxTraceSteps <= 0 {
		out.MaxTraceSteps = def.MaxTraceSteps
	}
	return &out
}
