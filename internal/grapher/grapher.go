// Package grapher turns a loaded trace into renderable views: per-operation
// interval geometry for one file, run statistics, and distribution histograms.
// It never draws; views are handed to a Surface.
package grapher

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

const (
	DefaultHistogramBins = 50
	DefaultClipSigma     = 2.0
	DefaultMaxNameLength = 80
)

// DataSource provides the current trace document. *holder.DataHolder satisfies it.
type DataSource interface {
	Data() *trace.Dataset
}

// Options tune histogram binning and title elision.
type Options struct {
	HistogramBins int
	ClipSigma     float64
	MaxNameLength int
}

// DefaultOptions returns the binning and elision defaults.
func DefaultOptions() Options {
	return Options{
		HistogramBins: DefaultHistogramBins,
		ClipSigma:     DefaultClipSigma,
		MaxNameLength: DefaultMaxNameLength,
	}
}

// SubGrapher holds the current selection (access type, file, time mode, plot mode)
// and a cached normalized copy of the selected file's operations. All methods
// are safe for concurrent use; each render works on a snapshot of the selection.
type SubGrapher struct {
	opts   Options
	logger *zap.Logger

	mu         sync.Mutex
	source     DataSource
	accessType trace.AccessType
	timeMode   TimeMode
	plotMode   PlotMode
	fileName   string
	appStart   *float64 // relapp reference, fixed on first use
	cache      *normalized
}

// New creates a SubGrapher reading from source. Zero-valued options fall back to defaults.
func New(source DataSource, opts Options, logger *zap.Logger) *SubGrapher {
	defaults := DefaultOptions()
	if opts.HistogramBins <= 0 {
		opts.HistogramBins = defaults.HistogramBins
	}
	if opts.ClipSigma <= 0 {
		opts.ClipSigma = defaults.ClipSigma
	}
	if opts.MaxNameLength <= 0 {
		opts.MaxNameLength = defaults.MaxNameLength
	}
	g := &SubGrapher{
		opts:       opts,
		logger:     logger,
		source:     source,
		accessType: trace.Reads,
		timeMode:   Absolute,
		plotMode:   Show,
	}
	logger.Debug("SubGrapher initialized",
		zap.Int("histogram_bins", opts.HistogramBins),
		zap.Float64("clip_sigma", opts.ClipSigma),
		zap.Int("max_name_length", opts.MaxNameLength),
	)
	return g
}

// SetDataSource attaches a different document source and forgets the relapp reference.
func (g *SubGrapher) SetDataSource(source DataSource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.source = source
	g.appStart = nil
	g.cache = nil
}

// SetType selects the access type whose operations are normalized.
func (g *SubGrapher) SetType(t trace.AccessType) error {
	if !t.Valid() {
		g.logger.Warn("Access type not in allowed list, keeping current", zap.Stringer("requested", t))
		return fmt.Errorf("%w: %s", ErrInvalidAccessType, t)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accessType = t
	return nil
}

func (g *SubGrapher) Type() trace.AccessType {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accessType
}

// SetName selects the file to plot. Existence is checked at render time.
func (g *SubGrapher) SetName(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fileName = name
}

func (g *SubGrapher) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fileName
}

// SetTimeMode changes the time reference frame. An unknown mode is logged and
// rejected; the current mode stays in effect.
func (g *SubGrapher) SetTimeMode(m TimeMode) error {
	if !m.Valid() {
		g.logger.Warn("Time mode not in allowed list, keeping current", zap.Stringer("requested", m))
		rejections.WithLabelValues("invalid_time_mode").Inc()
		return fmt.Errorf("%w: %s", ErrInvalidTimeMode, m)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timeMode = m
	return nil
}

// SetTimeModeName is SetTimeMode for configuration strings.
func (g *SubGrapher) SetTimeModeName(name string) error {
	m, err := ParseTimeMode(name)
	if err != nil {
		g.logger.Warn("Time mode not in allowed list, keeping current", zap.String("requested", name))
		rejections.WithLabelValues("invalid_time_mode").Inc()
		return err
	}
	return g.SetTimeMode(m)
}

func (g *SubGrapher) TimeMode() TimeMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timeMode
}

// SetPlotMode changes how surfaces dispose of views. It never invalidates the cache.
func (g *SubGrapher) SetPlotMode(m PlotMode) error {
	if !m.Valid() {
		g.logger.Warn("Plot mode not in allowed list, keeping current", zap.Stringer("requested", m))
		rejections.WithLabelValues("invalid_plot_mode").Inc()
		return fmt.Errorf("%w: %s", ErrInvalidPlotMode, m)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.plotMode = m
	return nil
}

// SetPlotModeName is SetPlotMode for configuration strings.
func (g *SubGrapher) SetPlotModeName(name string) error {
	m, err := ParsePlotMode(name)
	if err != nil {
		g.logger.Warn("Plot mode not in allowed list, keeping current", zap.String("requested", name))
		rejections.WithLabelValues("invalid_plot_mode").Inc()
		return err
	}
	return g.SetPlotMode(m)
}

func (g *SubGrapher) PlotMode() PlotMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.plotMode
}

// Filenames returns the names present under t in the current document.
func (g *SubGrapher) Filenames(t trace.AccessType) []string {
	g.mu.Lock()
	source := g.source
	g.mu.Unlock()
	if source == nil {
		return nil
	}
	return source.Data().Names(t)
}
