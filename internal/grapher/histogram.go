package grapher

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

// HistogramKind selects the scalar a histogram is built from.
type HistogramKind int

const (
	SizeHistogram HistogramKind = iota
	DurationHistogram
	ThroughputHistogram
)

var histogramNames = [...]string{"size", "duration", "throughput"}

var histogramLabels = [...]string{
	"request size (kiB)",
	"request duration (ms)",
	"request speed (kiB/s)",
}

func (k HistogramKind) String() string {
	if k < SizeHistogram || k > ThroughputHistogram {
		return fmt.Sprintf("HistogramKind(%d)", int(k))
	}
	return histogramNames[k]
}

// ParseHistogramKind maps "size", "duration" or "throughput" to a HistogramKind.
func ParseHistogramKind(s string) (HistogramKind, error) {
	for i, name := range histogramNames {
		if s == name {
			return HistogramKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHistogram, s)
}

// Bin counts the samples in [Lo, Hi). The last bin of a histogram also holds Hi.
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}

// HistogramView is a binned distribution ready to be drawn.
type HistogramView struct {
	Kind       HistogramKind
	Title      string
	FileName   string
	AccessType trace.AccessType
	Mode       PlotMode
	XLabel     string
	YLabel     string

	Bins  []Bin
	Range Range

	// Samples is the length of the series; Binned of those fell inside Range.
	Samples int
	Binned  int
	// Excluded counts records left out of the series (zero-duration records
	// in the throughput view).
	Excluded int

	Mean   float64
	StdDev float64
}

// Empty reports whether the view has nothing to draw.
func (v HistogramView) Empty() bool {
	return v.Samples == 0
}

// Histogram bins the selected file's operations by kind. An empty series
// yields a view with no bins rather than an error.
func (g *SubGrapher) Histogram(kind HistogramKind) (HistogramView, error) {
	if kind < SizeHistogram || kind > ThroughputHistogram {
		return HistogramView{}, fmt.Errorf("%w: %s", ErrUnknownHistogram, kind)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	norm, sel, err := g.prepareLocked(g.snapshotLocked(), g.accessType)
	if err != nil {
		g.logger.Warn("Cannot build histogram", zap.Stringer("kind", kind), zap.Error(err))
		rejections.WithLabelValues("histogram").Inc()
		return HistogramView{}, err
	}

	series, excluded := histogramSeries(norm.ops, kind)
	if excluded > 0 {
		g.logger.Debug("Excluded zero-duration operations from throughput",
			zap.String("file_name", sel.fileName),
			zap.Int("excluded", excluded),
		)
	}

	view := BinSeries(series, g.opts.HistogramBins, g.opts.ClipSigma)
	view.Kind = kind
	view.Title = ElideText(sel.fileName, g.opts.MaxNameLength)
	view.FileName = sel.fileName
	view.AccessType = sel.accessType
	view.Mode = sel.plotMode
	view.XLabel = histogramLabels[kind]
	view.YLabel = "count"
	view.Excluded = excluded

	views.WithLabelValues(kind.String()).Inc()
	return view, nil
}

// histogramSeries extracts the scalar series for kind. Throughput skips
// zero-duration records and reports how many it skipped.
func histogramSeries(ops []trace.Operation, kind HistogramKind) (series []float64, excluded int) {
	series = make([]float64, 0, len(ops))
	for _, op := range ops {
		switch kind {
		case SizeHistogram:
			series = append(series, op.Size)
		case DurationHistogram:
			series = append(series, op.Duration)
		case ThroughputHistogram:
			if op.Duration <= 0 {
				excluded++
				continue
			}
			series = append(series, op.Size/op.Duration*1000)
		}
	}
	return series, excluded
}

// BinSeries counts series into bins equal-width bins spanning
// [max(0, mean-sigma*std), mean+sigma*std]. Values outside the span are dropped.
// A zero spread widens the span to mean±0.5. Only the binning fields of the
// returned view are set.
func BinSeries(series []float64, bins int, sigma float64) HistogramView {
	view := HistogramView{Samples: len(series)}
	if len(series) == 0 || bins <= 0 {
		return view
	}

	mean, std := stat.PopMeanStdDev(series, nil)
	lo := math.Max(0, mean-sigma*std)
	hi := mean + sigma*std
	if !(hi > lo) {
		lo = math.Max(0, mean-0.5)
		hi = mean + 0.5
	}
	view.Mean, view.StdDev = mean, std
	view.Range = Range{Min: lo, Max: hi}

	dividers := make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	for i := range dividers {
		dividers[i] = lo + width*float64(i)
	}
	// The top edge is inclusive.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	inRange := make([]float64, 0, len(series))
	for _, v := range series {
		if v >= lo && v <= hi {
			inRange = append(inRange, v)
		}
	}
	sort.Float64s(inRange)

	counts := make([]float64, bins)
	if len(inRange) > 0 {
		counts = stat.Histogram(counts, dividers, inRange, nil)
	}

	view.Bins = make([]Bin, bins)
	for i := range view.Bins {
		view.Bins[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	view.Bins[bins-1].Hi = hi
	view.Binned = len(inRange)
	return view
}
