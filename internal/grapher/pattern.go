package grapher

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

// LineWidth is the stroke width surfaces use for pattern segments.
const LineWidth = 8.0

// Overlay placement, as fractions of the plot area measured from the bottom-left corner.
const (
	overlayX = 0.95
	overlayY = 0.05
)

// Range is a closed numeric interval.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Span() float64 { return r.Max - r.Min }

// Segment is one operation drawn from (X0, Y0) to (X1, Y1). Index points back to
// the operation's position in the file's operation list.
type Segment struct {
	X0, Y0 float64
	X1, Y1 float64
	Index  int
}

// Alignment of overlay text relative to its anchor.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignTop
	AlignBottom
)

// Overlay is text anchored at a relative position inside the plot area.
type Overlay struct {
	Text   string
	X, Y   float64
	HAlign Alignment
	VAlign Alignment
}

// PatternView is everything a surface needs to draw one file's access pattern.
type PatternView struct {
	Title      string
	FileName   string
	AccessType trace.AccessType
	TimeMode   TimeMode
	Mode       PlotMode

	Segments  []Segment
	LineWidth float64
	XRange    Range
	YRange    Range
	XLabel    string
	YLabel    string
	XTicks    []float64

	Stats   *RunStats
	Overlay *Overlay
}

// Pattern builds the pattern view of the selected file under t. The file must
// exist under t; otherwise the condition is logged, nothing changes, and
// ErrFileNotInDataset is returned. The whole render works on one snapshot of
// the document. t becomes the selected type once normalization succeeds.
func (g *SubGrapher) Pattern(t trace.AccessType, withStats bool) (PatternView, error) {
	if !t.Valid() {
		return PatternView{}, fmt.Errorf("%w: %s", ErrInvalidAccessType, t)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ds := g.snapshotLocked()
	if ds == nil {
		rejections.WithLabelValues("no_data_set").Inc()
		return PatternView{}, ErrNoDataSet
	}
	if _, ok := ds.Lookup(t, g.fileName); !ok {
		g.logger.Warn("File is not in data set",
			zap.String("file_name", g.fileName),
			zap.Stringer("access_type", t),
		)
		rejections.WithLabelValues("unknown_file").Inc()
		return PatternView{}, fmt.Errorf("%w: %q under %s", ErrFileNotInDataset, g.fileName, t)
	}

	norm, sel, err := g.prepareLocked(ds, t)
	if err != nil {
		return PatternView{}, err
	}
	g.accessType = t
	if len(norm.ops) == 0 {
		g.logger.Warn("No operations to plot", zap.String("file_name", sel.fileName), zap.Stringer("access_type", t))
		rejections.WithLabelValues("no_data").Inc()
		return PatternView{}, fmt.Errorf("%w: %q under %s", ErrNoData, sel.fileName, t)
	}

	view := buildPattern(norm, sel, g.opts.MaxNameLength)
	if withStats {
		rs, _ := ComputeRunStats(norm.ops)
		view.Stats = &rs
		view.Overlay = &Overlay{
			Text:   FormatStats(t, rs),
			X:      overlayX,
			Y:      overlayY,
			HAlign: AlignRight,
			VAlign: AlignBottom,
		}
	}
	views.WithLabelValues("pattern").Inc()
	return view, nil
}

// PlotReads is Pattern(trace.Reads, withStats).
func (g *SubGrapher) PlotReads(withStats bool) (PatternView, error) {
	return g.Pattern(trace.Reads, withStats)
}

// PlotWrites is Pattern(trace.Writes, withStats).
func (g *SubGrapher) PlotWrites(withStats bool) (PatternView, error) {
	return g.Pattern(trace.Writes, withStats)
}

func buildPattern(norm *normalized, sel selection, maxName int) PatternView {
	view := PatternView{
		Title:      ElideText(sel.fileName, maxName),
		FileName:   sel.fileName,
		AccessType: sel.accessType,
		TimeMode:   sel.timeMode,
		Mode:       sel.plotMode,
		Segments:   make([]Segment, len(norm.ops)),
		LineWidth:  LineWidth,
		XLabel:     "file offset (kiB)",
		YLabel:     "time (ms)",
	}
	if sel.timeMode == Count {
		view.YLabel = "operation #"
	}

	maxEnd, maxTime := 0.0, math.Inf(-1)
	for i, op := range norm.ops {
		seg := Segment{X0: op.Offset, X1: op.End(), Index: i}
		if sel.timeMode == Count {
			seg.Y0, seg.Y1 = float64(i), float64(i+1)
		} else {
			seg.Y0, seg.Y1 = op.Start, op.Start+op.Duration
		}
		view.Segments[i] = seg
		maxEnd = math.Max(maxEnd, seg.X1)
		maxTime = math.Max(maxTime, seg.Y1)
	}

	view.XRange = Range{Min: 0, Max: maxEnd}
	view.YRange = Range{Min: norm.axisStart, Max: maxTime}
	view.XTicks = Ticks(0, maxEnd)
	return view
}

// Pick returns the segment closest to the data point (x, y) if it lies within
// tolerance, measured as a fraction of the axis spans.
func (v PatternView) Pick(x, y, tolerance float64) (Segment, bool) {
	sx, sy := v.XRange.Span(), v.YRange.Span()
	if sx <= 0 {
		sx = 1
	}
	if sy <= 0 {
		sy = 1
	}

	best := -1
	bestDist := math.Inf(1)
	for i, seg := range v.Segments {
		d := pointSegmentDistance(
			(x-v.XRange.Min)/sx, (y-v.YRange.Min)/sy,
			(seg.X0-v.XRange.Min)/sx, (seg.Y0-v.YRange.Min)/sy,
			(seg.X1-v.XRange.Min)/sx, (seg.Y1-v.YRange.Min)/sy,
		)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > tolerance {
		return Segment{}, false
	}
	return v.Segments[best], true
}

func pointSegmentDistance(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	cx, cy := ax+t*dx, ay+t*dy
	return math.Hypot(px-cx, py-cy)
}

// IsRecoverable reports whether err is a selection problem the caller can fix
// by choosing another file, mode or type, as opposed to a missing document.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrFileNotInDataset) ||
		errors.Is(err, ErrInvalidTimeMode) ||
		errors.Is(err, ErrInvalidPlotMode) ||
		errors.Is(err, ErrInvalidAccessType) ||
		errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrNoFileSelected)
}
