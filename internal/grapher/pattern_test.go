package grapher

import (
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

func TestPatternGeometry(t *testing.T) {
	g, _ := newTestGrapher(t)
	g.SetName("/data/a.db")

	view, err := g.PlotReads(false)
	if err != nil {
		t.Fatalf("PlotReads: %v", err)
	}
	want := []Segment{
		{X0: 0, Y0: 10000, X1: 10, Y1: 10001, Index: 0},
		{X0: 10, Y0: 10500, X1: 30, Y1: 10502, Index: 1},
		{X0: 30, Y0: 11000, X1: 35, Y1: 11000, Index: 2},
	}
	if len(view.Segments) != len(want) {
		t.Fatalf("segments = %d, want %d", len(view.Segments), len(want))
	}
	for i := range want {
		if view.Segments[i] != want[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, view.Segments[i], want[i])
		}
	}
	if view.XRange != (Range{Min: 0, Max: 35}) {
		t.Fatalf("XRange = %+v", view.XRange)
	}
	if view.YRange != (Range{Min: 10000, Max: 11000}) {
		t.Fatalf("YRange = %+v", view.YRange)
	}
	if view.LineWidth != LineWidth || view.XLabel != "file offset (kiB)" || view.YLabel != "time (ms)" {
		t.Fatalf("unexpected styling: width=%v x=%q y=%q", view.LineWidth, view.XLabel, view.YLabel)
	}
	if view.Stats != nil || view.Overlay != nil {
		t.Fatalf("stats overlay present without being requested")
	}
	if len(view.XTicks) == 0 || view.XTicks[len(view.XTicks)-1] < 35 {
		t.Fatalf("XTicks %v should reach the max extent", view.XTicks)
	}
}

func TestPatternCountMode(t *testing.T) {
	g, _ := newTestGrapher(t)
	g.SetName("/data/a.db")
	if err := g.SetTimeMode(Count); err != nil {
		t.Fatalf("SetTimeMode: %v", err)
	}
	view, err := g.Pattern(trace.Reads, false)
	if err != nil {
		t.Fatalf("Pattern: %v", err)
	}
	for i, seg := range view.Segments {
		if seg.Y0 != float64(i) || seg.Y1 != float64(i+1) {
			t.Fatalf("segment %d spans %v..%v, want %d..%d", i, seg.Y0, seg.Y1, i, i+1)
		}
	}
	if view.YRange != (Range{Min: 0, Max: 3}) {
		t.Fatalf("YRange = %+v, want [0,3]", view.YRange)
	}
	if view.YLabel != "operation #" {
		t.Fatalf("YLabel = %q", view.YLabel)
	}
}

func TestPatternWithStats(t *testing.T) {
	g, _ := newTestGrapher(t)
	g.SetName("/data/a.db")
	view, err := g.Pattern(trace.Reads, true)
	if err != nil {
		t.Fatalf("Pattern: %v", err)
	}
	if view.Stats == nil || view.Overlay == nil {
		t.Fatalf("expected stats and overlay")
	}
	rs := view.Stats
	if rs.Count != 3 || rs.TotalSize != 35 || rs.TotalDuration != 3 {
		t.Fatalf("unexpected totals: %+v", rs)
	}
	if !rs.ThroughputDefined || math.Abs(rs.Throughput-35.0/3*1000) > 1e-9 {
		t.Fatalf("throughput = %v (defined %v)", rs.Throughput, rs.ThroughputDefined)
	}
	if rs.SizeMin != 5 || rs.SizeMax != 20 || rs.DurationMin != 0 || rs.DurationMax != 2 {
		t.Fatalf("unexpected extrema: %+v", rs)
	}
	ov := view.Overlay
	if ov.X != 0.95 || ov.Y != 0.05 || ov.HAlign != AlignRight || ov.VAlign != AlignBottom {
		t.Fatalf("overlay placement = %+v", ov)
	}
	if !strings.HasPrefix(ov.Text, "reads total 35.0 kiB in 3 calls") {
		t.Fatalf("overlay text = %q", ov.Text)
	}
}

func TestPatternUnknownFileReportsOnce(t *testing.T) {
	g, logs := newObservedGrapher(t)
	g.SetName("/data/b.db")
	if _, err := g.Pattern(trace.Reads, false); err != nil {
		t.Fatalf("Pattern: %v", err)
	}
	cached := g.cache

	// b.db only exists under reads.
	_, err := g.Pattern(trace.Writes, true)
	if !errors.Is(err, ErrFileNotInDataset) {
		t.Fatalf("expected ErrFileNotInDataset, got %v", err)
	}
	if n := logs.FilterMessage("File is not in data set").Len(); n != 1 {
		t.Fatalf("reported %d times, want exactly 1", n)
	}
	if g.Type() != trace.Reads || g.cache != cached {
		t.Fatalf("rejected render altered state: type=%s", g.Type())
	}
	if !IsRecoverable(err) {
		t.Fatalf("unknown file must be recoverable")
	}
}

func TestPatternSwitchesType(t *testing.T) {
	g, _ := newTestGrapher(t)
	g.SetName("/data/a.db")
	view, err := g.PlotWrites(false)
	if err != nil {
		t.Fatalf("PlotWrites: %v", err)
	}
	if g.Type() != trace.Writes || view.AccessType != trace.Writes || len(view.Segments) != 1 {
		t.Fatalf("expected the write trace, got type=%s segments=%d", g.Type(), len(view.Segments))
	}
}

func TestPatternEmptyFile(t *testing.T) {
	g, _ := newTestGrapher(t)
	g.SetName("/data/empty")
	if _, err := g.Pattern(trace.Reads, true); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestPatternElidesTitle(t *testing.T) {
	long := "/" + strings.Repeat("x", 99)
	ds := fixtureDataset()
	ds.Reads[long] = trace.FileTrace{Ops: []trace.Operation{{Size: 1, Duration: 1}}}
	g, h := newTestGrapher(t)
	h.SetData(ds)
	g.SetName(long)

	view, err := g.Pattern(trace.Reads, false)
	if err != nil {
		t.Fatalf("Pattern: %v", err)
	}
	if len([]rune(view.Title)) != 80 || view.FileName != long {
		t.Fatalf("title %q (%d runes), file %q", view.Title, len([]rune(view.Title)), view.FileName)
	}
}

func TestPick(t *testing.T) {
	g, _ := newTestGrapher(t)
	g.SetName("/data/a.db")
	if err := g.SetTimeMode(RelativeFile); err != nil {
		t.Fatalf("SetTimeMode: %v", err)
	}
	view, err := g.Pattern(trace.Reads, false)
	if err != nil {
		t.Fatalf("Pattern: %v", err)
	}

	seg, ok := view.Pick(20, 501, 0.01)
	if !ok || seg.Index != 1 {
		t.Fatalf("Pick(20, 501) = %+v, %v; want operation 1", seg, ok)
	}
	seg, ok = view.Pick(33, 1000, 0.01)
	if !ok || seg.Index != 2 {
		t.Fatalf("Pick(33, 1000) = %+v, %v; want operation 2", seg, ok)
	}
	if _, ok := view.Pick(0, 1000, 0.01); ok {
		t.Fatalf("Pick far from every segment should miss")
	}
}

func TestPointSegmentDistance(t *testing.T) {
	cases := []struct {
		px, py, ax, ay, bx, by, want float64
	}{
		{0, 1, -1, 0, 1, 0, 1},
		{3, 0, 0, 0, 1, 0, 2},
		{2, 2, 2, 2, 2, 2, 0},
	}
	for _, c := range cases {
		if got := pointSegmentDistance(c.px, c.py, c.ax, c.ay, c.bx, c.by); math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("distance(%v,%v to %v,%v-%v,%v) = %v, want %v", c.px, c.py, c.ax, c.ay, c.bx, c.by, got, c.want)
		}
	}
}

// swappingSource returns first on the first call and second on every later one.
type swappingSource struct {
	calls  int
	first  *trace.Dataset
	second *trace.Dataset
}

func (s *swappingSource) Data() *trace.Dataset {
	s.calls++
	if s.calls == 1 {
		return s.first
	}
	return s.second
}

func singleFileDataset(t trace.AccessType) *trace.Dataset {
	ds := trace.NewDataset()
	ds.Bucket(t)["x"] = trace.FileTrace{FirstTime: 1, Ops: []trace.Operation{{Offset: 0, Size: 4, Start: 1, Duration: 1}}}
	return ds
}

func TestPatternUsesOneDocumentSnapshot(t *testing.T) {
	src := &swappingSource{first: singleFileDataset(trace.Writes), second: singleFileDataset(trace.Reads)}
	core, logs := observer.New(zapcore.WarnLevel)
	g := New(src, DefaultOptions(), zap.New(core))
	g.SetName("x")

	view, err := g.Pattern(trace.Writes, false)
	if err != nil {
		t.Fatalf("Pattern: %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("document read %d times during one render, want 1", src.calls)
	}
	if g.Type() != trace.Writes || view.AccessType != trace.Writes || len(view.Segments) != 1 {
		t.Fatalf("render did not use the first document: type=%s segments=%d", g.Type(), len(view.Segments))
	}
	if logs.Len() != 0 {
		t.Fatalf("unexpected warnings: %d", logs.Len())
	}
}

func TestPatternRejectionUsesOneDocumentSnapshot(t *testing.T) {
	src := &swappingSource{first: singleFileDataset(trace.Reads), second: singleFileDataset(trace.Writes)}
	core, logs := observer.New(zapcore.WarnLevel)
	g := New(src, DefaultOptions(), zap.New(core))
	g.SetName("x")

	_, err := g.Pattern(trace.Writes, false)
	if !errors.Is(err, ErrFileNotInDataset) {
		t.Fatalf("expected ErrFileNotInDataset, got %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("document read %d times during one render, want 1", src.calls)
	}
	if n := logs.FilterMessage("File is not in data set").Len(); n != 1 {
		t.Fatalf("reported %d times, want exactly 1", n)
	}
	if g.Type() != trace.Reads {
		t.Fatalf("rejected render changed type to %s", g.Type())
	}
}

func TestHistogramUsesOneDocumentSnapshot(t *testing.T) {
	src := &swappingSource{first: singleFileDataset(trace.Reads), second: trace.NewDataset()}
	g := New(src, DefaultOptions(), zap.NewNop())
	g.SetName("x")

	view, err := g.Histogram(SizeHistogram)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if src.calls != 1 || view.Samples != 1 {
		t.Fatalf("calls=%d samples=%d, want 1 and 1", src.calls, view.Samples)
	}
}
