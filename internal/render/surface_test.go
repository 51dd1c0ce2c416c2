package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/sanspareilsmyn/iolens/internal/config"
	"github.com/sanspareilsmyn/iolens/internal/grapher"
	"github.com/sanspareilsmyn/iolens/internal/holder"
	"github.com/sanspareilsmyn/iolens/internal/trace"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func newTestSetup(t *testing.T, format string) (*grapher.SubGrapher, *ChartSurface, string) {
	t.Helper()
	ds := trace.NewDataset()
	ds.Reads["/var/lib/app.db"] = trace.FileTrace{FirstTime: 1, Ops: []trace.Operation{
		{Offset: 0, Size: 4, Start: 1.0, Duration: 0.5},
		{Offset: 4, Size: 8, Start: 1.2, Duration: 1.5},
		{Offset: 64, Size: 4, Start: 1.9, Duration: 0},
	}}
	h := holder.New()
	h.SetData(ds)

	logger := zaptest.NewLogger(t)
	g := grapher.New(h, grapher.DefaultOptions(), logger)
	g.SetName("/var/lib/app.db")

	dir := t.TempDir()
	s, err := NewChartSurface(config.RenderConfig{OutputDir: dir, Format: format, Width: 640, Height: 480}, logger)
	if err != nil {
		t.Fatalf("NewChartSurface: %v", err)
	}
	return g, s, dir
}

func TestSavePatternPNG(t *testing.T) {
	g, s, dir := newTestSetup(t, "png")
	if err := g.SetPlotMode(grapher.Save); err != nil {
		t.Fatalf("SetPlotMode: %v", err)
	}
	if err := g.RenderPattern(s, trace.Reads, true); err != nil {
		t.Fatalf("RenderPattern: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "var_lib_app.db_reads_pattern_absolute.png"))
	if err != nil {
		t.Fatalf("reading saved plot: %v", err)
	}
	if !bytes.HasPrefix(data, pngSignature) {
		t.Fatalf("saved file is not a PNG")
	}
}

func TestSaveHistogramSVG(t *testing.T) {
	g, s, dir := newTestSetup(t, "svg")
	if err := g.SetPlotMode(grapher.Save); err != nil {
		t.Fatalf("SetPlotMode: %v", err)
	}
	if err := g.RenderHistogram(s, grapher.SizeHistogram); err != nil {
		t.Fatalf("RenderHistogram: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "var_lib_app.db_reads_size.svg"))
	if err != nil {
		t.Fatalf("reading saved plot: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Fatalf("saved file is not an SVG")
	}
}

func TestShowWritesToSink(t *testing.T) {
	g, s, dir := newTestSetup(t, "png")
	var sink bytes.Buffer
	s.Show = &sink

	if err := g.RenderHistogram(s, grapher.DurationHistogram); err != nil {
		t.Fatalf("RenderHistogram: %v", err)
	}
	if !bytes.HasPrefix(sink.Bytes(), pngSignature) {
		t.Fatalf("show sink did not receive a PNG")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("show mode wrote %d files to the output directory", len(entries))
	}
}

func TestEmptyHistogramIsSkipped(t *testing.T) {
	_, s, dir := newTestSetup(t, "png")
	view := grapher.HistogramView{Kind: grapher.ThroughputHistogram, Mode: grapher.Save, Excluded: 3}
	if err := s.DrawHistogram(view); err != nil {
		t.Fatalf("DrawHistogram: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("empty histogram produced %d files", len(entries))
	}
}

func TestEmptyPatternIsRejected(t *testing.T) {
	_, s, _ := newTestSetup(t, "png")
	if err := s.DrawPattern(grapher.PatternView{}); !errors.Is(err, ErrEmptyView) {
		t.Fatalf("expected ErrEmptyView, got %v", err)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := NewChartSurface(config.RenderConfig{Format: "gif"}, zaptest.NewLogger(t)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFileStem(t *testing.T) {
	cases := map[string]string{
		"/data/a b.db": "data_a_b.db_reads_size",
		"":             "trace_reads_size",
		"C:\\x.log":    "C__x.log_reads_size",
	}
	for in, want := range cases {
		if got := fileStem(in, "reads", "size"); got != want {
			t.Fatalf("fileStem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNonEmptyRange(t *testing.T) {
	r := nonEmptyRange(3, 3)
	if r.Min != 3 || r.Max != 4 {
		t.Fatalf("nonEmptyRange(3,3) = %+v", r)
	}
}
