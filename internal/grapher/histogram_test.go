package grapher

import (
	"errors"
	"testing"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

func binTotal(bins []Bin) int {
	n := 0
	for _, b := range bins {
		n += b.Count
	}
	return n
}

func TestHistogramSize(t *testing.T) {
	g, _ := newTestGrapher(t)
	g.SetName("/data/a.db")

	view, err := g.Histogram(SizeHistogram)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if len(view.Bins) != DefaultHistogramBins {
		t.Fatalf("bins = %d, want %d", len(view.Bins), DefaultHistogramBins)
	}
	if view.Samples != 3 || view.Binned != 3 || binTotal(view.Bins) != 3 {
		t.Fatalf("samples=%d binned=%d total=%d, want 3", view.Samples, view.Binned, binTotal(view.Bins))
	}
	// mean - 2σ is negative for this series, so the range is clamped at zero.
	if view.Range.Min != 0 {
		t.Fatalf("Range.Min = %v, want 0", view.Range.Min)
	}
	if view.XLabel != "request size (kiB)" || view.YLabel != "count" || view.Kind != SizeHistogram {
		t.Fatalf("unexpected labels: %q %q %s", view.XLabel, view.YLabel, view.Kind)
	}
	if view.Bins[len(view.Bins)-1].Hi != view.Range.Max {
		t.Fatalf("last bin ends at %v, want %v", view.Bins[len(view.Bins)-1].Hi, view.Range.Max)
	}
}

func TestHistogramThroughputExcludesZeroDuration(t *testing.T) {
	g, _ := newTestGrapher(t)
	g.SetName("/data/a.db")

	view, err := g.Histogram(ThroughputHistogram)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if view.Excluded != 1 || view.Samples != 2 {
		t.Fatalf("excluded=%d samples=%d, want 1 and 2", view.Excluded, view.Samples)
	}
	// Both remaining records run at 10000 kiB/s, so the range collapses to mean±0.5.
	if view.Range != (Range{Min: 9999.5, Max: 10000.5}) {
		t.Fatalf("Range = %+v", view.Range)
	}
	if binTotal(view.Bins) != 2 {
		t.Fatalf("binned %d, want 2", binTotal(view.Bins))
	}
}

func TestHistogramThroughputAllZeroDuration(t *testing.T) {
	ds := fixtureDataset()
	ds.Reads["/data/instant"] = trace.FileTrace{Ops: []trace.Operation{
		{Size: 4, Start: 1},
		{Size: 8, Start: 2},
	}}
	g, h := newTestGrapher(t)
	h.SetData(ds)
	g.SetName("/data/instant")

	view, err := g.Histogram(ThroughputHistogram)
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if !view.Empty() || view.Excluded != 2 || len(view.Bins) != 0 {
		t.Fatalf("expected an empty view with 2 exclusions, got %+v", view)
	}
}

func TestHistogramErrors(t *testing.T) {
	g, _ := newTestGrapher(t)
	if _, err := g.Histogram(HistogramKind(9)); !errors.Is(err, ErrUnknownHistogram) {
		t.Fatalf("expected ErrUnknownHistogram, got %v", err)
	}
	if _, err := g.Histogram(DurationHistogram); !errors.Is(err, ErrNoFileSelected) {
		t.Fatalf("expected ErrNoFileSelected, got %v", err)
	}
	g.SetName("/data/missing")
	if _, err := g.Histogram(DurationHistogram); !errors.Is(err, ErrFileNotInDataset) {
		t.Fatalf("expected ErrFileNotInDataset, got %v", err)
	}
}

func TestBinSeriesClipsOutliers(t *testing.T) {
	series := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		series = append(series, 1)
	}
	series = append(series, 1000)

	view := BinSeries(series, 50, 2)
	if view.Samples != 21 || view.Binned != 20 {
		t.Fatalf("samples=%d binned=%d, want 21 and 20", view.Samples, view.Binned)
	}
	if view.Range.Max >= 1000 {
		t.Fatalf("outlier should fall outside %+v", view.Range)
	}
	if binTotal(view.Bins) != 20 {
		t.Fatalf("binned total %d, want 20", binTotal(view.Bins))
	}
}

func TestBinSeriesConstant(t *testing.T) {
	view := BinSeries([]float64{5, 5, 5}, 10, 2)
	if view.Range != (Range{Min: 4.5, Max: 5.5}) {
		t.Fatalf("Range = %+v, want [4.5,5.5]", view.Range)
	}
	if view.StdDev != 0 || view.Mean != 5 {
		t.Fatalf("mean=%v std=%v", view.Mean, view.StdDev)
	}
	if binTotal(view.Bins) != 3 {
		t.Fatalf("binned total %d, want 3", binTotal(view.Bins))
	}
}

func TestBinSeriesIncludesTopEdge(t *testing.T) {
	// mean 2, σ 1: with sigma 1 the span is exactly [1, 3].
	view := BinSeries([]float64{1, 3}, 4, 1)
	if view.Range != (Range{Min: 1, Max: 3}) {
		t.Fatalf("Range = %+v", view.Range)
	}
	if view.Bins[0].Count != 1 || view.Bins[3].Count != 1 {
		t.Fatalf("edge values not binned: %+v", view.Bins)
	}
}

func TestBinSeriesEmpty(t *testing.T) {
	view := BinSeries(nil, 50, 2)
	if !view.Empty() || view.Bins != nil {
		t.Fatalf("expected empty view, got %+v", view)
	}
}

func TestParseHistogramKind(t *testing.T) {
	for _, kind := range []HistogramKind{SizeHistogram, DurationHistogram, ThroughputHistogram} {
		got, err := ParseHistogramKind(kind.String())
		if err != nil || got != kind {
			t.Fatalf("ParseHistogramKind(%q) = %v, %v", kind.String(), got, err)
		}
	}
	if _, err := ParseHistogramKind("latency"); !errors.Is(err, ErrUnknownHistogram) {
		t.Fatalf("expected ErrUnknownHistogram, got %v", err)
	}
}
