package grapher

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

// Percentile returns the p-th fraction (0..1) of an already sorted slice.
// With k = (n-1)p, an integral k selects sorted[k]; otherwise the floor and
// ceiling elements are combined with weights (k-floor) and (ceil-k).
// ok is false for an empty slice or a p outside [0, 1].
func Percentile(sorted []float64, p float64) (value float64, ok bool) {
	if len(sorted) == 0 || !(p >= 0 && p <= 1) {
		return 0, false
	}
	k := float64(len(sorted)-1) * p
	f := math.Floor(k)
	c := math.Ceil(k)
	if f == c {
		return sorted[int(k)], true
	}
	d0 := sorted[int(f)] * (k - f)
	d1 := sorted[int(c)] * (c - k)
	return d0 + d1, true
}

// RunStats summarizes the normalized operations of one file. Sizes are KiB,
// durations milliseconds, throughput KiB/s.
type RunStats struct {
	Count         int
	TotalSize     float64
	TotalDuration float64

	// Throughput is TotalSize/TotalDuration scaled to KiB/s. It is only
	// meaningful when ThroughputDefined is set (TotalDuration > 0).
	Throughput        float64
	ThroughputDefined bool

	SizeMean, SizeStdDev, SizeMin, SizeMax float64
	DurationMean, DurationStdDev           float64
	DurationMin, DurationMax               float64
	SizeP50, SizeP95, SizeP99              float64
	DurationP50, DurationP95, DurationP99  float64
}

// ComputeRunStats folds ops into a RunStats. ok is false when ops is empty.
func ComputeRunStats(ops []trace.Operation) (RunStats, bool) {
	if len(ops) == 0 {
		return RunStats{}, false
	}

	sizes := make([]float64, len(ops))
	durs := make([]float64, len(ops))
	for i, op := range ops {
		sizes[i] = op.Size
		durs[i] = op.Duration
	}
	sort.Float64s(sizes)
	sort.Float64s(durs)

	rs := RunStats{
		Count:         len(ops),
		TotalSize:     floats.Sum(sizes),
		TotalDuration: floats.Sum(durs),
		SizeMin:       sizes[0],
		SizeMax:       sizes[len(sizes)-1],
		DurationMin:   durs[0],
		DurationMax:   durs[len(durs)-1],
	}
	rs.SizeMean, rs.SizeStdDev = stat.PopMeanStdDev(sizes, nil)
	rs.DurationMean, rs.DurationStdDev = stat.PopMeanStdDev(durs, nil)
	if rs.TotalDuration > 0 {
		rs.Throughput = rs.TotalSize / rs.TotalDuration * 1000
		rs.ThroughputDefined = true
	}

	rs.SizeP50, _ = Percentile(sizes, 0.50)
	rs.SizeP95, _ = Percentile(sizes, 0.95)
	rs.SizeP99, _ = Percentile(sizes, 0.99)
	rs.DurationP50, _ = Percentile(durs, 0.50)
	rs.DurationP95, _ = Percentile(durs, 0.95)
	rs.DurationP99, _ = Percentile(durs, 0.99)
	return rs, true
}

// FormatStats renders the overlay text shown on pattern plots.
func FormatStats(t trace.AccessType, rs RunStats) string {
	throughput := "n/a"
	if rs.ThroughputDefined {
		throughput = fmt.Sprintf("%0.1f kiB/s", rs.Throughput)
	}
	return fmt.Sprintf("%s total %0.1f kiB in %d calls (avg. %s)\n"+
		" Size avg[kiB] %0.1f +- %0.1f, max: %0.1f, min: %0.1f\n"+
		" Dur[ms]: Total: %0.3f, Avg: %0.3f +- %0.3f, max: %0.3f, min: %0.3f",
		t, rs.TotalSize, rs.Count, throughput,
		rs.SizeMean, rs.SizeStdDev, rs.SizeMax, rs.SizeMin,
		rs.TotalDuration, rs.DurationMean, rs.DurationStdDev, rs.DurationMax, rs.DurationMin,
	)
}
