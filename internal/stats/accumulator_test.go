package stats

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func TestAccumulatorEmpty(t *testing.T) {
	var acc Accumulator
	mean, variance := acc.MeanVariance()
	if !math.IsNaN(mean) || !math.IsNaN(variance) {
		t.Fatalf("empty accumulator: mean=%v variance=%v, want NaN", mean, variance)
	}
	if !math.IsNaN(acc.Min()) || !math.IsNaN(acc.Max()) {
		t.Fatalf("empty accumulator extrema should be NaN")
	}
	if acc.Count() != 0 || acc.Sum() != 0 {
		t.Fatalf("empty accumulator count=%d sum=%v", acc.Count(), acc.Sum())
	}
}

func TestAccumulatorAggregates(t *testing.T) {
	var acc Accumulator
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		acc.Add(v)
	}
	mean, std := acc.MeanStdDev()
	if !approxEqual(mean, 5) || !approxEqual(std, 2) {
		t.Fatalf("mean=%v std=%v, want 5 and 2", mean, std)
	}
	if acc.Min() != 2 || acc.Max() != 9 || acc.Sum() != 40 || acc.Count() != 8 {
		t.Fatalf("min=%v max=%v sum=%v count=%d", acc.Min(), acc.Max(), acc.Sum(), acc.Count())
	}
}

func TestAccumulatorConstantSamplesHaveNoNegativeVariance(t *testing.T) {
	var acc Accumulator
	for i := 0; i < 1000; i++ {
		acc.Add(0.1)
	}
	_, variance := acc.MeanVariance()
	if variance < 0 || variance > 1e-12 {
		t.Fatalf("variance = %v, want ~0 and never negative", variance)
	}
}
