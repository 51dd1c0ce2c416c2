// Package stats holds single-pass running aggregates over float64 samples.
package stats

import "math"

// Accumulator keeps the running aggregates of a sample stream: count, sum, sum of
// squares and the extrema. The zero value is ready to use.
type Accumulator struct {
	count int64
	sum   float64
	sumSq float64
	min   float64
	max   float64
}

// Add folds one sample into the aggregates.
func (a *Accumulator) Add(v float64) {
	if a.count == 0 || v < a.min {
		a.min = v
	}
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.count++
	a.sum += v
	a.sumSq += v * v
}

func (a *Accumulator) Count() int64 { return a.count }
func (a *Accumulator) Sum() float64 { return a.sum }

// Min returns the smallest sample, or NaN when nothing was added.
func (a *Accumulator) Min() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.min
}

// Max returns the largest sample, or NaN when nothing was added.
func (a *Accumulator) Max() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.max
}

// MeanVariance returns the mean and the population variance.
// Both are NaN for an empty accumulator.
func (a *Accumulator) MeanVariance() (mean, variance float64) {
	if a.count <= 0 {
		return math.NaN(), math.NaN()
	}

	n := float64(a.count)
	mean = a.sum / n

	// Variance = E[X^2] - (E[X])^2
	variance = a.sumSq/n - mean*mean

	// Cancellation can leave a tiny negative residue.
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

// MeanStdDev returns the mean and the population standard deviation.
func (a *Accumulator) MeanStdDev() (mean, stdDev float64) {
	mean, variance := a.MeanVariance()
	return mean, math.Sqrt(variance)
}
