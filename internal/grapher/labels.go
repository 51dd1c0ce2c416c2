package grapher

import "math"

const ellipsis = "...."

// ElideText shortens text longer than maxLen runes to its first and last
// maxLen/2-2 runes joined by a four-dot ellipsis, so the result is exactly
// maxLen runes.
func ElideText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	keep := maxLen/2 - 2
	if keep <= 0 {
		return ellipsis
	}
	return string(runes[:keep]) + ellipsis + string(runes[len(runes)-keep:])
}

const maxTicks = 20

// Ticks returns axis ticks for [low, high]: multiples of the smallest power
// of ten that keeps at most maxTicks of them below high, followed by high
// rounded up to that power.
func Ticks(low, high float64) []float64 {
	if high <= low || math.IsNaN(high) || math.IsInf(high, 0) {
		return []float64{low}
	}

	div := 1.0
	pow := 0
	for high/div > maxTicks {
		pow++
		div *= 10
	}

	start := math.Floor(low/div) * div
	var ticks []float64
	for tick := start; tick < high; tick += div {
		ticks = append(ticks, tick)
	}

	var last float64
	if pow == 0 {
		last = math.Round(high)
	} else {
		last = math.Round((high+div/2)/div) * div
	}
	if len(ticks) == 0 || last > ticks[len(ticks)-1] {
		ticks = append(ticks, last)
	}
	return ticks
}
