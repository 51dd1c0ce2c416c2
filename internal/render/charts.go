package render

import (
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sanspareilsmyn/iolens/internal/grapher"
	"github.com/sanspareilsmyn/iolens/internal/trace"
)

var (
	readColor  = drawing.ColorFromHex("1f77b4")
	writeColor = drawing.ColorFromHex("d62728")
)

func seriesColor(view grapher.PatternView) drawing.Color {
	if view.AccessType == trace.Writes {
		return writeColor
	}
	return readColor
}

func patternChart(view grapher.PatternView, width, height int) chart.Chart {
	style := chart.Style{
		StrokeWidth: view.LineWidth,
		StrokeColor: seriesColor(view),
	}
	series := make([]chart.Series, 0, len(view.Segments))
	for _, seg := range view.Segments {
		series = append(series, chart.ContinuousSeries{
			Style:   style,
			XValues: []float64{seg.X0, seg.X1},
			YValues: []float64{seg.Y0, seg.Y1},
		})
	}

	ticks := make([]chart.Tick, len(view.XTicks))
	for i, v := range view.XTicks {
		ticks[i] = chart.Tick{Value: v, Label: formatTick(v)}
	}
	xMax := view.XRange.Max
	if n := len(view.XTicks); n > 0 && view.XTicks[n-1] > xMax {
		xMax = view.XTicks[n-1]
	}

	ch := chart.Chart{
		Title:      view.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  view.XLabel,
			Range: nonEmptyRange(view.XRange.Min, xMax),
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  view.YLabel,
			Range: nonEmptyRange(view.YRange.Min, view.YRange.Max),
		},
		Series: series,
	}
	if view.Overlay != nil {
		ch.Elements = []chart.Renderable{overlayElement(*view.Overlay)}
	}
	return ch
}

func histogramChart(view grapher.HistogramView, width, height int) chart.Chart {
	xs := make([]float64, 0, 4*len(view.Bins))
	ys := make([]float64, 0, 4*len(view.Bins))
	maxCount := 1.0
	for _, b := range view.Bins {
		c := float64(b.Count)
		xs = append(xs, b.Lo, b.Lo, b.Hi, b.Hi)
		ys = append(ys, 0, c, c, 0)
		if c > maxCount {
			maxCount = c
		}
	}

	return chart.Chart{
		Title:      view.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  view.XLabel,
			Range: nonEmptyRange(view.Range.Min, view.Range.Max),
		},
		YAxis: chart.YAxis{
			Name:  view.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: maxCount},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: 1,
					StrokeColor: readColor,
					FillColor:   readColor.WithAlpha(160),
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
}

// nonEmptyRange widens a zero-width interval; go-chart refuses to draw one.
func nonEmptyRange(lo, hi float64) *chart.ContinuousRange {
	if hi <= lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// overlayElement draws multi-line text anchored at a fraction of the plot box.
func overlayElement(ov grapher.Overlay) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		style := chart.Style{FontSize: 9, FontColor: drawing.ColorBlack}.InheritFrom(defaults)
		style.WriteTextOptionsToRenderer(r)

		lines := strings.Split(ov.Text, "\n")
		lineHeight, widest := 0, 0
		for _, line := range lines {
			tb := r.MeasureText(line)
			lineHeight = max(lineHeight, tb.Height())
			widest = max(widest, tb.Width())
		}
		lineHeight += 3

		x := box.Left + int(ov.X*float64(box.Width()))
		y := box.Bottom - int(ov.Y*float64(box.Height()))
		if ov.HAlign == grapher.AlignRight {
			x -= widest
		}
		if ov.VAlign == grapher.AlignBottom {
			y -= (len(lines) - 1) * lineHeight
		}
		for i, line := range lines {
			r.Text(line, x, y+i*lineHeight)
		}
	}
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
