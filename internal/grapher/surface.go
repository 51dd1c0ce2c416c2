package grapher

import (
	"fmt"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

// Surface draws views. Implementations own all side effects (windows, files);
// the grapher only computes what to draw.
type Surface interface {
	DrawPattern(view PatternView) error
	DrawHistogram(view HistogramView) error
}

// RenderPattern builds the pattern view for t and hands it to s.
func (g *SubGrapher) RenderPattern(s Surface, t trace.AccessType, withStats bool) error {
	view, err := g.Pattern(t, withStats)
	if err != nil {
		return err
	}
	if err := s.DrawPattern(view); err != nil {
		return fmt.Errorf("%w: %w", ErrSurfaceDraw, err)
	}
	return nil
}

// RenderHistogram builds the histogram of kind and hands it to s.
func (g *SubGrapher) RenderHistogram(s Surface, kind HistogramKind) error {
	view, err := g.Histogram(kind)
	if err != nil {
		return err
	}
	if err := s.DrawHistogram(view); err != nil {
		return fmt.Errorf("%w: %w", ErrSurfaceDraw, err)
	}
	return nil
}
