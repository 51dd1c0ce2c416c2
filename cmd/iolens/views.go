package main

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/iolens/internal/grapher"
	"github.com/sanspareilsmyn/iolens/internal/holder"
	"github.com/sanspareilsmyn/iolens/internal/trace"
)

var errUnknownView = errors.New("unknown view")

var allViews = []string{"summary", "pattern", "size", "duration", "throughput"}

// viewRunner draws the requested views of the current selection.
type viewRunner struct {
	holder  *holder.DataHolder
	grapher *grapher.SubGrapher
	surface grapher.Surface
	out     io.Writer
	stats   bool
	maxName int
	logger  *zap.Logger
}

func expandView(view string) ([]string, error) {
	if view == "all" {
		return allViews, nil
	}
	for _, v := range allViews {
		if v == view {
			return []string{view}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errUnknownView, view)
}

// run draws every view in views. Recoverable selection errors are logged and
// the next view is attempted; anything else stops the run.
func (r *viewRunner) run(views []string) error {
	for _, view := range views {
		err := r.draw(view)
		switch {
		case err == nil:
		case grapher.IsRecoverable(err):
			r.logger.Warn("View skipped", zap.String("view", view), zap.Error(err))
		default:
			return fmt.Errorf("view %s: %w", view, err)
		}
	}
	return nil
}

func (r *viewRunner) draw(view string) error {
	switch view {
	case "summary":
		for _, t := range trace.AccessTypes {
			text, err := summaryTable(r.holder, t, r.maxName)
			if err != nil {
				return err
			}
			fmt.Fprintln(r.out, text)
		}
		return nil
	case "pattern":
		return r.grapher.RenderPattern(r.surface, r.grapher.Type(), r.stats)
	}

	kind, err := grapher.ParseHistogramKind(view)
	if err != nil {
		return fmt.Errorf("%w: %q", errUnknownView, view)
	}
	return r.grapher.RenderHistogram(r.surface, kind)
}
