package grapher

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

// cacheKey identifies the inputs a normalized array was built from. Plot mode
// and the stats toggle do not affect normalization and are not part of it.
type cacheKey struct {
	data       *trace.Dataset
	accessType trace.AccessType
	fileName   string
	timeMode   TimeMode
}

// normalized is the selected file's operations with Start in milliseconds,
// shifted according to the time mode.
type normalized struct {
	key       cacheKey
	ops       []trace.Operation
	axisStart float64
}

// selection is the configuration snapshot a render works from.
type selection struct {
	accessType trace.AccessType
	fileName   string
	timeMode   TimeMode
	plotMode   PlotMode
}

// Normalized returns a copy of the normalized operations of the current
// selection and the time axis lower bound.
func (g *SubGrapher) Normalized() ([]trace.Operation, float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	norm, _, err := g.prepareLocked(g.snapshotLocked(), g.accessType)
	if err != nil {
		return nil, 0, err
	}
	ops := make([]trace.Operation, len(norm.ops))
	copy(ops, norm.ops)
	return ops, norm.axisStart, nil
}

// snapshotLocked returns the document a render works on. g.mu must be held.
func (g *SubGrapher) snapshotLocked() *trace.Dataset {
	if g.source == nil {
		return nil
	}
	return g.source.Data()
}

// prepareLocked returns the normalized array of ds for the current selection
// under access type t, rebuilding it when any input changed. It does not
// change the selection. g.mu must be held.
func (g *SubGrapher) prepareLocked(ds *trace.Dataset, t trace.AccessType) (*normalized, selection, error) {
	sel := selection{
		accessType: t,
		fileName:   g.fileName,
		timeMode:   g.timeMode,
		plotMode:   g.plotMode,
	}
	if ds == nil {
		return nil, sel, ErrNoDataSet
	}
	if sel.fileName == "" {
		return nil, sel, ErrNoFileSelected
	}

	key := cacheKey{data: ds, accessType: sel.accessType, fileName: sel.fileName, timeMode: sel.timeMode}
	if g.cache != nil && g.cache.key == key {
		return g.cache, sel, nil
	}

	ft, ok := ds.Lookup(sel.accessType, sel.fileName)
	if !ok {
		return nil, sel, fmt.Errorf("%w: %q under %s", ErrFileNotInDataset, sel.fileName, sel.accessType)
	}

	norm := &normalized{key: key, ops: make([]trace.Operation, len(ft.Ops))}
	for i, op := range ft.Ops {
		op.Start *= 1000
		norm.ops[i] = op
	}

	switch sel.timeMode {
	case RelativeFile:
		shift(norm.ops, ft.FirstTime*1000)
	case RelativeApp:
		if g.appStart == nil && len(norm.ops) > 0 {
			ref := norm.ops[0].Start
			g.appStart = &ref
			g.logger.Debug("Captured application reference time",
				zap.String("file_name", sel.fileName),
				zap.Float64("reference_ms", ref),
			)
		}
		if g.appStart != nil {
			shift(norm.ops, *g.appStart)
		}
	case Absolute:
		if len(norm.ops) > 0 {
			norm.axisStart = norm.ops[0].Start
		}
	case Count:
		// Start stays in milliseconds; pattern geometry substitutes the sequence number.
	}

	g.cache = norm
	normalizations.WithLabelValues(sel.accessType.String(), sel.timeMode.String()).Inc()
	g.logger.Debug("Normalized operations",
		zap.String("file_name", sel.fileName),
		zap.Stringer("access_type", sel.accessType),
		zap.Stringer("time_mode", sel.timeMode),
		zap.Int("op_count", len(norm.ops)),
		zap.Float64("axis_start", norm.axisStart),
	)
	return norm, sel, nil
}

func shift(ops []trace.Operation, by float64) {
	for i := range ops {
		ops[i].Start -= by
	}
}
