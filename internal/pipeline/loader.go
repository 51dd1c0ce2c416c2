package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/iolens/internal/holder"
	"github.com/sanspareilsmyn/iolens/internal/trace"
)

// LoadResult describes one document that replaced the held trace.
type LoadResult struct {
	LoadedAt  time.Time
	OpCount   int
	Summaries map[trace.AccessType]map[string]holder.Summary
	Totals    map[trace.AccessType]holder.Summary
}

// Loader installs parsed documents into the DataHolder and summarizes them.
type Loader struct {
	holder *holder.DataHolder
	input  <-chan *trace.Dataset
	output chan<- LoadResult
	onLoad func(*trace.Dataset)
	logger *zap.Logger
}

// NewLoader creates a Loader. onLoad, if non-nil, runs after every replacement.
func NewLoader(h *holder.DataHolder, input <-chan *trace.Dataset, output chan<- LoadResult, onLoad func(*trace.Dataset), logger *zap.Logger) *Loader {
	logger.Debug("Loader initialized")
	return &Loader{
		holder: h,
		input:  input,
		output: output,
		onLoad: onLoad,
		logger: logger,
	}
}

// Run consumes documents until the input closes or ctx is cancelled.
func (l *Loader) Run(ctx context.Context) error {
	sugar := l.logger.Sugar()
	sugar.Info("Starting loader loop...")
	defer sugar.Info("Loader loop stopped.")

	for {
		select {
		case ds, ok := <-l.input:
			if !ok {
				sugar.Info("Loader input channel closed.")
				return nil
			}
			l.load(ds)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Loader) load(ds *trace.Dataset) {
	l.holder.SetData(ds)

	result := LoadResult{
		LoadedAt:  time.Now(),
		OpCount:   ds.OpCount(),
		Summaries: make(map[trace.AccessType]map[string]holder.Summary, len(trace.AccessTypes)),
		Totals:    make(map[trace.AccessType]holder.Summary, len(trace.AccessTypes)),
	}
	for _, t := range trace.AccessTypes {
		perFile, err := l.holder.Summary(t)
		if err != nil {
			l.logger.Error("Summary failed for freshly loaded document", zap.Stringer("access_type", t), zap.Error(err))
			continue
		}
		total, err := l.holder.Totals(t)
		if err != nil {
			l.logger.Error("Totals failed for freshly loaded document", zap.Stringer("access_type", t), zap.Error(err))
			continue
		}
		result.Summaries[t] = perFile
		result.Totals[t] = total
	}

	l.logger.Info("Trace document loaded",
		zap.Int("op_count", result.OpCount),
		zap.Int("read_files", len(result.Summaries[trace.Reads])),
		zap.Int("write_files", len(result.Summaries[trace.Writes])),
	)

	if l.onLoad != nil {
		l.onLoad(ds)
	}

	select {
	case l.output <- result:
	default:
		l.logger.Warn("Loader output channel full, dropping summary", zap.Int("op_count", result.OpCount))
	}
}
