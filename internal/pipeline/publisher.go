package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

// Publisher exports load results as Prometheus gauges.
type Publisher struct {
	input  <-chan LoadResult
	logger *zap.Logger
}

func NewPublisher(input <-chan LoadResult, logger *zap.Logger) *Publisher {
	logger.Debug("Publisher initialized")
	return &Publisher{input: input, logger: logger}
}

// Run publishes results until the input closes or ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	sugar.Info("Starting publisher loop...")
	defer sugar.Info("Publisher loop stopped.")

	for {
		select {
		case result, ok := <-p.input:
			if !ok {
				sugar.Info("Publisher input channel closed.")
				return nil
			}
			p.publish(result)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// publish replaces every per-file series; files absent from the new document
// disappear from the export.
func (p *Publisher) publish(result LoadResult) {
	fileOperations.Reset()
	fileBytes.Reset()
	fileDuration.Reset()
	fileExtent.Reset()

	for _, t := range trace.AccessTypes {
		label := t.String()
		for name, s := range result.Summaries[t] {
			fileOperations.WithLabelValues(label, name).Set(float64(s.OpCount))
			fileBytes.WithLabelValues(label, name).Set(s.TotalSize)
			fileDuration.WithLabelValues(label, name).Set(s.TotalDuration)
			fileExtent.WithLabelValues(label, name).Set(s.MaxExtent)
		}

		total, ok := result.Totals[t]
		if !ok {
			continue
		}
		throughput := 0.0
		if total.TotalDuration > 0 {
			throughput = total.TotalSize / total.TotalDuration * 1000
		}
		runThroughput.WithLabelValues(label).Set(throughput)

		p.logger.Sugar().Infow("Run totals published",
			zap.String("access_type", label),
			zap.Int("files", len(result.Summaries[t])),
			zap.Int("op_count", total.OpCount),
			zap.Float64("total_kib", total.TotalSize),
			zap.Float64("total_ms", total.TotalDuration),
			zap.Float64("throughput_kib_s", throughput),
		)
	}
	traceLoadTimestamp.Set(float64(result.LoadedAt.Unix()))
}
