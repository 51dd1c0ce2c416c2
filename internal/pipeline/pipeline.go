// Package pipeline streams trace documents from Kafka into a DataHolder and
// exports their summaries as Prometheus metrics.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/iolens/internal/config"
	"github.com/sanspareilsmyn/iolens/internal/holder"
	"github.com/sanspareilsmyn/iolens/internal/trace"
)

const channelBufferSize = 16

// source feeds raw documents into the pipeline. *Consumer is the production source.
type source interface {
	Run(ctx context.Context) error
}

// Pipeline orchestrates the stages: consumer, parser, loader, publisher.
type Pipeline struct {
	source    source
	loader    *Loader
	publisher *Publisher
	logger    *zap.Logger

	rawMessages chan []byte
	datasets    chan *trace.Dataset
	results     chan LoadResult
}

// New wires a pipeline that consumes cfg.Kafka and loads into h. onLoad runs
// after every document replacement and may be nil.
func New(cfg *config.Config, h *holder.DataHolder, onLoad func(*trace.Dataset), logger *zap.Logger) (*Pipeline, error) {
	return assemble(h, onLoad, logger, func(out chan<- []byte) (source, error) {
		c, err := NewConsumer(cfg.Kafka, out, logger.Named("consumer"))
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

func assemble(h *holder.DataHolder, onLoad func(*trace.Dataset), logger *zap.Logger, newSource func(chan<- []byte) (source, error)) (*Pipeline, error) {
	initLogger := logger.Named("pipeline.init")

	rawMessages := make(chan []byte, channelBufferSize)
	datasets := make(chan *trace.Dataset, channelBufferSize)
	results := make(chan LoadResult, channelBufferSize)
	initLogger.Debug("Channels created", zap.Int("bufferSize", channelBufferSize))

	src, err := newSource(rawMessages)
	if err != nil {
		initLogger.Error("Failed to create consumer", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrConsumerCreationFailed, err)
	}

	p := &Pipeline{
		source:      src,
		loader:      NewLoader(h, datasets, results, onLoad, logger.Named("loader")),
		publisher:   NewPublisher(results, logger.Named("publisher")),
		logger:      logger.Named("pipeline"),
		rawMessages: rawMessages,
		datasets:    datasets,
		results:     results,
	}
	initLogger.Info("Pipeline instance created successfully")
	return p, nil
}

// Run starts every stage and blocks until ctx is cancelled, a stage fails, or
// the source is drained.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sugar := p.logger.Sugar()
	var wg sync.WaitGroup
	pipelineErr := make(chan error, 3)

	sugar.Info("Pipeline Run: Starting components...")
	wg.Add(4)
	go p.runConsumer(ctx, &wg, pipelineErr)
	go p.runParser(ctx, &wg)
	go p.runStage(ctx, &wg, pipelineErr, "loader", p.loader.Run, ErrLoaderRunFailed, func() { close(p.results) })
	go p.runStage(ctx, &wg, pipelineErr, "publisher", p.publisher.Run, ErrPublisherRunFailed, nil)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var firstErr error
	select {
	case <-ctx.Done():
		sugar.Info("Pipeline Run: Context cancelled. Waiting for components to finish...")
		firstErr = ctx.Err()
	case err := <-pipelineErr:
		sugar.Errorw("Pipeline Run: Received error from a component, initiating shutdown...", zap.Error(err))
		firstErr = err
	case <-done:
		sugar.Info("Pipeline Run: Source drained.")
	}
	cancel()

	<-done
	sugar.Info("Pipeline Run: All components finished.")

	if firstErr == nil {
		select {
		case firstErr = <-pipelineErr:
		default:
		}
	}

	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}

func (p *Pipeline) runConsumer(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error) {
	defer wg.Done()
	defer close(p.rawMessages)

	if err := p.source.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Consumer component exited with error", zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", ErrConsumerRunFailed, err)
	}
}

// runParser validates raw documents. Invalid ones are logged and skipped so a
// bad publish never replaces a good trace.
func (p *Pipeline) runParser(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(p.datasets)

	parserLogger := p.logger.Named("parser").Sugar()
	for {
		select {
		case raw, ok := <-p.rawMessages:
			if !ok {
				parserLogger.Debug("Parser finished (raw message channel closed).")
				return
			}
			tracesReceived.Inc()

			ds, err := trace.ParseJSON(raw)
			if err != nil {
				tracesRejected.Inc()
				parserLogger.Warnw("Rejected trace document, keeping current data", zap.Error(err))
				continue
			}

			select {
			case p.datasets <- ds:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (p *Pipeline) runStage(ctx context.Context, wg *sync.WaitGroup, errCh chan<- error, name string, run func(context.Context) error, wrap error, after func()) {
	defer wg.Done()
	if after != nil {
		defer after()
	}

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Error("Component exited with error", zap.String("component", name), zap.Error(err))
		errCh <- fmt.Errorf("%w: %w", wrap, err)
	}
}
