package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/iolens/internal/config"
	"github.com/sanspareilsmyn/iolens/internal/logging"
	"github.com/sanspareilsmyn/iolens/internal/trace"
)

var (
	configFile = pflag.StringP("config", "c", "", "Path to the configuration file")
	inputPath  = pflag.StringP("input", "i", "", "Trace document to publish; a synthetic trace is generated when empty")
	interval   = pflag.Duration("interval", 0, "Republish period; 0 publishes once")
	files      = pflag.Int("files", 4, "Synthetic trace: number of files")
	opsPerFile = pflag.Int("ops", 200, "Synthetic trace: operations per file")
	seqRatio   = pflag.Float64("seq", 0.8, "Synthetic trace: probability of a sequential access")
	seed       = pflag.Int64("seed", 0, "Synthetic trace: random seed (0 uses the clock)")
)

func main() {
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %q: %v\n", *configFile, err)
		os.Exit(1)
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()

	if err := config.ValidateKafka(cfg.Kafka); err != nil {
		sugar.Fatalw("Kafka configuration is incomplete", zap.Error(err))
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Kafka.Brokers...),
		Topic:    cfg.Kafka.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			sugar.Errorw("Error closing kafka writer", zap.Error(err))
		}
	}()
	sugar.Infow("Starting trace publisher", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		sugar.Info("Shutdown signal received, stopping publisher...")
		cancel()
	}()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	if err := publish(ctx, writer, rng, logger); err != nil {
		sugar.Fatalw("Publish failed", zap.Error(err))
	}
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := publish(ctx, writer, rng, logger); err != nil {
				if ctx.Err() != nil {
					return
				}
				sugar.Errorw("Publish failed", zap.Error(err))
			}
		case <-ctx.Done():
			sugar.Info("Publisher loop stopped.")
			return
		}
	}
}

func publish(ctx context.Context, writer *kafka.Writer, rng *rand.Rand, logger *zap.Logger) error {
	ds, source, err := document(rng)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := trace.Encode(&buf, ds); err != nil {
		return err
	}
	if err := writer.WriteMessages(ctx, kafka.Message{Key: []byte(source), Value: buf.Bytes()}); err != nil {
		return err
	}
	logger.Info("Published trace document",
		zap.String("source", source),
		zap.Int("op_count", ds.OpCount()),
		zap.Int("bytes", buf.Len()),
	)
	return nil
}

func document(rng *rand.Rand) (*trace.Dataset, string, error) {
	if *inputPath != "" {
		ds, err := trace.LoadFile(*inputPath)
		return ds, *inputPath, err
	}
	ds := synthesize(rng, synthOptions{
		Files:      *files,
		OpsPerFile: *opsPerFile,
		SeqRatio:   *seqRatio,
		Start:      float64(time.Now().UnixNano()) / 1e9,
	})
	return ds, "synthetic", nil
}
