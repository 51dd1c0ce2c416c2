package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sanspareilsmyn/iolens/internal/config"
	"github.com/sanspareilsmyn/iolens/internal/grapher"
	"github.com/sanspareilsmyn/iolens/internal/holder"
	"github.com/sanspareilsmyn/iolens/internal/logging"
	"github.com/sanspareilsmyn/iolens/internal/pipeline"
	"github.com/sanspareilsmyn/iolens/internal/render"
	"github.com/sanspareilsmyn/iolens/internal/trace"
)

var (
	configFile = pflag.StringP("config", "c", "", "Path to the configuration file")
	inputPath  = pflag.StringP("input", "i", "", "Trace document to load")
	accessType = pflag.StringP("type", "t", "", "Access type to plot: reads or writes")
	fileName   = pflag.StringP("file", "f", "", "Traced file to plot")
	timeMode   = pflag.String("time-mode", "", "Time reference: absolute, relapp, relfile or count")
	plotMode   = pflag.String("plot-mode", "", "Plot disposal: show or save")
	withStats  = pflag.Bool("stats", false, "Overlay run statistics on pattern plots")
	viewName   = pflag.StringP("view", "v", "all", "View: pattern, size, duration, throughput, summary or all")
	outputDir  = pflag.StringP("out", "o", "", "Directory for saved plots (implies --plot-mode save)")
	watch      = pflag.BoolP("watch", "w", false, "Consume trace documents from Kafka and redraw on every update")
)

func main() {
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %q: %v\n", *configFile, err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Invalid configuration: %v\n", err)
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

	if err := run(cfg, logger); err != nil {
		logger.Error("iolens stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags override file and environment values.
func applyFlags(cfg *config.Config) {
	if pflag.Lookup("input").Changed {
		cfg.Input.Path = *inputPath
	}
	if pflag.Lookup("type").Changed {
		cfg.Graph.AccessType = *accessType
	}
	if pflag.Lookup("file").Changed {
		cfg.Graph.File = *fileName
	}
	if pflag.Lookup("time-mode").Changed {
		cfg.Graph.TimeMode = *timeMode
	}
	if pflag.Lookup("plot-mode").Changed {
		cfg.Graph.PlotMode = *plotMode
	}
	if pflag.Lookup("stats").Changed {
		cfg.Graph.Stats = *withStats
	}
	if pflag.Lookup("out").Changed {
		cfg.Render.OutputDir = *outputDir
		cfg.Graph.PlotMode = grapher.Save.String()
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()
	sugar.Infow("Configuration loaded", "path", *configFile, "log_level", cfg.Log.Level)

	views, err := expandView(*viewName)
	if err != nil {
		return err
	}

	h := holder.New()
	if cfg.Input.Path != "" {
		ds, err := trace.LoadFile(cfg.Input.Path)
		if err != nil {
			return err
		}
		h.SetData(ds)
		sugar.Infow("Trace loaded", "path", cfg.Input.Path, "op_count", ds.OpCount())
	} else if !*watch {
		return errors.New("no trace document: pass --input or --watch")
	}

	g, err := newGrapher(cfg, h, logger.Named("grapher"))
	if err != nil {
		return err
	}
	surface, err := render.NewChartSurface(cfg.Render, logger.Named("render"))
	if err != nil {
		return err
	}

	runner := &viewRunner{
		holder:  h,
		grapher: g,
		surface: surface,
		out:     os.Stdout,
		stats:   cfg.Graph.Stats,
		maxName: cfg.Graph.MaxNameLength,
		logger:  logger.Named("views"),
	}

	if !*watch {
		return runner.run(views)
	}
	return watchTraces(cfg, h, g, runner, views, logger)
}

func newGrapher(cfg *config.Config, h *holder.DataHolder, logger *zap.Logger) (*grapher.SubGrapher, error) {
	g := grapher.New(h, grapher.Options{
		HistogramBins: cfg.Graph.HistogramBins,
		ClipSigma:     cfg.Graph.ClipSigma,
		MaxNameLength: cfg.Graph.MaxNameLength,
	}, logger)

	t, err := trace.ParseAccessType(cfg.Graph.AccessType)
	if err != nil {
		return nil, err
	}
	if err := g.SetType(t); err != nil {
		return nil, err
	}
	if err := g.SetTimeModeName(cfg.Graph.TimeMode); err != nil {
		return nil, err
	}
	if err := g.SetPlotModeName(cfg.Graph.PlotMode); err != nil {
		return nil, err
	}

	name := cfg.Graph.File
	if name == "" {
		if names := h.Filenames(t); len(names) > 0 {
			name = names[0]
			logger.Info("No file selected, using the first traced file", zap.String("file_name", name))
		}
	}
	g.SetName(name)
	return g, nil
}

// watchTraces keeps consuming documents from Kafka, redrawing the views after
// each replacement, until SIGINT or SIGTERM.
func watchTraces(cfg *config.Config, h *holder.DataHolder, g *grapher.SubGrapher, runner *viewRunner, views []string, logger *zap.Logger) error {
	sugar := logger.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		sugar.Infow("Received signal, initiating shutdown...", "signal", sig.String())
		cancel()
	}()

	if cfg.Metrics.Enabled {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			sugar.Infow("Serving metrics", "addr", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				sugar.Errorw("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if h.Data() != nil {
		if err := runner.run(views); err != nil {
			sugar.Errorw("Initial render failed", zap.Error(err))
		}
	}

	onLoad := func(*trace.Dataset) {
		if g.Name() == "" {
			if names := g.Filenames(g.Type()); len(names) > 0 {
				g.SetName(names[0])
			}
		}
		if err := runner.run(views); err != nil {
			sugar.Errorw("Render after trace update failed", zap.Error(err))
		}
	}

	pipe, err := pipeline.New(cfg, h, onLoad, logger)
	if err != nil {
		return err
	}

	sugar.Info("Watching for trace documents...")
	runErr := pipe.Run(ctx)

	finalLogLevel := zapcore.InfoLevel
	shutdownReason := "gracefully"
	finalErrorField := zap.Skip()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		shutdownReason = "due to error"
		finalLogLevel = zapcore.ErrorLevel
		finalErrorField = zap.Error(runErr)
	}
	logger.Log(finalLogLevel, fmt.Sprintf("Watch shutdown %s.", shutdownReason),
		zap.String("reason", shutdownReason),
		finalErrorField,
	)
	return runErr
}
