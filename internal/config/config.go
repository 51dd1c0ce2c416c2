package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

const (
	defaultKafkaGroupID   = "iolens-default-group"
	defaultAccessType     = "reads"
	defaultTimeMode       = "absolute"
	defaultPlotMode       = "show"
	defaultHistogramBins  = 50
	defaultClipSigma      = 2.0
	defaultMaxNameLength  = 80
	defaultOutputDir      = "plots"
	defaultImageFormat    = "png"
	defaultImageWidth     = 1280
	defaultImageHeight    = 800
	defaultMetricsEnabled = false
	defaultMetricsAddr    = ":9102"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultLogFileEnabled = false
	defaultLogDirectory   = "log"
	defaultLogFilename    = "iolens.log"
	defaultLogMaxSizeMB   = 100
	defaultLogMaxBackups  = 3
	defaultLogMaxAgeDays  = 7
	defaultLogCompress    = false

	// Environment variable prefix
	envPrefix = "IOLENS"
)

type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Graph   GraphConfig   `mapstructure:"graph"`
	Render  RenderConfig  `mapstructure:"render"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

// InputConfig points at a trace document on disk.
type InputConfig struct {
	Path string `mapstructure:"path"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"groupID"`
}

// GraphConfig selects what the grapher shows and how histograms are binned.
type GraphConfig struct {
	AccessType    string  `mapstructure:"accessType"` // "reads" or "writes"
	File          string  `mapstructure:"file"`
	TimeMode      string  `mapstructure:"timeMode"` // absolute, relapp, relfile, count
	PlotMode      string  `mapstructure:"plotMode"` // show, save
	Stats         bool    `mapstructure:"stats"`
	HistogramBins int     `mapstructure:"histogramBins"`
	ClipSigma     float64 `mapstructure:"clipSigma"`
	MaxNameLength int     `mapstructure:"maxNameLength"`
}

type RenderConfig struct {
	OutputDir string `mapstructure:"outputDir"`
	Format    string `mapstructure:"format"` // png or svg
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
// An empty configPath skips the file and builds the config from defaults and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	setDefaults(v)

	if configPath != "" {
		if err := readConfigFile(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
// Every key is registered here so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.path", "")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "")
	v.SetDefault("kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("graph.accessType", defaultAccessType)
	v.SetDefault("graph.file", "")
	v.SetDefault("graph.timeMode", defaultTimeMode)
	v.SetDefault("graph.plotMode", defaultPlotMode)
	v.SetDefault("graph.stats", false)
	v.SetDefault("graph.histogramBins", defaultHistogramBins)
	v.SetDefault("graph.clipSigma", defaultClipSigma)
	v.SetDefault("graph.maxNameLength", defaultMaxNameLength)
	v.SetDefault("render.outputDir", defaultOutputDir)
	v.SetDefault("render.format", defaultImageFormat)
	v.SetDefault("render.width", defaultImageWidth)
	v.SetDefault("render.height", defaultImageHeight)
	v.SetDefault("metrics.enabled", defaultMetricsEnabled)
	v.SetDefault("metrics.addr", defaultMetricsAddr)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) || errors.Is(err, fs.ErrNotExist) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

// Validate checks the value ranges that the rest of the program relies on.
// Access type names follow trace.ParseAccessType. Mode names are validated by
// the grapher, which owns those enums.
func Validate(cfg *Config) error {
	if _, err := trace.ParseAccessType(cfg.Graph.AccessType); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAccessType, cfg.Graph.AccessType)
	}
	if cfg.Graph.HistogramBins <= 0 {
		return ErrInvalidHistogramBins
	}
	if cfg.Graph.ClipSigma <= 0 {
		return ErrInvalidClipSigma
	}
	if cfg.Graph.MaxNameLength < 8 || cfg.Graph.MaxNameLength%2 != 0 {
		return ErrInvalidMaxNameLength
	}
	switch cfg.Render.Format {
	case "png", "svg":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRenderFormat, cfg.Render.Format)
	}
	if cfg.Render.Width <= 0 || cfg.Render.Height <= 0 {
		return ErrInvalidRenderSize
	}
	return nil
}

// ValidateKafka is only enforced for the streaming mode.
func ValidateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return ErrEmptyKafkaBrokers
	}
	if cfg.Topic == "" {
		return ErrEmptyKafkaTopic
	}
	if cfg.GroupID == "" {
		return ErrEmptyKafkaGroupID
	}
	return nil
}
