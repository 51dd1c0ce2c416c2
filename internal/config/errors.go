package config

import "errors"

var (
	ErrReadingConfigFile    = errors.New("failed to read config file")
	ErrUnmarshallingConfig  = errors.New("failed to unmarshal config")
	ErrConfigFileMissing    = errors.New("config file not found")
	ErrInvalidAccessType    = errors.New("graph accessType must be reads or writes")
	ErrInvalidHistogramBins = errors.New("graph histogramBins must be positive")
	ErrInvalidClipSigma     = errors.New("graph clipSigma must be positive")
	ErrInvalidMaxNameLength = errors.New("graph maxNameLength must be an even number >= 8")
	ErrInvalidRenderFormat  = errors.New("render format must be png or svg")
	ErrInvalidRenderSize    = errors.New("render width and height must be positive")
	ErrEmptyKafkaBrokers    = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic      = errors.New("kafka topic cannot be empty")
	ErrEmptyKafkaGroupID    = errors.New("kafka groupID cannot be empty")
)
