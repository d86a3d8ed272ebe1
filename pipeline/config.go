package pipeline

import (
	"fmt"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/validation"
)

// DefaultBatchSize is used when the configuration leaves batch_size unset.
const DefaultBatchSize = 100

// Config holds the loadable settings for batching stages.
type Config struct {
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size" validate:"min=1"`
	StageName string `yaml:"stage_name" mapstructure:"stage_name" validate:"max=64"`
	Metrics   bool   `yaml:"metrics" mapstructure:"metrics"`
	Tracing   bool   `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults applies default values to the pipeline configuration.
func (c *Config) ApplyDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.StageName == "" {
		c.StageName = DefaultStageName
	}
}

// Validate validates the pipeline configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// BatchOptions turns the configuration into batch options. The stage
// logger derived from log is registered under the stage name, so
// logger.Get(stage) returns it. Metrics are recorded on the global meter
// provider and spans on the global tracer provider, so both are no-ops
// until the application installs providers.
func (c *Config) BatchOptions(log *logger.Logger) ([]BatchOption, error) {
	opts := []BatchOption{WithStageName(c.StageName)}
	if log != nil {
		logger.RegisterStages(log, c.StageName)
		opts = append(opts, WithLogger(logger.Get(c.StageName)))
	}
	if c.Metrics {
		m, err := observability.NewMetrics(observability.Meter(c.StageName))
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", c.StageName, err)
		}
		opts = append(opts, WithMetrics(m))
	}
	if c.Tracing {
		opts = append(opts, WithTracer(observability.DefaultTracer()))
	}
	return opts, nil
}

type batchArgs struct {
	BatchSize int `mapstructure:"batch_size" validate:"min=1"`
}

// validateBatchSize rejects sizes below one before any element is pulled.
func validateBatchSize(size int) error {
	err := validation.Validate(batchArgs{BatchSize: size})
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithDetail("got", size)
	}
	return err
}
