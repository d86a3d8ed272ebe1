package config

import (
	"fmt"
	"time"

	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/pipeline"
	"github.com/kbukum/seqkit/validation"
	"github.com/kbukum/seqkit/version"
)

// Config is the configuration of an application running pipelines.
// Projects extend it by embedding it in their own config structs.
//
//	type MyConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Source string `yaml:"source" mapstructure:"source"`
//	}
type Config struct {
	Name        string          `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string          `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string          `yaml:"version" mapstructure:"version"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Pipeline    pipeline.Config `yaml:"pipeline" mapstructure:"pipeline"`
	Telemetry   TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// TelemetryConfig points the OTLP exporters at a collector.
type TelemetryConfig struct {
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	ExportInterval time.Duration `yaml:"export_interval" mapstructure:"export_interval" validate:"gte=0"`
}

// Defaulter is implemented by configs that Load finishes after unmarshalling.
// Config satisfies it, and so does any struct embedding Config.
type Defaulter interface {
	ApplyDefaults()
	Validate() error
}

// ApplyDefaults applies default values to the configuration.
// Override this in embedding structs and call c.Config.ApplyDefaults() first.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	if c.Environment == "development" && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
}

// Validate validates the configuration.
// Override this in embedding structs and call c.Config.Validate() first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// Logger builds the application logger from the logging section.
func (c *Config) Logger() *logger.Logger {
	return logger.New(&c.Logging, c.Name)
}

// BatchOptions returns the batch options for the pipeline section, logging
// through the application logger.
func (c *Config) BatchOptions() ([]pipeline.BatchOption, error) {
	return c.Pipeline.BatchOptions(c.Logger())
}

// TracerConfig returns the tracer settings for this application.
func (c *Config) TracerConfig() observability.TracerConfig {
	tc := observability.DefaultTracerConfig(c.Name)
	tc.ServiceVersion = c.Version
	tc.Environment = c.Environment
	if c.Telemetry.Endpoint != "" {
		tc.Endpoint = c.Telemetry.Endpoint
		tc.Insecure = c.Telemetry.Insecure
		tc.SampleRate = c.Telemetry.SampleRate
	}
	return tc
}

// MeterConfig returns the meter settings for this application.
func (c *Config) MeterConfig() observability.MeterConfig {
	mc := observability.DefaultMeterConfig(c.Name)
	mc.ServiceVersion = c.Version
	mc.Environment = c.Environment
	if c.Telemetry.Endpoint != "" {
		mc.Endpoint = c.Telemetry.Endpoint
		mc.Insecure = c.Telemetry.Insecure
	}
	if c.Telemetry.ExportInterval > 0 {
		mc.Interval = c.Telemetry.ExportInterval
	}
	return mc
}
