// Package config loads application configuration for seqkit pipelines.
//
// Load reads config.yml with Viper, layers environment variables and an
// optional .env file on top, and unmarshals into the caller's struct.
// Structs implementing Defaulter (Config and anything embedding it) then
// get defaults applied and are validated.
//
// # Usage
//
//	var cfg config.Config
//	if err := config.Load("ingest", &cfg); err != nil {
//	    return err
//	}
//	opts, err := cfg.BatchOptions()
//	err = pipeline.BatchApply(ctx, rows, cfg.Pipeline.BatchSize, flush, opts...)
//
// Environment variables address nested keys with underscores, e.g.
// PIPELINE_BATCH_SIZE=500 or LOGGING_LEVEL=debug.
package config
