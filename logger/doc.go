// Package logger provides structured logging for seqkit using zerolog.
//
// Pipeline operations are silent by default. Pass a *Logger through the
// batching options to get one debug line per flushed batch.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("ingest")
//	log.Info("batch flushed", logger.BatchFields("ingest", 3, 100))
package logger
