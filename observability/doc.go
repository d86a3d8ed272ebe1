// Package observability provides OpenTelemetry metrics and tracing for
// seqkit pipelines.
//
// The pipeline package only records on instruments it is handed; nothing is
// exported unless the embedding application installs providers, for example
// with InitMeter and InitTracer:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("ingest"))
//	err = pipeline.BatchApply(ctx, src, 100, handle, pipeline.WithMetrics(metrics))
package observability
