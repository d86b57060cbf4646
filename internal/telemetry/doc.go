// Package telemetry provides OpenTelemetry instrumentation for campusfeed.
//
// It wires distributed tracing and metrics through OTLP to a collector,
// covering the gateway client, the reaction engine, the comment cache, and
// the lifecycle controller. Telemetry failures never crash the client; the
// instance degrades to no-op providers.
//
// Create an instance:
//
//	cfg := telemetry.NewDefaultConfig()
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
// Configuration:
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  service_name: "campusfeed"
//	  sampling:
//	    rate: 1.0
//	  metrics:
//	    enabled: true
//	    export_interval: "15s"
//
// In tests, use TestTelemetry for in-memory span and metric capture.
package telemetry
