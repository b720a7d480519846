// Package telemetry bootstraps the OpenTelemetry tracer and meter providers
// for the pufcma binary.
//
// Library packages such as cmaes only call otel.Tracer and otel.Meter; until
// Init installs real providers those calls hit the global no-op
// implementations, so tests and library users pay nothing.
//
// Trace exporters: "stdout", "otlp" (gRPC), "none".
// Metric exporters: "prometheus" (served by MetricsHandler), "stdout", "none".
package telemetry
