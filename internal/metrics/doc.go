// Package metrics provides the observability hooks for the telemetry publisher.
//
// # Design
//
// Components receive a Recorder through dependency injection. By default they
// use NoopRecorder, whose methods do nothing, so no nil checks are needed at
// call sites:
//
//	reg := telemetry.NewRegistry(telemetry.WithRecorder(metrics.NoopRecorder{}))
//
// To export metrics, swap NoopRecorder for the Prometheus implementation:
//
//	promReg := prometheus.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(promReg)
//	reg := telemetry.NewRegistry(telemetry.WithRecorder(recorder))
//	srv := &http.Server{Addr: ":9464", Handler: metrics.NewServeMux(promReg, ready)}
//
// Recorder methods are called from hot paths (counter updates, publish), so
// implementations must not block.
package metrics
