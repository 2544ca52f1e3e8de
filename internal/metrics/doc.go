// Package metrics provides build metrics for kixport.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default and does nothing, so callers never check for nil. When a
// metrics file is configured the CLI swaps in a PrometheusRecorder and, at the
// end of the run, writes the registry in the Prometheus text format so a
// node_exporter textfile collector can pick it up:
//
//	reg := prom.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	builder := build.NewBuilder(cfg, tools).WithRecorder(recorder)
//	...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
