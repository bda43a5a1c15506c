// Package metrics records population, directive and document metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	p := publications.NewPopulator(settings, style.Engine{},
//	    publications.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// A build run with --metrics-file exports the registry with WriteTextfile,
// in the format read by the node_exporter textfile collector.
package metrics
