// Package metrics provides observability hooks for navindex.
//
// # Design Philosophy
//
// This package implements the Null Object pattern so components can record
// metrics without nil checks. By default components use NoopRecorder, which
// implements Recorder with empty methods.
//
// # Architecture
//
//  1. Recorder interface - every metrics operation
//  2. NoopRecorder - default implementation that does nothing
//  3. PrometheusRecorder - registers collectors on a prometheus.Registry
//
// # Usage Pattern
//
// Components receive a Recorder through their options:
//
//	d := daemon.New(cfg, daemon.Options{Recorder: metrics.NewPrometheusRecorder(reg)})
//
// and the registry is exposed through HTTPHandler on the /metrics route.
package metrics
