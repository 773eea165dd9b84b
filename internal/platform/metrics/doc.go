// Package metrics exposes Prometheus instrumentation for the service: the
// generation retry loop through generation.Observer, and HTTP request
// counters through a chi-compatible middleware. All collectors live on a
// private registry so tests can create as many as they like.
package metrics
