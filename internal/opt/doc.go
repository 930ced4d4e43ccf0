// Package opt provides optional integrations and components
// that are not part of the core system, but can be used to extend it.
//
// It includes the following subpackages:
//
//   - archive: snapshot uploads and retention against the storage backend
//   - httpsrv: the management HTTP API
//   - jobq: job queue and background task processing
//   - loader: fragment scanning in the docs dir
//   - metrics: Prometheus metrics and observability helpers
//   - modes: runtime modes and configuration logic
//   - regview: the consumer-side view of the published registry
//   - remote: peer artifact fetching
//   - supervisors: long-running background supervisors and orchestrators
//   - watcher: filesystem watching with debounced rescan triggers
//
// These components are modular and can be imported selectively.
package opt
