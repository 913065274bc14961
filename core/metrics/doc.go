// Package metrics defines the sinks that record allocation runs. Sinks are
// built from configuration through a factory registry; the implementations
// (Prometheus, InfluxDB) live in infra/metrics and register themselves on
// import. Optional recorder interfaces let a sink also receive per-slot and
// relaxation bound statistics.
package metrics
