// Package benchmark runs several allocators side by side on generated
// instances and aggregates their fairness metrics. It backs the bench and
// min-sockets commands.
package benchmark
