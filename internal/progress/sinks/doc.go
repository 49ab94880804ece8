// Package sinks implements progress consumers: a Prometheus sink that feeds
// the pushed run metrics and a zap sink for debug tracing.
package sinks
