// Package progress carries run lifecycle events from the pipeline to pluggable
// sinks. A Hub batches events on a background goroutine so emitters never
// block on logging or metrics.
package progress
