// Package chunk partitions a table into contiguous, order preserving chunks
// and builds the translation jobs dispatched to the worker pool.
package chunk
