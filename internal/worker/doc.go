// Package worker runs translation jobs. ChunkWorker translates the designated
// columns of one chunk; Pool runs many jobs with bounded concurrency and
// reports each result as soon as its job finishes.
package worker
