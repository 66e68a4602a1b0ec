// Package processor contains the core business logic of coltrans. It reads a
// dataset, splits it into chunks, runs them through the worker pool, restores
// the original row order and writes the result. Checkpointing, crash retries,
// row exclusion and batch runs over several datasets are coordinated here.
package processor
