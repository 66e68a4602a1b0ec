// Package archive moves a finished checkpoint database out of the way so the
// next run starts fresh while the old state is kept for inspection.
package archive
