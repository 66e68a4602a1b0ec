// Package progress counts completed chunks and renders a one line status.
// It only observes results and never influences scheduling or output.
package progress
