// Package checkpoint persists completed chunks of a translation run in a
// SQLite database so an interrupted or partially failed run can resume and
// translate only the chunks that are still missing.
package checkpoint
