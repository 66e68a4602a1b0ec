// Package reassemble merges worker results that arrive in any order back into
// a single table ordered by chunk id.
package reassemble
