// Package batch reads dataset manifests listing several inputs to translate
// in one run.
package batch
