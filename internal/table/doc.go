// Package table provides the in-memory tabular dataset model used by the
// translation pipeline together with CSV, JSON Lines and XLSX codecs for
// loading and saving datasets.
package table
