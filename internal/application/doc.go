// Package application provides dependency wiring for a drift check. It
// resolves input paths from configuration, builds the snapshot resolver and
// runs the load, index, resolve and reconcile stages in order, keeping the
// main package focused on CLI parsing and exit codes.
package application
