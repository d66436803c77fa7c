// Package preflight provides readiness checks for the files and folders kerf
// reads and writes.
//
// The CLI "kerf doctor" command runs every check and prints the results;
// "kerf cutlist export" runs the project checks before touching MPR files so
// an unwritable folder or a full disk fails before any backup is written.
package preflight
