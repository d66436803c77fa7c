// Package export runs the cutlist export: enrich the cutlist, locate and
// analyse the MPR files it references, propose rewrites, and after an
// explicit confirmation back up and overwrite the changed files and write
// the final cutlist.
//
// Prepare never writes to the project folder. Apply refuses to run without a
// confirmation and holds a lock file in the project folder while it writes.
package export
