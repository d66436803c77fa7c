// Package convention owns the lookup table that maps a panel type
// (Component) to its face names and edge-banding codes.
//
// A Table is an explicit value: it is loaded once from the JSON sidecar,
// edited in place, and saved explicitly. Callers that only need lookups can
// build one in memory with New. Spreadsheet import and export use the same
// nine columns as the sidecar.
package convention
