// Package logging assembles structured slog loggers and formatting helpers used
// across kerf.
//
// It owns the configurable console/JSON handlers and the level and output
// plumbing. Loggers built from configuration write the full record stream to
// the log file and mirror warnings to stderr, so command output on stdout
// stays clean for tables and JSON. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
package logging
