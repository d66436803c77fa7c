// Package logs reads the kerf log file for the `kerf logs` command.
//
// Last returns the final lines with bounded memory; Follow polls from an
// offset and hands new lines to a callback until the context ends.
package logs
