// Package main hosts the kerf CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces cutlist preview and export, MPR
// inspection and rewriting, convention table editing, session defaults,
// the export history and environment checks. It centralizes configuration
// resolution, preference overrides and logging setup so subcommands only
// format output and ask for confirmation.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
