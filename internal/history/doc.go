// Package history records export runs in a SQLite ledger: which cutlist was
// exported, which MPR files were rewritten and backed up, and which
// Unique_IDs left the building.
//
// The ledger is an audit trail, not a source of truth for the export itself.
// Schema changes bump the version in schema.go; users delete the database to
// adopt the new schema.
package history
