// Package cutlist reads and writes the semicolon-delimited cutlist exported
// by the cabinet-design tool and enriches its rows with edge codes, face
// names, MPR-derived process columns and a deterministic Unique_ID.
package cutlist
