// Package config loads, normalizes, and validates kerf configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the KERF_CONVENTION environment
// fallback for the convention sidecar. The Config type centralizes every knob
// the CLI needs: where the convention table and preferences live, how MPR
// files are rewritten on export, and how logs are written.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a compiled below-tool pattern, and clear validation errors.
package config
