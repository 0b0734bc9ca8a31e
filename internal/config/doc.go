// Package config loads, normalizes, and validates logomatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LOGOMATCH_CATALOG. The Config type centralizes the catalog, source, output
// and persisted-state locations together with matcher and batch tuning so the
// CLI discovers everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
