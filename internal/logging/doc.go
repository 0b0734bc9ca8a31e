// Package logging assembles structured slog loggers and formatting helpers used
// across logomatch.
//
// It owns the console and JSON handlers, fans console output and the JSON log
// file out through slog-multi, and exposes context-aware helpers so session
// code can tag log lines with session and source identifiers. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the tool.
package logging
