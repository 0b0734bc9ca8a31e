// Package failures defines the error markers shared by the resolution pipeline.
//
// Components tag errors with a sentinel (enumeration, persistence, operation,
// and so on) through Wrap so the CLI can decide whether a failure ends the
// session or is summarised with the batch, and can print a matching hint.
package failures
