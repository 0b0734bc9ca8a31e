// Package preflight provides readiness checks for the filesystem paths
// logomatch reads and writes.
//
// These checks run in two contexts:
//   - "logomatch config validate" prints every result.
//   - "logomatch execute" runs them before planning and stops when one fails,
//     so a batch never starts against a missing source or an unwritable
//     output directory.
package preflight
