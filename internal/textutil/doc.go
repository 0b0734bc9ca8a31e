// Package textutil provides the string normalization shared by matching,
// caching and file naming.
//
// The primary use cases are:
//   - Deriving a query from a source file name and the cache key form of it
//   - Folding catalog values into comparable tokens, compact forms and acronyms
//   - Reducing website URLs to identifying host labels
//   - Producing lower_snake_case file stems and Start Case display labels
//
// Folding uses NFKD decomposition with combining marks removed, so accented
// and unaccented spellings produce the same tokens.
package textutil
