// Package matcher ranks catalog entries against a query by normalized
// Levenshtein distance over the index's precomputed keys, and classifies
// scores into display severities.
package matcher
