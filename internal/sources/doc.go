// Package sources enumerates the source files awaiting resolution and offers
// fuzzy filtering over their identifiers.
package sources
