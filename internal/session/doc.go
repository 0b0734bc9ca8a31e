// Package session coordinates one resolution run: it derives a query for each
// source identifier, resolves candidates on a bounded worker pool, streams the
// resulting prompts to a Presenter in source order, and records each decision
// in the selection store as soon as it arrives.
//
// The package also provides the Debouncer and LiveSearch used by interactive
// search, where each settled input replaces the previous pending search.
package session
