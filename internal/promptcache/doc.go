// Package promptcache keeps the last computed batch of resolution prompts in
// SQLite so a later run can present them again without re-matching. A batch is
// tagged with a fingerprint of its inputs; a mismatched fingerprint reads as
// empty.
package promptcache
