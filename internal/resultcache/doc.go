// Package resultcache memoizes matcher results per normalized query for the
// lifetime of a process. Entries never expire.
package resultcache
