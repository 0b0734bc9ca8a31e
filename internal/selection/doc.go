// Package selection persists the operator's decisions: a mapping from stable
// source identifiers to the ordered set of catalog names chosen for each.
//
// Every mutation is written through to a JSON file before it becomes visible
// in memory, so a failed write leaves both the file and the in-memory view at
// their previous state. A lock file next to the JSON file keeps a second
// process from editing the same mapping.
package selection
