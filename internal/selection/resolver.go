package selection

import (
	"path"
	"strconv"
	"strings"
)

// ListingResolver maps stored keys onto the identifiers in listing, the
// current source enumeration. A decimal key within range is a legacy
// positional key and maps to the identifier at that index. A key naming a
// live identifier maps to itself, and a path key whose base name is live maps
// to that base name. Anything else is unresolved.
func ListingResolver(listing []string) func(string) (string, bool) {
	ids := append([]string(nil), listing...)
	live := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		live[id] = struct{}{}
	}
	return func(key string) (string, bool) {
		if isDecimal(key) {
			if idx, err := strconv.Atoi(key); err == nil && idx < len(ids) {
				return ids[idx], true
			}
		}
		if _, ok := live[key]; ok {
			return key, true
		}
		base := path.Base(strings.ReplaceAll(key, `\`, "/"))
		if _, ok := live[base]; ok {
			return base, true
		}
		return "", false
	}
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
