package promptcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Settings are the matcher and index options that shape a batch's candidates.
type Settings struct {
	Threshold    float64
	Limit        int
	IndexAlias   bool
	IndexWebsite bool
}

// Fingerprint identifies the inputs a batch was computed from: the catalog
// file's size and modification time, the matcher and index settings, and the
// source identifiers in order.
func Fingerprint(catalogPath string, settings Settings, ids []string) (string, error) {
	h := sha256.New()
	info, err := os.Stat(catalogPath)
	if err != nil {
		return "", fmt.Errorf("stat catalog: %w", err)
	}
	fmt.Fprintf(h, "catalog:%s:%d:%d\n", catalogPath, info.Size(), info.ModTime().UnixNano())
	fmt.Fprintf(h, "matcher:%g:%d\n", settings.Threshold, settings.Limit)
	fmt.Fprintf(h, "index:alias=%t:website=%t\n", settings.IndexAlias, settings.IndexWebsite)
	for _, id := range ids {
		_, _ = io.WriteString(h, id)
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
