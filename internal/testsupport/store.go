package testsupport

import (
	"testing"

	"logomatch/internal/config"
	"logomatch/internal/selection"
)

// MustOpenSelections opens the selection store for cfg and registers cleanup.
func MustOpenSelections(t testing.TB, cfg *config.Config) *selection.Store {
	t.Helper()

	store, err := selection.Open(cfg.Paths.Selections, nil)
	if err != nil {
		t.Fatalf("selection.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
