package testsupport

import (
	"testing"

	"uvabs/internal/config"
	"uvabs/internal/store"
)

// NewStore opens a throwaway SQLite store for the given test config and closes
// it when the test finishes.
func NewStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}
