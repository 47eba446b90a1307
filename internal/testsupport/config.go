package testsupport

import (
	"path/filepath"
	"testing"

	"uvabs/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DatabasePath = filepath.Join(base, "uvabs.db")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithDataDir overrides the data root on the test config.
func WithDataDir(dir string) ConfigOption {
	return func(c *config.Config) {
		c.Paths.DataDir = dir
	}
}
