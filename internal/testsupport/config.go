package testsupport

import (
	"path/filepath"
	"testing"

	"reelsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Reconcile.Workers = 2

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithPrefixBytes overrides the fingerprint prefix size on the test config.
func WithPrefixBytes(n int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Fingerprint.PrefixBytes = n
	}
}

// WithDedupPolicy sets the duplicate retention policy on the test config.
func WithDedupPolicy(policy, preferredRoot string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Dedup.Policy = policy
		cfg.Dedup.PreferredRoot = preferredRoot
	}
}
