package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsync/internal/config"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for a missing file")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Fingerprint.PrefixBytes != 1<<20 {
		t.Fatalf("defaults not applied: %#v", cfg.Fingerprint)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
state_dir = "` + filepath.Join(dir, "state") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[scan]
extensions = ["MKV", " .Mp4 "]

[dedup]
policy = "Keep-Oldest"
`
	if err := writeFile(path, content); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	want := []string{".mkv", ".mp4"}
	if len(cfg.Scan.Extensions) != 2 || cfg.Scan.Extensions[0] != want[0] || cfg.Scan.Extensions[1] != want[1] {
		t.Fatalf("extensions not normalized: %#v", cfg.Scan.Extensions)
	}
	if cfg.Dedup.Policy != config.PolicyKeepOldest {
		t.Fatalf("policy not normalized: %q", cfg.Dedup.Policy)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "state", "catalog.db") {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath())
	}
	if cfg.LockPath() != filepath.Join(dir, "state", "reelsync.lock") {
		t.Fatalf("unexpected lock path: %s", cfg.LockPath())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"no extensions", func(c *config.Config) { c.Scan.Extensions = nil }, "scan.extensions"},
		{"negative min size", func(c *config.Config) { c.Scan.MinSizeBytes = -1 }, "min_size_bytes"},
		{"zero prefix", func(c *config.Config) { c.Fingerprint.PrefixBytes = 0 }, "prefix_bytes"},
		{"zero workers", func(c *config.Config) { c.Reconcile.Workers = 0 }, "workers"},
		{"floor above one", func(c *config.Config) { c.Reconcile.SimilarityFloor = 1.5 }, "similarity_floor"},
		{"unknown policy", func(c *config.Config) { c.Dedup.Policy = "keep-largest" }, "dedup.policy"},
		{"keep-in-root without root", func(c *config.Config) { c.Dedup.Policy = config.PolicyKeepInRoot }, "preferred_root"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "yaml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config must load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to be read")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config must validate: %v", err)
	}
}

func TestExpandPathHome(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	expanded, err := config.ExpandPath("~/videos")
	if err != nil {
		t.Fatalf("ExpandPath failed: %v", err)
	}
	if strings.HasPrefix(expanded, "~") || !filepath.IsAbs(expanded) {
		t.Fatalf("path not expanded: %q", expanded)
	}
}
