package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsync/internal/testsupport"
)

// runCLI executes the root command with args against an isolated config
// and returns captured stdout.
func runCLI(t *testing.T, args []string, configPath string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeCLIConfig writes a config whose state and log dirs live under a
// per-test temp directory and returns its path.
func writeCLIConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[fingerprint]
prefix_bytes = 1024
`, filepath.Join(base, "state"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	configPath := writeCLIConfig(t)
	out, err := runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "prefix_bytes = 1024")
}

func TestRootsAndStatusCommands(t *testing.T) {
	configPath := writeCLIConfig(t)
	mediaRoot := t.TempDir()

	out, err := runCLI(t, []string{"roots", "add", mediaRoot, "--label", "movies"}, configPath)
	if err != nil {
		t.Fatalf("roots add: %v", err)
	}
	requireContains(t, out, "Watching")

	out, err = runCLI(t, []string{"roots", "list"}, configPath)
	if err != nil {
		t.Fatalf("roots list: %v", err)
	}
	requireContains(t, out, mediaRoot)
	requireContains(t, out, "movies")

	out, err = runCLI(t, []string{"status"}, configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Active roots")

	out, err = runCLI(t, []string{"roots", "disable", mediaRoot}, configPath)
	if err != nil {
		t.Fatalf("roots disable: %v", err)
	}
	requireContains(t, out, "disabled")
}

func TestRunCommandEndToEnd(t *testing.T) {
	configPath := writeCLIConfig(t)
	mediaRoot := t.TempDir()
	testsupport.WriteVideo(t, mediaRoot, "sample.mkv", 2048, 1)

	if _, err := runCLI(t, []string{"roots", "add", mediaRoot}, configPath); err != nil {
		t.Fatalf("roots add: %v", err)
	}

	out, err := runCLI(t, []string{"run", "--json"}, configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, `"inserted": 1`)

	out, err = runCLI(t, []string{"run", "--json"}, configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, `"unchanged": 1`)
}

func TestRunWithoutRootsFails(t *testing.T) {
	configPath := writeCLIConfig(t)
	if _, err := runCLI(t, []string{"run"}, configPath); err == nil {
		t.Fatal("expected error when no roots are registered")
	}
}
