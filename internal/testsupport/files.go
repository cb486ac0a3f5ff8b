package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteVideo writes a fake video file of the given size under dir using a
// repeating byte pattern derived from seed, so two files with the same
// seed and size have identical content.
func WriteVideo(t testing.TB, dir, name string, size int, seed byte) string {
	t.Helper()

	content := make([]byte, size)
	for i := range content {
		content[i] = seed + byte(i%7)
	}
	path := filepath.Join(dir, name)
	WriteFile(t, path, content)
	return path
}
