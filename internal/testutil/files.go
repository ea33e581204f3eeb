package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Files manages a per-test directory of input and output files.
type Files struct {
	t   *testing.T
	dir string
}

// NewFiles returns a helper rooted in a fresh t.TempDir().
func NewFiles(t *testing.T) *Files {
	t.Helper()
	return &Files{t: t, dir: t.TempDir()}
}

// Path returns the absolute path of name inside the directory. The file need not exist.
func (f *Files) Path(name string) string {
	return filepath.Join(f.dir, name)
}

// Write creates name with body and returns its path.
func (f *Files) Write(name, body string) string {
	f.t.Helper()
	path := f.Path(name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		f.t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Read returns the content of name, failing the test when it cannot be read.
func (f *Files) Read(name string) string {
	f.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	content, err := os.ReadFile(f.Path(name))
	if err != nil {
		f.t.Fatalf("read %s: %v", name, err)
	}
	return string(content)
}

// AssertContains checks that name contains every expected fragment.
func (f *Files) AssertContains(name string, expected ...string) *Files {
	f.t.Helper()
	content := f.Read(name)
	for _, want := range expected {
		if !strings.Contains(content, want) {
			f.t.Errorf("Expected file %s to contain %q\nActual content:\n%s", name, want, content)
		}
	}
	return f
}
