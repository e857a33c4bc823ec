package checks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ifregtest/ifregtest/internal/rterrors"
)

func TestLoadCheckClassesNoMatchIsAnError(t *testing.T) {
	r := NewRegistry()
	dir := t.TempDir()
	err := LoadCheckClasses(r, []string{filepath.Join(dir, "*.so")})
	if !rterrors.Is(err, rterrors.KindConfig) {
		t.Fatalf("expected KindConfig error for an unmatched pattern, got %v", err)
	}
}

func TestLoadCheckClassesRejectsMalformedPlugin(t *testing.T) {
	// plugin.Open requires a real compiled .so, which this test suite
	// cannot build; exercise the glob-expansion and error-wrapping path
	// against a file that exists but isn't a valid plugin instead.
	r := NewRegistry()
	dir := t.TempDir()
	notAPlugin := filepath.Join(dir, "fake.so")
	if err := os.WriteFile(notAPlugin, []byte("not a real plugin"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	err := LoadCheckClasses(r, []string{notAPlugin})
	if !rterrors.Is(err, rterrors.KindConfig) {
		t.Fatalf("expected KindConfig error for a malformed plugin file, got %v", err)
	}
}
