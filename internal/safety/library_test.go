package safety

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLibraryFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	data := `id: crisis-custom
version: 2
categories:
  - name: suicidal_ideation
    patterns:
      - '\b(?:kill\s+myself)\b'
phrases:
  - "final goodbye"
combinations:
  - tokens: ["pain", "can't", "anymore"]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	lib, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lib.ID != "crisis-custom" || lib.Version != 2 {
		t.Fatalf("unexpected library header: %+v", lib)
	}

	d, err := NewDetector(lib, nil)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	if !d.Detect("I want to kill myself") {
		t.Fatalf("expected loaded regex to match")
	}
	if !d.Detect("this is my Final Goodbye") {
		t.Fatalf("expected loaded phrase to match")
	}
	if d.Detect("I had a good day") {
		t.Fatalf("expected safe message to pass")
	}
}

func TestLoadLibraryEmptyPathUsesDefault(t *testing.T) {
	lib, err := LoadLibrary("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lib.ID != "crisis-default" {
		t.Fatalf("expected default library, got %q", lib.ID)
	}
}

func TestLoadLibraryRejectsEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(path, []byte("id: empty\nversion: 1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadLibrary(path); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}

func TestNewDetectorRejectsBadPattern(t *testing.T) {
	lib := Library{Categories: []Category{{Name: "bad", Patterns: []string{"("}}}}
	if _, err := NewDetector(lib, nil); err == nil {
		t.Fatalf("expected compile error")
	}
}
