package style

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "style.css")
	css := "#app-icon { padding: 4px; }\n"
	if err := os.WriteFile(path, []byte(css), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, ok := Load(path)
	if !ok || got != css {
		t.Fatalf("Load = %q, %v", got, ok)
	}
}

func TestLoadMissingOrBlank(t *testing.T) {
	dir := t.TempDir()
	if _, ok := Load(filepath.Join(dir, "missing.css")); ok {
		t.Fatalf("missing file should not load")
	}
	blank := filepath.Join(dir, "blank.css")
	if err := os.WriteFile(blank, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := Load(blank); ok {
		t.Fatalf("blank file should not load")
	}
	if _, ok := Load(""); ok {
		t.Fatalf("empty path should not load")
	}
	if _, ok := Load(dir); ok {
		t.Fatalf("directory should not load")
	}
}
