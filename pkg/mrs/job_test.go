package mrs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestExpandLocalPatternsSeparatesRemoteFromGlobs(t *testing.T) {
	tmpDir := t.TempDir()
	file1 := filepath.Join(tmpDir, "file1.txt")
	if err := os.WriteFile(file1, []byte("content1"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := expandLocalPatterns([]string{"http://host/a.txt", filepath.Join(tmpDir, "*.txt")})
	if err != nil {
		t.Fatalf("expandLocalPatterns error: %v", err)
	}
	if len(got) != 2 || got[0] != "http://host/a.txt" || got[1] != file1 {
		t.Fatalf("got %v, want [http://host/a.txt %s]", got, file1)
	}
}

func TestExpandLocalPatternsDeduplicatesOverlappingGlobs(t *testing.T) {
	tmpDir := t.TempDir()
	file1 := filepath.Join(tmpDir, "file1.txt")
	if err := os.WriteFile(file1, []byte("content1"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := expandLocalPatterns([]string{filepath.Join(tmpDir, "*.txt"), file1})
	if err != nil {
		t.Fatalf("expandLocalPatterns error: %v", err)
	}
	if len(got) != 1 || got[0] != file1 {
		t.Fatalf("expected file1 to appear once, got %v", got)
	}
}

func TestExpandLocalPatternsDescendsDoublestar(t *testing.T) {
	tmpDir := t.TempDir()
	subdir := filepath.Join(tmpDir, "subdir")
	if err := os.Mkdir(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	file3 := filepath.Join(subdir, "file3.txt")
	if err := os.WriteFile(file3, []byte("content3"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := expandLocalPatterns([]string{filepath.Join(tmpDir, "**", "*.txt")})
	if err != nil {
		t.Fatalf("expandLocalPatterns error: %v", err)
	}
	found := false
	for _, f := range got {
		if f == file3 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s among matches, got %v", file3, got)
	}
}

func TestExpandLocalPatternsNoMatchYieldsEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	got, err := expandLocalPatterns([]string{filepath.Join(tmpDir, "*.missing")})
	if err != nil {
		t.Fatalf("expandLocalPatterns error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestExpandLocalPatternsExcludesDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, "subdir.txt"), 0o755); err != nil {
		t.Fatal(err)
	}
	file1 := filepath.Join(tmpDir, "file1.txt")
	if err := os.WriteFile(file1, []byte("content1"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := expandLocalPatterns([]string{filepath.Join(tmpDir, "*.txt")})
	if err != nil {
		t.Fatalf("expandLocalPatterns error: %v", err)
	}
	sort.Strings(got)
	if len(got) != 1 || got[0] != file1 {
		t.Fatalf("expected only %s, got %v", file1, got)
	}
}

func TestExpandLocalPatternsInvalidGlobReturnsError(t *testing.T) {
	if _, err := expandLocalPatterns([]string{"[invalid"}); err == nil {
		t.Fatal("expected an error for an invalid glob pattern")
	}
}
