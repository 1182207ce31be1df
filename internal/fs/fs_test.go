package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveFindsFileInLookupDirs(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	target := filepath.Join(second, "nested", "file.txt")
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	r := NewPathResolver([]string{first, second})
	got, err := r.Resolve(filepath.Join("nested", "file.txt"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != target {
		t.Errorf("Resolve = %q, want %q", got, target)
	}
}

func TestResolveMissingFileFails(t *testing.T) {
	r := NewPathResolver([]string{t.TempDir()})
	if _, err := r.Resolve("absent.txt"); err == nil {
		t.Fatal("expected error for missing target")
	}
}

func TestResolveAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "abs.txt")
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	r := NewPathResolver(nil)
	got, err := r.Resolve(target)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != target {
		t.Errorf("Resolve = %q, want %q", got, target)
	}

	if _, err := r.Resolve(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("expected error for missing absolute target")
	}
}

func TestWriteFileAtomicOverwritesAndPreservesMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.sh")
	if err := os.WriteFile(path, []byte("old"), 0755); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := WriteFileAtomic(path, "new content\n"); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(got) != "new content\n" {
		t.Errorf("content = %q", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".anchorpatch-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestReadFileTextMissingFileFails(t *testing.T) {
	if _, err := ReadFileText(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadFileTextRejectsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binary.dat")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 'x', 0x00, 0x80}, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := ReadFileText(path); err == nil {
		t.Fatal("expected error for invalid UTF-8 content")
	}
}

func TestContentSHA256MatchesFileHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	const content = "X\nY\nZ\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	fileHash, err := GetFileSHA256(path)
	if err != nil {
		t.Fatalf("GetFileSHA256 failed: %v", err)
	}
	if fileHash != ContentSHA256(content) {
		t.Errorf("hash mismatch: file %s, content %s", fileHash, ContentSHA256(content))
	}
}
