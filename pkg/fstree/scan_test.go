package fstree

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	derrors "github.com/matzehuels/dirmap/pkg/errors"
)

func writeFiles(t *testing.T, dir string, files map[string]int) {
	t.Helper()
	for name, size := range files {
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(full, []byte(strings.Repeat("x", size)), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func TestScan(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]int{
		"a.txt":            100,
		"b.txt":            5,
		"sub/c.txt":        40,
		"sub/nested/d.txt": 60,
		"zero":             0,
	})
	if err := os.Mkdir(filepath.Join(tmpDir, "emptydir"), 0755); err != nil {
		t.Fatal(err)
	}

	var dirs []string
	snap, err := Scan(context.Background(), tmpDir, ScanOptions{
		OnDir: func(p string) { dirs = append(dirs, p) },
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if err := Validate(snap.Root); err != nil {
		t.Fatalf("scanned tree is invalid: %v", err)
	}
	if snap.Root.Size != 205 {
		t.Errorf("root size = %d, want 205", snap.Root.Size)
	}
	if snap.Files != 5 {
		t.Errorf("Files = %d, want 5", snap.Files)
	}
	if snap.Dirs != 4 {
		t.Errorf("Dirs = %d, want 4", snap.Dirs)
	}
	if len(dirs) != 4 {
		t.Errorf("OnDir called %d times, want 4", len(dirs))
	}
	if !filepath.IsAbs(snap.Root.Path) {
		t.Errorf("root path %q should be absolute", snap.Root.Path)
	}

	// a.txt and sub tie at 100 bytes; directory entries are read in name order.
	if got := snap.Root.Children[0].Name; got != "a.txt" {
		t.Errorf("first child = %s, want a.txt", got)
	}
	if sub := snap.Root.Children[1]; sub.Name != "sub" || sub.Size != 100 {
		t.Errorf("second child = %s (%d), want sub (100)", sub.Name, sub.Size)
	}
	if want := filepath.Join(tmpDir, "sub", "nested", "d.txt"); Find(snap.Root, want) == nil {
		t.Errorf("Find(%s) = nil", want)
	}
}

func TestScanExclusions(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]int{
		"keep.go":             10,
		"drop.tmp":            10,
		"node_modules/lib.js": 10,
		"src/x.tmp":           10,
		"src/y.go":            10,
	})

	snap, err := Scan(context.Background(), tmpDir, ScanOptions{Exclude: []string{"*.tmp", "node_modules/"}})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if snap.Root.Size != 20 {
		t.Errorf("root size = %d, want 20", snap.Root.Size)
	}
	if snap.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", snap.Skipped)
	}
}

func TestScanSkipsSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]int{"real/file": 50})
	if err := os.Symlink(filepath.Join(tmpDir, "real"), filepath.Join(tmpDir, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	snap, err := Scan(context.Background(), tmpDir, ScanOptions{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if snap.Root.Size != 50 {
		t.Errorf("root size = %d, want 50 (symlinked dir must not be counted twice)", snap.Root.Size)
	}
	if snap.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", snap.Skipped)
	}
}

func TestScanErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := Scan(context.Background(), "/nonexistent/directory", ScanOptions{})
		if !derrors.Is(err, derrors.ErrCodeFileNotFound) {
			t.Errorf("err = %v, want FILE_NOT_FOUND", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFiles(t, tmpDir, map[string]int{"f": 1})
		_, err := Scan(context.Background(), filepath.Join(tmpDir, "f"), ScanOptions{})
		if !derrors.Is(err, derrors.ErrCodeInvalidPath) {
			t.Errorf("err = %v, want INVALID_PATH", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Scan(ctx, t.TempDir(), ScanOptions{}); err == nil {
			t.Error("Scan should fail on a cancelled context")
		}
	})
}
