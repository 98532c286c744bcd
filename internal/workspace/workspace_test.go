package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"animmuf/internal/errs"
	"animmuf/internal/logging"
)

func TestAcquireCreatesDirectory(t *testing.T) {
	parent := t.TempDir()
	ws, err := Acquire(parent)
	if err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(ws.Path())
	if err != nil || !info.IsDir() {
		t.Fatalf("expected scratch directory, got %v", err)
	}
}

func TestAcquireFailsWhenDirectoryExists(t *testing.T) {
	parent := t.TempDir()
	if _, err := Acquire(parent); err != nil {
		t.Fatal(err)
	}

	_, err := Acquire(parent)
	if err == nil {
		t.Fatal("expected error for existing scratch directory")
	}
	if !errors.Is(err, errs.ErrConcurrentRun) {
		t.Fatalf("expected ErrConcurrentRun, got %v", err)
	}
}

func TestReleaseRemovesContents(t *testing.T) {
	parent := t.TempDir()
	ws, err := Acquire(parent)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ws.FramePath(0), []byte("frame"), 0o644); err != nil {
		t.Fatal(err)
	}

	ws.Release(logging.NewNop())

	if _, err := os.Stat(ws.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected scratch directory removed, got %v", err)
	}
}

func TestReleaseTolerantOfMissingDirectory(t *testing.T) {
	parent := t.TempDir()
	ws, err := Acquire(parent)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(ws.Path()); err != nil {
		t.Fatal(err)
	}

	// Must not panic or error when the directory is already gone.
	ws.Release(logging.NewNop())
}

func TestFramePathsAreSortable(t *testing.T) {
	ws := &Workspace{path: filepath.Join(os.TempDir(), "x")}
	if ws.FramePath(3) >= ws.FramePath(10) {
		t.Fatal("frame paths must sort in index order")
	}
	match, err := filepath.Match(ws.FrameGlob(), ws.FramePath(42))
	if err != nil {
		t.Fatal(err)
	}
	if !match {
		t.Fatal("frame glob must match frame paths")
	}
}
