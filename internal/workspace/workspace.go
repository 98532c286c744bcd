// Package workspace owns the scratch directory a single run composes frames
// into. The directory is created fresh at run start and removed on every
// exit path; a leftover workspace from a crashed or concurrent run is a
// fatal condition, never silently reused, since stale numbered frames would
// corrupt the encoder's input ordering.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"animmuf/internal/errs"
	"animmuf/internal/logging"
)

const dirName = "frames.work"

// Workspace is a run-private scratch directory.
type Workspace struct {
	path string
}

// Acquire creates the scratch directory under parent. It fails with
// errs.ErrConcurrentRun if the directory already exists.
func Acquire(parent string) (*Workspace, error) {
	path := filepath.Join(parent, dirName)
	if err := os.Mkdir(path, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, errs.Wrap(errs.ErrConcurrentRun, "workspace", "acquire",
				fmt.Sprintf("scratch directory %s already exists; remove it if no other run is active", path), nil)
		}
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	return &Workspace{path: path}, nil
}

// Path returns the scratch directory location.
func (w *Workspace) Path() string { return w.path }

// FramePath returns the zero-padded, lexicographically sortable path for the
// frame at the given index.
func (w *Workspace) FramePath(index int) string {
	return filepath.Join(w.path, fmt.Sprintf("frame_%04d.png", index))
}

// FrameGlob returns the glob pattern matching every composed frame.
func (w *Workspace) FrameGlob() string {
	return filepath.Join(w.path, "frame_*.png")
}

// Release removes the scratch directory and everything beneath it. It is
// safe to call on every exit path; removal failures are logged, not raised,
// because the caller's own error is the one worth propagating.
func (w *Workspace) Release(logger *slog.Logger) {
	if w == nil || w.path == "" {
		return
	}
	log := logging.WithComponent(logger, "workspace")
	if err := os.RemoveAll(w.path); err != nil {
		log.Error("remove scratch directory", logging.String("path", w.path), logging.Error(err))
		return
	}
	log.Debug("scratch directory removed", logging.String("path", w.path))
}
