package imageset

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"animmuf/internal/logging"
	"animmuf/internal/manifest"
)

// Policy selects how the Reconciler decides a managed image is stale.
type Policy string

const (
	// PolicyManifest removes managed files absent from the current manifest.
	PolicyManifest Policy = "manifest"
	// PolicyMaxAge removes managed files whose filename-embedded timestamp
	// is older than the expiry window.
	PolicyMaxAge Policy = "max-age"
)

// timestampLayout matches the compact capture time embedded in image names,
// e.g. CTIPe-MUF_20240101T000000.png.
const timestampLayout = "20060102T150405"

// Reconciler removes stale images from the target directory. Exactly one
// policy applies per run; deletion failures are logged and retried naturally
// on the next run.
type Reconciler struct {
	policy Policy
	prefix string
	maxAge time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewReconciler builds a Reconciler for the given policy and managed prefix.
func NewReconciler(policy Policy, prefix string, maxAge time.Duration, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		policy: policy,
		prefix: prefix,
		maxAge: maxAge,
		now:    time.Now,
		logger: logging.WithComponent(logger, "retention"),
	}
}

// Reconcile deletes stale managed images and returns the count removed.
// After a successful manifest-policy pass, every managed file in targetDir
// is named by the manifest.
func (r *Reconciler) Reconcile(m manifest.Manifest, targetDir string) (int, error) {
	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return 0, err
	}

	current := m.NameSet()
	cutoff := r.now().Add(-r.maxAge)

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), r.prefix) {
			continue
		}
		if !r.stale(entry.Name(), current, cutoff) {
			continue
		}

		path := filepath.Join(targetDir, entry.Name())
		if err := os.Remove(path); err != nil {
			r.logger.Warn("delete stale image", logging.String("file", entry.Name()), logging.Error(err))
			continue
		}
		r.logger.Info("stale image removed", logging.String("file", entry.Name()))
		removed++
	}
	return removed, nil
}

func (r *Reconciler) stale(name string, current map[string]struct{}, cutoff time.Time) bool {
	switch r.policy {
	case PolicyMaxAge:
		captured, ok := parseCaptureTime(name, r.prefix)
		if !ok {
			// A managed file we cannot date is left alone rather than
			// guessed at.
			r.logger.Warn("unparseable capture time", logging.String("file", name))
			return false
		}
		return captured.Before(cutoff)
	default:
		_, listed := current[name]
		return !listed
	}
}

// parseCaptureTime extracts the timestamp embedded between the managed
// prefix and the file extension.
func parseCaptureTime(name, prefix string) (time.Time, bool) {
	stem := strings.TrimPrefix(name, prefix)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	captured, err := time.Parse(timestampLayout, stem)
	if err != nil {
		return time.Time{}, false
	}
	return captured, true
}
