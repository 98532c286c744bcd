package imageset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"animmuf/internal/logging"
	"animmuf/internal/manifest"
)

// Syncer downloads manifest entries missing from the local image directory.
type Syncer struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewSyncer constructs a Syncer resolving entry paths against baseURL.
func NewSyncer(client *http.Client, baseURL string, logger *slog.Logger) *Syncer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Syncer{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.WithComponent(logger, "sync"),
	}
}

// Sync downloads every manifest entry without a local counterpart and
// returns the count of newly fetched images. A failure on one entry is
// logged and does not abort the rest; re-running after a partial run only
// fetches what is still missing.
func (s *Syncer) Sync(ctx context.Context, m manifest.Manifest, targetDir string) (int, error) {
	fetched := 0
	for _, entry := range m {
		if err := ctx.Err(); err != nil {
			return fetched, err
		}

		name := entry.Name()
		if name == "" {
			s.logger.Warn("manifest entry without a usable name", logging.String("url", entry.URL))
			continue
		}

		local := filepath.Join(targetDir, name)
		if _, err := os.Stat(local); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("stat local image", logging.String("file", local), logging.Error(err))
			continue
		}

		if err := s.download(ctx, entry.URL, local); err != nil {
			s.logger.Warn("download image", logging.String("file", name), logging.Error(err))
			continue
		}
		s.logger.Info("image saved", logging.String("file", name))
		fetched++
	}
	return fetched, nil
}

// download streams the remote image to a hidden temp file and renames it
// into place, so the final name never holds a partial transfer.
func (s *Syncer) download(ctx context.Context, urlPath, local string) error {
	url := urlPath
	if !strings.Contains(urlPath, "://") {
		if !strings.HasPrefix(urlPath, "/") {
			urlPath = "/" + urlPath
		}
		url = s.baseURL + urlPath
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmpPath := filepath.Join(filepath.Dir(local), "."+filepath.Base(local)+".part")
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("stream body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, local); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// List returns the full paths of managed images in targetDir, sorted by
// filename. Source filenames encode capture time, so this is capture order.
func List(targetDir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return nil, fmt.Errorf("read target directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		files = append(files, filepath.Join(targetDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
