package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"animmuf/internal/fileutil"
	"animmuf/internal/logging"
)

// Result reports whether a fetch observed new manifest content.
type Result int

const (
	// Unchanged means the remote content matched the last stored entity tag;
	// no local state was mutated.
	Unchanged Result = iota
	// Changed means new content was fetched and the cache was overwritten.
	Changed
)

func (r Result) String() string {
	if r == Changed {
		return "changed"
	}
	return "unchanged"
}

// Fetcher retrieves the remote manifest with entity-tag conditional requests
// and maintains the local cache file plus its sidecar.
type Fetcher struct {
	client    *http.Client
	url       string
	cachePath string
	logger    *slog.Logger
}

// NewFetcher constructs a Fetcher writing to cachePath.
func NewFetcher(client *http.Client, url, cachePath string, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client:    client,
		url:       url,
		cachePath: cachePath,
		logger:    logging.WithComponent(logger, "manifest"),
	}
}

// CachePath returns the location of the cached manifest document.
func (f *Fetcher) CachePath() string { return f.cachePath }

// etagPath is the sidecar holding the last-seen entity tag as plain text.
func (f *Fetcher) etagPath() string { return f.cachePath + ".etag" }

// Fetch issues a conditional GET for the manifest. On 304 it returns
// Unchanged without touching local state. On 200 it validates the body,
// atomically overwrites the cache, stores the new entity tag, and returns
// Changed. Any other outcome is an error and leaves the cache as it was.
func (f *Fetcher) Fetch(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Unchanged, fmt.Errorf("build manifest request: %w", err)
	}

	etag := f.readETag()
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Unchanged, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		f.logger.Debug("manifest unchanged", logging.String("etag", etag))
		return Unchanged, nil
	case http.StatusOK:
		// fall through
	default:
		return Unchanged, fmt.Errorf("fetch manifest: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Unchanged, fmt.Errorf("read manifest body: %w", err)
	}

	// Reject bodies that do not parse before overwriting a usable cache.
	if _, err := Decode(bytes.NewReader(body)); err != nil {
		return Unchanged, err
	}

	if err := fileutil.WriteFileAtomic(f.cachePath, body, 0o644); err != nil {
		return Unchanged, fmt.Errorf("write manifest cache: %w", err)
	}

	newTag := strings.TrimSpace(resp.Header.Get("ETag"))
	if err := f.storeETag(newTag); err != nil {
		// The cache itself is valid; a lost tag only costs one full fetch.
		f.logger.Warn("store entity tag", logging.Error(err))
	}

	f.logger.Info("manifest fetched", logging.Int("bytes", len(body)), logging.String("etag", newTag))
	return Changed, nil
}

// HasCache reports whether a previously fetched manifest is available as a
// fallback when the remote is unreachable.
func (f *Fetcher) HasCache() bool {
	info, err := os.Stat(f.cachePath)
	return err == nil && !info.IsDir()
}

func (f *Fetcher) readETag() string {
	data, err := os.ReadFile(f.etagPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("read entity tag", logging.Error(err))
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (f *Fetcher) storeETag(tag string) error {
	if tag == "" {
		// No tag from the server: drop the sidecar so the next fetch is
		// unconditional rather than conditional on a stale value.
		if err := os.Remove(f.etagPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return fileutil.WriteFileAtomic(f.etagPath(), []byte(tag+"\n"), 0o644)
}
