package imageset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"animmuf/internal/logging"
	"animmuf/internal/manifest"
)

func newImageServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("png-bytes:" + r.URL.Path))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestSyncDownloadsMissingImages(t *testing.T) {
	server, _ := newImageServer(t)
	dir := t.TempDir()
	syncer := NewSyncer(server.Client(), server.URL, logging.NewNop())

	m := manifest.Manifest{
		{URL: "/img/CTIPe-MUF_20240101T000000.png"},
		{URL: "/img/CTIPe-MUF_20240101T010000.png"},
	}

	fetched, err := syncer.Sync(context.Background(), m, dir)
	if err != nil {
		t.Fatal(err)
	}
	if fetched != 2 {
		t.Fatalf("expected 2 downloads, got %d", fetched)
	}

	for _, name := range m.Names() {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s on disk: %v", name, err)
		}
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	server, hits := newImageServer(t)
	dir := t.TempDir()
	syncer := NewSyncer(server.Client(), server.URL, logging.NewNop())

	m := manifest.Manifest{{URL: "/img/CTIPe-MUF_20240101T000000.png"}}

	if _, err := syncer.Sync(context.Background(), m, dir); err != nil {
		t.Fatal(err)
	}
	firstHits := *hits

	fetched, err := syncer.Sync(context.Background(), m, dir)
	if err != nil {
		t.Fatal(err)
	}
	if fetched != 0 {
		t.Fatalf("second sync should download nothing, got %d", fetched)
	}
	if *hits != firstHits {
		t.Fatalf("second sync hit the server %d extra times", *hits-firstHits)
	}
}

func TestSyncToleratesPerEntryFailure(t *testing.T) {
	server, _ := newImageServer(t)
	dir := t.TempDir()
	syncer := NewSyncer(server.Client(), server.URL, logging.NewNop())

	m := manifest.Manifest{
		{URL: "/img/CTIPe-MUF_missing.png"},
		{URL: "/img/CTIPe-MUF_20240101T000000.png"},
	}

	fetched, err := syncer.Sync(context.Background(), m, dir)
	if err != nil {
		t.Fatal(err)
	}
	if fetched != 1 {
		t.Fatalf("expected the healthy entry to be fetched, got %d", fetched)
	}
	if _, err := os.Stat(filepath.Join(dir, "CTIPe-MUF_20240101T000000.png")); err != nil {
		t.Fatalf("healthy entry missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "CTIPe-MUF_missing.png")); !os.IsNotExist(err) {
		t.Fatal("failed entry must not leave a file under the final name")
	}
}

func TestSyncLeavesNoPartialFiles(t *testing.T) {
	server, _ := newImageServer(t)
	dir := t.TempDir()
	syncer := NewSyncer(server.Client(), server.URL, logging.NewNop())

	m := manifest.Manifest{{URL: "/img/CTIPe-MUF_20240101T000000.png"}}
	if _, err := syncer.Sync(context.Background(), m, dir); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".part") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestListReturnsManagedFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"CTIPe-MUF_20240101T020000.png",
		"CTIPe-MUF_20240101T000000.png",
		"unrelated.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := List(dir, "CTIPe-MUF_")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 managed files, got %d", len(files))
	}
	if filepath.Base(files[0]) != "CTIPe-MUF_20240101T000000.png" {
		t.Fatalf("expected capture-time order, got %v", files)
	}
}
