// Package manifest models the remote forecast-image manifest and its
// conditional retrieval. The manifest is a JSON array of entries naming the
// images currently published upstream; a local copy is cached verbatim with
// an entity-tag sidecar so an unchanged remote costs one round trip.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
)

// Entry names one remote image by its URL path.
type Entry struct {
	URL string `json:"url"`
}

// Manifest is the ordered list of entries from the remote JSON document.
type Manifest []Entry

// Name returns the canonical local filename for the entry: the base name of
// its remote path, independent of directory structure.
func (e Entry) Name() string {
	name := path.Base(e.URL)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// Names returns the canonical local filenames in manifest order.
func (m Manifest) Names() []string {
	names := make([]string, 0, len(m))
	for _, entry := range m {
		if name := entry.Name(); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// NameSet returns the set of canonical local filenames.
func (m Manifest) NameSet() map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for _, entry := range m {
		if name := entry.Name(); name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// Decode parses a manifest document. An empty JSON array is valid.
func Decode(r io.Reader) (Manifest, error) {
	var m Manifest
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// Load parses the cached manifest at path.
func Load(path string) (Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest cache: %w", err)
	}
	defer file.Close()
	return Decode(file)
}
