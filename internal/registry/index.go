// Package registry builds and publishes the consolidated template index.
//
// The published index is entirely derived state: it is computed from
// immutable per-candidate results plus the prior snapshot and swapped in
// atomically. Nothing edits a published index in place.
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Presto-io/template-registry/internal/config"
)

// SchemaVersion is the registry index schema version.
const SchemaVersion = 1

// Index is the published registry document.
type Index struct {
	Version    int        `json:"version"`
	UpdatedAt  string     `json:"updatedAt"`
	Categories []Category `json:"categories"`
	Templates  []Entry    `json:"templates"`
}

// Category is one deduplicated category with display labels.
type Category struct {
	ID    string               `json:"id"`
	Label config.CategoryLabel `json:"label"`
}

// Entry summarizes one published template.
type Entry struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Author      string   `json:"author"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords"`
	License     string   `json:"license"`
	Trust       Trust    `json:"trust"`
	PublishedAt string   `json:"publishedAt"`
	Repository  string   `json:"repository"`
}

// EmptyIndex returns a fresh index with no entries.
func EmptyIndex() *Index {
	return &Index{Version: SchemaVersion}
}

// LoadIndex reads the prior published index. A missing file yields an
// empty index; any other failure is infrastructure-level and fatal to
// the run, since incremental decisions depend on the prior snapshot.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return EmptyIndex(), nil
		}
		return nil, fmt.Errorf("read prior index: %w", err)
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse prior index: %w", err)
	}
	return &index, nil
}

// Versions returns the name→version map of the index's entries.
func (i *Index) Versions() map[string]string {
	versions := make(map[string]string, len(i.Templates))
	for _, t := range i.Templates {
		versions[t.Name] = t.Version
	}
	return versions
}
