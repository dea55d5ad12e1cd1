// Package discovery finds template candidates: official templates from
// the organization's monorepo plus community repositories carrying the
// registry topic.
package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Presto-io/template-registry/internal/github"
)

// Candidate is a template discovered for possible (re-)processing.
// Ephemeral: it exists only for the duration of one pipeline run, handed
// between stages through discovered.json.
type Candidate struct {
	Name        string         `json:"name"`
	Repo        string         `json:"repo"`
	Owner       string         `json:"owner"`
	Version     string         `json:"version"`
	Tag         string         `json:"tag"`
	PublishedAt time.Time      `json:"published_at"`
	HTMLURL     string         `json:"html_url"`
	Official    bool           `json:"official"`
	CmdPath     string         `json:"cmd_path,omitempty"`
	Assets      []github.Asset `json:"assets"`
}

// Meta is the trusted per-bundle metadata persisted next to extracted
// artifacts. It records where a template came from; nothing in it is
// derived from the untrusted binary's output.
type Meta struct {
	Name        string    `json:"name"`
	Repo        string    `json:"repo"`
	Owner       string    `json:"owner"`
	Version     string    `json:"version"`
	Tag         string    `json:"tag"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
	Official    bool      `json:"official"`
}

// Meta derives the persistent metadata for a candidate.
func (c *Candidate) Meta() Meta {
	return Meta{
		Name:        c.Name,
		Repo:        c.Repo,
		Owner:       c.Owner,
		Version:     c.Version,
		Tag:         c.Tag,
		PublishedAt: c.PublishedAt,
		HTMLURL:     c.HTMLURL,
		Official:    c.Official,
	}
}

// SaveList writes the discovered candidate list for the next stage.
func SaveList(path string, candidates []Candidate) error {
	data, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}
	return nil
}

// LoadList reads the candidate list produced by a discover run.
func LoadList(path string) ([]Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	var candidates []Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("parse candidates: %w", err)
	}
	return candidates, nil
}

// SaveMeta writes a bundle's meta.json.
func SaveMeta(dir string, meta Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

// LoadMeta reads a bundle's meta.json.
func LoadMeta(dir string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse meta: %w", err)
	}
	return &meta, nil
}
