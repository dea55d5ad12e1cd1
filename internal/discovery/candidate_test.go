package discovery

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Presto-io/template-registry/internal/github"
)

func TestSaveLoadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "discovered.json")

	candidates := []Candidate{
		{
			Name:        "gongwen",
			Repo:        "Presto-io/Presto",
			Owner:       "Presto-io",
			Version:     "2.0.0",
			Tag:         "v2.0.0",
			PublishedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
			HTMLURL:     "https://github.com/Presto-io/Presto",
			Official:    true,
			CmdPath:     "cmd/presto-template-gongwen",
			Assets:      []github.Asset{{Name: "checksums.txt"}},
		},
		{Name: "letter", Repo: "alice/letter", Owner: "alice", Version: "0.3.0"},
	}

	if err := SaveList(path, candidates); err != nil {
		t.Fatalf("SaveList() error = %v", err)
	}

	loaded, err := LoadList(path)
	if err != nil {
		t.Fatalf("LoadList() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("len(loaded) = %d", len(loaded))
	}
	if loaded[0].Name != "gongwen" || !loaded[0].Official || loaded[0].CmdPath != "cmd/presto-template-gongwen" {
		t.Errorf("loaded[0] = %+v", loaded[0])
	}
	if !loaded[0].PublishedAt.Equal(candidates[0].PublishedAt) {
		t.Errorf("PublishedAt = %v", loaded[0].PublishedAt)
	}
	if len(loaded[0].Assets) != 1 {
		t.Errorf("Assets = %+v", loaded[0].Assets)
	}
}

func TestLoadListMissing(t *testing.T) {
	if _, err := LoadList(filepath.Join(t.TempDir(), "discovered.json")); err == nil {
		t.Error("LoadList() on missing file succeeded, want error")
	}
}

func TestSaveLoadMeta(t *testing.T) {
	dir := t.TempDir()

	cand := Candidate{
		Name:        "letter",
		Repo:        "alice/letter",
		Owner:       "alice",
		Version:     "0.3.0",
		Tag:         "v0.3.0",
		PublishedAt: time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC),
		HTMLURL:     "https://github.com/alice/letter",
		Assets:      []github.Asset{{Name: "should-not-persist"}},
	}

	if err := SaveMeta(dir, cand.Meta()); err != nil {
		t.Fatalf("SaveMeta() error = %v", err)
	}

	meta, err := LoadMeta(dir)
	if err != nil {
		t.Fatalf("LoadMeta() error = %v", err)
	}
	if meta.Name != "letter" || meta.Owner != "alice" || meta.Version != "0.3.0" {
		t.Errorf("meta = %+v", meta)
	}
	if meta.Official {
		t.Error("Official = true")
	}
}

func TestLoadMetaMissing(t *testing.T) {
	if _, err := LoadMeta(t.TempDir()); err == nil {
		t.Error("LoadMeta() without meta.json succeeded, want error")
	}
}
