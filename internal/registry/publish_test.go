package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPublish(t *testing.T) {
	dir := t.TempDir()
	journalDir := filepath.Join(dir, "journal")
	targetA := filepath.Join(dir, "deploy", "registry.json")
	targetB := filepath.Join(dir, "registry.json")

	index := &Index{
		Version:   SchemaVersion,
		UpdatedAt: "2026-08-30T12:00:00Z",
		Templates: []Entry{{Name: "gongwen", Version: "1.0.0"}},
	}

	p := NewPublisher(journalDir)
	if err := p.Publish(index, targetA, targetB); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	for _, target := range []string{targetA, targetB} {
		data, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("read %s: %v", target, err)
		}
		var got Index
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("parse %s: %v", target, err)
		}
		if len(got.Templates) != 1 || got.Templates[0].Name != "gongwen" {
			t.Errorf("%s content = %+v", target, got)
		}
		if _, err := os.Stat(target + ".tmp"); !os.IsNotExist(err) {
			t.Errorf("staging file left behind for %s", target)
		}
	}
}

func TestPublishJournal(t *testing.T) {
	dir := t.TempDir()
	journalDir := filepath.Join(dir, "journal")
	target := filepath.Join(dir, "registry.json")

	p := NewPublisher(journalDir)
	if err := p.Publish(EmptyIndex(), target); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	entries, err := os.ReadDir(journalDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("journal entries = %d, want 1", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "publish-") {
		t.Errorf("journal name = %q", entries[0].Name())
	}

	data, err := os.ReadFile(filepath.Join(journalDir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	var journal publishJournal
	if err := json.Unmarshal(data, &journal); err != nil {
		t.Fatal(err)
	}
	if journal.State != StateCompleted {
		t.Errorf("State = %q, want %q", journal.State, StateCompleted)
	}
	if journal.ID == "" {
		t.Error("journal ID empty")
	}
	if len(journal.Targets) != 1 || journal.Targets[0] != target {
		t.Errorf("Targets = %v", journal.Targets)
	}
}

func TestPublishStagingFailureLeavesPriorIntact(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "registry.json")

	// Seed a prior snapshot at the good target.
	p := NewPublisher(filepath.Join(dir, "journal"))
	prior := &Index{Version: SchemaVersion, UpdatedAt: "prior"}
	if err := p.Publish(prior, good); err != nil {
		t.Fatal(err)
	}

	// A second target whose parent is a file: staging must fail there
	// and the already-published snapshot must survive untouched.
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(blocker, "registry.json")

	next := &Index{Version: SchemaVersion, UpdatedAt: "next"}
	if err := p.Publish(next, good, bad); err == nil {
		t.Fatal("Publish() succeeded with an unwritable target")
	}

	data, err := os.ReadFile(good)
	if err != nil {
		t.Fatal(err)
	}
	var got Index
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.UpdatedAt != "prior" {
		t.Errorf("prior snapshot replaced after failed publish: %q", got.UpdatedAt)
	}
	if _, err := os.Stat(good + ".tmp"); !os.IsNotExist(err) {
		t.Error("staging file left behind after failure")
	}
}

func TestPublishNoTargets(t *testing.T) {
	p := NewPublisher(t.TempDir())
	if err := p.Publish(EmptyIndex()); err == nil {
		t.Error("Publish() with no targets succeeded")
	}
}

func TestLoadIndex(t *testing.T) {
	dir := t.TempDir()

	// Missing file yields an empty index, not an error.
	index, err := LoadIndex(filepath.Join(dir, "registry.json"))
	if err != nil {
		t.Fatalf("LoadIndex() on missing file error = %v", err)
	}
	if len(index.Templates) != 0 || index.Version != SchemaVersion {
		t.Errorf("empty index = %+v", index)
	}

	// Corrupt content is infrastructure-fatal.
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadIndex(path); err == nil {
		t.Error("LoadIndex() on corrupt file succeeded")
	}
}
