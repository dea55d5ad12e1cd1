package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// PublishState tracks a publish journal through its lifecycle.
type PublishState string

const (
	StatePending    PublishState = "pending"
	StateInProgress PublishState = "in_progress"
	StateCompleted  PublishState = "completed"
	StateFailed     PublishState = "failed"
)

// publishJournal records one publish attempt so an interrupted run can
// be diagnosed. The index files themselves are replaced atomically; the
// journal is bookkeeping, not a lock.
type publishJournal struct {
	Version   int          `json:"version"` // Schema version for future evolution
	ID        string       `json:"id"`      // UUID for unique identification
	Timestamp time.Time    `json:"timestamp"`
	State     PublishState `json:"state"`
	Targets   []string     `json:"targets"`
}

// Publisher writes index snapshots with journaled, atomic replacement.
type Publisher struct {
	journalDir string
}

// NewPublisher creates a publisher writing journals under journalDir.
func NewPublisher(journalDir string) *Publisher {
	return &Publisher{journalDir: journalDir}
}

// Publish writes the index to every target path. All targets are staged
// as temp files first and then renamed, so a failure while staging
// leaves every prior snapshot untouched. Partial index states are never
// externally visible.
func (p *Publisher) Publish(index *Index, targets ...string) error {
	if len(targets) == 0 {
		return fmt.Errorf("publish: no targets")
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	data = append(data, '\n')

	journal := &publishJournal{
		Version:   1,
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		State:     StatePending,
		Targets:   targets,
	}
	if err := p.writeJournal(journal); err != nil {
		return err
	}

	// Stage every target before renaming any of them.
	tmpPaths := make([]string, len(targets))
	cleanup := func() {
		for _, tmp := range tmpPaths {
			if tmp != "" {
				os.Remove(tmp)
			}
		}
	}

	for i, target := range targets {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			cleanup()
			return p.fail(journal, fmt.Errorf("create target dir: %w", err))
		}
		tmp := target + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			cleanup()
			return p.fail(journal, fmt.Errorf("stage index: %w", err))
		}
		tmpPaths[i] = tmp
	}

	journal.State = StateInProgress
	if err := p.writeJournal(journal); err != nil {
		cleanup()
		return err
	}

	for i, target := range targets {
		if err := os.Rename(tmpPaths[i], target); err != nil {
			cleanup()
			return p.fail(journal, fmt.Errorf("swap index into place: %w", err))
		}
		tmpPaths[i] = ""
	}

	journal.State = StateCompleted
	return p.writeJournal(journal)
}

func (p *Publisher) fail(journal *publishJournal, cause error) error {
	journal.State = StateFailed
	if err := p.writeJournal(journal); err != nil {
		return fmt.Errorf("%v (journal update failed: %w)", cause, err)
	}
	return cause
}

// writeJournal persists the journal atomically under its run ID.
func (p *Publisher) writeJournal(journal *publishJournal) error {
	if err := os.MkdirAll(p.journalDir, 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}

	data, err := json.MarshalIndent(journal, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	path := filepath.Join(p.journalDir, "publish-"+journal.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename journal: %w", err)
	}
	return nil
}
