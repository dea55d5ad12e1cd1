package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Presto-io/template-registry/internal/artifact"
	"github.com/Presto-io/template-registry/internal/manifest"
	"github.com/Presto-io/template-registry/internal/render"
	"github.com/Presto-io/template-registry/internal/sandbox"
)

// Outcome records what happened to one candidate during a run.
type Outcome struct {
	Name   string
	Stage  string // pipeline stage where the outcome was decided
	Reason string // taxonomy class plus a short diagnostic
}

// Summary collects per-candidate outcomes for the end-of-run report.
// It is safe for concurrent use: candidates are processed independently
// and report their outcomes as they finish.
type Summary struct {
	mu        sync.Mutex
	succeeded []string
	skipped   []Outcome
	failed    []Outcome
}

// NewSummary creates an empty run summary.
func NewSummary() *Summary {
	return &Summary{}
}

// Succeed records a fully processed candidate.
func (s *Summary) Succeed(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.succeeded = append(s.succeeded, name)
}

// Skip records a candidate left out without error (no version change).
func (s *Summary) Skip(name, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped = append(s.skipped, Outcome{Name: name, Reason: reason})
}

// Fail records a candidate-scoped failure, classified by taxonomy.
func (s *Summary) Fail(name, stage string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, Outcome{
		Name:   name,
		Stage:  stage,
		Reason: Classify(err),
	})
}

// Failed returns the recorded failures, sorted by name.
func (s *Summary) Failed() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	failed := make([]Outcome, len(s.failed))
	copy(failed, s.failed)
	sort.Slice(failed, func(i, j int) bool { return failed[i].Name < failed[j].Name })
	return failed
}

// FailureCount returns the number of recorded failures.
func (s *Summary) FailureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.failed)
}

// String renders the run summary for the console.
func (s *Summary) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Run summary: %d succeeded, %d skipped, %d failed\n",
		len(s.succeeded), len(s.skipped), len(s.failed))

	if len(s.succeeded) > 0 {
		names := make([]string, len(s.succeeded))
		copy(names, s.succeeded)
		sort.Strings(names)
		fmt.Fprintf(&b, "  succeeded: %s\n", strings.Join(names, ", "))
	}
	for _, o := range sortedOutcomes(s.skipped) {
		fmt.Fprintf(&b, "  skipped:   %s (%s)\n", o.Name, o.Reason)
	}
	for _, o := range sortedOutcomes(s.failed) {
		fmt.Fprintf(&b, "  failed:    %s at %s: %s\n", o.Name, o.Stage, o.Reason)
	}
	return b.String()
}

func sortedOutcomes(outcomes []Outcome) []Outcome {
	sorted := make([]Outcome, len(outcomes))
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

// Classify maps a candidate-scoped error onto its taxonomy class name,
// keeping a short diagnostic tail.
func Classify(err error) string {
	class := "Error"
	switch {
	case errors.Is(err, artifact.ErrIntegrityMismatch):
		class = "IntegrityMismatch"
	case errors.Is(err, manifest.ErrInvalidIdentifier):
		class = "InvalidIdentifier"
	case errors.Is(err, sandbox.ErrExecutionTimeout):
		class = "ExecutionTimeout"
	case errors.Is(err, sandbox.ErrOutputTooLarge):
		class = "OutputTooLarge"
	case errors.Is(err, sandbox.ErrExecutionFailed):
		class = "ExecutionFailed"
	case errors.Is(err, manifest.ErrMalformedManifest):
		class = "MalformedManifest"
	case errors.Is(err, render.ErrRenderFailed):
		class = "RenderError"
	}

	detail := err.Error()
	if len(detail) > 200 {
		detail = detail[:200] + "..."
	}
	return fmt.Sprintf("%s: %s", class, detail)
}
