package registry

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Presto-io/template-registry/internal/artifact"
	"github.com/Presto-io/template-registry/internal/manifest"
	"github.com/Presto-io/template-registry/internal/render"
	"github.com/Presto-io/template-registry/internal/sandbox"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "integrity mismatch",
			err:  fmt.Errorf("asset: %w", artifact.ErrIntegrityMismatch),
			want: "IntegrityMismatch",
		},
		{
			name: "invalid identifier",
			err:  fmt.Errorf("name: %w", manifest.ErrInvalidIdentifier),
			want: "InvalidIdentifier",
		},
		{
			name: "execution timeout",
			err:  fmt.Errorf("bin: %w", sandbox.ErrExecutionTimeout),
			want: "ExecutionTimeout",
		},
		{
			name: "output too large",
			err:  fmt.Errorf("bin: %w", sandbox.ErrOutputTooLarge),
			want: "OutputTooLarge",
		},
		{
			name: "execution failed",
			err:  fmt.Errorf("bin: %w", sandbox.ErrExecutionFailed),
			want: "ExecutionFailed",
		},
		{
			name: "malformed manifest",
			err:  fmt.Errorf("parse: %w", manifest.ErrMalformedManifest),
			want: "MalformedManifest",
		},
		{
			name: "render failure",
			err:  fmt.Errorf("typst: %w", render.ErrRenderFailed),
			want: "RenderError",
		},
		{
			name: "unclassified",
			err:  fmt.Errorf("disk full"),
			want: "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if !strings.HasPrefix(got, tt.want+": ") {
				t.Errorf("Classify() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestClassifyTruncatesDetail(t *testing.T) {
	err := fmt.Errorf("%s: %w", strings.Repeat("x", 500), sandbox.ErrExecutionFailed)
	got := Classify(err)
	if len(got) > 250 {
		t.Errorf("Classify() detail not truncated: %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Classify() = %q, want ... suffix", got)
	}
}

func TestSummary(t *testing.T) {
	s := NewSummary()
	s.Succeed("gongwen")
	s.Skip("resume", "version unchanged")
	s.Fail("letter", "verify", fmt.Errorf("bad digest: %w", artifact.ErrIntegrityMismatch))
	s.Fail("cards", "extract", fmt.Errorf("boom: %w", sandbox.ErrExecutionFailed))

	if got := s.FailureCount(); got != 2 {
		t.Errorf("FailureCount() = %d, want 2", got)
	}

	failed := s.Failed()
	if len(failed) != 2 {
		t.Fatalf("len(Failed()) = %d", len(failed))
	}
	// Sorted by name.
	if failed[0].Name != "cards" || failed[1].Name != "letter" {
		t.Errorf("Failed() order = %v, %v", failed[0].Name, failed[1].Name)
	}
	if failed[1].Stage != "verify" {
		t.Errorf("Stage = %q", failed[1].Stage)
	}

	out := s.String()
	if !strings.Contains(out, "1 succeeded, 1 skipped, 2 failed") {
		t.Errorf("String() = %q", out)
	}
	if !strings.Contains(out, "letter at verify: IntegrityMismatch") {
		t.Errorf("String() missing failure detail: %q", out)
	}
}

func TestSummaryConcurrent(t *testing.T) {
	s := NewSummary()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				s.Succeed(fmt.Sprintf("t%d", i))
			case 1:
				s.Skip(fmt.Sprintf("t%d", i), "unchanged")
			case 2:
				s.Fail(fmt.Sprintf("t%d", i), "extract", fmt.Errorf("x"))
			}
		}(i)
	}
	wg.Wait()

	if got := s.FailureCount(); got != 16 {
		t.Errorf("FailureCount() = %d, want 16", got)
	}
}
