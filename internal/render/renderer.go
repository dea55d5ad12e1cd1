// Package render invokes the Typst CLI to turn transformed template
// sources into preview images.
//
// The renderer itself is trusted, but the source it compiles is still
// untrusted-author content, so the invocation runs through the same
// sandbox as extraction: scrubbed environment, no network, a larger
// wall-clock budget, bounded output. A render failure skips only the
// candidate that produced it.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Presto-io/template-registry/internal/sandbox"
)

// ErrRenderFailed marks a failed preview compilation. Candidate-scoped.
var ErrRenderFailed = errors.New("render failed")

// typstBin is the rendering toolchain executable, resolved against the
// sandbox PATH.
const typstBin = "typst"

// Renderer compiles .typ sources into per-page SVG previews.
type Renderer struct {
	runner  *sandbox.Runner
	fontDir string
}

// New creates a Renderer that compiles with fonts from fontDir.
func New(runner *sandbox.Runner, fontDir string) *Renderer {
	return &Renderer{runner: runner, fontDir: fontDir}
}

// Version reports the Typst CLI version, confirming the toolchain is
// reachable inside the sandbox before a batch starts.
func (r *Renderer) Version(ctx context.Context) (string, error) {
	result, err := r.runner.Run(ctx, typstBin, []string{"--version"}, nil)
	if err != nil {
		return "", fmt.Errorf("typst not available: %w", err)
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}

// CompilePages compiles a .typ source into numbered page previews
// (preview-1.svg, preview-2.svg, ...) under outDir and returns the
// rendered pages in stable page order.
func (r *Renderer) CompilePages(ctx context.Context, typPath, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	pattern := filepath.Join(outDir, "preview-{n}.svg")
	args := []string{"compile", "--font-path", r.fontDir, typPath, pattern}
	if _, err := r.runner.Run(ctx, typstBin, args, nil); err != nil {
		return nil, r.classify(err)
	}

	pages, err := filepath.Glob(filepath.Join(outDir, "preview-*.svg"))
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages produced", ErrRenderFailed)
	}
	sortPages(pages)
	return pages, nil
}

// CompileOne compiles a single-page source to a specific output file,
// used for hero frames.
func (r *Renderer) CompileOne(ctx context.Context, typPath, svgPath string) error {
	if err := os.MkdirAll(filepath.Dir(svgPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	args := []string{"compile", "--font-path", r.fontDir, typPath, svgPath}
	if _, err := r.runner.Run(ctx, typstBin, args, nil); err != nil {
		return r.classify(err)
	}
	return nil
}

// classify keeps timeouts as their own taxonomy class and folds every
// other execution failure into ErrRenderFailed.
func (r *Renderer) classify(err error) error {
	if errors.Is(err, sandbox.ErrExecutionTimeout) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrRenderFailed, err)
}

// sortPages orders preview files by page number, not lexically, so
// preview-10.svg sorts after preview-9.svg.
func sortPages(pages []string) {
	sort.Slice(pages, func(i, j int) bool {
		return pageNumber(pages[i]) < pageNumber(pages[j])
	})
}

func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".svg")
	num := strings.TrimPrefix(base, "preview-")
	n := 0
	for _, c := range num {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
