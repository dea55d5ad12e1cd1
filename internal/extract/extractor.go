// Package extract orchestrates the sandboxed invocations that pull
// metadata out of a verified template binary.
//
// Three independent calls produce the bundle: a manifest dump, an
// example dump, and a stdin-piped transform. The calls share no process
// state; a failure in any of them aborts this candidate only, and a
// partially extracted bundle is never left on disk.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Presto-io/template-registry/internal/config"
	"github.com/Presto-io/template-registry/internal/manifest"
	"github.com/Presto-io/template-registry/internal/sandbox"
)

// stderrCap bounds captured stderr for all extraction calls; stderr is
// diagnostics only and never becomes an artifact.
const stderrCap = 64 << 10

// Bundle holds the artifacts extracted from one template binary.
type Bundle struct {
	Manifest    *manifest.Manifest
	ManifestRaw []byte
	Example     []byte
	Source      []byte // transformed typst source
}

// Extractor runs the three extraction calls under per-call policies.
type Extractor struct {
	manifestRunner  *sandbox.Runner
	exampleRunner   *sandbox.Runner
	transformRunner *sandbox.Runner
	log             config.Logger
}

// Option configures an Extractor.
type Option func(*options)

type options struct {
	log      config.Logger
	observer sandbox.Observer
}

// WithLogger sets the extraction logger.
func WithLogger(log config.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithObserver installs a spawn observer on every runner.
func WithObserver(obs sandbox.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// New creates an Extractor whose runners enforce the configured limits.
func New(limits config.Limits, isolation sandbox.Mode, opts ...Option) (*Extractor, error) {
	o := &options{log: config.NopLogger()}
	for _, opt := range opts {
		opt(o)
	}

	var runnerOpts []sandbox.RunnerOption
	if o.observer != nil {
		runnerOpts = append(runnerOpts, sandbox.WithObserver(o.observer))
	}

	newRunner := func(maxStdout int64) (*sandbox.Runner, error) {
		return sandbox.NewRunner(sandbox.Policy{
			Path:      config.SandboxPath,
			Timeout:   limits.ExecTimeout,
			MaxStdout: maxStdout,
			MaxStderr: stderrCap,
			Isolation: isolation,
		}, runnerOpts...)
	}

	manifestRunner, err := newRunner(limits.ManifestMax)
	if err != nil {
		return nil, err
	}
	exampleRunner, err := newRunner(limits.ExampleMax)
	if err != nil {
		return nil, err
	}
	transformRunner, err := newRunner(limits.TypstMax)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		manifestRunner:  manifestRunner,
		exampleRunner:   exampleRunner,
		transformRunner: transformRunner,
		log:             o.log,
	}, nil
}

// Process extracts a full bundle from an authorized binary and commits
// it to destDir. The bundle is staged in a temporary directory and
// renamed into place only when every artifact succeeded.
func (e *Extractor) Process(ctx context.Context, name, binPath, destDir string) (*Bundle, error) {
	bundle, err := e.run(ctx, name, binPath)
	if err != nil {
		return nil, err
	}

	if err := commitBundle(bundle, destDir); err != nil {
		return nil, err
	}
	return bundle, nil
}

// run performs the three sandboxed calls and assembles the in-memory
// bundle without touching destDir.
func (e *Extractor) run(ctx context.Context, name, binPath string) (*Bundle, error) {
	manifestResult, err := e.manifestRunner.Run(ctx, binPath, []string{"--manifest"}, nil)
	if err != nil {
		return nil, fmt.Errorf("manifest call: %w", err)
	}

	m, err := manifest.Parse(manifestResult.Stdout)
	if err != nil {
		return nil, err
	}
	if m.Name != name {
		return nil, fmt.Errorf("%w: declared name %q does not match discovered name %q",
			manifest.ErrMalformedManifest, m.Name, name)
	}

	exampleResult, err := e.exampleRunner.Run(ctx, binPath, []string{"--example"}, nil)
	if err != nil {
		return nil, fmt.Errorf("example call: %w", err)
	}

	// The example document is raw downstream input for the transform;
	// it is not structurally validated.
	transformResult, err := e.transformRunner.Run(ctx, binPath, nil, exampleResult.Stdout)
	if err != nil {
		return nil, fmt.Errorf("transform call: %w", err)
	}

	return &Bundle{
		Manifest:    m,
		ManifestRaw: manifestResult.Stdout,
		Example:     exampleResult.Stdout,
		Source:      transformResult.Stdout,
	}, nil
}

// commitBundle writes the bundle files into a staging directory and
// swaps it into destDir in one rename.
func commitBundle(bundle *Bundle, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	stage, err := os.MkdirTemp(parent, ".stage-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(stage)

	files := map[string][]byte{
		"manifest.json": bundle.ManifestRaw,
		"example.md":    bundle.Example,
		"output.typ":    bundle.Source,
	}
	for filename, data := range files {
		if err := os.WriteFile(filepath.Join(stage, filename), data, 0o644); err != nil {
			return fmt.Errorf("stage %s: %w", filename, err)
		}
	}

	if err := os.RemoveAll(destDir); err != nil {
		return fmt.Errorf("clear previous bundle: %w", err)
	}
	if err := os.Rename(stage, destDir); err != nil {
		return fmt.Errorf("commit bundle: %w", err)
	}
	return nil
}

// TransformFrame pipes one hero frame through the binary's transform
// mode, returning the generated typst source.
func (e *Extractor) TransformFrame(ctx context.Context, binPath string, frame []byte) ([]byte, error) {
	result, err := e.transformRunner.Run(ctx, binPath, nil, frame)
	if err != nil {
		return nil, fmt.Errorf("frame transform: %w", err)
	}
	return result.Stdout, nil
}

// GenerateHeroFrames slices the example document into incremental
// frames and transforms each one into destDir. Individual frame
// failures are logged and skipped: hero frames are decoration, never a
// reason to drop a candidate.
func (e *Extractor) GenerateHeroFrames(ctx context.Context, binPath string, example []byte, destDir string) error {
	frames := Frames(example)
	for i, frame := range frames {
		source, err := e.TransformFrame(ctx, binPath, frame)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			e.log.Warn("hero frame failed", "frame", i, "error", err)
			continue
		}
		name := fmt.Sprintf("hero-frame-%d.typ", i)
		if err := os.WriteFile(filepath.Join(destDir, name), source, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
