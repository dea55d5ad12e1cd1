package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Presto-io/template-registry/internal/artifact"
	"github.com/Presto-io/template-registry/internal/config"
	"github.com/Presto-io/template-registry/internal/discovery"
	"github.com/Presto-io/template-registry/internal/extract"
	"github.com/Presto-io/template-registry/internal/github"
	"github.com/Presto-io/template-registry/internal/manifest"
	"github.com/Presto-io/template-registry/internal/platform"
	"github.com/Presto-io/template-registry/internal/registry"
	"github.com/Presto-io/template-registry/internal/sandbox"
)

const defaultJobs = 4

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	root := fs.String("root", ".", "registry working directory")
	jobs := fs.Int("jobs", defaultJobs, "concurrent template pipelines")
	isolation := fs.String("isolation", string(sandbox.DefaultIsolation()), "sandbox isolation mode (none, namespace)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := newBuildEnv(*root, *verbose, os.Stderr)
	if err != nil {
		return err
	}
	return extractAll(context.Background(), env, *jobs, sandbox.Mode(*isolation))
}

func extractAll(ctx context.Context, env *buildEnv, jobs int, isolation sandbox.Mode) error {
	candidates, err := discovery.LoadList(env.discovered)
	if err != nil {
		return fmt.Errorf("load candidate list: %w", err)
	}
	if len(candidates) == 0 {
		fmt.Println("Nothing to extract")
		return nil
	}
	if jobs < 1 {
		jobs = 1
	}

	plat, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}
	env.log.Info("host platform", "platform", plat.String())

	extractor, err := extract.New(env.build.Limits, isolation,
		extract.WithLogger(env.log))
	if err != nil {
		return err
	}

	p := &pipeline{
		env:       env,
		client:    env.newGitHubClient(),
		extractor: extractor,
		plat:      plat,
		summary:   registry.NewSummary(),
	}

	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	for _, cand := range candidates {
		wg.Add(1)
		go func(c discovery.Candidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			p.process(ctx, c)
		}(cand)
	}
	wg.Wait()

	fmt.Print(p.summary.String())
	return nil
}

// pipeline runs one candidate through download, verification, and
// sandboxed extraction. A candidate's failure never aborts the run.
type pipeline struct {
	env       *buildEnv
	client    *github.Client
	extractor *extract.Extractor
	plat      *platform.Info
	summary   *registry.Summary
}

func (p *pipeline) process(ctx context.Context, cand discovery.Candidate) {
	log := p.env.log

	if err := manifest.ValidateName(cand.Name); err != nil {
		p.summary.Fail(cand.Name, "validate", err)
		return
	}

	binPath, set, err := p.fetch(ctx, cand)
	if err != nil {
		p.summary.Fail(cand.Name, "download", err)
		return
	}
	// The binary's job ends with this stage; an authorized executable
	// never travels into render or index.
	defer os.Remove(binPath)

	verification, err := artifact.VerifyFile(binPath, set)
	if err != nil {
		p.summary.Fail(cand.Name, "verify", err)
		return
	}
	if err := artifact.Authorize(verification); err != nil {
		p.summary.Fail(cand.Name, "verify", err)
		return
	}
	log.Debug("checksum verified", "template", cand.Name, "digest", verification.Digest)

	destDir := filepath.Join(p.env.outputDir, cand.Name)
	bundle, err := p.extractor.Process(ctx, cand.Name, binPath, destDir)
	if err != nil {
		p.summary.Fail(cand.Name, "extract", err)
		return
	}

	if cand.Name == p.env.build.Hero {
		if err := p.extractor.GenerateHeroFrames(ctx, binPath, bundle.Example, destDir); err != nil {
			log.Warn("hero frames skipped", "template", cand.Name, "error", err)
		}
	}

	p.writeReadme(ctx, cand, destDir)

	if err := discovery.SaveMeta(destDir, cand.Meta()); err != nil {
		p.summary.Fail(cand.Name, "extract", err)
		return
	}

	log.Info("extracted", "template", cand.Name, "version", cand.Version)
	p.summary.Succeed(cand.Name)
}

// fetch downloads the release binary and its checksum listing into the
// cache and returns the binary path and parsed checksums.
func (p *pipeline) fetch(ctx context.Context, cand discovery.Candidate) (string, artifact.ChecksumSet, error) {
	assetName := platform.AssetName(cand.Name, p.plat.OS, p.plat.Arch)
	release := github.Release{Assets: cand.Assets}

	bin, ok := release.FindAsset(assetName)
	if !ok {
		return "", nil, fmt.Errorf("no asset %s in release %s", assetName, cand.Tag)
	}
	sums, ok := release.FindAsset(platform.ChecksumAsset)
	if !ok {
		return "", nil, fmt.Errorf("release %s has no %s", cand.Tag, platform.ChecksumAsset)
	}

	cacheDir := filepath.Join(config.CacheDir(), cand.Name, cand.Version)
	if err := os.MkdirAll(cacheDir, 0o750); err != nil {
		return "", nil, err
	}

	binPath := filepath.Join(cacheDir, bin.Name)
	if err := p.client.DownloadAsset(ctx, bin.DownloadURL, binPath); err != nil {
		return "", nil, fmt.Errorf("download %s: %w", bin.Name, err)
	}

	sumsPath := filepath.Join(cacheDir, sums.Name)
	if err := p.client.DownloadAsset(ctx, sums.DownloadURL, sumsPath); err != nil {
		return "", nil, fmt.Errorf("download %s: %w", sums.Name, err)
	}

	f, err := os.Open(sumsPath)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	set, err := artifact.ParseChecksums(f)
	if err != nil {
		return "", nil, fmt.Errorf("parse %s: %w", sums.Name, err)
	}
	return binPath, set, nil
}

// writeReadme fetches the template's README when available. A fetch
// failure only costs the bundle its documentation page.
func (p *pipeline) writeReadme(ctx context.Context, cand discovery.Candidate, destDir string) {
	content, err := p.client.Readme(ctx, cand.Repo, cand.CmdPath)
	if err != nil {
		p.env.log.Warn("readme unavailable", "template", cand.Name, "error", err)
		content = fmt.Sprintf("# %s\n", cand.Name)
	}
	path := filepath.Join(destDir, "README.md")
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		p.env.log.Warn("readme write failed", "template", cand.Name, "error", err)
	}
}
