package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Presto-io/template-registry/internal/config"
	"github.com/Presto-io/template-registry/internal/github"
)

// buildEnv bundles the configuration and filesystem layout shared by the
// pipeline stages. Everything is rooted at the working directory so the
// stages can hand results to each other through stable paths.
type buildEnv struct {
	build *config.Build
	allow config.AllowList
	log   config.Logger

	root       string // repository working directory
	configPath string // root/registry.lua
	allowPath  string // root/verified.yaml

	outputDir  string // root/output, per-template extraction results
	deployDir  string // root/output/deploy, rendered bundles
	discovered string // root/output/discovered.json
	priorIndex string // root/registry.json, the previously published index
	templates  string // root/templates, synced copy of deployed bundles
}

func newBuildEnv(root string, verbose bool, logW io.Writer) (*buildEnv, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	env := &buildEnv{
		root:       abs,
		configPath: filepath.Join(abs, "registry.lua"),
		allowPath:  filepath.Join(abs, "verified.yaml"),
		outputDir:  filepath.Join(abs, "output"),
		deployDir:  filepath.Join(abs, "output", "deploy"),
		discovered: filepath.Join(abs, "output", "discovered.json"),
		priorIndex: filepath.Join(abs, "registry.json"),
		templates:  filepath.Join(abs, "templates"),
	}
	env.log = config.NewLogger(logW, verbose)

	env.build, err = config.Load(env.configPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %s", env.configPath, config.FormatError(err, verbose))
	}

	env.allow, err = config.LoadAllowList(env.allowPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", env.allowPath, err)
	}

	if err := os.MkdirAll(env.deployDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return env, nil
}

// newGitHubClient builds the API client. The token never travels further
// than the client: sandboxed template binaries run with a PATH-only
// environment and cannot observe it. GITHUB_API_URL overrides the API
// endpoint for GitHub Enterprise hosts.
func (e *buildEnv) newGitHubClient() *github.Client {
	var opts []github.Option
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		opts = append(opts, github.WithToken(token))
	}
	if base := os.Getenv("GITHUB_API_URL"); base != "" {
		opts = append(opts, github.WithBaseURL(base))
	}
	return github.NewClient(opts...)
}

// forceRequested reports whether a full rebuild was asked for, either by
// flag or by the FORCE_REBUILD environment variable CI sets.
func forceRequested(flagValue bool) bool {
	return flagValue || os.Getenv("FORCE_REBUILD") == "true"
}

// copyFile copies src to dst, creating parent directories as needed.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// copyDir recursively copies the regular files under src into dst.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}
