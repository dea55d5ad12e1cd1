package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/Presto-io/template-registry/internal/sandbox"
)

// runBuild runs the full pipeline in stage order. Each stage reads only
// what the previous stage wrote to disk, so the umbrella command and the
// per-stage CI jobs behave identically.
func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	force := fs.Bool("force", false, "reprocess templates whose version is unchanged")
	root := fs.String("root", ".", "registry working directory")
	fontPath := fs.String("font-path", "", "font directory for typst (default ROOT/fonts)")
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
	fonts := *fontPath
	if fonts == "" {
		fonts = filepath.Join(env.root, "fonts")
	}

	ctx := context.Background()
	if err := discover(ctx, env, forceRequested(*force)); err != nil {
		return err
	}
	if err := extractAll(ctx, env, *jobs, sandbox.Mode(*isolation)); err != nil {
		return err
	}
	if err := renderAll(ctx, env, fonts, sandbox.Mode(*isolation)); err != nil {
		return err
	}
	return index(env)
}
