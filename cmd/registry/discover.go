package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Presto-io/template-registry/internal/discovery"
	"github.com/Presto-io/template-registry/internal/registry"
)

func runDiscover(args []string) error {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	force := fs.Bool("force", false, "reprocess templates whose version is unchanged")
	root := fs.String("root", ".", "registry working directory")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := newBuildEnv(*root, *verbose, os.Stderr)
	if err != nil {
		return err
	}
	return discover(context.Background(), env, forceRequested(*force))
}

func discover(ctx context.Context, env *buildEnv, force bool) error {
	prior, err := registry.LoadIndex(env.priorIndex)
	if err != nil {
		return err
	}
	tracker := registry.NewTracker(prior, force)

	d := discovery.New(env.newGitHubClient(), env.build, env.log)
	candidates, err := d.Discover(ctx, tracker)
	if err != nil {
		return err
	}

	if err := discovery.SaveList(env.discovered, candidates); err != nil {
		return fmt.Errorf("save candidate list: %w", err)
	}

	fmt.Printf("Discovered %d template(s) needing an update\n", len(candidates))
	for _, c := range candidates {
		fmt.Printf("  %s %s (%s)\n", c.Name, c.Version, c.Repo)
	}
	return nil
}
