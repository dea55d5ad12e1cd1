package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Presto-io/template-registry/internal/config"
	"github.com/Presto-io/template-registry/internal/discovery"
	"github.com/Presto-io/template-registry/internal/manifest"
	"github.com/Presto-io/template-registry/internal/registry"
)

func runIndex(args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	root := fs.String("root", ".", "registry working directory")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := newBuildEnv(*root, *verbose, os.Stderr)
	if err != nil {
		return err
	}
	return index(env)
}

func index(env *buildEnv) error {
	prior, err := registry.LoadIndex(env.priorIndex)
	if err != nil {
		return err
	}

	fresh, err := collectEntries(env)
	if err != nil {
		return err
	}

	merged := registry.Aggregate(fresh, prior, env.build, time.Now())

	publisher := registry.NewPublisher(config.StateDir())
	targets := []string{filepath.Join(env.deployDir, "registry.json"), env.priorIndex}
	if err := publisher.Publish(merged, targets...); err != nil {
		return err
	}

	if err := syncTemplates(env); err != nil {
		return err
	}

	fmt.Printf("Published registry with %d template(s), %d categor(ies)\n",
		len(merged.Templates), len(merged.Categories))
	return nil
}

// collectEntries builds index entries from the deployed bundles. The
// manifest is re-validated here: it crossed a filesystem boundary since
// extraction and is still untrusted input.
func collectEntries(env *buildEnv) ([]registry.Entry, error) {
	dirs, err := os.ReadDir(env.deployDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []registry.Entry
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		name := dir.Name()
		if err := manifest.ValidateName(name); err != nil {
			env.log.Warn("skipping bundle with invalid name", "dir", name)
			continue
		}

		bundleDir := filepath.Join(env.deployDir, name)
		raw, err := os.ReadFile(filepath.Join(bundleDir, "manifest.json"))
		if err != nil {
			env.log.Warn("skipping bundle without manifest", "template", name)
			continue
		}
		m, err := manifest.Parse(raw)
		if err != nil {
			env.log.Warn("skipping bundle with bad manifest", "template", name, "error", err)
			continue
		}
		if m.Name != name {
			env.log.Warn("skipping bundle with mismatched name", "dir", name, "manifest", m.Name)
			continue
		}

		meta, err := discovery.LoadMeta(bundleDir)
		if err != nil {
			env.log.Warn("skipping bundle without metadata", "template", name, "error", err)
			continue
		}

		trust := registry.ComputeTrust(meta.Owner, name, m.Version,
			env.build.Organization, env.allow)

		entries = append(entries, registry.Entry{
			Name:        name,
			DisplayName: m.DisplayName,
			Description: m.Description,
			Version:     m.Version,
			Author:      m.Author,
			Category:    m.Category,
			Keywords:    m.Keywords,
			License:     m.License,
			Trust:       trust,
			PublishedAt: meta.PublishedAt.UTC().Format(time.RFC3339),
			Repository:  meta.HTMLURL,
		})
	}
	return entries, nil
}

// syncTemplates mirrors the deployed bundles into the templates
// directory served alongside registry.json.
func syncTemplates(env *buildEnv) error {
	dirs, err := os.ReadDir(env.deployDir)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		dst := filepath.Join(env.templates, dir.Name())
		if err := os.RemoveAll(dst); err != nil {
			return err
		}
		if err := copyDir(filepath.Join(env.deployDir, dir.Name()), dst); err != nil {
			return fmt.Errorf("sync %s: %w", dir.Name(), err)
		}
	}
	return nil
}
