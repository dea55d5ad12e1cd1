package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Presto-io/template-registry/internal/config"
	"github.com/Presto-io/template-registry/internal/render"
	"github.com/Presto-io/template-registry/internal/registry"
	"github.com/Presto-io/template-registry/internal/sandbox"
)

// bundleCopies are the extraction artifacts carried into each deployed
// bundle alongside the rendered previews.
var bundleCopies = []string{"manifest.json", "README.md", "example.md", "meta.json"}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	root := fs.String("root", ".", "registry working directory")
	fontPath := fs.String("font-path", "", "font directory for typst (default ROOT/fonts)")
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
	return renderAll(context.Background(), env, fonts, sandbox.Mode(*isolation))
}

// newRenderRunner builds the sandbox for the typst toolchain. The
// compiled sources are author-controlled, and typst resolves package
// imports over the network when allowed, so rendering runs with the
// same network isolation as extraction.
func newRenderRunner(limits config.Limits, isolation sandbox.Mode) (*sandbox.Runner, error) {
	return sandbox.NewRunner(sandbox.Policy{
		Path:      config.SandboxPath,
		Timeout:   limits.RenderTimeout,
		MaxStdout: limits.RenderMax,
		MaxStderr: limits.RenderMax,
		Isolation: isolation,
	})
}

func renderAll(ctx context.Context, env *buildEnv, fontDir string, isolation sandbox.Mode) error {
	runner, err := newRenderRunner(env.build.Limits, isolation)
	if err != nil {
		return err
	}
	renderer := render.New(runner, fontDir)

	version, err := renderer.Version(ctx)
	if err != nil {
		return err
	}
	env.log.Info("rendering previews", "typst", version)

	bundles, err := extractedBundles(env.outputDir)
	if err != nil {
		return err
	}
	if len(bundles) == 0 {
		fmt.Println("Nothing to render")
		return nil
	}

	summary := registry.NewSummary()
	for _, name := range bundles {
		if _, err := os.Stat(filepath.Join(env.outputDir, name, "output.typ")); err != nil {
			summary.Skip(name, "no extracted source")
			continue
		}
		if err := renderBundle(ctx, env, renderer, name); err != nil {
			summary.Fail(name, "render", err)
			continue
		}
		summary.Succeed(name)
	}

	fmt.Print(summary.String())
	return nil
}

// renderBundle compiles one extracted bundle into its deploy directory.
func renderBundle(ctx context.Context, env *buildEnv, renderer *render.Renderer, name string) error {
	srcDir := filepath.Join(env.outputDir, name)
	dstDir := filepath.Join(env.deployDir, name)

	pages, err := renderer.CompilePages(ctx, filepath.Join(srcDir, "output.typ"), dstDir)
	if err != nil {
		return err
	}
	env.log.Info("rendered", "template", name, "pages", len(pages))

	frames, err := filepath.Glob(filepath.Join(srcDir, "hero-frame-*.typ"))
	if err != nil {
		return err
	}
	sort.Strings(frames)
	for _, frame := range frames {
		svg := strings.TrimSuffix(filepath.Base(frame), ".typ") + ".svg"
		if err := renderer.CompileOne(ctx, frame, filepath.Join(dstDir, svg)); err != nil {
			env.log.Warn("hero frame render failed", "template", name, "frame", frame, "error", err)
		}
	}

	for _, file := range bundleCopies {
		src := filepath.Join(srcDir, file)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := copyFile(src, filepath.Join(dstDir, file)); err != nil {
			return fmt.Errorf("copy %s: %w", file, err)
		}
	}
	return nil
}

// extractedBundles lists the per-template directories under outputDir.
func extractedBundles(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == "deploy" || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
