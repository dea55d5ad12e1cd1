package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/Presto-io/template-registry/internal/config"
	"github.com/Presto-io/template-registry/internal/manifest"
	"github.com/Presto-io/template-registry/internal/sandbox"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive /bin/sh scripts")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
}

const fakeManifest = `{
	"name": "gongwen",
	"displayName": "公文模板",
	"description": "Official document template",
	"version": "1.0.0",
	"author": "Presto-io",
	"license": "MIT",
	"category": "gongwen",
	"minPrestoVersion": "0.3.0"
}`

// fakeBinary writes a shell script that behaves like a template binary:
// --manifest and --example dump fixed documents, anything else reads a
// markdown document on stdin and emits typst source.
func fakeBinary(t *testing.T, manifestOut string) string {
	t.Helper()
	script := `#!/bin/sh
case "$1" in
--manifest)
	cat <<'MANIFEST'
` + manifestOut + `
MANIFEST
	;;
--example)
	printf -- '---\ntitle: Example\n---\n\n# Example\n\nBody text.\n'
	;;
*)
	echo '#set page(width: 210mm)'
	cat
	;;
esac`
	path := filepath.Join(t.TempDir(), "presto-template-gongwen-linux-amd64")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testLimits() config.Limits {
	return config.Limits{
		ExecTimeout:   10 * time.Second,
		RenderTimeout: 10 * time.Second,
		ManifestMax:   1 << 20,
		ExampleMax:    1 << 20,
		TypstMax:      1 << 20,
		RenderMax:     1 << 20,
	}
}

func TestProcess(t *testing.T) {
	skipWithoutShell(t)
	bin := fakeBinary(t, fakeManifest)
	destDir := filepath.Join(t.TempDir(), "output", "gongwen")

	e, err := New(testLimits(), sandbox.IsolationNone)
	if err != nil {
		t.Fatal(err)
	}

	bundle, err := e.Process(context.Background(), "gongwen", bin, destDir)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if bundle.Manifest.Name != "gongwen" || bundle.Manifest.Version != "1.0.0" {
		t.Errorf("Manifest = %+v", bundle.Manifest)
	}
	if !strings.Contains(string(bundle.Example), "# Example") {
		t.Errorf("Example = %q", bundle.Example)
	}
	if !strings.Contains(string(bundle.Source), "#set page") {
		t.Errorf("Source = %q", bundle.Source)
	}
	// The transform received the example on stdin.
	if !strings.Contains(string(bundle.Source), "Body text.") {
		t.Errorf("Source missing piped example: %q", bundle.Source)
	}

	for _, file := range []string{"manifest.json", "example.md", "output.typ"} {
		if _, err := os.Stat(filepath.Join(destDir, file)); err != nil {
			t.Errorf("bundle file %s: %v", file, err)
		}
	}
}

func TestProcessReplacesPreviousBundle(t *testing.T) {
	skipWithoutShell(t)
	bin := fakeBinary(t, fakeManifest)
	destDir := filepath.Join(t.TempDir(), "gongwen")

	// A stale artifact from an earlier version must not survive.
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(destDir, "hero-frame-9.typ")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	e, err := New(testLimits(), sandbox.IsolationNone)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Process(context.Background(), "gongwen", bin, destDir); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale artifact survived bundle replacement")
	}
}

func TestProcessNameMismatch(t *testing.T) {
	skipWithoutShell(t)
	mismatched := strings.Replace(fakeManifest, `"name": "gongwen"`, `"name": "impostor"`, 1)
	bin := fakeBinary(t, mismatched)
	destDir := filepath.Join(t.TempDir(), "gongwen")

	e, err := New(testLimits(), sandbox.IsolationNone)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Process(context.Background(), "gongwen", bin, destDir)
	if !errors.Is(err, manifest.ErrMalformedManifest) {
		t.Fatalf("Process() error = %v, want ErrMalformedManifest", err)
	}
	if _, statErr := os.Stat(destDir); !os.IsNotExist(statErr) {
		t.Error("bundle directory exists after failed extraction")
	}
}

func TestProcessMalformedManifest(t *testing.T) {
	skipWithoutShell(t)
	bin := fakeBinary(t, `{"name": "gongwen", "oops":`)
	destDir := filepath.Join(t.TempDir(), "gongwen")

	e, err := New(testLimits(), sandbox.IsolationNone)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Process(context.Background(), "gongwen", bin, destDir)
	if !errors.Is(err, manifest.ErrMalformedManifest) {
		t.Fatalf("Process() error = %v, want ErrMalformedManifest", err)
	}
	if _, statErr := os.Stat(destDir); !os.IsNotExist(statErr) {
		t.Error("bundle directory exists after failed extraction")
	}
}

func TestProcessBinaryFailure(t *testing.T) {
	skipWithoutShell(t)
	path := filepath.Join(t.TempDir(), "broken")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 9\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	destDir := filepath.Join(t.TempDir(), "gongwen")

	e, err := New(testLimits(), sandbox.IsolationNone)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Process(context.Background(), "gongwen", path, destDir)
	if !errors.Is(err, sandbox.ErrExecutionFailed) {
		t.Fatalf("Process() error = %v, want ErrExecutionFailed", err)
	}
	if _, statErr := os.Stat(destDir); !os.IsNotExist(statErr) {
		t.Error("bundle directory exists after failed extraction")
	}
}

func TestProcessObserver(t *testing.T) {
	skipWithoutShell(t)
	bin := fakeBinary(t, fakeManifest)
	destDir := filepath.Join(t.TempDir(), "gongwen")

	var spawns int
	e, err := New(testLimits(), sandbox.IsolationNone, WithObserver(func(string) {
		spawns++
	}))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Process(context.Background(), "gongwen", bin, destDir); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	// Manifest, example, transform: exactly three spawns.
	if spawns != 3 {
		t.Errorf("spawns = %d, want 3", spawns)
	}
}

func TestGenerateHeroFrames(t *testing.T) {
	skipWithoutShell(t)
	bin := fakeBinary(t, fakeManifest)
	destDir := t.TempDir()

	example := []byte("---\ntitle: Hero\n---\n\n# Hero\n\nFirst paragraph.\n")

	e, err := New(testLimits(), sandbox.IsolationNone)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.GenerateHeroFrames(context.Background(), bin, example, destDir); err != nil {
		t.Fatalf("GenerateHeroFrames() error = %v", err)
	}

	want := len(Frames(example))
	frames, err := filepath.Glob(filepath.Join(destDir, "hero-frame-*.typ"))
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != want {
		t.Errorf("rendered %d frames, want %d", len(frames), want)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "hero-frame-0.typ"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "#set page") {
		t.Errorf("frame 0 not transformed: %q", data)
	}
}
