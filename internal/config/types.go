package config

import (
	"fmt"
	"time"
)

// Default execution limits. These mirror the sizes the upstream binaries
// are expected to stay well under; anything larger is hostile or broken.
const (
	DefaultExecTimeout   = 30 * time.Second
	DefaultRenderTimeout = 120 * time.Second
	DefaultManifestMax   = 1 << 20  // 1 MB
	DefaultExampleMax    = 1 << 20  // 1 MB
	DefaultTypstMax      = 10 << 20 // 10 MB
	DefaultRenderMax     = 50 << 20 // 50 MB across rendered pages
)

// SandboxPath is the only PATH value exposed to untrusted child processes.
const SandboxPath = "/usr/local/bin:/usr/bin:/bin"

// Build is the parsed registry build configuration.
type Build struct {
	// Organization is the GitHub owner whose templates are trusted as
	// official. Decided by exact owner match, never self-declared.
	Organization string

	// Topic is the repository topic used for community discovery.
	Topic string

	// Hero names the template whose example document is sliced into
	// animated hero frames. Empty disables hero-frame generation.
	Hero string

	// OfficialRepo is the owner/name of the monorepo that publishes the
	// official templates. Required when Official is non-empty.
	OfficialRepo string

	// Official lists templates published from the organization's
	// monorepo. They are not discovered by topic search.
	Official []OfficialTemplate

	// Categories maps category ids to display labels.
	Categories map[string]CategoryLabel

	// Limits bounds every sandboxed execution.
	Limits Limits
}

// OfficialTemplate identifies one template inside the official monorepo.
type OfficialTemplate struct {
	Name    string
	CmdPath string
}

// CategoryLabel carries the bilingual display labels for a category.
type CategoryLabel struct {
	ZH string `json:"zh" yaml:"zh"`
	EN string `json:"en" yaml:"en"`
}

// Limits bounds sandboxed execution time and captured output sizes.
type Limits struct {
	ExecTimeout   time.Duration
	RenderTimeout time.Duration
	ManifestMax   int64
	ExampleMax    int64
	TypstMax      int64
	RenderMax     int64
}

// applyDefaults fills zero-valued limits with the package defaults.
func (l *Limits) applyDefaults() {
	if l.ExecTimeout == 0 {
		l.ExecTimeout = DefaultExecTimeout
	}
	if l.RenderTimeout == 0 {
		l.RenderTimeout = DefaultRenderTimeout
	}
	if l.ManifestMax == 0 {
		l.ManifestMax = DefaultManifestMax
	}
	if l.ExampleMax == 0 {
		l.ExampleMax = DefaultExampleMax
	}
	if l.TypstMax == 0 {
		l.TypstMax = DefaultTypstMax
	}
	if l.RenderMax == 0 {
		l.RenderMax = DefaultRenderMax
	}
}

// Validate checks the build configuration for structural problems.
func (b *Build) Validate() error {
	if b.Organization == "" {
		return fmt.Errorf("organization is required")
	}
	if b.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if len(b.Official) > 0 && b.OfficialRepo == "" {
		return fmt.Errorf("official_repo is required when official templates are listed")
	}
	for i, t := range b.Official {
		if t.Name == "" {
			return fmt.Errorf("official[%d]: name is required", i)
		}
	}
	if b.Limits.ExecTimeout < 0 || b.Limits.RenderTimeout < 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if b.Limits.ManifestMax < 0 || b.Limits.ExampleMax < 0 || b.Limits.TypstMax < 0 || b.Limits.RenderMax < 0 {
		return fmt.Errorf("output limits must be positive")
	}
	return nil
}

// CategoryLabelOrOther returns the label for a category id, falling back
// to the "other" label for unknown ids.
func (b *Build) CategoryLabelOrOther(id string) (string, CategoryLabel) {
	if label, ok := b.Categories[id]; ok {
		return id, label
	}
	if label, ok := b.Categories["other"]; ok {
		return "other", label
	}
	return "other", CategoryLabel{ZH: "其他", EN: "Other"}
}
