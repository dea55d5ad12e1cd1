package discovery

import (
	"context"
	"fmt"

	"github.com/Presto-io/template-registry/internal/config"
	"github.com/Presto-io/template-registry/internal/github"
	"github.com/Presto-io/template-registry/internal/manifest"
	"github.com/Presto-io/template-registry/internal/platform"
	"github.com/Presto-io/template-registry/internal/registry"
)

// Discoverer queries the hosting platform for template candidates and
// filters them through the incremental tracker.
type Discoverer struct {
	client *github.Client
	build  *config.Build
	log    config.Logger
}

// New creates a Discoverer.
func New(client *github.Client, build *config.Build, log config.Logger) *Discoverer {
	if log == nil {
		log = config.NopLogger()
	}
	return &Discoverer{client: client, build: build, log: log}
}

// Discover returns candidates that need (re-)processing: official
// templates first, then community repositories found by topic search.
// A repository that cannot be resolved (no release, no conformant
// asset, invalid name) is logged and skipped; it never aborts the scan.
func (d *Discoverer) Discover(ctx context.Context, tracker *registry.Tracker) ([]Candidate, error) {
	var candidates []Candidate

	official, err := d.discoverOfficial(ctx, tracker)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, official...)

	community, err := d.discoverCommunity(ctx, tracker)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, community...)

	return candidates, nil
}

// discoverOfficial resolves the hard-coded official template list
// against the monorepo's latest release.
func (d *Discoverer) discoverOfficial(ctx context.Context, tracker *registry.Tracker) ([]Candidate, error) {
	if len(d.build.Official) == 0 {
		return nil, nil
	}

	release, err := d.client.LatestRelease(ctx, d.build.OfficialRepo)
	if err != nil {
		// The official repo is under our control; failing to reach it
		// is an infrastructure problem, not a skippable candidate.
		return nil, fmt.Errorf("official release lookup: %w", err)
	}

	var candidates []Candidate
	for _, tmpl := range d.build.Official {
		if !tracker.ShouldProcess(tmpl.Name, release.Version()) {
			d.log.Info("version unchanged, skipping", "template", tmpl.Name, "version", release.Version())
			continue
		}
		candidates = append(candidates, Candidate{
			Name:        tmpl.Name,
			Repo:        d.build.OfficialRepo,
			Owner:       d.build.Organization,
			Version:     release.Version(),
			Tag:         release.TagName,
			PublishedAt: release.PublishedAt,
			HTMLURL:     "https://github.com/" + d.build.OfficialRepo,
			Official:    true,
			CmdPath:     tmpl.CmdPath,
			Assets:      release.Assets,
		})
		d.log.Info("official candidate", "template", tmpl.Name, "version", release.Version())
	}
	return candidates, nil
}

// discoverCommunity searches the registry topic and infers template
// names from conformant release asset names.
func (d *Discoverer) discoverCommunity(ctx context.Context, tracker *registry.Tracker) ([]Candidate, error) {
	repos, err := d.client.SearchTopic(ctx, d.build.Topic)
	if err != nil {
		return nil, fmt.Errorf("topic search: %w", err)
	}

	var candidates []Candidate
	for _, repo := range repos {
		// The official monorepo is handled separately.
		if repo.FullName == d.build.OfficialRepo {
			continue
		}

		release, err := d.client.LatestRelease(ctx, repo.FullName)
		if err != nil {
			d.log.Warn("no usable release, skipping", "repo", repo.FullName, "error", err)
			continue
		}

		name, ok := inferName(release.Assets)
		if !ok {
			d.log.Warn("no conformant binary asset, skipping", "repo", repo.FullName)
			continue
		}
		if err := manifest.ValidateName(name); err != nil {
			d.log.Warn("invalid template name, skipping", "repo", repo.FullName, "name", name)
			continue
		}

		if !tracker.ShouldProcess(name, release.Version()) {
			d.log.Info("version unchanged, skipping", "template", name, "version", release.Version())
			continue
		}

		candidates = append(candidates, Candidate{
			Name:        name,
			Repo:        repo.FullName,
			Owner:       repo.Owner.Login,
			Version:     release.Version(),
			Tag:         release.TagName,
			PublishedAt: release.PublishedAt,
			HTMLURL:     repo.HTMLURL,
			Official:    false,
			Assets:      release.Assets,
		})
		d.log.Info("community candidate", "template", name, "version", release.Version())
	}
	return candidates, nil
}

// inferName extracts the template name from the first asset following
// the release naming scheme.
func inferName(assets []github.Asset) (string, bool) {
	for _, asset := range assets {
		if name, ok := platform.ParseAssetName(asset.Name); ok {
			return name, true
		}
	}
	return "", false
}
