// Package github is the narrow hosting-API collaborator for discovery.
//
// It covers exactly what the pipeline needs: topic search, latest-release
// lookup, readme fetch, and asset download. It carries no trust decisions;
// everything it returns is treated as untrusted input by the callers.
package github

import "time"

// Repo is a repository returned by topic search.
type Repo struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"browser_download_url"`
}

// Release is the latest release of a repository.
type Release struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

// Version returns the release version with any leading "v" stripped.
func (r *Release) Version() string {
	if len(r.TagName) > 0 && r.TagName[0] == 'v' {
		return r.TagName[1:]
	}
	return r.TagName
}

// FindAsset returns the asset with the given exact name.
func (r *Release) FindAsset(name string) (Asset, bool) {
	for _, a := range r.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}
