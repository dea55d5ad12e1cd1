package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AllowList maps template names to the version pinned for verified trust.
// A template earns "verified" only when its published version equals the
// pinned one; a newer release drops back to community until re-reviewed.
type AllowList map[string]string

// allowListFile is the on-disk shape of the verified allow-list.
type allowListFile struct {
	Verified map[string]string `yaml:"verified"`
}

// LoadAllowList reads the verified allow-list YAML file.
// A missing file is not an error: it means nothing is verified.
func LoadAllowList(path string) (AllowList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AllowList{}, nil
		}
		return nil, fmt.Errorf("read allow-list: %w", err)
	}

	var file allowListFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse allow-list: %w", err)
	}
	if file.Verified == nil {
		return AllowList{}, nil
	}
	return AllowList(file.Verified), nil
}

// PinnedVersion returns the pinned version for a template name.
func (a AllowList) PinnedVersion(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}
