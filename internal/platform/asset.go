package platform

import "strings"

// AssetPrefix is the required prefix for template release binaries.
const AssetPrefix = "presto-template-"

// ChecksumAsset is the checksum listing published with every release.
const ChecksumAsset = "checksums.txt"

// AssetName returns the release asset name for a template binary.
// Pattern: presto-template-{name}-{os}-{arch}[.exe]
func AssetName(template, goos, arch string) string {
	suffix := ""
	if goos == "windows" {
		suffix = ".exe"
	}
	return AssetPrefix + template + "-" + goos + "-" + arch + suffix
}

// ParseAssetName recovers the template name from a release asset name.
// It returns false when the asset does not follow the naming scheme.
// Template names may themselves contain hyphens, so the trailing
// {os}-{arch} pair is stripped positionally.
func ParseAssetName(asset string) (string, bool) {
	name := strings.TrimSuffix(asset, ".exe")
	if !strings.HasPrefix(name, AssetPrefix) {
		return "", false
	}
	parts := strings.Split(name, "-")
	// presto-template-{name...}-{os}-{arch} needs at least 5 segments.
	if len(parts) < 5 {
		return "", false
	}
	template := strings.Join(parts[2:len(parts)-2], "-")
	if template == "" {
		return "", false
	}
	return template, true
}
