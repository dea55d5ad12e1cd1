package platform

import (
	"fmt"
	"strings"
)

// familyMap maps distribution names to their canonical family names.
// This is used to normalize variations of family strings from gopsutil.
var familyMap = map[string]string{
	"debian": FamilyDebian,
	"ubuntu": FamilyDebian, // gopsutil might return ubuntu as family
	"rhel":   FamilyRHEL,
	"centos": FamilyRHEL,
	"rocky":  FamilyRHEL,
	"fedora": FamilyFedora,
	"arch":   FamilyArch,
	"alpine": FamilyAlpine,
}

// normalizeArch converts GOARCH values to normalized architecture names.
// Release assets are published for amd64 and arm64 only.
func normalizeArch(arch string) (string, error) {
	switch arch {
	case "amd64", "x86_64":
		return "amd64", nil
	case "arm64", "aarch64":
		return "arm64", nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s (assets are built for amd64 and arm64)", arch)
	}
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}
